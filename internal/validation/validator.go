// =============================================================================
// Supplier Price Loader - Input Validation
// =============================================================================
//
// This module checks the structure of the loader's inputs before any column
// is classified. It answers one question: can product identity be
// established for the rows of this worksheet?
//
// VALIDATION STRATEGY:
//   - Errors are collected, not returned one at a time
//   - "error" findings are fatal: the run aborts with no partial output
//   - "warning" findings are reported and the run continues
//
// FATAL FINDINGS:
//   - The PIP identity column is missing
//   - The product name identity column is missing
//
// WARNINGS:
//   - The pack size column is missing
//   - The worksheet has no data rows
//   - Two columns share the same header text
//   - A mapping table entry matches no workbook header
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleIdentityColumn  = "identity_column"
	RuleEmptySheet      = "empty_sheet"
	RuleDuplicateHeader = "duplicate_header"
	RuleUnmatchedMap    = "unmatched_mapping"
)

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity indicates the severity of the finding.
	// "error" = fatal, the run must stop
	// "warning" = non-fatal, the run can continue
	Severity string

	// Column is the header the finding is about, if any.
	Column string

	// Rule is the check that produced the finding.
	Rule string

	// Message is a human-readable message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("[%s] %s", strings.ToUpper(e.Severity), e.Message)
	}
	return fmt.Sprintf("[%s] Column '%s': %s", strings.ToUpper(e.Severity), e.Column, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

// Fatal returns only the fatal findings.
func (r *ValidationResult) Fatal() []*ValidationError {
	var fatal []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			fatal = append(fatal, e)
		}
	}
	return fatal
}

// Warnings returns only the non-fatal findings.
func (r *ValidationResult) Warnings() []*ValidationError {
	var warnings []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityWarning {
			warnings = append(warnings, e)
		}
	}
	return warnings
}

func (r *ValidationResult) add(severity, column, rule, format string, args ...interface{}) {
	r.Errors = append(r.Errors, &ValidationError{
		Severity: severity,
		Column:   column,
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
	})
	if severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// IDENTITY COLUMNS
// =============================================================================

// IdentityColumns names the workbook headers that identify a product.
type IdentityColumns struct {
	PIP      string
	Name     string
	PackSize string
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks the worksheet and mapping table structure.
//
// PARAMETERS:
//   - table: the worksheet snapshot.
//   - identity: the identity column headers.
//   - mapping: the classification mapping table (may be nil).
//
// RETURNS:
//   - A ValidationResult; IsValid is false when any fatal finding exists.
func Validate(table *types.Table, identity IdentityColumns, mapping []types.MappingEntry) *ValidationResult {
	result := &ValidationResult{}

	if table.ColumnIndex(identity.PIP) < 0 {
		result.add(SeverityError, identity.PIP, RuleIdentityColumn,
			"PIP identity column is missing; product identity cannot be established")
	}
	if table.ColumnIndex(identity.Name) < 0 {
		result.add(SeverityError, identity.Name, RuleIdentityColumn,
			"product name identity column is missing; product identity cannot be established")
	}
	if identity.PackSize != "" && table.ColumnIndex(identity.PackSize) < 0 {
		result.add(SeverityWarning, identity.PackSize, RuleIdentityColumn,
			"pack size column is missing; products are emitted without pack size")
	}

	if len(table.Rows) == 0 {
		result.add(SeverityWarning, "", RuleEmptySheet, "worksheet %q has no data rows", table.Sheet)
	}

	seen := make(map[string]bool, len(table.Headers))
	for _, h := range table.Headers {
		if seen[h] {
			result.add(SeverityWarning, h, RuleDuplicateHeader,
				"header appears more than once; mapping and alias lookups use the same entry for every copy")
			continue
		}
		seen[h] = true
	}

	matched := 0
	for _, entry := range mapping {
		if seen[entry.Column] {
			matched++
			continue
		}
		result.add(SeverityWarning, entry.Column, RuleUnmatchedMap, "mapping entry matches no workbook header")
	}
	if len(mapping) > 0 && matched == 0 {
		result.add(SeverityWarning, "", RuleUnmatchedMap, "no mapping rows matched the workbook headers")
	}

	result.IsValid = result.ErrorCount == 0
	return result
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats validation findings for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

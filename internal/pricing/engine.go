// =============================================================================
// Supplier Price Loader - Pricing Engine
// =============================================================================
//
// The engine turns one worksheet snapshot into the relational extracts. It
// owns no I/O: the workbook, mapping and alias tables arrive already read,
// and the Result is handed to the output writers.
//
// PIPELINE:
//   1. Validate the structure (missing PIP or name column is fatal)
//   2. Analyse every column in parallel: classify, resolve, sign
//   3. Group duplicate columns and apply the duplicate policy
//   4. Build products, melt price columns, collect suppliers
//   5. Summarise the run into a manifest
//
// CONCURRENCY:
//   Step 2 only reads the table and the mapping/alias tables, and each
//   worker writes its own slot of the column slice. Everything after it
//   runs on one goroutine once all columns are final.
//
// =============================================================================

package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/types"
	"github.com/martybo/Warehouse-Supplier-Price-Management/internal/validation"
)

// ErrMissingIdentity is returned when the worksheet has no PIP or product
// name column. No result is produced.
var ErrMissingIdentity = errors.New("identity column missing")

// Duplicate policies.
const (
	// PolicySuppress excludes a price column whose content duplicates an
	// earlier price column that is melted.
	PolicySuppress = "suppress"

	// PolicyMelt melts duplicate price columns like any other.
	PolicyMelt = "melt"
)

// DefaultWorkers bounds column analysis when Options.Workers is not set.
const DefaultWorkers = 4

// =============================================================================
// OPTIONS AND INPUT
// =============================================================================

// Options configures an Engine.
type Options struct {
	// Identity names the PIP, product name and pack size headers.
	Identity validation.IdentityColumns

	// DefaultChannel is applied to price columns whose channel cannot be
	// found. ChannelUnknown leaves them unresolved.
	DefaultChannel Channel

	// DuplicatePolicy is PolicySuppress (the default) or PolicyMelt.
	DuplicatePolicy string

	// Workers bounds the number of columns analysed at once.
	Workers int
}

// Input is everything one run reads.
type Input struct {
	Table   *types.Table
	Mapping []types.MappingEntry
	Aliases []types.AliasEntry

	// Sources is copied into the manifest.
	Sources Sources
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Column is the final state of one workbook column.
type Column struct {
	Index  int
	Header string

	Classification Classification

	// Resolution is set for price columns only.
	Resolution Resolution

	Signature string

	// DuplicateOf is the position of the canonical column when this column
	// was flagged as a duplicate, otherwise -1.
	DuplicateOf int

	// Reason is why the column was not melted; ReasonNone when it was.
	Reason Reason
	Melted bool
}

// Result is the outcome of one run.
type Result struct {
	SourceRows int
	Columns    []Column

	Products      []Product
	Conflicts     []ProductConflict
	Quotes        []PriceQuote
	Suppliers     []string
	SupplierItems []SupplierItem

	DuplicateGroups []DuplicateGroup

	// Warnings are the non-fatal structural findings.
	Warnings []*validation.ValidationError

	Manifest Manifest

	// ProcessingTime is the wall time of Run.
	ProcessingTime time.Duration
}

// Excluded returns the columns that were not melted for the given
// reasons, in column order.
func (r *Result) Excluded(reasons ...Reason) []Column {
	want := make(map[Reason]bool, len(reasons))
	for _, reason := range reasons {
		want[reason] = true
	}
	var cols []Column
	for _, c := range r.Columns {
		if want[c.Reason] {
			cols = append(cols, c)
		}
	}
	return cols
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs the classification, resolution and melt pipeline. An Engine
// holds no per-run state and may be reused.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil logger discards all output.
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = PolicySuppress
	}
	return &Engine{opts: opts, logger: logger}
}

// Run executes the pipeline for one worksheet.
//
// PARAMETERS:
//   - ctx: cancels column analysis.
//   - run: the run-constant QuotedOn and BatchID.
//   - in: the worksheet and its mapping and alias tables.
//
// RETURNS:
//   - The Result, or an error wrapping ErrMissingIdentity when product
//     identity cannot be established. A failed run returns no Result.
func (e *Engine) Run(ctx context.Context, run RunContext, in Input) (*Result, error) {
	startTime := time.Now()
	table := in.Table
	if table == nil {
		return nil, fmt.Errorf("%w: no worksheet", ErrMissingIdentity)
	}

	// =========================================================================
	// STEP 1: VALIDATE STRUCTURE
	// =========================================================================

	check := validation.Validate(table, e.opts.Identity, in.Mapping)
	if !check.IsValid {
		for _, f := range check.Fatal() {
			e.logger.Error("structural check failed", zap.String("column", f.Column), zap.String("message", f.Message))
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingIdentity, check.Fatal()[0].Message)
	}
	for _, w := range check.Warnings() {
		e.logger.Warn("structural warning", zap.String("rule", w.Rule), zap.String("column", w.Column), zap.String("message", w.Message))
	}

	idx := IdentityIndex{
		PIP:      table.ColumnIndex(e.opts.Identity.PIP),
		Name:     table.ColumnIndex(e.opts.Identity.Name),
		PackSize: -1,
	}
	if e.opts.Identity.PackSize != "" {
		idx.PackSize = table.ColumnIndex(e.opts.Identity.PackSize)
	}

	// =========================================================================
	// STEP 2: ANALYSE COLUMNS
	// =========================================================================
	// Each column depends only on its own header and cells plus the
	// read-only lookup tables.

	columns, err := e.analyseColumns(ctx, table, idx, in)
	if err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 3: DUPLICATES
	// =========================================================================

	signatures := make([]string, len(columns))
	for i, c := range columns {
		signatures[i] = c.Signature
	}
	groups := DetectDuplicates(signatures)
	for _, g := range groups {
		for _, pos := range g.Duplicates() {
			columns[pos].DuplicateOf = g.Canonical()
		}
	}

	var meltColumns []MeltColumn
	for i := range columns {
		c := &columns[i]
		c.Reason = e.exclusionReason(columns, c)
		if c.Reason != ReasonNone {
			e.logExclusion(c)
			continue
		}
		c.Melted = true
		meltColumns = append(meltColumns, MeltColumn{
			Index:     c.Index,
			Header:    c.Header,
			Supplier:  c.Resolution.Supplier,
			Channel:   c.Resolution.Channel,
			ValidFrom: c.Resolution.ValidFrom,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 4: PRODUCTS AND QUOTES
	// =========================================================================

	canonicalSuppliers(meltColumns)

	products, conflicts := BuildProducts(table, idx)
	for _, c := range conflicts {
		e.logger.Warn("product conflict, first occurrence kept",
			zap.String("pip", c.PIP), zap.String("field", c.Field),
			zap.String("kept", c.Kept), zap.String("ignored", c.Ignored), zap.Int("row", c.Row))
	}

	quotes := Melt(table, idx.PIP, meltColumns, products, run)

	result := &Result{
		SourceRows:      len(table.Rows),
		Columns:         columns,
		Products:        products,
		Conflicts:       conflicts,
		Quotes:          quotes,
		Suppliers:       Suppliers(meltColumns),
		SupplierItems:   SupplierItems(quotes),
		DuplicateGroups: groups,
		Warnings:        check.Warnings(),
	}

	// =========================================================================
	// STEP 5: MANIFEST
	// =========================================================================

	result.Manifest = BuildManifest(result, run, e.opts.DuplicatePolicy, in.Sources)
	result.ProcessingTime = time.Since(startTime)

	e.logger.Info("run complete",
		zap.String("batch_id", run.BatchID()),
		zap.Int("products", len(result.Products)),
		zap.Int("suppliers", len(result.Suppliers)),
		zap.Int("price_quotes", len(result.Quotes)),
		zap.Int("excluded_columns", result.Manifest.ExcludedColumns),
		zap.Duration("elapsed", result.ProcessingTime))

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// analyseColumns classifies, resolves and signs every column using a
// bounded errgroup. Results are stored by position.
func (e *Engine) analyseColumns(ctx context.Context, table *types.Table, idx IdentityIndex, in Input) ([]Column, error) {
	mapping := make(map[string]*types.MappingEntry, len(in.Mapping))
	for i := range in.Mapping {
		if _, dup := mapping[in.Mapping[i].Column]; !dup {
			mapping[in.Mapping[i].Column] = &in.Mapping[i]
		}
	}
	resolver := NewResolver(in.Aliases, e.opts.DefaultChannel)

	columns := make([]Column, len(table.Headers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, header := range table.Headers {
		i, header := i, header
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			col := Column{Index: i, Header: header, DuplicateOf: -1}
			entry := mapping[header]

			if i == idx.PIP || i == idx.Name || i == idx.PackSize {
				col.Classification = identityClassification(entry)
			} else {
				col.Classification = Classify(entry, ParseHeader(header).Parsable())
				if col.Classification.Category == CategoryPrice {
					col.Resolution = resolver.Resolve(header)
				}
			}

			col.Signature = Signature(table.Column(i))
			columns[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("column analysis: %w", err)
	}
	return columns, nil
}

// exclusionReason decides whether a column is melted. columns must already
// carry their duplicate flags.
func (e *Engine) exclusionReason(columns []Column, c *Column) Reason {
	if c.Classification.Excluded() {
		return c.Classification.Reason
	}
	if !c.Resolution.Resolved {
		return ReasonUnresolved
	}
	if c.DuplicateOf >= 0 && e.opts.DuplicatePolicy != PolicyMelt {
		canonical := columns[c.DuplicateOf]
		if !canonical.Classification.Excluded() && canonical.Resolution.Resolved {
			return ReasonDuplicate
		}
	}
	return ReasonNone
}

func (e *Engine) logExclusion(c *Column) {
	fields := []zap.Field{
		zap.String("column", c.Header),
		zap.Int("position", c.Index),
		zap.String("reason", string(c.Reason)),
	}
	switch c.Reason {
	case ReasonIdentity:
		e.logger.Debug("identity column", fields...)
		return
	case ReasonUnresolved:
		fields = append(fields, zap.String("detail", c.Resolution.Reason))
	case ReasonDuplicate:
		fields = append(fields, zap.Int("canonical_position", c.DuplicateOf))
	}
	if c.Classification.Notes != "" {
		fields = append(fields, zap.String("notes", c.Classification.Notes))
	}
	e.logger.Warn("column excluded", fields...)
}

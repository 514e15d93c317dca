// =============================================================================
// Supplier Price Loader - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the loader, including:
//   - Directory management
//   - Staged output and publishing
//   - Batch id and file naming placeholders
//   - Run summary generation
//
// PUBLISH STRATEGY:
//   - Every extract of a run is first written to a hidden staging directory
//     inside the output directory
//   - Only when every writer has succeeded are the files renamed into the
//     output directory
//   - A failed run discards the staging directory, so the output directory
//     never holds a partial extract set
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the output directory of one run.
type FileManager struct {
	// OutputDir is the directory where published extracts are placed.
	OutputDir string

	// stagingDir is set between BeginStaging and Publish/Discard.
	stagingDir string
}

// NewFileManager creates a new FileManager for the output directory.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{OutputDir: outputDir}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory and any extra directories
// (for example the SQLite file's parent) if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories(extra ...string) error {
	dirs := append([]string{fm.OutputDir}, extra...)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// STAGING
// =============================================================================

// BeginStaging creates a fresh staging directory and returns its path.
// Writers put every file of the run there.
func (fm *FileManager) BeginStaging() (string, error) {
	if fm.stagingDir != "" {
		return "", fmt.Errorf("staging already in progress at %s", fm.stagingDir)
	}
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	dir := filepath.Join(fm.OutputDir, ".staging-"+uuid.New().String())
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	fm.stagingDir = dir
	return dir, nil
}

// Publish moves every staged file into the output directory, replacing
// files of the same name, and removes the staging directory.
//
// RETURNS:
//   - The published paths, sorted.
//   - An error if any file cannot be moved.
func (fm *FileManager) Publish() ([]string, error) {
	if fm.stagingDir == "" {
		return nil, fmt.Errorf("nothing staged")
	}

	entries, err := os.ReadDir(fm.stagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging directory: %w", err)
	}

	var published []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(fm.stagingDir, entry.Name())
		dst := filepath.Join(fm.OutputDir, entry.Name())

		if err := os.Rename(src, dst); err != nil {
			// Rename can fail across devices; fall back to a copy.
			if err := copyFile(src, dst); err != nil {
				return published, fmt.Errorf("failed to publish %s: %w", entry.Name(), err)
			}
		}
		published = append(published, dst)
	}

	if err := fm.Discard(); err != nil {
		return published, err
	}

	sort.Strings(published)
	return published, nil
}

// Discard removes the staging directory and everything in it. It is safe
// to call when nothing is staged.
func (fm *FileManager) Discard() error {
	if fm.stagingDir == "" {
		return nil
	}
	dir := fm.stagingDir
	fm.stagingDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	return nil
}

// =============================================================================
// PLACEHOLDER FORMATTING
// =============================================================================

// FormatPlaceholders expands the placeholders of a batch id or file name.
//
// PARAMETERS:
//   - format: The format string.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - UTC timestamp (YYYYMMDDTHHMMSSZ)
//               {date}      - UTC date (YYYYMMDD)
//               {time}      - UTC time (HHMMSS)
//   - now: The instant the placeholders describe.
//   - params: Extra placeholder values, keyed without braces.
//
// RETURNS:
//   - The expanded string.
//
// EXAMPLE:
//   format: "initial_migration_{timestamp}"
//   output: "initial_migration_20250814T223000Z"
func FormatPlaceholders(format string, now time.Time, params map[string]string) string {
	now = now.UTC()

	pairs := []string{
		"{timestamp}", now.Format("20060102T150405Z"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		pairs = append(pairs, "{uuid}", uuid.New().String())
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}

	return strings.NewReplacer(pairs...).Replace(format)
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// SummaryFileName is the name of the human-readable run summary.
const SummaryFileName = "run_summary.txt"

// RunSummary contains summary information about a loader run.
type RunSummary struct {
	BatchID   string
	QuotedOn  time.Time
	StartTime time.Time
	EndTime   time.Time

	Workbook string
	Sheet    string

	// Counts is an ordered list of label/value pairs.
	Counts []SummaryCount

	// Findings are warnings worth a human's attention.
	Findings []string

	OutputFiles []string
}

// SummaryCount is one labelled figure of a RunSummary.
type SummaryCount struct {
	Label string
	Value int
}

// WriteSummaryLog writes a run summary to dir.
//
// PARAMETERS:
//   - summary: The run summary.
//   - dir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, dir string) (string, error) {
	summaryPath := filepath.Join(dir, SummaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Supplier Price Loader - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Batch ID:       %s\n"+
		"  Quoted On:      %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Workbook:       %s\n"+
		"  Sheet:          %s\n\n",
		summary.BatchID,
		summary.QuotedOn.Format("2006-01-02"),
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.Workbook,
		summary.Sheet)

	if len(summary.Counts) > 0 {
		writer.WriteString("Statistics:\n")
		for _, c := range summary.Counts {
			fmt.Fprintf(writer, "  %-30s %d\n", c.Label+":", c.Value)
		}
		writer.WriteString("\n")
	}

	if len(summary.Findings) > 0 {
		writer.WriteString("Findings:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Findings {
			fmt.Fprintf(writer, "  - %s\n", f)
		}
		writer.WriteString("\n")
	}

	if len(summary.OutputFiles) > 0 {
		writer.WriteString("Output Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.OutputFiles {
			fmt.Fprintf(writer, "  %s\n", f)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

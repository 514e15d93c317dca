package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPlaceholders(t *testing.T) {
	now := time.Date(2025, time.August, 14, 22, 30, 5, 0, time.UTC)

	assert.Equal(t, "initial_migration_20250814T223005Z",
		FormatPlaceholders("initial_migration_{timestamp}", now, nil))
	assert.Equal(t, "20250814_223005_prices",
		FormatPlaceholders("{date}_{time}_{name}", now, map[string]string{"name": "prices"}))
	assert.Equal(t, "static", FormatPlaceholders("static", now, nil))
	assert.Regexp(t, regexp.MustCompile(`^b-[0-9a-f]{8}-[0-9a-f-]{27}$`), FormatPlaceholders("b-{uuid}", now, nil))
}

func TestStagingPublish(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	fm := NewFileManager(out)

	// A stale file from an earlier run is replaced, not appended to.
	require.NoError(t, fm.EnsureDirectories())
	require.NoError(t, os.WriteFile(filepath.Join(out, "products.csv"), []byte("old"), 0o644))

	dir, err := fm.BeginStaging()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.csv"), []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{}"), 0o644))

	_, err = fm.BeginStaging()
	assert.Error(t, err, "only one staging area at a time")

	published, err := fm.Publish()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "manifest.json"),
		filepath.Join(out, "products.csv"),
	}, published)

	data, err := os.ReadFile(filepath.Join(out, "products.csv"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.False(t, FileExists(dir))

	size, err := GetFileSize(filepath.Join(out, "manifest.json"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)
}

func TestStagingDiscard(t *testing.T) {
	out := t.TempDir()
	fm := NewFileManager(out)

	dir, err := fm.BeginStaging()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.csv"), []byte("partial"), 0o644))

	require.NoError(t, fm.Discard())
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(out, "products.csv")))
	assert.NoError(t, fm.Discard())

	_, err = fm.Publish()
	assert.Error(t, err)
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, time.August, 14, 9, 0, 0, 0, time.UTC)

	path, err := WriteSummaryLog(RunSummary{
		BatchID:     "initial_migration_20250814T090000Z",
		QuotedOn:    start,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Second),
		Workbook:    "prices.xlsx",
		Sheet:       "Prices",
		Counts:      []SummaryCount{{Label: "Price quotes", Value: 42}},
		Findings:    []string{"column \"Notes\" excluded: unclassifiable"},
		OutputFiles: []string{"out/price_quotes.csv"},
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, SummaryFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Batch ID:       initial_migration_20250814T090000Z")
	assert.Contains(t, text, "Quoted On:      2025-08-14")
	assert.Contains(t, text, "Duration:       2s")
	assert.Regexp(t, `Price quotes:\s+42`, text)
	assert.Contains(t, text, "  - column \"Notes\" excluded: unclassifiable")
	assert.Contains(t, text, "out/price_quotes.csv")
}

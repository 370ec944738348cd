package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"scrape", "verify", "export", "batches"} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func TestScrapeRequiredFlags(t *testing.T) {
	for _, flag := range []string{"query", "location"} {
		f := scrapeCmd.Flags().Lookup(flag)
		require.NotNil(t, f, "flag %q missing", flag)
		assert.Contains(t, f.Annotations, cobra.BashCompOneRequiredFlag, "flag %q should be required", flag)
	}
}

func TestResolveOutPath(t *testing.T) {
	dir := t.TempDir()
	cfg = &config.Config{Export: config.ExportConfig{Dir: filepath.Join(dir, "exports")}}

	got, err := resolveOutPath("leads.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "leads.csv"), got)
	assert.DirExists(t, filepath.Join(dir, "exports"))

	// Explicit paths bypass the export directory.
	explicit := filepath.Join(dir, "elsewhere", "leads.csv")
	got, err = resolveOutPath(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestFormatBatchList(t *testing.T) {
	var buf bytes.Buffer
	formatBatchList(&buf, []store.BatchInfo{
		{
			ID:             "batch-1",
			SearchQuery:    "coffee shops",
			SearchLocation: "Denver, CO",
			Source:         model.SourceYelp,
			RecordCount:    12,
			ScrapedAt:      time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		},
	})

	out := buf.String()
	assert.Contains(t, out, "batch-1")
	assert.Contains(t, out, "coffee shops")
	assert.Contains(t, out, "SYNTHETIC")
}

func TestFormatBatch(t *testing.T) {
	var buf bytes.Buffer
	formatBatch(&buf, &model.ExtractionBatch{
		ID: "batch-1",
		Records: []model.BusinessRecord{
			{Name: "Joe's Cafe", Phone: "(303) 555-0147", Rating: 4.5, SourceName: model.SourceYelp},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Joe's Cafe")
	assert.Contains(t, out, "4.5")
	assert.Contains(t, out, "1 records (batch batch-1)")
}

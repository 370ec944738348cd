// Package export writes extraction batches to CSV, JSON, and XLSX files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// header is the column order shared by the CSV and XLSX writers.
var header = []string{
	"name", "phone", "email", "address", "website", "category",
	"rating", "review_count", "price_tier", "neighborhood", "hours",
	"description", "source_url", "source_name", "search_query",
	"search_location", "scraped_at", "email_verified", "email_status",
	"email_confidence",
}

func recordRow(r model.BusinessRecord) []string {
	return []string{
		r.Name, r.Phone, r.Email, r.Address, r.Website, r.Category,
		strconv.FormatFloat(r.Rating, 'f', -1, 64),
		strconv.Itoa(r.ReviewCount),
		r.PriceTier, r.Neighborhood, r.Hours,
		r.Description, r.SourceURL, string(r.SourceName), r.SearchQuery,
		r.SearchLocation, r.ScrapedAt.UTC().Format("2006-01-02T15:04:05Z"),
		strconv.FormatBool(r.EmailVerified), string(r.EmailStatus),
		string(r.EmailConfidence),
	}
}

// WriteFile writes the batch in the format implied by the path's extension:
// .csv, .json, or .xlsx.
func WriteFile(batch *model.ExtractionBatch, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return WriteCSV(batch, path)
	case ".json":
		return WriteJSON(batch, path)
	case ".xlsx":
		return WriteXLSX(batch, path)
	default:
		return eris.Errorf("export: unsupported extension %q (valid: .csv, .json, .xlsx)", filepath.Ext(path))
	}
}

// WriteCSV writes one row per record under a fixed header.
func WriteCSV(batch *model.ExtractionBatch, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, rec := range batch.Records {
		if err := w.Write(recordRow(rec)); err != nil {
			return eris.Wrapf(err, "export: write record %q", rec.Name)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(f.Close(), "export: close csv")
}

// WriteJSON writes the whole batch, header fields included, as indented JSON.
func WriteJSON(batch *model.ExtractionBatch, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create json")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batch); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return eris.Wrap(f.Close(), "export: close json")
}

// WriteXLSX writes the records to a single-sheet spreadsheet.
func WriteXLSX(batch *model.ExtractionBatch, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, col := range header {
		headerRow.AddCell().SetString(col)
	}
	for _, rec := range batch.Records {
		row := sheet.AddRow()
		for _, val := range recordRow(rec) {
			row.AddCell().SetString(val)
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}

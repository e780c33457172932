package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-scripts/extract/internal/listing"
	"github.com/go-scripts/extract/internal/types"
)

// FormatCSV and FormatJSON are the supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// columns is the fixed CSV column order. The JSON export uses the same keys.
var columns = []string{
	"property_id",
	"listing_url",
	"address",
	"city",
	"state",
	"zipcode",
	"last_modified",
	"last_modified_local",
}

// outputRecord flattens a ListingRecord for serialization, with the localized
// timestamp pre-rendered as text.
type outputRecord struct {
	PropertyID        string `json:"property_id"`
	ListingURL        string `json:"listing_url"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	Zipcode           string `json:"zipcode"`
	LastModified      string `json:"last_modified"`
	LastModifiedLocal string `json:"last_modified_local"`
}

func flatten(r types.ListingRecord) outputRecord {
	out := outputRecord{
		PropertyID:   r.PropertyID,
		ListingURL:   r.ListingURL,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		Zipcode:      r.Zipcode,
		LastModified: r.LastModifiedRaw,
	}
	if r.LastModifiedLocal != nil {
		out.LastModifiedLocal = listing.FormatLocal(*r.LastModifiedLocal)
	}
	return out
}

// FileWriter serializes listing batches to per-category files in one output
// directory.
type FileWriter struct {
	outputDir string
	format    string
}

// New creates a FileWriter, creating the output directory if needed.
func New(outputDir, format string) (*FileWriter, error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir, format: format}, nil
}

// OutputDir returns the directory files are written into.
func (w *FileWriter) OutputDir() string {
	return w.outputDir
}

// WriteCategory writes one file for the category and returns its name.
// An empty batch writes nothing and returns an empty name.
func (w *FileWriter) WriteCategory(records []types.ListingRecord, category string) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	name := fmt.Sprintf("listings_%s_%s.%s", category, time.Now().Format("20060102_150405"), w.format)
	path := filepath.Join(w.outputDir, name)

	var err error
	switch w.format {
	case FormatCSV:
		err = writeCSV(path, records)
	default:
		err = writeJSON(path, records)
	}
	if err != nil {
		return "", err
	}

	return name, nil
}

func writeCSV(path string, records []types.ListingRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	defer cw.Flush()

	cw.Write(columns)
	for _, r := range records {
		out := flatten(r)
		cw.Write([]string{
			out.PropertyID,
			out.ListingURL,
			out.Address,
			out.City,
			out.State,
			out.Zipcode,
			out.LastModified,
			out.LastModifiedLocal,
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}

	return nil
}

func writeJSON(path string, records []types.ListingRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()

	out := make([]outputRecord, 0, len(records))
	for _, r := range records {
		out = append(out, flatten(r))
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	// Keep non-ASCII and markup characters literal in the output.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode listings: %w", err)
	}

	return nil
}

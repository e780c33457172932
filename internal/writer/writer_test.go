package writer

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/extract/internal/types"
)

func sampleRecords(t *testing.T) []types.ListingRecord {
	t.Helper()

	eastern, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	local := time.Date(2024, 1, 15, 7, 0, 0, 0, eastern)

	return []types.ListingRecord{
		{
			PropertyID:        "12345",
			ListingURL:        "https://example.com/homedetails/123-Main-St-Springfield-IL-62701/12345_zpid/",
			Address:           "123 Main St",
			City:              "Springfield IL",
			State:             "IL",
			Zipcode:           "62701",
			LastModifiedRaw:   "2024-01-15T12:00:00Z",
			LastModifiedLocal: &local,
		},
		{
			PropertyID:      "998",
			ListingURL:      "https://example.com/homedetails/9-Café-Ave-Dayton-OH-45402/998_zpid/",
			Address:         "9 Café Ave",
			City:            "Dayton OH",
			State:           "OH",
			Zipcode:         "45402",
			LastModifiedRaw: "",
		},
	}
}

func TestWriteCategoryCSV(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, FormatCSV)
	require.NoError(t, err)

	name, err := w.WriteCategory(sampleRecords(t), "for-sale-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "listings_for-sale-1_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))

	file, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"property_id", "listing_url", "address", "city", "state", "zipcode",
		"last_modified", "last_modified_local",
	}, rows[0])

	assert.Equal(t, []string{
		"12345",
		"https://example.com/homedetails/123-Main-St-Springfield-IL-62701/12345_zpid/",
		"123 Main St", "Springfield IL", "IL", "62701",
		"2024-01-15T12:00:00Z", "2024-01-15 07:00:00 EST",
	}, rows[1])

	// No localized timestamp: both time columns stay empty strings.
	assert.Equal(t, "", rows[2][6])
	assert.Equal(t, "", rows[2][7])
}

func TestWriteCategoryJSON(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, FormatJSON)
	require.NoError(t, err)

	name, err := w.WriteCategory(sampleRecords(t), "for-rent-1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".json"))

	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	// Non-ASCII characters stay literal in the output.
	assert.Contains(t, string(raw), "Café")

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, map[string]string{
		"property_id":         "12345",
		"listing_url":         "https://example.com/homedetails/123-Main-St-Springfield-IL-62701/12345_zpid/",
		"address":             "123 Main St",
		"city":                "Springfield IL",
		"state":               "IL",
		"zipcode":             "62701",
		"last_modified":       "2024-01-15T12:00:00Z",
		"last_modified_local": "2024-01-15 07:00:00 EST",
	}, decoded[0])
	assert.Equal(t, "", decoded[1]["last_modified_local"])
}

func TestCSVAndJSONCarrySameFields(t *testing.T) {
	records := sampleRecords(t)
	dir := t.TempDir()

	cw, err := New(filepath.Join(dir, "csv"), FormatCSV)
	require.NoError(t, err)
	jw, err := New(filepath.Join(dir, "json"), FormatJSON)
	require.NoError(t, err)

	csvName, err := cw.WriteCategory(records, "cat")
	require.NoError(t, err)
	jsonName, err := jw.WriteCategory(records, "cat")
	require.NoError(t, err)

	csvFile, err := os.Open(filepath.Join(dir, "csv", csvName))
	require.NoError(t, err)
	defer csvFile.Close()
	rows, err := csv.NewReader(csvFile).ReadAll()
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "json", jsonName))
	require.NoError(t, err)
	var objects []map[string]string
	require.NoError(t, json.Unmarshal(raw, &objects))

	require.Len(t, objects, len(rows)-1)
	for i, obj := range objects {
		for col, key := range rows[0] {
			assert.Equal(t, obj[key], rows[i+1][col], "field %s of record %d", key, i)
		}
	}
}

func TestWriteCategoryEmptyBatch(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, FormatCSV)
	require.NoError(t, err)

	name, err := w.WriteCategory(nil, "empty")
	require.NoError(t, err)
	assert.Empty(t, name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "an empty batch must not produce a file")
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(t.TempDir(), "xml")
	assert.Error(t, err)
}

func TestNewCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := New(dir, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, dir, w.OutputDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

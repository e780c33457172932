package listing

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// sourceLayout is the timestamp shape used in sitemap <lastmod> elements,
// after any trailing Z is stripped.
const sourceLayout = "2006-01-02T15:04:05"

var (
	easternOnce sync.Once
	easternLoc  *time.Location
	easternErr  error
)

func eastern() (*time.Location, error) {
	easternOnce.Do(func() {
		easternLoc, easternErr = time.LoadLocation("America/New_York")
	})
	return easternLoc, easternErr
}

// LocalizeTimestamp parses a UTC source timestamp and returns the same instant
// in US Eastern time. An error is non-fatal: the record keeps only the raw
// string.
func LocalizeTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	t, err := time.Parse(sourceLayout, strings.TrimSuffix(raw, "Z"))
	if err != nil {
		return time.Time{}, err
	}

	loc, err := eastern()
	if err != nil {
		return time.Time{}, err
	}

	return t.In(loc), nil
}

// FormatLocal renders a localized timestamp for output files, zone
// abbreviation included.
func FormatLocal(t time.Time) string {
	return t.Format("2006-01-02 15:04:05 MST")
}

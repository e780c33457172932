package listing

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Decoded holds the address fields recovered from a listing URL slug.
type Decoded struct {
	PropertyID string
	Address    string
	City       string
	State      string
	Zipcode    string
}

// idSuffix is the token appended to the numeric id segment of every listing URL.
const idSuffix = "_zpid"

// slugPattern matches the address segment: free-form hyphenated tokens followed
// by a two-letter state and a five-digit zip. The greedy prefix means state and
// zip are taken from the rightmost match.
var slugPattern = regexp.MustCompile(`^(.+)-([A-Z]{2})-([0-9]{5})$`)

// Decode extracts property details from a listing URL of the form
// /<section>/<address-city-state-zip-slug>/<id>_zpid/. An error means the URL
// does not follow that convention; callers skip the entry.
func Decode(listingURL string) (Decoded, error) {
	u, err := url.Parse(listingURL)
	if err != nil {
		return Decoded{}, fmt.Errorf("unparseable listing URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 {
		return Decoded{}, fmt.Errorf("listing path has %d segments, want at least 3", len(parts))
	}

	slug := parts[1]
	propertyID := strings.ReplaceAll(parts[2], idSuffix, "")
	if propertyID == "" {
		return Decoded{}, fmt.Errorf("listing path has empty property id")
	}

	m := slugPattern.FindStringSubmatch(slug)
	if m == nil {
		return Decoded{}, fmt.Errorf("address slug %q does not end in state and zip", slug)
	}

	d := Decoded{
		PropertyID: propertyID,
		State:      m[2],
		Zipcode:    m[3],
	}

	// Drop the zip and split what remains. The last two tokens are treated as
	// the city; this is a known heuristic that can misparse multi-word street
	// names, kept for compatibility with the URL convention.
	tokens := strings.Split(slug[:len(slug)-len(m[3])-1], "-")
	if len(tokens) >= 3 {
		d.City = strings.Join(tokens[len(tokens)-2:], " ")
		d.Address = strings.Join(tokens[:len(tokens)-2], " ")
	} else {
		d.Address = strings.Join(tokens, " ")
	}

	return d, nil
}

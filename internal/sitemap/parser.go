package sitemap

import (
	"encoding/xml"
	"fmt"
)

// Entry is one <url> element from a leaf sitemap. LastMod is empty when the
// document carries no <lastmod> for the entry.
type Entry struct {
	Loc     string
	LastMod string
}

type indexDoc struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

type urlsetDoc struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod"`
	} `xml:"url"`
}

// ParseIndex reads a sitemap index document and returns the child sitemap
// URLs in document order.
func ParseIndex(content string) ([]string, error) {
	var doc indexDoc
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parsing sitemap index: %w", err)
	}

	children := make([]string, 0, len(doc.Sitemaps))
	for _, sm := range doc.Sitemaps {
		if sm.Loc == "" {
			continue
		}
		children = append(children, sm.Loc)
	}

	return children, nil
}

// ParseURLSet reads a leaf sitemap document and returns its entries in
// document order. Entries without a <loc> are skipped.
func ParseURLSet(content string) ([]Entry, error) {
	var doc urlsetDoc
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parsing sitemap: %w", err)
	}

	entries := make([]Entry, 0, len(doc.URLs))
	for _, u := range doc.URLs {
		if u.Loc == "" {
			continue
		}
		entries = append(entries, Entry{Loc: u.Loc, LastMod: u.LastMod})
	}

	return entries, nil
}

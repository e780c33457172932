package sitemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIndexXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/for-sale-1.xml.gz</loc></sitemap>
  <sitemap><loc>https://example.com/for-sale-2.xml.gz</loc></sitemap>
  <sitemap><loc>https://example.com/for-rent-1.xml.gz</loc></sitemap>
</sitemapindex>`

const testLeafXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url>
    <loc>https://example.com/homedetails/123-Main-St-Springfield-IL-62701/12345_zpid/</loc>
    <lastmod>2024-01-15T12:00:00Z</lastmod>
  </url>
  <url>
    <loc>https://example.com/homedetails/9-Oak-Ave-Dayton-OH-45402/998_zpid/</loc>
  </url>
  <url>
    <lastmod>2024-02-01T00:00:00Z</lastmod>
  </url>
</urlset>`

func TestParseIndex(t *testing.T) {
	children, err := ParseIndex(testIndexXML)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/for-sale-1.xml.gz",
		"https://example.com/for-sale-2.xml.gz",
		"https://example.com/for-rent-1.xml.gz",
	}, children)
}

func TestParseURLSet(t *testing.T) {
	entries, err := ParseURLSet(testLeafXML)
	require.NoError(t, err)

	// The third <url> has no <loc> and must be skipped; order is preserved.
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{
		Loc:     "https://example.com/homedetails/123-Main-St-Springfield-IL-62701/12345_zpid/",
		LastMod: "2024-01-15T12:00:00Z",
	}, entries[0])
	assert.Equal(t, Entry{
		Loc:     "https://example.com/homedetails/9-Oak-Ave-Dayton-OH-45402/998_zpid/",
		LastMod: "",
	}, entries[1])
}

func TestParseMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "truncated document", content: "<urlset><url><loc>https://example.com</loc>"},
		{name: "not xml at all", content: "503 Service Unavailable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, leafErr := ParseURLSet(tc.content)
			assert.Error(t, leafErr)

			_, indexErr := ParseIndex(tc.content)
			assert.Error(t, indexErr)
		})
	}
}

func TestParseWrongDocumentKind(t *testing.T) {
	// A leaf document handed to the index parser is a parse failure, and
	// vice versa.
	_, err := ParseIndex(testLeafXML)
	assert.Error(t, err)

	_, err = ParseURLSet(testIndexXML)
	assert.Error(t, err)
}

func TestParseEmptyDocuments(t *testing.T) {
	children, err := ParseIndex(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></sitemapindex>`)
	require.NoError(t, err)
	assert.Empty(t, children)

	entries, err := ParseURLSet(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

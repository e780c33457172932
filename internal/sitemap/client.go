package sitemap

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// botAgents are rotated per request. Sitemap endpoints tend to allow crawler
// user agents while filtering generic clients, so we identify as one.
var botAgents = []string{
	"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	"Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko; compatible; Googlebot/2.1; +http://www.google.com/bot.html) Safari/537.36",
}

// Client downloads sitemap documents. A failed fetch is not retried; the
// caller treats the sitemap as empty.
type Client struct {
	http *http.Client
}

// NewClient creates a Client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch performs a GET for the given sitemap URL and returns the document
// text, transparently decompressing gzip bodies. Bodies that are not gzip are
// returned as-is.
func (c *Client) Fetch(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", botAgents[rand.Intn(len(botAgents))])

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		// Not gzip-encoded, use the body as plain text.
		return string(body), nil
	}
	defer gz.Close()

	decoded, err := io.ReadAll(gz)
	if err != nil {
		return string(body), nil
	}

	return string(decoded), nil
}

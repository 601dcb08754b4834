// Package source implements per-site article extraction from HTML
// listing pages and article pages.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"news_bot/internal/model"
)

// NoContent is returned by FetchSummary when no usable paragraph was
// found on the article page. It is a valid outcome, not an error: the
// article is still posted, with this notice as its description.
const NoContent = "No content available."

// Some sites return 403 for default Go user agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Paragraphs shorter than this are treated as captions or boilerplate by
// the generic summary fallback rule.
const minSummaryLen = 80

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Extractor lists candidate articles from a source's listing pages and
// extracts article summaries on demand.
type Extractor interface {
	Kind() model.FeedKind
	// ListCandidates returns the articles currently on the listing
	// pages, in listing order, with empty summaries.
	ListCandidates(ctx context.Context) ([]model.Article, error)
	// FetchSummary returns a short text snippet for an article page, or
	// NoContent when the page yields nothing usable.
	FetchSummary(ctx context.Context, link string) (string, error)
}

// Fetcher downloads and parses HTML pages for the extractors.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// NewFetcher creates a Fetcher with the given HTTP client.
func NewFetcher(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// Get fetches url and parses it as an HTML document.
func (f *Fetcher) Get(ctx context.Context, url string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// AbsoluteURL prefixes a site-relative path (leading "/") with the
// source origin. Absolute URLs pass through unchanged.
func AbsoluteURL(origin, href string) string {
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(origin, "/") + href
	}
	return href
}

var thumbSuffix = regexp.MustCompile(`-\d+x\d+(\.[a-zA-Z0-9]+)$`)

// NormalizeImageURL strips a trailing -<width>x<height> thumbnail suffix
// from the file name, yielding the full-resolution asset URL.
func NormalizeImageURL(u string) string {
	return thumbSuffix.ReplaceAllString(u, "$1")
}

// Known content-body containers tried by the second summary rule.
var contentContainers = []string{
	".entry-content",
	".article-content",
	".post-content",
	"main",
}

// extractSummary applies the summary fallback chain to an article page,
// stopping at the first rule that yields non-empty text:
//
//  1. first paragraph inside the first top-level article container;
//  2. first paragraph inside a known content-body container;
//  3. first paragraph anywhere whose trimmed text is long enough to not
//     be a caption.
func extractSummary(doc *goquery.Document) string {
	if p := firstParagraph(doc.Find("article").First()); p != "" {
		return p
	}

	for _, sel := range contentContainers {
		if p := firstParagraph(doc.Find(sel).First()); p != "" {
			return p
		}
	}

	var long string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := strings.TrimSpace(s.Text()); len(text) > minSummaryLen {
			long = text
			return false
		}
		return true
	})
	if long != "" {
		return long
	}

	return NoContent
}

func firstParagraph(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(s.Find("p").First().Text())
}

package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"news_bot/internal/model"
)

// TCG extracts trading-card-game news. Listing pages mark article cards
// with an "article" element whose class contains "block".
type TCG struct {
	fetcher *Fetcher
	origin  string
	urls    []string
}

// NewTCG creates the TCG news extractor. origin is the site root used to
// absolutize relative links; urls are the listing pages to scan.
func NewTCG(fetcher *Fetcher, origin string, urls []string) *TCG {
	return &TCG{fetcher: fetcher, origin: origin, urls: urls}
}

// Kind returns the feed kind served by this extractor.
func (t *TCG) Kind() model.FeedKind { return model.FeedTCG }

// ListCandidates scans the listing pages for article cards.
func (t *TCG) ListCandidates(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	var errs []error
	for _, url := range t.urls {
		doc, err := t.fetcher.Get(ctx, url)
		if err != nil {
			// A broken listing page must not hide the others.
			errs = append(errs, fmt.Errorf("fetch listing %s: %w", url, err))
			continue
		}

		doc.Find("article").Each(func(_ int, s *goquery.Selection) {
			class, _ := s.Attr("class")
			if !strings.Contains(class, "block") {
				return
			}

			title := strings.TrimSpace(s.Find("h2").First().Text())
			href, _ := s.Find("a").First().Attr("href")
			if title == "" || href == "" {
				// Partial cards are noise, not errors.
				return
			}

			img, _ := s.Find("img").First().Attr("src")
			articles = append(articles, model.Article{
				Title:    title,
				Link:     AbsoluteURL(t.origin, href),
				ImageURL: NormalizeImageURL(AbsoluteURL(t.origin, img)),
			})
		})
	}
	return articles, errors.Join(errs...)
}

// FetchSummary extracts a snippet from an article page.
func (t *TCG) FetchSummary(ctx context.Context, link string) (string, error) {
	doc, err := t.fetcher.Get(ctx, link)
	if err != nil {
		return "", fmt.Errorf("fetch article %s: %w", link, err)
	}
	return extractSummary(doc), nil
}

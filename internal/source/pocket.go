package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"news_bot/internal/model"
)

// Pocket extracts companion-app news. Listing cards are article elements
// with a "preview" class; titles and links carry their own class marks.
type Pocket struct {
	fetcher *Fetcher
	origin  string
	urls    []string
}

// NewPocket creates the companion-app news extractor.
func NewPocket(fetcher *Fetcher, origin string, urls []string) *Pocket {
	return &Pocket{fetcher: fetcher, origin: origin, urls: urls}
}

// Kind returns the feed kind served by this extractor.
func (p *Pocket) Kind() model.FeedKind { return model.FeedPocket }

// ListCandidates scans the listing pages for article preview cards.
func (p *Pocket) ListCandidates(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	var errs []error
	for _, url := range p.urls {
		doc, err := p.fetcher.Get(ctx, url)
		if err != nil {
			// A broken listing page must not hide the others.
			errs = append(errs, fmt.Errorf("fetch listing %s: %w", url, err))
			continue
		}

		doc.Find("article[class*='preview']").Each(func(_ int, s *goquery.Selection) {
			title := strings.TrimSpace(s.Find("h2[class*='title']").First().Text())
			href, _ := s.Find("a[class*='poster']").First().Attr("href")
			if title == "" || href == "" {
				return
			}

			img, _ := s.Find("img").First().Attr("src")
			articles = append(articles, model.Article{
				Title:    title,
				Link:     AbsoluteURL(p.origin, href),
				ImageURL: NormalizeImageURL(AbsoluteURL(p.origin, img)),
			})
		})
	}
	return articles, errors.Join(errs...)
}

// FetchSummary extracts a snippet from an article page.
func (p *Pocket) FetchSummary(ctx context.Context, link string) (string, error) {
	doc, err := p.fetcher.Get(ctx, link)
	if err != nil {
		return "", fmt.Errorf("fetch article %s: %w", link, err)
	}
	return extractSummary(doc), nil
}

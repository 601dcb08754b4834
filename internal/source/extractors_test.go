package source

import (
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"news_bot/internal/model"
)

func TestTCGListCandidates(t *testing.T) {
	listing := "https://cards.example.com/"
	client := &mockClient{pages: map[string]string{listing: loadFixture(t, "tcg_listing.html")}}
	ext := NewTCG(NewFetcher(client), "https://cards.example.com", []string{listing})

	got, err := ext.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}

	// Cards without title or link are skipped; non-block articles too.
	want := []model.Article{
		{
			Title:    "New Set Revealed",
			Link:     "https://cards.example.com/news/new-set-revealed",
			ImageURL: "https://cards.example.com/images/set.jpg",
		},
		{
			Title:    "Tournament Results",
			Link:     "https://cards.example.com/news/tournament-results",
			ImageURL: "https://cdn.example.com/tourney.png",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}
}

func TestTCGListingPageFailureKeepsOthers(t *testing.T) {
	pageOne := "https://cards.example.com/"
	pageTwo := "https://cards.example.com/news"
	// Page one is missing and fetches as an error; page two is healthy.
	client := &mockClient{pages: map[string]string{
		pageTwo: `<article class="block"><h2>Two</h2><a href="/two"></a></article>`,
	}}
	ext := NewTCG(NewFetcher(client), "https://cards.example.com", []string{pageOne, pageTwo})

	got, err := ext.ListCandidates(context.Background())
	if err == nil {
		t.Fatal("expected an error for the broken page")
	}

	want := []model.Article{
		{Title: "Two", Link: "https://cards.example.com/two"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}
}

func TestPocketListingPageFailureKeepsOthers(t *testing.T) {
	pageOne := "https://zone.example.com/"
	pageTwo := "https://zone.example.com/news"
	client := &mockClient{pages: map[string]string{
		pageTwo: `<article class="preview-card"><h2 class="title">Two</h2><a class="poster" href="/two"></a></article>`,
	}}
	ext := NewPocket(NewFetcher(client), "https://zone.example.com", []string{pageOne, pageTwo})

	got, err := ext.ListCandidates(context.Background())
	if err == nil {
		t.Fatal("expected an error for the broken page")
	}

	want := []model.Article{
		{Title: "Two", Link: "https://zone.example.com/two"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}
}

func TestTCGListCandidatesFetchError(t *testing.T) {
	tests := []struct {
		name   string
		client *mockClient
	}{
		{
			name:   "forbidden",
			client: &mockClient{pages: map[string]string{"https://cards.example.com/": "nope"}, statusCode: 403},
		},
		{
			name:   "transport error",
			client: &mockClient{err: io.ErrUnexpectedEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := NewTCG(NewFetcher(tt.client), "https://cards.example.com", []string{"https://cards.example.com/"})
			got, err := ext.ListCandidates(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if len(got) != 0 {
				t.Errorf("expected no articles on fetch failure, got %d", len(got))
			}
		})
	}
}

func TestPocketListCandidates(t *testing.T) {
	listing := "https://zone.example.com/"
	client := &mockClient{pages: map[string]string{listing: loadFixture(t, "pocket_listing.html")}}
	ext := NewPocket(NewFetcher(client), "https://zone.example.com", []string{listing})

	got, err := ext.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}

	want := []model.Article{
		{
			Title:    "App Update 2.0",
			Link:     "https://zone.example.com/articles/app-update-2-0",
			ImageURL: "https://zone.example.com/media/update.png",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractorKinds(t *testing.T) {
	f := NewFetcher(&mockClient{})
	if got := NewTCG(f, "", nil).Kind(); got != model.FeedTCG {
		t.Errorf("tcg kind mismatch: %v", got)
	}
	if got := NewPocket(f, "", nil).Kind(); got != model.FeedPocket {
		t.Errorf("pocket kind mismatch: %v", got)
	}
}

func TestTCGMultipleListingPages(t *testing.T) {
	pageOne := "https://cards.example.com/"
	pageTwo := "https://cards.example.com/news"
	client := &mockClient{pages: map[string]string{
		pageOne: `<article class="block"><h2>One</h2><a href="/one"></a></article>`,
		pageTwo: `<article class="block"><h2>Two</h2><a href="/two"></a></article>`,
	}}
	ext := NewTCG(NewFetcher(client), "https://cards.example.com", []string{pageOne, pageTwo})

	got, err := ext.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}

	want := []model.Article{
		{Title: "One", Link: "https://cards.example.com/one"},
		{Title: "Two", Link: "https://cards.example.com/two"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("articles mismatch (-want +got):\n%s", diff)
	}
}

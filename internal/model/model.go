// Package model defines the domain types used across the application.
package model

// FeedKind identifies a named content source category. Each kind has its
// own listing URLs and its own per-guild configuration namespace.
type FeedKind string

// Supported feed kinds.
const (
	FeedTCG    FeedKind = "tcg"
	FeedPocket FeedKind = "pocket"
)

// Valid reports whether k is a known feed kind.
func (k FeedKind) Valid() bool {
	return k == FeedTCG || k == FeedPocket
}

// Article is a single scraped article. Link is the canonical article URL
// and serves as the deduplication identity; only the link is ever
// persisted. Summary is filled lazily, just before posting.
type Article struct {
	Title    string
	Link     string
	ImageURL string
	Summary  string
}

// FeedTarget is a guild's delivery destination for one feed kind.
// RoleID is empty when no role should be mentioned.
type FeedTarget struct {
	GuildID   string
	Kind      FeedKind
	ChannelID string
	RoleID    string
}

// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"news_bot/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	// MarkPosted records a delivered article link. Inserting a link that
	// is already present is a no-op, not an error.
	MarkPosted(ctx context.Context, link string) error
	// LoadPostedLinks returns the full set of delivered links in a
	// single round trip.
	LoadPostedLinks(ctx context.Context) (map[string]struct{}, error)

	// SetFeedTarget upserts a guild's destination channel and mention
	// role for one feed kind; both fields are replaced as a unit.
	SetFeedTarget(ctx context.Context, target *model.FeedTarget) error
	// GetFeedTarget returns (nil, nil) when the guild has no target
	// configured for the feed kind.
	GetFeedTarget(ctx context.Context, guildID string, kind model.FeedKind) (*model.FeedTarget, error)
	ListFeedTargets(ctx context.Context, kind model.FeedKind) ([]model.FeedTarget, error)

	SetPattern(ctx context.Context, guildID, pattern string) error
	// GetPattern returns "" when no pattern is configured.
	GetPattern(ctx context.Context, guildID string) (string, error)
	RemovePattern(ctx context.Context, guildID string) error

	AddIgnoredChannel(ctx context.Context, guildID, channelID string) error
	RemoveIgnoredChannel(ctx context.Context, guildID, channelID string) error
	ListIgnoredChannels(ctx context.Context, guildID string) ([]string, error)

	Close() error
}

// Package responder implements the per-guild pattern auto-responder.
package responder

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"news_bot/internal/storage"
)

// DefaultReply is the canned response sent when a message matches a
// guild's configured pattern.
const DefaultReply = "Hey! It looks like you're trying to trade. Please use the dedicated trading channels; an ignored-channel list is configured by your server admins."

// Responder evaluates inbound messages against a guild's stored pattern.
// It holds no state between messages; pattern and ignore-set changes
// take effect on the very next message.
type Responder struct {
	store storage.Storage
	log   *slog.Logger
	reply string
}

// New creates a Responder using DefaultReply.
func New(store storage.Storage, log *slog.Logger) *Responder {
	return &Responder{store: store, log: log, reply: DefaultReply}
}

// Reply returns the canned reply for a message, and whether one should
// be sent. parentChannelID is the containing channel for thread
// messages, or "" otherwise; ignored channels suppress replies for their
// threads too.
func (r *Responder) Reply(ctx context.Context, guildID, channelID, parentChannelID, text string) (string, bool) {
	ignored, err := r.store.ListIgnoredChannels(ctx, guildID)
	if err != nil {
		r.log.Error("list ignored channels", "guild", guildID, "error", err)
		return "", false
	}
	for _, id := range ignored {
		if id == channelID || (parentChannelID != "" && id == parentChannelID) {
			return "", false
		}
	}

	pattern, err := r.store.GetPattern(ctx, guildID)
	if err != nil {
		r.log.Error("get pattern", "guild", guildID, "error", err)
		return "", false
	}
	if pattern == "" {
		return "", false
	}

	// Validity is enforced when the pattern is set; a stored pattern
	// that no longer compiles must not crash the responder.
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		r.log.Warn("stored pattern does not compile", "guild", guildID, "error", err)
		return "", false
	}
	if !re.MatchString(text) {
		return "", false
	}
	return r.reply, true
}

// ValidatePattern checks whether a pattern is a valid regular expression.
// Called at configuration time so invalid patterns are rejected up front.
func ValidatePattern(pattern string) error {
	if _, err := regexp.Compile("(?i)" + pattern); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	return nil
}

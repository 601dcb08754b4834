package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"news_bot/internal/model"
	"news_bot/migrations"
)

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// MarkPosted records a delivered article link. Duplicate inserts are no-ops.
func (s *SQLite) MarkPosted(ctx context.Context, link string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO posted_articles (link) VALUES (?)`, link,
	)
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	return nil
}

// LoadPostedLinks returns the set of all delivered article links.
func (s *SQLite) LoadPostedLinks(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT link FROM posted_articles`)
	if err != nil {
		return nil, fmt.Errorf("query posted articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	links := make(map[string]struct{})
	for rows.Next() {
		var link string
		if err := rows.Scan(&link); err != nil {
			return nil, fmt.Errorf("scan posted link: %w", err)
		}
		links[link] = struct{}{}
	}
	return links, rows.Err()
}

// SetFeedTarget upserts the destination channel and mention role for a
// guild and feed kind.
func (s *SQLite) SetFeedTarget(ctx context.Context, target *model.FeedTarget) error {
	var role sql.NullString
	if target.RoleID != "" {
		role = sql.NullString{String: target.RoleID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feed_targets (guild_id, kind, channel_id, role_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT(guild_id, kind) DO UPDATE SET channel_id = excluded.channel_id, role_id = excluded.role_id`,
		target.GuildID, string(target.Kind), target.ChannelID, role,
	)
	if err != nil {
		return fmt.Errorf("set feed target: %w", err)
	}
	return nil
}

// GetFeedTarget returns the target for a guild and feed kind, or
// (nil, nil) when none is configured.
func (s *SQLite) GetFeedTarget(ctx context.Context, guildID string, kind model.FeedKind) (*model.FeedTarget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT guild_id, kind, channel_id, role_id FROM feed_targets WHERE guild_id = ? AND kind = ?`,
		guildID, string(kind),
	)
	t, err := scanTarget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// ListFeedTargets returns all guild targets configured for a feed kind.
func (s *SQLite) ListFeedTargets(ctx context.Context, kind model.FeedKind) ([]model.FeedTarget, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guild_id, kind, channel_id, role_id FROM feed_targets WHERE kind = ? ORDER BY guild_id`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query feed targets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var targets []model.FeedTarget
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		targets = append(targets, *t)
	}
	return targets, rows.Err()
}

// SetPattern upserts a guild's auto-responder pattern.
func (s *SQLite) SetPattern(ctx context.Context, guildID, pattern string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patterns (guild_id, pattern) VALUES (?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET pattern = excluded.pattern`,
		guildID, pattern,
	)
	if err != nil {
		return fmt.Errorf("set pattern: %w", err)
	}
	return nil
}

// GetPattern returns a guild's pattern, or "" when none is configured.
func (s *SQLite) GetPattern(ctx context.Context, guildID string) (string, error) {
	var pattern string
	err := s.db.QueryRowContext(ctx,
		`SELECT pattern FROM patterns WHERE guild_id = ?`, guildID,
	).Scan(&pattern)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pattern: %w", err)
	}
	return pattern, nil
}

// RemovePattern deletes a guild's pattern. Removing an absent pattern is a no-op.
func (s *SQLite) RemovePattern(ctx context.Context, guildID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM patterns WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("remove pattern: %w", err)
	}
	return nil
}

// AddIgnoredChannel exempts a channel from pattern matching. Idempotent.
func (s *SQLite) AddIgnoredChannel(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO ignored_channels (guild_id, channel_id) VALUES (?, ?)`,
		guildID, channelID,
	)
	if err != nil {
		return fmt.Errorf("add ignored channel: %w", err)
	}
	return nil
}

// RemoveIgnoredChannel removes a channel exemption. Removing an absent
// member is a no-op.
func (s *SQLite) RemoveIgnoredChannel(ctx context.Context, guildID, channelID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM ignored_channels WHERE guild_id = ? AND channel_id = ?`,
		guildID, channelID,
	)
	if err != nil {
		return fmt.Errorf("remove ignored channel: %w", err)
	}
	return nil
}

// ListIgnoredChannels returns the channels exempt from pattern matching.
func (s *SQLite) ListIgnoredChannels(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel_id FROM ignored_channels WHERE guild_id = ? ORDER BY channel_id`,
		guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("query ignored channels: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var channels []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ignored channel: %w", err)
		}
		channels = append(channels, id)
	}
	return channels, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTarget(row scannable) (*model.FeedTarget, error) {
	var t model.FeedTarget
	var kind string
	var role sql.NullString
	err := row.Scan(&t.GuildID, &kind, &t.ChannelID, &role)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan feed target: %w", err)
	}
	t.Kind = model.FeedKind(kind)
	if role.Valid {
		t.RoleID = role.String
	}
	return &t, nil
}

// Package migrations embeds the bot's schema migration files. The bot
// applies them on startup through Run; cmd/migrate uses the same files
// for manual schema operations.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Dialect is the goose dialect for the modernc sqlite driver.
const Dialect = "sqlite3"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS

// Run brings the database schema up to date.
func Run(db *sql.DB) error {
	goose.SetBaseFS(FS)

	if err := goose.SetDialect(Dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

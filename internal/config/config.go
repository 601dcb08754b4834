// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Default listing URLs per feed kind.
const (
	defaultTCGURL    = "https://www.pokebeach.com/"
	defaultPocketURL = "https://www.pokemon-zone.com/"
)

// Config holds the application configuration.
type Config struct {
	DiscordBotToken string
	DatabasePath    string
	LogLevel        string
	TCGURLs         []string
	PocketURLs      []string
	CheckInterval   int // minutes
	UpdateCooldown  int // seconds, per user, for /update
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/bot.db"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	interval, err := intEnv("CHECK_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	if interval < 1 || interval > 1440 {
		return nil, fmt.Errorf("CHECK_INTERVAL_MINUTES must be between 1 and 1440, got %d", interval)
	}

	cooldown, err := intEnv("UPDATE_COOLDOWN_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if cooldown < 0 {
		return nil, fmt.Errorf("UPDATE_COOLDOWN_SECONDS must not be negative, got %d", cooldown)
	}

	return &Config{
		DiscordBotToken: token,
		DatabasePath:    dbPath,
		LogLevel:        logLevel,
		TCGURLs:         urlList("TCG_URLS", defaultTCGURL),
		PocketURLs:      urlList("POCKET_URLS", defaultPocketURL),
		CheckInterval:   interval,
		UpdateCooldown:  cooldown,
	}, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func urlList(key, def string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return []string{def}
	}
	var urls []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		urls = append(urls, s)
	}
	if len(urls) == 0 {
		return []string{def}
	}
	return urls
}

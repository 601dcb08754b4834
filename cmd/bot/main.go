package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"news_bot/internal/bot"
	"news_bot/internal/config"
	"news_bot/internal/pipeline"
	"news_bot/internal/scheduler"
	"news_bot/internal/source"
	"news_bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	b, err := bot.New(cfg.DiscordBotToken, store, cfg, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	fetcher := source.NewFetcher(http.DefaultClient)
	pipe := pipeline.New(store, b, log,
		source.NewTCG(fetcher, origin(cfg.TCGURLs[0]), cfg.TCGURLs),
		source.NewPocket(fetcher, origin(cfg.PocketURLs[0]), cfg.PocketURLs),
	)
	b.SetDispatcher(pipe)

	sched := scheduler.New(pipe, log, time.Duration(cfg.CheckInterval)*time.Minute)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot")

	go sched.Run(ctx)

	if err := b.Run(ctx); err != nil {
		log.Error("run bot", "error", err)
		os.Exit(1)
	}

	log.Info("bot stopped")
}

// origin reduces a listing URL to its scheme://host root.
func origin(u string) string {
	rest, ok := strings.CutPrefix(u, "https://")
	scheme := "https://"
	if !ok {
		rest, _ = strings.CutPrefix(u, "http://")
		scheme = "http://"
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return scheme + rest
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

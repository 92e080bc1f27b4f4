package cmd

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/technicalserena/tunegram/internal/archive"
	"github.com/technicalserena/tunegram/internal/bot"
	"github.com/technicalserena/tunegram/internal/config"
	"github.com/technicalserena/tunegram/internal/download"
	"github.com/technicalserena/tunegram/internal/gate"
	"github.com/technicalserena/tunegram/internal/search"
	"github.com/technicalserena/tunegram/internal/store"
	"github.com/technicalserena/tunegram/internal/store/pg"
	"github.com/technicalserena/tunegram/internal/store/sqlite"
	"github.com/technicalserena/tunegram/internal/telemetry"
)

func runBot() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	stores, db, err := openStores(cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	shutdownTelemetry, err := telemetry.Init(context.Background(), cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	g := gate.New(stores.Users, cfg.Bot.Cooldown())
	searcher := search.New(cfg.Search.APIKey, cfg.Search.BaseURL)
	resolver := archive.NewResolver(stores.Archive, cfg.Archive.ScanWindow)
	extractor := download.NewYTDLP(cfg.Download.YtdlpPath, cfg.Download.TempDir, cfg.Download.AudioBitrate)

	b, err := bot.New(*cfg, stores, g, searcher, resolver, extractor)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := b.Start(ctx); err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("graceful shutdown initiated", "signal", sig)

	if err := b.Stop(context.Background()); err != nil {
		slog.Warn("bot stop failed", "error", err)
	}
	cancel()
}

// openStores selects the backend: Postgres when a DSN is configured,
// SQLite on local disk otherwise.
func openStores(cfg *config.Config) (*store.Stores, *sql.DB, error) {
	if cfg.Database.PostgresDSN != "" {
		slog.Info("using postgres store")
		return pg.NewStores(cfg.Database.PostgresDSN)
	}
	slog.Info("using sqlite store", "path", cfg.Database.Path)
	return sqlite.NewStores(cfg.Database.Path)
}

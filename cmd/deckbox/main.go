package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/jtkearn/deckbox/internal/config"
	"github.com/jtkearn/deckbox/internal/domain"
	"github.com/jtkearn/deckbox/internal/importer"
	"github.com/jtkearn/deckbox/internal/queue"
	"github.com/jtkearn/deckbox/internal/srs"
	"github.com/jtkearn/deckbox/internal/storage"
	enginesync "github.com/jtkearn/deckbox/internal/sync"
	"github.com/jtkearn/deckbox/internal/web"
)

func main() {
	defaults := config.Default()

	flags := pflag.NewFlagSet("deckbox", pflag.ExitOnError)
	configPath := flags.String("config", "deckbox.yaml", "Path to the YAML config file")
	syncOnce := flags.Bool("sync", false, "Run one import sync and exit")
	flags.String("db_path", defaults.DBPath, "Path to the SQLite database file")
	flags.String("profile", defaults.Profile, "Learner profile id")
	flags.String("listen", defaults.Listen, "HTTP listen address")
	flags.String("source.type", defaults.Source.Type, "Deck source type: file, http or git")
	flags.String("source.location", defaults.Source.Location, "Deck file path, URL, or git clone URL")
	flags.String("source.csv_path", defaults.Source.CSVPath, "CSV path inside a git deck repository")
	flags.String("source.cache_dir", defaults.Source.CacheDir, "Checkout directory for git deck sources")
	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	source := importer.Source{
		Kind:     importer.SourceKind(cfg.Source.Type),
		Location: cfg.Source.Location,
		CSVPath:  cfg.Source.CSVPath,
		CacheDir: cfg.Source.CacheDir,
	}

	engine := enginesync.NewEngine(db)

	if *syncOnce {
		rows, err := importer.Load(context.Background(), source)
		if err != nil {
			slog.Error("import failed", "source", cfg.Source.Location, "error", err)
			os.Exit(1)
		}
		res, err := engine.PerformSync(rows)
		if err != nil {
			slog.Error("sync failed", "error", err)
			os.Exit(1)
		}
		slog.Info("sync finished",
			"added", res.Added,
			"updated", res.Updated,
			"archived", res.Archived,
		)
		return
	}

	ladder := srs.DefaultLadder()
	if len(cfg.Ladder) > 0 {
		ladder = srs.Ladder(cfg.Ladder)
	}

	builder := queue.NewBuilder(db, nil)
	server := web.NewServer(db, engine, builder, ladder,
		func(r *http.Request) ([]domain.Row, error) {
			return importer.Load(r.Context(), source)
		})

	slog.Info("listening", "addr", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, server); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

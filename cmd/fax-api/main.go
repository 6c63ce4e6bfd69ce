package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/fax-api/internal/config"
	"github.com/ahmethakanbesel/fax-api/internal/faxjob"
	"github.com/ahmethakanbesel/fax-api/internal/platform/postgres"
	"github.com/ahmethakanbesel/fax-api/internal/platform/sqlite"
	faxjobrepo "github.com/ahmethakanbesel/fax-api/internal/repository/faxjob"
	"github.com/ahmethakanbesel/fax-api/internal/server"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Cancelled on SIGINT/SIGTERM; request contexts derive from it.
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, db, closeDB, err := openStore(rootCtx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer closeDB()

	jobSvc := faxjob.NewService(repo)

	// Jobs left processing by a crashed sender go back to the queue.
	if err := jobSvc.RecoverStaleJobs(rootCtx); err != nil {
		slog.Error("failed to recover stale jobs", "error", err)
	}

	srv := server.New(rootCtx, cfg.Port, jobSvc, db)

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("server started", "port", cfg.Port, "driver", cfg.DBDriver)
	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (faxjob.Repository, server.HealthChecker, func(), error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:         cfg.DatabaseURL,
			MaxConns:    int32(cfg.DBMaxConns), //nolint:gosec // bounded by config parsing
			MinConns:    int32(cfg.DBMinConns), //nolint:gosec // bounded by config parsing
			DialTimeout: cfg.DBDialTimeout,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return faxjobrepo.NewRepositoryPG(db.Pool), db, db.Close, nil
	default:
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return faxjobrepo.NewRepository(db.DB), db, func() { _ = db.Close() }, nil
	}
}

func setupLogger(cfg config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
	"github.com/playperu/bollyquiz/internal/config"
	"github.com/playperu/bollyquiz/internal/database"
	"github.com/playperu/bollyquiz/internal/handler/health"
	"github.com/playperu/bollyquiz/internal/metrics"
	"github.com/playperu/bollyquiz/internal/migrations"
	"github.com/playperu/bollyquiz/internal/questions"
	"github.com/playperu/bollyquiz/internal/server"
)

// questionsCheckTTL bounds how often /healthz loads questions; in sheet mode
// a load is a fetch.
const questionsCheckTTL = time.Minute

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Questions ---
	rec := metrics.NewRecorder()
	src, err := questionSource(cfg, db, rec, logger)
	if err != nil {
		return fmt.Errorf("building question source: %w", err)
	}
	provider := questions.NewProvider(src, logger)
	logger.Info("question source ready", "source", cfg.QuestionSource, "kind", cfg.QuestionKind)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Options{
		Provider:         provider,
		Metrics:          rec,
		Filtered:         cfg.QuestionKind == bollyquiz.KindHint,
		CelebrationDelay: cfg.CelebrationDelay,
		PublicURL:        cfg.PublicURL,
		SPADir:           cfg.SPADir,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
			"sqlite": dbChecker{db},
			"questions": health.Cached(health.CheckerFunc(func(ctx context.Context) error {
				_, err := provider.Categories(ctx)
				return err
			}), questionsCheckTTL),
		}).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return srv.Games().RunReaper(gctx, cfg.SessionTTL)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// questionSource builds the configured source. A sheet is fetched with
// retries, cached in sqlite and backed by the built-in hint questions.
func questionSource(cfg *config.Config, db *sql.DB, rec *metrics.Recorder, logger *slog.Logger) (questions.Source, error) {
	builtin, err := questions.Builtin(cfg.QuestionKind)
	if err != nil {
		return nil, err
	}
	fallback := questions.Instrument("builtin", builtin, rec.ObserveLoad)
	if cfg.QuestionSource == config.SourceStatic {
		return fallback, nil
	}

	sheet := questions.NewSheetSource(cfg.SheetURL, logger, questions.WithFetchTimeout(cfg.FetchTimeout))
	var primary questions.Source = questions.Instrument("sheet", sheet, rec.ObserveLoad)
	primary = questions.NewRetryingSource(primary, logger, cfg.FetchRetries, 0)
	primary = questions.NewCacheSource(primary, db, cfg.SheetURL, logger)
	return questions.NewFallbackSource(primary, fallback, logger), nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

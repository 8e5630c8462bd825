package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spraakbanken/saldowsd/internal/adapter/postgres"
	"github.com/spraakbanken/saldowsd/internal/adapter/postgres/lexstore"
	"github.com/spraakbanken/saldowsd/internal/config"
	"github.com/spraakbanken/saldowsd/internal/saldo"
	"github.com/spraakbanken/saldowsd/internal/source"
	"github.com/spraakbanken/saldowsd/internal/transport/rest"
)

// ErrNoLexiconPath is returned when no SALDO file was configured.
var ErrNoLexiconPath = errors.New("lexicon path not configured (set SALDO_PATH or --saldo)")

// LoadLexicon loads the configured SALDO file.
func LoadLexicon(ctx context.Context, cfg config.LexiconConfig, logger *slog.Logger, stats *saldo.Stats) (*saldo.Lexicon, error) {
	if cfg.Path == "" {
		return nil, ErrNoLexiconPath
	}
	format, err := source.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return saldo.Load(ctx, cfg.Path,
		saldo.WithRoot(saldo.EntryID(cfg.Root)),
		saldo.WithFormat(format),
		saldo.WithLogger(logger),
		saldo.WithStats(stats),
	)
}

// Serve runs the lookup API until ctx is canceled. The listener comes up
// first so probes answer while the lexicon loads; /ready turns 200 once it
// is in place. With a database configured, lookups made during the load are
// answered from the latest stored snapshot. A failed load stops the server.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Lexicon.Path == "" {
		return ErrNoLexiconPath
	}

	logger.Info("starting server",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	var (
		db interface {
			Ping(ctx context.Context) error
		}
		store rest.SnapshotStore
	)
	if cfg.Database.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		repo := lexstore.New(pool)
		db, store = repo, repo
	}

	holder := &LexiconHolder{}
	router := rest.NewRouter(
		rest.NewHealthHandler(holder, db, Version),
		rest.NewLexiconHandler(holder, store, logger),
		logger,
	)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	return serve(ctx, srv, ln, holder, func(ctx context.Context) (*saldo.Lexicon, error) {
		return LoadLexicon(ctx, cfg.Lexicon, logger, nil)
	}, cfg.Server.ShutdownTimeout, logger)
}

type loadFunc func(ctx context.Context) (*saldo.Lexicon, error)

func serve(ctx context.Context, srv *http.Server, ln net.Listener, holder *LexiconHolder, load loadFunc, shutdownTimeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lex, err := load(gctx)
		if err != nil {
			return fmt.Errorf("load lexicon: %w", err)
		}
		holder.Store(lex)
		logger.Info("lexicon ready", slog.Int("entries", lex.Len()), slog.Int("lemgrams", lex.LemgramCount()))
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

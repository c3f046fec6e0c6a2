package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"example.com/bnc-solver/internal/auth"
	"example.com/bnc-solver/internal/bench"
	"example.com/bnc-solver/internal/config"
	"example.com/bnc-solver/internal/httpapi"
	"example.com/bnc-solver/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	sessions *session.Service
	srv      *http.Server
}

func New(cfg config.Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}

	authSvc := auth.NewService([]byte(cfg.Auth.Secret))

	sessions := session.NewService(session.Config{
		MaxRounds:  cfg.Solver.MaxRounds,
		SessionTTL: cfg.Session.TTL,
		Seed:       cfg.Solver.Seed,
		Options:    cfg.SolverOptions(),
	}, log)
	sessionSrv := session.NewServer(sessions, authSvc, cfg.Auth.TokenTTL, log)

	benchH := &httpapi.BenchHandler{
		Defaults: bench.Config{
			Workers:   cfg.Bench.Workers,
			Seed:      cfg.SolverSeed(),
			MaxRounds: cfg.Solver.MaxRounds,
			Options:   cfg.SolverOptions(),
		},
		Log: log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/bench", benchH.Run)
	sessionSrv.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpapi.RequestLogger(log)(mux),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return &App{cfg: cfg, log: log, sessions: sessions, srv: srv}
}

// Handler exposes the routed handler for tests.
func (a *App) Handler() http.Handler { return a.srv.Handler }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return a.sessions.RunSweeper(gctx, sweepInterval(a.cfg.Session.TTL))
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	return g.Wait()
}

func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Second)
}

// Package bench replays the solver against a set of secrets (normally the
// whole universe) and reports how many rounds it needed.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"time"

	"example.com/bnc-solver/internal/game"
	"example.com/bnc-solver/internal/metrics"
	"example.com/bnc-solver/internal/solver"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Workers   int    // <= 0 => runtime.NumCPU()
	Seed      uint64 // tie-break seed; game i uses Seed+i
	MaxRounds int    // per game; <= 0 => no limit
	Options   []solver.Option
}

type Report struct {
	Games       int           `json:"games"`
	TotalRounds int           `json:"totalRounds"`
	Average     float64       `json:"average"`
	Worst       int           `json:"worst"`
	WorstSecret string        `json:"worstSecret"`
	Histogram   map[int]int   `json:"histogram"` // rounds -> games
	Elapsed     time.Duration `json:"elapsedNs"`
}

// Run plays one independent game per secret. Games share only the read-only
// universe; each has its own tracker and random source, so the result for a
// given Seed does not depend on Workers.
func Run(ctx context.Context, secrets []game.Code, cfg Config, log *slog.Logger) (Report, error) {
	if log == nil {
		log = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	rounds := make([]int, len(secrets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, secret := range secrets {
		g.Go(func() error {
			seed := cfg.Seed + uint64(i)
			rng := rand.New(rand.NewPCG(seed, seed))
			tr := solver.New(rng, cfg.Options...).NewTracker()

			n, err := solver.Play(gctx, tr, solver.Oracle{Secret: secret}, cfg.MaxRounds)
			if err != nil {
				return fmt.Errorf("secret %s: %w", secret, err)
			}
			rounds[i] = n
			metrics.RoundsToSolve.WithLabelValues(metrics.DriverBench).Observe(float64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := Report{
		Games:     len(secrets),
		Histogram: make(map[int]int),
		Elapsed:   time.Since(start),
	}
	for i, n := range rounds {
		rep.TotalRounds += n
		rep.Histogram[n]++
		if n > rep.Worst {
			rep.Worst = n
			rep.WorstSecret = secrets[i].String()
		}
	}
	if rep.Games > 0 {
		rep.Average = float64(rep.TotalRounds) / float64(rep.Games)
	}

	metrics.BenchRuns.Inc()
	log.Info("bench finished",
		"games", rep.Games,
		"average", rep.Average,
		"worst", rep.Worst,
		"workers", workers,
		"elapsed", rep.Elapsed,
	)
	return rep, nil
}

// RunAll benchmarks every code of the universe.
func RunAll(ctx context.Context, cfg Config, log *slog.Logger) (Report, error) {
	return Run(ctx, game.Universe(), cfg, log)
}

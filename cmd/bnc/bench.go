package main

import (
	"fmt"
	"io"
	"slices"

	"example.com/bnc-solver/internal/bench"
	"example.com/bnc-solver/internal/solver"
	"github.com/spf13/cobra"
)

var (
	benchWorkers int
	benchSeed    uint64
	benchOpener  string

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Solve every possible secret and report round statistics",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
)

func init() {
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "parallel games (default BENCH_WORKERS)")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 0, "tie-break seed; game i uses seed+i (default SOLVER_SEED)")
	benchCmd.Flags().StringVar(&benchOpener, "opener", "", `first guess, a code or "random" (default SOLVER_OPENER)`)
}

func runBench(cmd *cobra.Command, _ []string) error {
	bc := bench.Config{
		Workers:   cfg.Bench.Workers,
		Seed:      cfg.SolverSeed(),
		MaxRounds: cfg.Solver.MaxRounds,
		Options:   cfg.SolverOptions(),
	}
	if benchWorkers > 0 {
		bc.Workers = benchWorkers
	}
	if benchSeed != 0 {
		bc.Seed = benchSeed
	}
	if benchOpener != "" {
		opt, err := solver.ParseOpener(benchOpener)
		if err != nil {
			return err
		}
		bc.Options = append(bc.Options, opt)
	}

	rep, err := bench.RunAll(cmd.Context(), bc, logger)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), rep)
	return nil
}

func printReport(w io.Writer, rep bench.Report) {
	fmt.Fprintf(w, "games:   %d\n", rep.Games)
	fmt.Fprintf(w, "average: %.4f\n", rep.Average)
	fmt.Fprintf(w, "worst:   %d (%s)\n", rep.Worst, rep.WorstSecret)
	fmt.Fprintf(w, "elapsed: %s\n", rep.Elapsed)

	rounds := make([]int, 0, len(rep.Histogram))
	for n := range rep.Histogram {
		rounds = append(rounds, n)
	}
	slices.Sort(rounds)
	for _, n := range rounds {
		fmt.Fprintf(w, "%3d rounds: %5d\n", n, rep.Histogram[n])
	}
}

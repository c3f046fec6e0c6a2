package main

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"example.com/bnc-solver/internal/console"
	"example.com/bnc-solver/internal/game"
	"example.com/bnc-solver/internal/solver"
	"github.com/spf13/cobra"
)

var (
	playShowCandidates bool
	playColor          bool
	playAuto           bool
	playSecret         string
	playOpener         string
	playSeed           uint64

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play against a secret you keep in your head",
		Long: `Think of four distinct digits. bnc guesses; answer each guess with the
number of bulls (right digit, right place) and cows (right digit, wrong
place). Type q to give up.

With --auto bnc plays against --secret, or a random secret, and prints
every round.`,
		Args: cobra.NoArgs,
		RunE: runPlay,
	}
)

func init() {
	playCmd.Flags().BoolVar(&playShowCandidates, "show-candidates", false, "print the remaining candidates every round")
	playCmd.Flags().BoolVar(&playColor, "color", true, "colour guesses and scores")
	playCmd.Flags().BoolVar(&playAuto, "auto", false, "play against a known secret instead of asking")
	playCmd.Flags().StringVar(&playSecret, "secret", "", "secret to play against; implies --auto (default random)")
	playCmd.Flags().StringVar(&playOpener, "opener", "", `first guess, a code or "random" (default SOLVER_OPENER)`)
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "tie-break seed (default SOLVER_SEED, 0 means clock)")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	seed := cfg.SolverSeed()
	if playSeed != 0 {
		seed = playSeed
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	opts := cfg.SolverOptions()
	if playOpener != "" {
		opt, err := solver.ParseOpener(playOpener)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}
	tr := solver.New(rng, opts...).NewTracker()

	con := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.Options{
		ShowCandidates: playShowCandidates,
		Color:          playColor,
		MaxRounds:      cfg.Solver.MaxRounds,
	})

	if !playAuto && playSecret == "" {
		rounds, err := con.Run(cmd.Context(), tr)
		if errors.Is(err, console.ErrQuit) {
			fmt.Fprintln(cmd.OutOrStdout(), "Bye.")
			return nil
		}
		if err != nil {
			return err
		}
		logger.Debug("game finished", "rounds", rounds)
		return nil
	}

	secret, err := autoSecret(rng)
	if err != nil {
		return err
	}
	rounds, err := solver.Play(cmd.Context(), tr, con.Narrate(solver.Oracle{Secret: secret}), cfg.Solver.MaxRounds)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Answer is %s, guessed in %d.\n", secret, rounds)
	return nil
}

func autoSecret(rng game.Rand) (game.Code, error) {
	if playSecret != "" {
		return game.ParseCode(playSecret)
	}
	return game.RandomCode(rng, nil)
}

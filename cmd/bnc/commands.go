package main

import (
	"fmt"
	"log/slog"
	"os"

	"example.com/bnc-solver/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "bnc",
		Short: "Bulls and Cows codebreaker",
		Long: `bnc guesses a secret of four distinct digits from bulls and cows
feedback. It plays on the terminal, benchmarks itself against every
possible secret, or serves solving sessions over WebSocket.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()

			var err error
			cfg, err = config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger = newLogger(cfg)
			slog.SetDefault(logger)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(playCmd, benchCmd, serveCmd)
}

func newLogger(c config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Log.Level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

package main

import (
	"example.com/bnc-solver/internal/app"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve WebSocket solving sessions, the bench API and metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return app.New(cfg, logger).Run(cmd.Context())
	},
}

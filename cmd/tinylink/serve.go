package main

import (
	"github.com/sainath9392/tinylink/internal/app"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply pending migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), c.cfg, app.NewLogger(c.cfg.Env))
		},
	}
}

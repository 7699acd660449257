package main

import (
	"os"

	"github.com/sainath9392/tinylink/internal/config"
	"github.com/spf13/cobra"
)

// cli holds state shared by the subcommands once flags are parsed.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:           "tinylink",
		Short:         "URL shortener with click tracking",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("CONFIG_PATH"),
		"path to the YAML config file (defaults to $CONFIG_PATH)")

	cmd.AddCommand(newServeCmd(c), newMigrateCmd(c))

	return cmd
}

// Package cli wires the ewm commands: the main service, the stats service,
// schema migration and config inspection.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// NewRootCommand creates the root command of the ewm binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ewm",
		Short: "Explore With Me event platform",
		Long: `Explore With Me lets users publish events, request participation and
discuss events, with a separate stats service counting views.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

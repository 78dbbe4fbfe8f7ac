package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/database"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/statsservice"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	Stats bool
}

// NewMigrateCommand creates the command applying the database schemas.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the main service schema to PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			logger := logging.New(cfg.Log, "ewm-migrate")
			ctx := cmd.Context()

			pool, err := database.NewPool(ctx, cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer pool.Close()
			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.Info("main schema applied")

			if opts.Stats {
				db, err := statsservice.Open(cfg.Stats, logger)
				if err != nil {
					return err
				}
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
				logger.Info("stats schema applied")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "also migrate the stats database")
	return cmd
}

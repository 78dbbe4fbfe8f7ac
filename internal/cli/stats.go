package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/handler"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/statsservice"
)

const statsServiceName = "ewm-stats-service"

// NewStatsCommand creates the command running the stats service.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Run the stats service API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runStats(ctx, rootOpts.Config)
		},
	}
}

func runStats(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Log, statsServiceName)

	db, err := statsservice.Open(cfg.Stats, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	logger.WithField("driver", cfg.Stats.Driver).Info("stats database ready")

	svc := statsservice.NewService(statsservice.NewStore(db), logger)
	router := handler.NewStatsRouter(handler.NewStatsHandler(svc, logger), logger, statsServiceName)
	return runServer(ctx, newHTTPServer(cfg.Stats.Server, router), cfg.Stats.Server, logger)
}

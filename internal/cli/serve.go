package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/config"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/database"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/handler"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/logging"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository/memstore"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/service"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/statsclient"
)

const poolStatsInterval = 15 * time.Second

// NewServeCommand creates the command running the main service.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the main service API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts.Config)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Log, cfg.App)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	d := service.Deps{
		Store:   store,
		Stats:   statsclient.New(cfg.Stats.URL, cfg.Stats.Timeout),
		Logger:  logger,
		AppName: cfg.App,
	}
	h := handler.New(handler.Services{
		Users:        service.NewUserService(d),
		Categories:   service.NewCategoryService(d),
		Events:       service.NewEventService(d),
		Requests:     service.NewRequestService(d),
		Comments:     service.NewCommentService(d),
		Compilations: service.NewCompilationService(d),
	}, logger)

	router := handler.NewRouter(h, logger, cfg.App, cfg.RateLimit)
	return runServer(ctx, newHTTPServer(cfg.Server, router), cfg.Server, logger)
}

// openStore builds the storage backend named by cfg.Storage.Driver.
func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.Store, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("using in-memory storage, data is lost on exit")
		return memstore.New(), nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	go reportPoolStats(ctx, pool)
	return repository.NewPostgresStore(pool), nil
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		database.ReportPoolStats(pool)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

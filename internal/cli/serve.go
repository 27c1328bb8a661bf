package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Rinde17/investerra-app/internal/httpapi"
	"github.com/Rinde17/investerra-app/internal/market"
	"github.com/Rinde17/investerra-app/internal/metrics"
	"github.com/Rinde17/investerra-app/internal/ratelimit"
	"github.com/Rinde17/investerra-app/internal/repository/postgres"
	"github.com/Rinde17/investerra-app/internal/service"
	"github.com/Rinde17/investerra-app/internal/telegram"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	if err := requireDatabase(cfg); err != nil {
		return err
	}
	if err := cfg.RequireSurface(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Info("starting investerra",
		zap.String("version", Version),
		zap.Bool("http", cfg.HTTP.Enabled),
		zap.Bool("telegram", cfg.Telegram.Token != ""),
		zap.String("cache", cfg.Cache.Type),
	)

	if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
		return err
	}

	db, err := postgres.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	m := metrics.New()

	priceCache, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeCache()

	prices := market.NewCachedEstimator(a.newEstimator(m), priceCache, cfg.Cache.TTL, m, logger)

	users := service.NewUserService(postgres.NewUserRepo(db), logger)
	terrains := service.NewTerrainService(
		postgres.NewTerrainRepo(db),
		postgres.NewAnalysisRepo(db),
		a.newAnalyzer(prices, m),
		a.newGeocoder(m),
		service.TerrainConfig{MaxTerrainsPerOwner: cfg.Terrains.MaxPerOwner},
		logger,
	)

	var services []func(context.Context) error

	// build everything before starting anything
	if cfg.Telegram.Token != "" {
		bot, err := telegram.New(telegram.BotConfig{
			Token:             cfg.Telegram.Token,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		}, users, terrains, prices, logger, m)
		if err != nil {
			return err
		}
		services = append(services, bot.Run)
	}

	if cfg.HTTP.Enabled {
		limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: cfg.RateLimit.RequestsPerMinute})
		defer limiter.Stop()

		router := httpapi.NewRouter(httpapi.RouterConfig{
			Terrains: terrains,
			Users:    users,
			Prices:   prices,
			Limiter:  limiter,
			Ready:    db.Ping,
			Metrics:  m,
			Logger:   logger,
		})
		services = append(services, httpapi.NewServer(cfg.HTTP.Addr, router, logger).Run)
	}

	err = runServices(ctx, services...)
	logger.Info("investerra stopped", zap.Error(err))
	return err
}

// runServices runs every service until ctx is done or one of them fails. The
// first failure cancels the rest and is returned once they have all exited.
func runServices(ctx context.Context, services ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, run := range services {
		g.Go(func() error { return run(gctx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

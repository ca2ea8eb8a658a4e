package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hattrick/sportsbook/internal/account"
	"github.com/hattrick/sportsbook/internal/betting"
	"github.com/hattrick/sportsbook/internal/offer"
	"github.com/hattrick/sportsbook/internal/storage"
	"github.com/hattrick/sportsbook/pkg/cache"
	"github.com/hattrick/sportsbook/pkg/config"
	"github.com/hattrick/sportsbook/pkg/healthprobe"
	"github.com/hattrick/sportsbook/pkg/httpserver"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	store, err := setupStorage(cfg, logger, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	offerCache, err := setupCache(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	placer := betting.NewPlacer(store, logger)
	accounts := account.NewService(store, logger)
	offerService := offer.NewService(store, offerCache, cfg.OfferCacheTTL, logger)

	healthChecker := healthprobe.New()
	healthChecker.AddCheck(store.Ping)

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Bets:          placer,
		Accounts:      accounts,
		Offer:         offerService,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		store:         store,
		offerCache:    offerCache,
		placer:        placer,
		accounts:      accounts,
		offer:         offerService,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupStorage(cfg *config.Config, logger *zap.Logger, opts *Options) (*storage.Store, error) {
	store, err := storage.New(&storage.Config{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres store: %w", err)
	}

	if !opts.SkipMigrate {
		if err := store.Migrate(); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func setupCache(cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if !cfg.CacheEnabled {
		logger.Info("offer-cache-disabled")
		return nil, nil
	}

	return cache.NewRistrettoCache(cache.DefaultRistrettoConfig(logger))
}

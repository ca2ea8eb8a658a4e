// Package app wires configuration, storage, cache, the engines and the
// HTTP server into a running sportsbook process.
package app

import (
	"context"
	"sync"

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

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	store         *storage.Store
	offerCache    cache.Cache
	placer        *betting.Placer
	accounts      *account.Service
	offer         *offer.Service
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	SkipMigrate bool // skip schema creation on startup
}

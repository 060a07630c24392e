// Package app wires the header policy, connection pool, segment cache,
// manifest rewriter and prefetch orchestrator into one HTTP server and
// owns their startup/shutdown order.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kestrelstream/hlsproxy/internal/adapter/cache"
	"github.com/kestrelstream/hlsproxy/internal/adapter/headers"
	"github.com/kestrelstream/hlsproxy/internal/adapter/pool"
	"github.com/kestrelstream/hlsproxy/internal/adapter/prefetch"
	"github.com/kestrelstream/hlsproxy/internal/adapter/rewriter"
	"github.com/kestrelstream/hlsproxy/internal/config"
	"github.com/kestrelstream/hlsproxy/internal/logger"
	"github.com/kestrelstream/hlsproxy/internal/router"
	"github.com/kestrelstream/hlsproxy/pkg/eventbus"
)

const (
	ContentTypeJSON   = "application/json"
	ContentTypeText   = "text/plain"
	ContentTypeHeader = "Content-Type"
)

// Application owns every long-lived component of the proxy plus the HTTP
// server that fronts them.
type Application struct {
	StartTime time.Time

	config   *config.Config
	server   *http.Server
	logger   *logger.StyledLogger
	registry *router.RouteRegistry

	cache      *cache.Cache
	poolMgr    *pool.Manager
	fetcher    *pool.Fetcher
	rewriter   rewriter.Rewriter
	policy     headers.Policy
	bus        *eventbus.EventBus[prefetch.Event]
	prefetcher *prefetch.Orchestrator

	errCh chan error
}

// New builds every component from cfg but does not start listening; call
// Start for that.
func New(startTime time.Time, cfg *config.Config, styledLogger *logger.StyledLogger) (*Application, error) {
	registry := router.NewRouteRegistry(styledLogger)

	segmentCache := cache.New(cache.Config{
		MaxEntries:     cfg.Cache.MaxEntries,
		MaxMemoryBytes: cfg.Cache.MaxMemoryBytes,
		ExpiryMs:       cfg.Cache.ExpiryMs,
		SweepInterval:  cfg.Cache.SweepInterval,
	})

	poolMgr := pool.NewManager(pool.Config{
		MaxConnections:            cfg.Pool.MaxConnections,
		MaxPipelinedPerConnection: cfg.Pool.MaxPipelinedPerConnection,
		KeepAliveIdle:             cfg.Pool.KeepAliveIdle,
		DialTimeout:               cfg.Pool.DialTimeout,
	})
	fetcher := pool.NewFetcher(poolMgr)

	bus := eventbus.New[prefetch.Event]()
	orchestrator := prefetch.New(segmentCache, fetcher, bus, styledLogger.GetUnderlying())

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{
		StartTime:  startTime,
		config:     cfg,
		server:     server,
		logger:     styledLogger,
		registry:   registry,
		cache:      segmentCache,
		poolMgr:    poolMgr,
		fetcher:    fetcher,
		rewriter:   rewriter.New(),
		policy:     headers.New(),
		bus:        bus,
		prefetcher: orchestrator,
		errCh:      make(chan error, 1),
	}, nil
}

// Start wires the routes and begins listening.
func (a *Application) Start(ctx context.Context) error {
	go func() {
		select {
		case err := <-a.errCh:
			a.logger.Error("Server startup error", "error", err)
		case <-ctx.Done():
			return
		}
	}()

	a.startWebServer()

	a.logger.Info("Kestrel started, waiting for requests...", "bind", a.server.Addr)
	return nil
}

// Stop gracefully drains the HTTP server, then releases the pool and
// stops the cache's sweep goroutine.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.config.Server.ShutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)

	a.poolMgr.CloseAll()
	a.cache.Close()

	if err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}

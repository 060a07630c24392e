package app

import (
	"errors"
	"net/http"

	"github.com/kestrelstream/hlsproxy/internal/app/middleware"
)

func (a *Application) startWebServer() {
	a.logger.Info("Starting WebServer...", "host", a.config.Server.Host, "port", a.config.Server.Port)

	if a.config.Server.WriteTimeout > 0 && a.config.Server.WriteTimeout < a.config.Origin.FetchTimeout {
		a.logger.Warn("Server.WriteTimeout is shorter than Origin.FetchTimeout; large segment fetches may be truncated",
			"write_timeout", a.config.Server.WriteTimeout, "fetch_timeout", a.config.Origin.FetchTimeout)
	}

	mux := http.NewServeMux()
	a.registerRoutes()
	a.registry.WireUp(mux)

	handler := middleware.EnhancedLoggingMiddleware(a.logger)(mux)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", "error", err)
			a.errCh <- err
		}
	}()

	a.server.Handler = handler
	a.logger.Info("Started WebServer", "bind", a.server.Addr)
}

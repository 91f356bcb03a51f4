package server

import (
	"context"
	"errors"
	"io"
	"time"

	xhttp "SectorVol/pkg/http"
	applogger "SectorVol/pkg/logger"
)

// Resource is a named dependency released on shutdown.
type Resource struct {
	Name   string
	Closer io.Closer
}

// App encapsulates the application lifecycle: it serves HTTP until the
// context is cancelled, then stops the server and releases resources in
// reverse registration order.
type App struct {
	log             *applogger.Logger
	httpServer      *xhttp.Server
	shutdownTimeout time.Duration
	resources       []Resource
}

// New creates a new App. Resources with a nil Closer are skipped.
func New(log *applogger.Logger, httpServer *xhttp.Server, shutdownTimeout time.Duration, resources ...Resource) *App {
	if log == nil {
		log = applogger.Nop()
	}
	kept := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if r.Closer != nil {
			kept = append(kept, r)
		}
	}
	return &App{
		log:             log,
		httpServer:      httpServer,
		shutdownTimeout: shutdownTimeout,
		resources:       kept,
	}
}

// Run starts the HTTP server and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.Shutdown(context.WithoutCancel(ctx))
}

// Shutdown stops the HTTP server and closes every resource. All resources
// are attempted; their errors are joined.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	var errs []error
	if a.httpServer != nil {
		stopCtx := ctx
		if a.shutdownTimeout > 0 {
			var cancel context.CancelFunc
			stopCtx, cancel = context.WithTimeout(ctx, a.shutdownTimeout)
			defer cancel()
		}
		if err := a.httpServer.Stop(stopCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		if err := r.Closer.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", r.Name), applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

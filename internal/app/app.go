package app

import (
	"context"
	"net/http"
	"time"

	"github.com/DELEBINITZ/user-auth-service/internal/config"
)

// App owns the HTTP server and the teardown of everything built for it.
type App struct {
	server  *http.Server
	cleanup func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	router, cleanup, err := setupHTTP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		server: &http.Server{
			Addr:              ":" + cfg.AppPort,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		cleanup: cleanup,
	}, nil
}

// Run blocks serving requests until Shutdown or a listener error.
func (a *App) Run() error {
	return a.server.ListenAndServe()
}

// Shutdown drains in-flight requests within ctx, then releases the
// infrastructure the app was built on.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}

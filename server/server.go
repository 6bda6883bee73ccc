// Package server assembles the HTTP server: middleware, the v1 API, and the
// static frontend.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/cropify/cropify/internal/profile"
	apiv1 "github.com/cropify/cropify/server/router/api/v1"
	"github.com/cropify/cropify/server/router/frontend"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/kv"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer   *echo.Echo
	apiV1Service *apiv1.APIV1Service
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 5 * time.Minute,
	}))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	snapshots, err := newSnapshotStore(ctx, profile, store)
	if err != nil {
		return nil, errors.Wrap(err, "initialize snapshot store")
	}

	apiV1Service, err := apiv1.NewAPIV1Service(profile, store, snapshots)
	if err != nil {
		return nil, errors.Wrap(err, "initialize v1 API")
	}
	s.apiV1Service = apiV1Service
	apiV1Service.Register(e)

	frontend.NewFrontendService(profile, store).Serve(ctx, e)

	return s, nil
}

// newSnapshotStore selects the snapshot backend from the profile. The
// database-backed store is the default; redis suits multi-instance
// deployments and memory is for tests and throwaway demo runs.
func newSnapshotStore(ctx context.Context, profile *profile.Profile, s *store.Store) (kv.Store, error) {
	switch profile.KVBackend {
	case "redis":
		return kv.NewRedis(ctx, profile.RedisURL)
	case "memory":
		return kv.NewMemory(), nil
	default:
		return s.Snapshots(), nil
	}
}

// Start begins serving in the background. Errors other than a clean shutdown
// are logged, not returned; the process keeps running until signaled.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)

	// Replay any request left queued by a previous run.
	s.apiV1Service.ResumePending(context.Background())

	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped unexpectedly", "error", err)
		}
	}()
	slog.Info("server started", "address", address)
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server stopped")
}

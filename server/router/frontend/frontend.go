// Package frontend serves the prebuilt web dashboard from the data
// directory. The bundle is deployed alongside the binary rather than
// embedded, so the dashboard can be updated without a rebuild.
package frontend

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cropify/cropify/internal/profile"
	"github.com/cropify/cropify/internal/util"
	"github.com/cropify/cropify/store"
)

type FrontendService struct {
	Profile *profile.Profile
	Store   *store.Store
}

func NewFrontendService(profile *profile.Profile, store *store.Store) *FrontendService {
	return &FrontendService{
		Profile: profile,
		Store:   store,
	}
}

func (s *FrontendService) Serve(_ context.Context, e *echo.Echo) {
	dist := filepath.Join(s.Profile.Data, "dist")
	if stat, err := os.Stat(dist); err != nil || !stat.IsDir() {
		slog.Info("no frontend bundle found, serving API only", "path", dist)
		return
	}

	// Don't compress API responses; static assets only.
	gzipSkipper := func(c echo.Context) bool {
		return util.HasPrefixes(c.Path(), "/api", "/healthz", "/metrics")
	}
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: gzipSkipper,
	}))

	skipper := func(c echo.Context) bool {
		if util.HasPrefixes(c.Path(), "/api", "/healthz", "/metrics") {
			return true
		}

		c.Response().Header().Set("X-Content-Type-Options", "nosniff")

		ext := filepath.Ext(c.Path())
		// index.html and SPA routes must never be cached so clients always
		// pick up the latest bundle.
		if ext == "" || c.Path() == "/index.html" {
			c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
			c.Response().Header().Set("Pragma", "no-cache")
			c.Response().Header().Set("Expires", "0")
			return false
		}

		// Content-hashed assets cache aggressively; everything else briefly.
		if util.HasPrefixes(c.Path(), "/assets/") {
			c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=31536000, immutable")
		} else {
			c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
		}
		return false
	}

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: http.Dir(dist),
		HTML5:      true, // fallback to index.html for SPA routes
		Skipper:    skipper,
	}))
}

package server

import (
	"context"
	"log"
	"path/filepath"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"awesomearcade/internal/analytics"
	"awesomearcade/internal/catalog"
	"awesomearcade/internal/counter"
	"awesomearcade/internal/events"
	"awesomearcade/internal/handlers"
	"awesomearcade/internal/handlers/api"
	"awesomearcade/internal/middleware"
)

// Deps are the long-lived components the routes are served from.
type Deps struct {
	Catalog *catalog.Holder
	Store   counter.Store
	Counts  handlers.CountSource
	Bus     *events.Bus
	Tracker *analytics.Tracker
	// Pinger is checked by the readiness probe. Optional.
	Pinger handlers.Pinger
}

// RegisterRoutes registers all application routes. ctx bounds the lifetime
// of event streams.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware()

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(ctx, deps.Catalog, deps.Counts, deps.Bus, deps.Tracker, s.Cfg, s.Site)
	clickHandler := api.NewClickHandler(deps.Store, deps.Catalog)
	catalogHandler := api.NewCatalogHandler(deps.Catalog)
	probeHandler := handlers.NewProbeHandler(deps.Catalog, deps.Pinger)

	// Probes and metrics
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes - optional, only shown when OIDC is configured
	if s.Cfg.OIDCEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize OIDC auth: %v", err)
		} else {
			s.App.Get("/auth/login", authHandler.Login)
			s.App.Get("/auth/callback", authHandler.Callback)
			s.App.Get("/auth/logout", authHandler.Logout)
			s.App.Get("/auth/me", authMiddleware.RequireAuth, authHandler.Me)
		}
	} else {
		log.Println("OIDC authentication is disabled. Set OIDC_ISSUER to enable.")
	}

	// Click counter service
	s.App.Get("/api/all/", clickHandler.All)
	s.App.Get("/api/click", clickHandler.Click)
	s.App.Get("/api/extensions", catalogHandler.Catalog)
	s.App.Get("/api/search", catalogHandler.Search)

	// Build artifacts
	s.App.Get("/"+catalog.SnapshotFile, sendPublicFile(s.Cfg.PublicDir, catalog.SnapshotFile))
	s.App.Get("/"+catalog.ManifestFile, sendPublicFile(s.Cfg.PublicDir, catalog.ManifestFile))

	// Pages
	s.App.Get("/", authMiddleware.OptionalAuth, pageHandler.Index)
	s.App.Get("/search", authMiddleware.OptionalAuth, pageHandler.Search)
	s.App.Post("/clickrepo", pageHandler.ClickRepo)
	s.App.Get("/events", pageHandler.Events)
	s.App.Post("/theme", handlers.SetTheme)
	s.App.Get("/highlight.css", handlers.HighlightCSS)

	return nil
}

func sendPublicFile(dir, name string) fiber.Handler {
	path := filepath.Join(dir, name)
	return func(c fiber.Ctx) error {
		return c.SendFile(path)
	}
}

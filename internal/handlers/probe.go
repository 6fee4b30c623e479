package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"awesomearcade/internal/catalog"
)

// Pinger is a backing service the app needs to serve traffic.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	catalog *catalog.Holder
	store   Pinger
}

// NewProbeHandler creates a new probe handler. store may be nil when the
// click counter keeps its data in memory.
func NewProbeHandler(holder *catalog.Holder, store Pinger) *ProbeHandler {
	return &ProbeHandler{catalog: holder, store: store}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if the catalog is loaded and the counter store is reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if h.catalog.Get() == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "catalog not loaded",
		})
	}
	if h.store != nil {
		if err := h.store.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "error",
				"error":  "click counter store unavailable",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

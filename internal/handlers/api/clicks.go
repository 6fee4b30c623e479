package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"awesomearcade/internal/catalog"
	"awesomearcade/internal/counter"
	"awesomearcade/internal/validation"
)

// ClickHandler serves the click counter service.
type ClickHandler struct {
	store   counter.Store
	catalog *catalog.Holder
}

// NewClickHandler creates a new click counter handler.
func NewClickHandler(store counter.Store, holder *catalog.Holder) *ClickHandler {
	return &ClickHandler{store: store, catalog: holder}
}

// All returns every counter as a bare {"repo": count} object.
func (h *ClickHandler) All(c fiber.Ctx) error {
	counts, err := h.store.All(c.Context())
	if err != nil {
		slog.Error("failed to read click counts", "error", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "click counts unavailable")
	}
	return c.JSON(counts)
}

// Click increments the counter for ?repo= and returns {"repo": count}.
func (h *ClickHandler) Click(c fiber.Ctx) error {
	repo := validation.NormalizeRepo(c.Query("repo", ""))
	if valid, msg := validation.ValidateRepo(repo); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}
	if cat := h.catalog.Get(); cat != nil {
		if _, ok := cat.Lookup(repo); !ok {
			return jsonError(c, fiber.StatusNotFound, counter.ErrUnknownRepo.Error())
		}
	}

	n, err := h.store.Increment(c.Context(), repo)
	if err != nil {
		slog.Error("failed to increment click count", "repo", repo, "error", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "click counts unavailable")
	}
	return c.JSON(map[string]int64{repo: n})
}

package api

import (
	"github.com/gofiber/fiber/v3"

	"awesomearcade/internal/catalog"
	"awesomearcade/internal/models"
	"awesomearcade/internal/search"
)

// CatalogHandler exposes the catalog and search as JSON.
type CatalogHandler struct {
	catalog *catalog.Holder
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(holder *catalog.Holder) *CatalogHandler {
	return &CatalogHandler{catalog: holder}
}

// Catalog returns the full catalog.
func (h *CatalogHandler) Catalog(c fiber.Ctx) error {
	cat := h.catalog.Get()
	if cat == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "catalog not loaded")
	}
	return jsonSuccess(c, cat)
}

// Search filters the catalog by ?q= with the same rules as the page.
func (h *CatalogHandler) Search(c fiber.Ctx) error {
	cat := h.catalog.Get()
	if cat == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "catalog not loaded")
	}
	query := c.Query("q", "")
	res := search.Filter(cat, query)
	return jsonSuccess(c, models.SearchResponse{
		Query:   query,
		Catalog: *res.Catalog,
		Counts:  res.Counts,
	})
}

package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"awesomearcade/internal/analytics"
	"awesomearcade/internal/card"
	"awesomearcade/internal/catalog"
	"awesomearcade/internal/config"
	"awesomearcade/internal/events"
	"awesomearcade/internal/models"
	"awesomearcade/internal/search"
	"awesomearcade/internal/validation"
)

const (
	homePage      = "Home"
	listingView   = "partials/list"
	listingFailed = "Something went wrong while showing the extension list. Try reloading the page."
	keepAlive     = 15 * time.Second
)

// CountSource supplies the latest known click counts.
type CountSource interface {
	Snapshot() models.ClickCountListing
}

// PageHandler serves the extension listing page and its live updates.
type PageHandler struct {
	ctx     context.Context
	catalog *catalog.Holder
	counts  CountSource
	bus     *events.Bus
	tracker *analytics.Tracker
	cfg     *config.Config
	site    *config.SiteConfig
}

// NewPageHandler creates a page handler. ctx bounds the lifetime of event
// streams.
func NewPageHandler(ctx context.Context, holder *catalog.Holder, counts CountSource, bus *events.Bus, tracker *analytics.Tracker, cfg *config.Config, site *config.SiteConfig) *PageHandler {
	return &PageHandler{
		ctx:     ctx,
		catalog: holder,
		counts:  counts,
		bus:     bus,
		tracker: tracker,
		cfg:     cfg,
		site:    site,
	}
}

// Index renders the home page, pre-filtered by the q query parameter.
func (h *PageHandler) Index(c fiber.Ctx) error {
	query := c.Query("q", "")
	data, err := h.results(c, query)
	if err != nil {
		return err
	}
	data["Welcome"] = "Welcome to " + h.cfg.SiteTitle
	return c.Render("index", MergeBranding(c, data, homePage, h.cfg, h.site))
}

// Search renders the results partial for HTMX on every keystroke. Only the
// analytics report is debounced.
func (h *PageHandler) Search(c fiber.Ctx) error {
	query := c.Query("q", "")
	h.tracker.Search(clientKey(c), query)

	data, err := h.results(c, query)
	if err != nil {
		return htmxError(c, "The extension list is not available right now.")
	}
	return c.Render("partials/results", data, "")
}

// results filters the catalog and renders the listing inside an error
// boundary: a listing failure becomes an inline alert and the rest of the
// page still renders.
func (h *PageHandler) results(c fiber.Ctx, query string) (fiber.Map, error) {
	canonical := h.catalog.Get()
	if canonical == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "catalog not loaded")
	}
	res := search.Filter(canonical, query)

	data := fiber.Map{
		"Query": query,
	}
	if res.Counts != nil {
		data["Summary"] = search.Summary(*res.Counts)
	}

	groups := card.NewGroups(res.Catalog, canonical, h.counts.Snapshot(), h.site.CategoryDescription)
	listing, err := h.renderListing(c, groups)
	if err != nil {
		slog.Error("failed to render extension list", "query", query, "error", err)
		data["ListingError"] = listingFailed
		return data, nil
	}
	data["Listing"] = listing
	return data, nil
}

func (h *PageHandler) renderListing(c fiber.Ctx, groups []card.Group) (listing template.HTML, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic rendering listing: %v", r)
		}
	}()

	views := c.App().Config().Views
	if views == nil {
		return "", fmt.Errorf("no view engine configured")
	}
	var buf bytes.Buffer
	if err := views.Render(&buf, listingView, fiber.Map{
		"Groups":    groups,
		"NoResults": card.NoResultsMessage,
	}); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// ClickRepo records an import click: it announces the click on the bus,
// which triggers the single click count update, and reports analytics.
func (h *PageHandler) ClickRepo(c fiber.Ctx) error {
	repo := validation.NormalizeRepo(c.Query("repo", ""))
	if valid, msg := validation.ValidateRepo(repo); !valid {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	if cat := h.catalog.Get(); cat != nil {
		if _, ok := cat.Lookup(repo); !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown repo")
		}
	}

	h.bus.Clicks.Publish(events.RepoClick{Repo: repo})
	h.tracker.Click(repo)
	return c.SendStatus(fiber.StatusNoContent)
}

// Events streams click count changes as server-sent events. The optional
// repo query parameter limits the stream to one repo. The stream opens with
// the current state of every catalog repo, null where no count is known, so a
// reconnecting browser also clears counts that went away while it was gone.
func (h *PageHandler) Events(c fiber.Ctx) error {
	key := events.AllRepos
	if repo := validation.NormalizeRepo(c.Query("repo", "")); repo != "" {
		if valid, msg := validation.ValidateRepo(repo); !valid {
			return fiber.NewError(fiber.StatusBadRequest, msg)
		}
		key = repo
	}

	changes := h.bus.Counts.Subscribe(key)
	refreshes := h.bus.Refreshes.Subscribe(key)
	initial := h.initialChanges(key)
	name := h.bus.Counts.Name()
	clientID := uuid.NewString()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer changes.Close()
		defer refreshes.Close()
		slog.Debug("event stream opened", "client", clientID, "repo", key)
		defer slog.Debug("event stream closed", "client", clientID)

		fmt.Fprintf(w, "retry: 5000\n\n")
		if err := writeEvents(w, name, initial); err != nil {
			return
		}

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()
		for {
			select {
			case <-h.ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case change, ok := <-changes.C():
				if !ok {
					return
				}
				if err := writeEvents(w, name, []events.CountChange{change}); err != nil {
					return
				}
			case batch, ok := <-refreshes.C():
				if !ok {
					return
				}
				if err := writeEvents(w, name, batchFor(batch, key)); err != nil {
					return
				}
			}
		}
	})
}

// initialChanges is the state a new stream starts from: every catalog repo
// with its count or nil, plus any counted repo the catalog does not list.
func (h *PageHandler) initialChanges(key string) []events.CountChange {
	snapshot := h.counts.Snapshot()
	state := make(map[string]*string, len(snapshot))
	if cat := h.catalog.Get(); cat != nil {
		for _, repo := range cat.Repos() {
			state[repo] = nil
		}
	}
	for repo, count := range snapshot {
		state[repo] = &count
	}
	return batchFor(events.CountBatch{Counts: state}, key)
}

func batchFor(batch events.CountBatch, key string) []events.CountChange {
	if key == events.AllRepos {
		return batch.Changes()
	}
	if change, ok := batch.Change(key); ok {
		return []events.CountChange{change}
	}
	return nil
}

func writeEvents(w *bufio.Writer, name string, changes []events.CountChange) error {
	for _, change := range changes {
		if err := writeEvent(w, name, change); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeEvent(w *bufio.Writer, name string, change events.CountChange) error {
	payload, err := json.Marshal(models.CountChangeResponse{Repo: change.Repo, Count: change.Count})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}

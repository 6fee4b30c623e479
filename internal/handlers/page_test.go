package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/template/html/v3"

	"awesomearcade/internal/analytics"
	"awesomearcade/internal/catalog"
	"awesomearcade/internal/config"
	"awesomearcade/internal/events"
	"awesomearcade/internal/models"
	"awesomearcade/internal/testutil"
)

type staticCounts models.ClickCountListing

func (s staticCounts) Snapshot() models.ClickCountListing {
	return models.ClickCountListing(s)
}

// failingViews renders everything except the listing.
type failingViews struct {
	fiber.Views
}

func (v failingViews) Render(w io.Writer, name string, binding any, layout ...string) error {
	if name == listingView {
		return errors.New("listing exploded")
	}
	return v.Views.Render(w, name, binding, layout...)
}

type pageFixture struct {
	app     *fiber.App
	bus     *events.Bus
	tracker *analytics.Tracker
	events  chan analytics.Event
}

func newPageFixture(t *testing.T, ctx context.Context, wrap func(fiber.Views) fiber.Views) *pageFixture {
	t.Helper()

	var views fiber.Views = html.New("../../views", ".html")
	if wrap != nil {
		views = wrap(views)
	}
	app := fiber.New(fiber.Config{
		Views:       views,
		ViewsLayout: "layouts/main",
	})

	cfg := &config.Config{Env: "production", SiteTitle: "Awesome Arcade Extensions"}
	bus := events.NewBus()
	recorded := make(chan analytics.Event, 16)
	tracker := analytics.NewTracker(func(e analytics.Event) { recorded <- e }, 10*time.Millisecond)
	t.Cleanup(tracker.Close)

	h := NewPageHandler(ctx, catalog.NewHolder(testutil.Catalog()), staticCounts{"foo-ext": "1,234", "bar-ext": "0"}, bus, tracker, cfg, nil)
	app.Get("/", h.Index)
	app.Get("/search", h.Search)
	app.Post("/clickrepo", h.ClickRepo)
	app.Get("/events", h.Events)

	return &pageFixture{app: app, bus: bus, tracker: tracker, events: recorded}
}

func get(t *testing.T, app *fiber.App, method, target string) (int, string) {
	t.Helper()
	req, _ := http.NewRequest(method, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestIndex(t *testing.T) {
	f := newPageFixture(t, context.Background(), nil)

	tests := []struct {
		name        string
		target      string
		contains    []string
		notContains []string
	}{
		{
			name:        "no query shows everything without a summary",
			target:      "/",
			contains:    []string{"<title>Home | Awesome Arcade Extensions</title>", `id="foo-ext"`, `id="bar-ext"`, `id="foo-tool"`, "1,234"},
			notContains: []string{"Found "},
		},
		{
			name:        "query filters and summarises",
			target:      "/?q=foo",
			contains:    []string{"Found 1 extension and 1 tool.", `id="foo-ext"`, `id="foo-tool"`},
			notContains: []string{`id="bar-ext"`},
		},
		{
			name:     "no match keeps categories with a notice",
			target:   "/?q=zzz",
			contains: []string{"Found 0 extensions and 0 tools.", "Could not find any results with your search query!", "Extensions", "Tools"},
		},
		{
			name:     "fork and depreciation notices",
			target:   "/",
			contains: []string{"There is <b>1</b> fork available:", "This extension is depreciated by <b>1</b> other extension:"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, f.app, "GET", tt.target)
			if status != fiber.StatusOK {
				t.Fatalf("expected 200, got %d: %s", status, body)
			}
			for _, s := range tt.contains {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q", s)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(body, s) {
					t.Errorf("body unexpectedly contains %q", s)
				}
			}
		})
	}
}

func TestSearchPartialAndAnalytics(t *testing.T) {
	f := newPageFixture(t, context.Background(), nil)

	status, body := get(t, f.app, "GET", "/search?q=tool")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if strings.Contains(body, "<nav") {
		t.Error("partial should not include the layout")
	}
	if !strings.Contains(body, "Found 0 extensions and 1 tool.") {
		t.Errorf("unexpected partial: %s", body)
	}

	select {
	case e := <-f.events:
		if e.Name != analytics.EventSearch || e.Params["search_term"] != "tool" {
			t.Errorf("unexpected event %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("search analytics not reported")
	}
}

func TestListingErrorBoundary(t *testing.T) {
	f := newPageFixture(t, context.Background(), func(v fiber.Views) fiber.Views { return failingViews{v} })

	status, body := get(t, f.app, "GET", "/")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(body, listingFailed) {
		t.Error("expected inline listing error")
	}
	if !strings.Contains(body, "<nav") || !strings.Contains(body, "<footer") {
		t.Error("navbar and footer should still render")
	}
}

func TestClickRepo(t *testing.T) {
	f := newPageFixture(t, context.Background(), nil)
	clicks := f.bus.Clicks.Subscribe(events.AllRepos)
	defer clicks.Close()

	status, _ := get(t, f.app, "POST", "/clickrepo?repo=foo-ext")
	if status != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	select {
	case c := <-clicks.C():
		if c.Repo != "foo-ext" {
			t.Errorf("unexpected click %+v", c)
		}
	default:
		t.Fatal("expected a RepoClick on the bus")
	}
	select {
	case e := <-f.events:
		if e.Name != analytics.EventAwesomeClick {
			t.Errorf("unexpected event %+v", e)
		}
	default:
		t.Fatal("expected a click analytics event")
	}

	if status, _ := get(t, f.app, "POST", "/clickrepo?repo=nope"); status != fiber.StatusNotFound {
		t.Errorf("unknown repo: expected 404, got %d", status)
	}
	if status, _ := get(t, f.app, "POST", "/clickrepo?repo=../etc"); status != fiber.StatusBadRequest {
		t.Errorf("invalid repo: expected 400, got %d", status)
	}
}

func TestEventsSendsSnapshot(t *testing.T) {
	// A cancelled context ends the stream right after the snapshot.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newPageFixture(t, ctx, nil)

	req, _ := http.NewRequest("GET", "/events?repo=foo-ext", nil)
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	want := "event: repoclickcountchange\ndata: {\"repo\":\"foo-ext\",\"count\":\"1,234\"}\n\n"
	if !strings.Contains(string(body), want) {
		t.Errorf("stream missing snapshot event, got %q", body)
	}
	if strings.Contains(string(body), "bar-ext") {
		t.Error("stream should be limited to the requested repo")
	}
}

func TestWriteEventUnavailable(t *testing.T) {
	var sb strings.Builder
	w := bufio.NewWriter(&sb)
	if err := writeEvent(w, "repoclickcountchange", events.CountChange{Repo: "foo-ext"}); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	want := "event: repoclickcountchange\ndata: {\"repo\":\"foo-ext\",\"count\":null}\n\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestSearchWithoutCatalog(t *testing.T) {
	app := fiber.New(fiber.Config{Views: html.New("../../views", ".html")})
	tracker := analytics.NewTracker(func(analytics.Event) {}, time.Millisecond)
	t.Cleanup(tracker.Close)

	h := NewPageHandler(context.Background(), catalog.NewHolder(nil), staticCounts{}, events.NewBus(), tracker, &config.Config{}, nil)
	app.Get("/search", h.Search)

	status, body := get(t, app, http.MethodGet, "/search?q=foo")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200 so the alert is swapped in", status)
	}
	if !strings.Contains(body, "alert-danger") {
		t.Errorf("body = %q, want an inline alert", body)
	}
}

func TestEventsSnapshotMarksUncountedRepos(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newPageFixture(t, ctx, nil)

	status, body := get(t, f.app, http.MethodGet, "/events")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, want := range []string{
		`{"repo":"foo-ext","count":"1,234"}`,
		`{"repo":"bar-ext","count":"0"}`,
		`{"repo":"foo-tool","count":null}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %s, got %q", want, body)
		}
	}
}

func TestWriteEventsBatch(t *testing.T) {
	counts := map[string]*string{}
	for i := range 100 {
		counts[fmt.Sprintf("repo-%03d", i)] = nil
	}
	batch := events.CountBatch{Counts: counts}

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"all repos", events.AllRepos, 100},
		{"one repo", "repo-042", 1},
		{"repo not in batch", "foo-ext", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			w := bufio.NewWriter(&sb)
			if err := writeEvents(w, "repoclickcountchange", batchFor(batch, tt.key)); err != nil {
				t.Fatal(err)
			}
			if got := strings.Count(sb.String(), `"count":null`); got != tt.want {
				t.Errorf("wrote %d unavailable events, want %d", got, tt.want)
			}
		})
	}
}

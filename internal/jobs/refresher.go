package jobs

import (
	"context"
	"log"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"awesomearcade/internal/counter"
	"awesomearcade/internal/events"
	"awesomearcade/internal/metrics"
	"awesomearcade/internal/models"
)

// DefaultRefreshInterval is how often the bulk refresh runs.
const DefaultRefreshInterval = 2 * time.Minute

// CounterService is the part of the click counter API the refresher uses.
type CounterService interface {
	All(ctx context.Context) (map[string]int64, error)
	Click(ctx context.Context, repo string) (map[string]int64, error)
}

// Refresher keeps click counts in sync with the counter service and
// broadcasts every change on the bus.
type Refresher struct {
	service  CounterService
	bus      *events.Bus
	interval time.Duration

	mu      sync.RWMutex
	listing models.ClickCountListing
}

// NewRefresher creates a refresher. A non-positive interval uses the default.
func NewRefresher(service CounterService, bus *events.Bus, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		service:  service,
		bus:      bus,
		interval: interval,
		listing:  models.ClickCountListing{},
	}
}

// Run refreshes once, then on every tick, and issues a single-click update
// for each RepoClick on the bus. Bulk refreshes and clicks are handled by
// separate loops so a slow refresh never holds clicks back. Run returns when
// ctx is cancelled, after in-flight click requests have finished.
func (r *Refresher) Run(ctx context.Context) error {
	log.Printf("Click count refresher started (interval: %v)", r.interval)
	defer log.Println("Click count refresher stopped")

	clicks := r.bus.Clicks.Subscribe(events.AllRepos)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.refreshLoop(ctx)
		return nil
	})
	g.Go(func() error {
		r.clickLoop(ctx, clicks)
		return nil
	})
	return g.Wait()
}

func (r *Refresher) refreshLoop(ctx context.Context) {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

func (r *Refresher) clickLoop(ctx context.Context, clicks *events.Subscription[events.RepoClick]) {
	var inflight sync.WaitGroup
	defer func() {
		clicks.Close()
		inflight.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case click, ok := <-clicks.C():
			if !ok {
				slog.Warn("click subscription dropped, resubscribing")
				clicks = r.bus.Clicks.Subscribe(events.AllRepos)
				continue
			}
			inflight.Go(func() {
				r.Click(ctx, click.Repo)
			})
		}
	}
}

// Refresh performs one bulk refresh and publishes its outcome as a single
// batch.
//
// On success the known repos become exactly the keys of the response, each
// carrying its formatted count, and repos that disappeared are marked
// unavailable. On failure every known repo is marked unavailable and the
// known set is cleared.
func (r *Refresher) Refresh(ctx context.Context) {
	counts, err := r.service.All(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		slog.Error("bulk click count refresh failed", "error", err)
		metrics.RecordRefresh(metrics.KindBulk, metrics.OutcomeFailure)

		r.mu.Lock()
		previous := r.listing
		r.listing = models.ClickCountListing{}
		r.mu.Unlock()

		if len(previous) == 0 {
			return
		}
		batch := make(map[string]*string, len(previous))
		for repo := range previous {
			batch[repo] = nil
		}
		r.bus.Refreshes.Publish(events.CountBatch{Counts: batch})
		return
	}
	metrics.RecordRefresh(metrics.KindBulk, metrics.OutcomeSuccess)

	next := make(models.ClickCountListing, len(counts))
	for repo, n := range counts {
		next[repo] = counter.Format(n)
	}

	r.mu.Lock()
	previous := r.listing
	r.listing = next
	r.mu.Unlock()

	batch := make(map[string]*string, len(next))
	for repo, count := range next {
		batch[repo] = &count
	}
	for repo := range previous {
		if _, ok := next[repo]; !ok {
			batch[repo] = nil
		}
	}
	if len(batch) > 0 {
		r.bus.Refreshes.Publish(events.CountBatch{Counts: batch})
	}
}

// Click registers one click for repo with the counter service and announces
// the returned count. Failures are logged and leave displayed counts alone.
func (r *Refresher) Click(ctx context.Context, repo string) {
	counts, err := r.service.Click(ctx, repo)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		slog.Warn("single click count update failed", "repo", repo, "error", err)
		metrics.RecordRefresh(metrics.KindSingle, metrics.OutcomeFailure)
		return
	}
	n, ok := counts[repo]
	if !ok {
		slog.Warn("single click response missing repo", "repo", repo)
		metrics.RecordRefresh(metrics.KindSingle, metrics.OutcomeFailure)
		return
	}
	metrics.RecordRefresh(metrics.KindSingle, metrics.OutcomeSuccess)

	count := counter.Format(n)
	r.mu.Lock()
	r.listing[repo] = count
	r.mu.Unlock()

	r.bus.Counts.Publish(events.CountChange{Repo: repo, Count: &count})
}

// Snapshot returns a copy of the current listing.
func (r *Refresher) Snapshot() models.ClickCountListing {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(models.ClickCountListing, len(r.listing))
	for k, v := range r.listing {
		out[k] = v
	}
	return out
}

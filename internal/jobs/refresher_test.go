package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"awesomearcade/internal/events"
	"awesomearcade/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeService struct {
	mu       sync.Mutex
	all      map[string]int64
	allErr   error
	clicks   map[string]int64
	clickErr error
	clicked  []string
	block    chan struct{}
	entered  chan struct{}
	allBlock chan struct{}
}

func (f *fakeService) All(ctx context.Context) (map[string]int64, error) {
	if f.allBlock != nil {
		<-f.allBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allErr != nil {
		return nil, f.allErr
	}
	out := make(map[string]int64, len(f.all))
	for k, v := range f.all {
		out[k] = v
	}
	return out, nil
}

func (f *fakeService) Click(ctx context.Context, repo string) (map[string]int64, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicked = append(f.clicked, repo)
	if f.clickErr != nil {
		return nil, f.clickErr
	}
	f.clicks[repo]++
	return map[string]int64{repo: f.clicks[repo]}, nil
}

func (f *fakeService) set(all map[string]int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all = all
	f.allErr = err
}

func drain(sub *events.Subscription[events.CountChange]) map[string]*string {
	got := map[string]*string{}
	for {
		select {
		case c := <-sub.C():
			got[c.Repo] = c.Count
		default:
			return got
		}
	}
}

// drainBatches merges every pending refresh batch and reports how many
// batches there were.
func drainBatches(sub *events.Subscription[events.CountBatch]) (map[string]*string, int) {
	got := map[string]*string{}
	n := 0
	for {
		select {
		case b := <-sub.C():
			n++
			for repo, count := range b.Counts {
				got[repo] = count
			}
		default:
			return got, n
		}
	}
}

func strp(s string) *string { return &s }

func TestRefreshSuccessThenFailure(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Refreshes.Subscribe(events.AllRepos)
	defer sub.Close()

	svc := &fakeService{clicks: map[string]int64{}}
	svc.set(map[string]int64{"foo-ext": 42, "foo-tool": 1234}, nil)
	r := NewRefresher(svc, bus, time.Hour)

	r.Refresh(context.Background())
	got, n := drainBatches(sub)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]*string{"foo-ext": strp("42"), "foo-tool": strp("1,234")}, got)
	assert.Equal(t, models.ClickCountListing{"foo-ext": "42", "foo-tool": "1,234"}, r.Snapshot())

	svc.set(nil, errors.New("boom"))
	r.Refresh(context.Background())
	got, n = drainBatches(sub)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]*string{"foo-ext": nil, "foo-tool": nil}, got)
	assert.Empty(t, r.Snapshot())

	// Nothing is known any more, so a second failure announces nothing.
	r.Refresh(context.Background())
	_, n = drainBatches(sub)
	assert.Zero(t, n)
}

func TestRefreshFailureReachesSlowSubscriberForManyRepos(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Refreshes.Subscribe(events.AllRepos)
	defer sub.Close()

	all := map[string]int64{}
	for i := range 100 {
		all[fmt.Sprintf("repo-%03d", i)] = int64(i)
	}
	svc := &fakeService{clicks: map[string]int64{}}
	svc.set(all, nil)
	r := NewRefresher(svc, bus, time.Hour)

	// Nobody reads between the two refreshes.
	r.Refresh(context.Background())
	svc.set(nil, errors.New("boom"))
	r.Refresh(context.Background())

	assert.Equal(t, 1, bus.Refreshes.Len(), "subscriber is still attached")
	<-sub.C()
	failed := <-sub.C()
	require.Len(t, failed.Counts, 100)
	for repo, count := range failed.Counts {
		assert.Nil(t, count, "repo %s", repo)
	}
}

func TestRefreshPartialResponse(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Refreshes.Subscribe("bar-ext")
	defer sub.Close()

	svc := &fakeService{clicks: map[string]int64{}}
	svc.set(map[string]int64{"foo-ext": 42}, nil)
	r := NewRefresher(svc, bus, time.Hour)
	r.Refresh(context.Background())

	b := <-sub.C()
	change, ok := b.Change("foo-ext")
	require.True(t, ok)
	assert.Equal(t, "42", *change.Count)
	_, ok = b.Change("bar-ext")
	assert.False(t, ok, "bar-ext was never known")
	_, known := r.Snapshot()["bar-ext"]
	assert.False(t, known)
}

func TestRefreshDroppedRepoBecomesUnknown(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Refreshes.Subscribe(events.AllRepos)
	defer sub.Close()

	svc := &fakeService{clicks: map[string]int64{}}
	svc.set(map[string]int64{"a": 1, "b": 2}, nil)
	r := NewRefresher(svc, bus, time.Hour)
	r.Refresh(context.Background())
	drainBatches(sub)

	svc.set(map[string]int64{"a": 3}, nil)
	r.Refresh(context.Background())
	got, _ := drainBatches(sub)
	assert.Equal(t, map[string]*string{"a": strp("3"), "b": nil}, got)
}

func TestClick(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Counts.Subscribe(events.AllRepos)
	defer sub.Close()

	svc := &fakeService{clicks: map[string]int64{"foo-ext": 41}}
	r := NewRefresher(svc, bus, time.Hour)

	r.Click(context.Background(), "foo-ext")
	assert.Equal(t, map[string]*string{"foo-ext": strp("42")}, drain(sub))
	assert.Equal(t, "42", r.Snapshot()["foo-ext"])

	svc.clickErr = errors.New("offline")
	r.Click(context.Background(), "foo-ext")
	assert.Empty(t, drain(sub))
	assert.Equal(t, "42", r.Snapshot()["foo-ext"])
}

func TestRunHandlesClicks(t *testing.T) {
	bus := events.NewBus()
	refreshes := bus.Refreshes.Subscribe("foo-ext")
	defer refreshes.Close()
	sub := bus.Counts.Subscribe("foo-ext")
	defer sub.Close()

	svc := &fakeService{clicks: map[string]int64{}}
	svc.set(map[string]int64{"foo-ext": 5}, nil)
	svc.clicks["foo-ext"] = 5
	r := NewRefresher(svc, bus, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case b := <-refreshes.C():
		c, ok := b.Change("foo-ext")
		require.True(t, ok)
		require.NotNil(t, c.Count)
		assert.Equal(t, "5", *c.Count)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial refresh")
	}

	require.Eventually(t, func() bool { return bus.Clicks.Len() == 1 }, time.Second, 10*time.Millisecond)
	bus.Clicks.Publish(events.RepoClick{Repo: "foo-ext"})

	select {
	case c := <-sub.C():
		require.NotNil(t, c.Count)
		assert.Equal(t, "6", *c.Count)
	case <-time.After(2 * time.Second):
		t.Fatal("no single click update")
	}

	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, 0, bus.Clicks.Len())
}

func TestRunDropsLateResponses(t *testing.T) {
	bus := events.NewBus()
	sub := bus.Counts.Subscribe(events.AllRepos)
	defer sub.Close()

	svc := &fakeService{
		clicks:  map[string]int64{},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	svc.set(map[string]int64{}, nil)
	r := NewRefresher(svc, bus, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return bus.Clicks.Len() == 1 }, time.Second, 10*time.Millisecond)
	bus.Clicks.Publish(events.RepoClick{Repo: "foo-ext"})
	<-svc.entered

	cancel()
	close(svc.block)
	assert.NoError(t, <-done)
	assert.Empty(t, drain(sub))
}

func TestRunClicksNotHeldBySlowRefresh(t *testing.T) {
	bus := events.NewBus()
	svc := &fakeService{
		clicks:   map[string]int64{},
		allBlock: make(chan struct{}),
	}
	svc.set(map[string]int64{}, nil)
	r := NewRefresher(svc, bus, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return bus.Clicks.Len() == 1 }, time.Second, 10*time.Millisecond)
	for i := range 100 {
		bus.Clicks.Publish(events.RepoClick{Repo: fmt.Sprintf("repo-%03d", i)})
	}

	// The initial bulk refresh is still blocked.
	require.Eventually(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.clicked) == 100
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	close(svc.allBlock)
	assert.NoError(t, <-done)
}

// Package events is the process-wide publish/subscribe channel that carries
// click count updates and raw click signals between the refresher, the page
// handlers and however many cards are listening.
package events

import (
	"log/slog"
	"sort"
	"sync"
)

// AllRepos subscribes to every key of a topic. A value published under
// AllRepos reaches every subscriber.
const AllRepos = ""

const (
	defaultBuffer = 64
	// Clicks must reach the store, so their subscribers get more room.
	clickBuffer = 1024
)

// CountChange announces a new display count for a repo. A nil Count means
// the counter service is unavailable and cards should show a placeholder.
type CountChange struct {
	Repo  string
	Count *string
}

// Known reports whether the change carries a count.
func (c CountChange) Known() bool {
	return c.Count != nil
}

// CountBatch is the outcome of one bulk refresh: every affected repo with
// its new display count, or nil when it is unavailable.
type CountBatch struct {
	Counts map[string]*string
}

// Change returns the change the batch carries for repo.
func (b CountBatch) Change(repo string) (CountChange, bool) {
	count, ok := b.Counts[repo]
	if !ok {
		return CountChange{}, false
	}
	return CountChange{Repo: repo, Count: count}, true
}

// Changes returns the batch as one change per repo, ordered by repo.
func (b CountBatch) Changes() []CountChange {
	out := make([]CountChange, 0, len(b.Counts))
	for repo, count := range b.Counts {
		out = append(out, CountChange{Repo: repo, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Repo < out[j].Repo })
	return out
}

// RepoClick signals that a repo's import control was activated.
type RepoClick struct {
	Repo string
}

// Bus groups the topics shared by the whole process. Counts carries single
// updates, Refreshes carries whole bulk refreshes as one value each.
type Bus struct {
	Counts    *Topic[CountChange]
	Refreshes *Topic[CountBatch]
	Clicks    *Topic[RepoClick]
}

// NewBus creates a bus with empty topics.
func NewBus() *Bus {
	clicks := NewTopic("clickrepo", func(c RepoClick) string { return c.Repo })
	clicks.buffer = clickBuffer
	return &Bus{
		Counts:    NewTopic("repoclickcountchange", func(c CountChange) string { return c.Repo }),
		Refreshes: NewTopic("repoclickcountrefresh", func(CountBatch) string { return AllRepos }),
		Clicks:    clicks,
	}
}

// Topic fans out values of one type to subscribers keyed by repo.
//
// Publish never blocks: a subscriber whose buffer is full is dropped and its
// channel closed, matching how a stalled SSE client is disconnected. Each
// subscriber sees values in publish order.
type Topic[T any] struct {
	name   string
	key    func(T) string
	buffer int

	mu   sync.Mutex
	subs map[*Subscription[T]]struct{}
}

// NewTopic creates a topic whose values are routed by key.
func NewTopic[T any](name string, key func(T) string) *Topic[T] {
	return &Topic[T]{
		name:   name,
		key:    key,
		buffer: defaultBuffer,
		subs:   make(map[*Subscription[T]]struct{}),
	}
}

// Name returns the topic name, also used as the browser event name.
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers a listener for one repo, or for every repo when key is
// AllRepos.
func (t *Topic[T]) Subscribe(key string) *Subscription[T] {
	s := &Subscription[T]{
		ch:    make(chan T, t.buffer),
		key:   key,
		topic: t,
	}
	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()
	return s
}

// Publish delivers v to every matching subscriber.
func (t *Topic[T]) Publish(v T) {
	k := t.key(v)

	t.mu.Lock()
	defer t.mu.Unlock()
	for s := range t.subs {
		if s.key != AllRepos && k != AllRepos && s.key != k {
			continue
		}
		select {
		case s.ch <- v:
		default:
			slog.Warn("subscriber channel full, removing", "topic", t.name, "key", s.key)
			delete(t.subs, s)
			close(s.ch)
		}
	}
}

// Len returns the number of live subscribers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Topic[T]) remove(s *Subscription[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.subs[s]; ok {
		delete(t.subs, s)
		close(s.ch)
	}
}

// Subscription is one listener on a topic.
type Subscription[T any] struct {
	ch    chan T
	key   string
	topic *Topic[T]
}

// C returns the delivery channel. It is closed when the subscription ends,
// either by Close or because the subscriber fell behind.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.topic.remove(s)
}

// Package card holds the per-record state behind an extension card: the copy
// tooltip, the click count badge, and the template view model.
package card

import (
	"context"
	"log/slog"
	"sync"

	"awesomearcade/internal/events"
	"awesomearcade/internal/models"
)

// Card is one mounted card listening for count updates of its repo.
type Card struct {
	record    models.ExtensionRecord
	bus       *events.Bus
	clipboard Clipboard

	mu      sync.Mutex
	tooltip TooltipState
	count   CountState
}

// New creates a card in the idle tooltip state with an unknown count.
func New(record models.ExtensionRecord, bus *events.Bus, cb Clipboard) *Card {
	return &Card{record: record, bus: bus, clipboard: cb}
}

// Repo returns the card's repo identifier.
func (c *Card) Repo() string {
	return c.record.Repo
}

// Activate copies the import URL and announces the click. The resulting
// tooltip state is returned along with the clipboard error, if any.
func (c *Card) Activate() (TooltipState, error) {
	err := c.clipboard.WriteAll(c.record.URL)

	c.mu.Lock()
	if err != nil {
		c.tooltip = TooltipCopyFailed
	} else {
		c.tooltip = TooltipCopied
	}
	state := c.tooltip
	c.mu.Unlock()

	if err != nil {
		slog.Warn("failed to copy import url", "repo", c.record.Repo, "tooltip", state, "error", err)
	}
	c.bus.Clicks.Publish(events.RepoClick{Repo: c.record.Repo})
	return state, err
}

// Hide dismisses the tooltip, returning it to idle.
func (c *Card) Hide() {
	c.mu.Lock()
	c.tooltip = TooltipIdle
	c.mu.Unlock()
}

// Tooltip returns the current tooltip state.
func (c *Card) Tooltip() TooltipState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip
}

// Count returns the current count state.
func (c *Card) Count() CountState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Apply folds a count change into the card. Changes for other repos are
// ignored.
func (c *Card) Apply(change events.CountChange) {
	if change.Repo != c.record.Repo {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !change.Known() {
		c.count = UnknownCount
		return
	}
	c.count = KnownCount(*change.Count)
}

// Watch subscribes to count changes for the card's repo, from single
// updates and bulk refreshes, and applies them in the background until ctx
// is done. The optional onChange callback runs after each applied change.
// The returned channel is closed once watching has stopped.
func (c *Card) Watch(ctx context.Context, onChange func(CountState)) <-chan struct{} {
	changes := c.bus.Counts.Subscribe(c.record.Repo)
	refreshes := c.bus.Refreshes.Subscribe(c.record.Repo)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer changes.Close()
		defer refreshes.Close()

		for {
			var change events.CountChange
			select {
			case <-ctx.Done():
				return
			case ch, ok := <-changes.C():
				if !ok {
					return
				}
				change = ch
			case batch, ok := <-refreshes.C():
				if !ok {
					return
				}
				if change, ok = batch.Change(c.record.Repo); !ok {
					continue
				}
			}
			c.Apply(change)
			if onChange != nil {
				onChange(c.Count())
			}
		}
	}()
	return done
}

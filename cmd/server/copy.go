package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"awesomearcade/internal/card"
	"awesomearcade/internal/catalog"
	"awesomearcade/internal/config"
	"awesomearcade/internal/counter"
	"awesomearcade/internal/events"
	"awesomearcade/internal/jobs"
	"awesomearcade/internal/validation"
)

var copyCmd = &cobra.Command{
	Use:   "copy <repo>",
	Short: "Copy an extension's import URL to the clipboard and register the click",
	Args:  cobra.ExactArgs(1),
	RunE:  runCopy,
}

func init() {
	copyCmd.Flags().String("snapshot", "", "Catalog snapshot to read (default <public>/extensions.json)")
	copyCmd.Flags().String("counter", "", "Click counter base URL (env COUNTER_URL)")
	copyCmd.Flags().Duration("timeout", 5*time.Second, "How long to wait for the updated click count")
	addCatalogFlags(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyCatalogFlags(cmd, cfg)
	if v, _ := cmd.Flags().GetString("counter"); v != "" {
		cfg.CounterURL = v
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	repo := validation.NormalizeRepo(args[0])
	if valid, msg := validation.ValidateRepo(repo); !valid {
		return errors.New(msg)
	}

	snapshot, _ := cmd.Flags().GetString("snapshot")
	if snapshot == "" {
		snapshot = filepath.Join(cfg.PublicDir, catalog.SnapshotFile)
	}
	cat, err := catalog.ReadSnapshot(snapshot)
	if err != nil {
		return err
	}
	record, ok := cat.Lookup(repo)
	if !ok {
		return fmt.Errorf("%s is not in the catalog", repo)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	bus := events.NewBus()
	refresher := jobs.NewRefresher(counter.NewClient(cfg.CounterURL), bus, 0)
	c := card.New(*record, bus, card.SystemClipboard{})

	clicks := bus.Clicks.Subscribe(repo)
	defer clicks.Close()

	watchCtx, stopWatch := context.WithCancel(ctx)
	updated := make(chan card.CountState, 1)
	watching := c.Watch(watchCtx, func(s card.CountState) {
		select {
		case updated <- s:
		default:
		}
	})
	defer func() {
		stopWatch()
		<-watching
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s by %s\n", record.Title, record.Author)
	fmt.Fprintln(out, record.URL)

	state, _ := c.Activate()
	fmt.Fprintln(out, state.Message())

	// Register the click the same way the page does.
	click := <-clicks.C()
	go refresher.Click(ctx, click.Repo)

	select {
	case s := <-updated:
		if s.Known {
			fmt.Fprintf(out, "%s clicks\n", s.Value)
		}
	case <-ctx.Done():
		fmt.Fprintln(out, "Click count unavailable")
	}
	c.Hide()
	return nil
}

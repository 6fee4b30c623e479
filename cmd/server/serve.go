package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"awesomearcade/internal/analytics"
	"awesomearcade/internal/catalog"
	"awesomearcade/internal/config"
	"awesomearcade/internal/counter"
	"awesomearcade/internal/db"
	"awesomearcade/internal/events"
	"awesomearcade/internal/handlers"
	"awesomearcade/internal/jobs"
	"awesomearcade/internal/metrics"
	"awesomearcade/internal/models"
	"awesomearcade/internal/renderer"
	"awesomearcade/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site, the click counter API and live count updates",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (env SERVER_ADDR)")
	serveCmd.Flags().String("backend", "", "Click counter backend: postgres, redis or memory (env COUNTER_BACKEND)")
	addCatalogFlags(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	applyCatalogFlags(cmd, cfg)
	if v, _ := cmd.Flags().GetString("address"); v != "" {
		cfg.ServerAddr = v
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.CounterBackend = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	site, err := config.LoadSiteConfig(cfg.SiteConfigFile)
	if err != nil {
		return fmt.Errorf("load site config: %w", err)
	}

	// The catalog is required: a malformed source stops the server.
	loader := catalog.NewLoader(renderer.New())
	cat, err := loadCatalog(loader, cfg)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	holder := catalog.NewHolder(cat)

	store, pinger, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Ensure(ctx, cat.Repos()); err != nil {
		log.Printf("Warning: failed to initialize click counters: %v", err)
	}
	metrics.Init(store)

	bus := events.NewBus()
	tracker := analytics.NewTracker(nil, cfg.SearchDebounce)
	defer tracker.Close()
	refresher := jobs.NewRefresher(counter.NewClient(cfg.CounterURL), bus, cfg.RefreshInterval)

	srv := server.New(cfg, site)
	if err := srv.RegisterRoutes(ctx, server.Deps{
		Catalog: holder,
		Store:   store,
		Counts:  refresher,
		Bus:     bus,
		Tracker: tracker,
		Pinger:  pinger,
	}); err != nil {
		return err
	}

	// The refresher may poll this server's own API, so it starts once the
	// listener is up.
	listening := make(chan struct{})
	srv.App.Hooks().OnListen(func(fiber.ListenData) error {
		close(listening)
		return nil
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		select {
		case <-listening:
		case <-gctx.Done():
			return nil
		}
		return refresher.Run(gctx)
	})
	if cfg.WatchCatalog {
		watcher, err := catalog.NewWatcher(loader, holder, buildOptions(cfg))
		if err != nil {
			log.Printf("Warning: catalog hot reload disabled: %v", err)
		} else {
			g.Go(func() error { return watcher.Run(gctx) })
		}
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Server exited")
	return nil
}

// loadCatalog builds from the XML source. Without a source, a snapshot
// written by an earlier build is served instead.
func loadCatalog(loader *catalog.Loader, cfg *config.Config) (*models.Catalog, error) {
	cat, err := loader.Build(buildOptions(cfg))
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	snapshot := filepath.Join(cfg.PublicDir, catalog.SnapshotFile)
	log.Printf("Catalog source %s not found, serving snapshot %s", cfg.CatalogPath, snapshot)
	return catalog.ReadSnapshot(snapshot)
}

// openStore connects the configured click counter backend.
func openStore(ctx context.Context, cfg *config.Config) (counter.Store, handlers.Pinger, func(), error) {
	switch cfg.CounterBackend {
	case config.BackendMemory:
		log.Println("Click counts are kept in memory and reset on restart")
		return counter.NewMemoryStore(), nil, func() {}, nil

	case config.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, nil, nil, errors.New("REDIS_URL is required for the redis counter backend")
		}
		store, err := counter.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() { store.Close() }, nil

	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			database.Close()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Migrations completed successfully")
		return counter.NewPostgresStore(database), database, database.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown counter backend %q", cfg.CounterBackend)
	}
}

// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"awesomearcade/internal/db"
	"awesomearcade/internal/models"
)

// TestDB creates a test database connection and returns a cleanup function.
// Uses TEST_DATABASE_URL and skips the test when it is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	pool.Exec(ctx, "DELETE FROM click_counts")
}

// Catalog returns a small catalog: two extensions, one forking the other
// and one depreciated by the other, plus a tool in a second category.
func Catalog() *models.Catalog {
	return &models.Catalog{Categories: []models.Category{
		{Label: "Extensions", Records: []models.ExtensionRecord{
			{
				Repo:        "foo-ext",
				Type:        models.TypeExtension,
				Title:       "Foo Extension",
				Author:      "alice",
				URL:         "https://github.com/alice/foo-ext",
				Description: "<p>Does foo things.</p>",
				Links:       []models.URLLink{{URL: "https://alice.example/foo", Label: "Docs"}},
				Forks:       []models.ExtensionRef{{Repo: "bar-ext"}},
			},
			{
				Repo:          "bar-ext",
				Type:          models.TypeExtension,
				Title:         "Bar Extension",
				Author:        "bob",
				URL:           "https://github.com/bob/bar-ext",
				Description:   "<p>Does bar things.</p>",
				Links:         []models.URLLink{},
				DepreciatedBy: []models.ExtensionRef{{Repo: "foo-ext"}},
			},
		}},
		{Label: "Tools", Records: []models.ExtensionRecord{
			{
				Repo:        "foo-tool",
				Type:        models.TypeTool,
				Title:       "Foo Tool",
				Author:      "carol",
				URL:         "https://carol.example/foo-tool",
				Description: "<p>A tool.</p>",
				Links:       []models.URLLink{},
			},
		}},
	}}
}

// Package search filters the catalog by a free-text query.
//
// Filtering is a pure function of (catalog, query). The canonical catalog is
// never touched: the empty query returns it as-is, any other query works on
// a deep copy. Categories that lose all their records are kept, so the page
// layout stays stable while the user types.
package search

import (
	"fmt"
	"strings"

	"awesomearcade/internal/models"
)

// Result is the filtered view of a catalog. Counts is nil when no search is
// active.
type Result struct {
	Query   string
	Catalog *models.Catalog
	Counts  *models.CountSummary
}

// Active reports whether the result comes from a non-empty query.
func (r Result) Active() bool {
	return r.Counts != nil
}

// Filter returns the records whose repo identifier contains query,
// case-insensitively, with both sides trimmed. Only the empty string means
// no search; a query of spaces is active and matches every record.
func Filter(cat *models.Catalog, query string) Result {
	if query == "" {
		return Result{Query: query, Catalog: cat}
	}
	needle := normalize(query)

	filtered := cat.Clone()
	counts := &models.CountSummary{}
	for i := range filtered.Categories {
		records := filtered.Categories[i].Records
		kept := records[:0]
		for _, rec := range records {
			if !Matches(rec.Repo, needle) {
				continue
			}
			kept = append(kept, rec)
			switch rec.Type {
			case models.TypeExtension:
				counts.Extensions++
			case models.TypeTool:
				counts.Tools++
			}
		}
		filtered.Categories[i].Records = kept
	}

	return Result{Query: query, Catalog: filtered, Counts: counts}
}

// Matches reports whether repo contains query under the search normalisation.
func Matches(repo, query string) bool {
	return strings.Contains(normalize(repo), normalize(query))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Summary renders the result count line shown above the list, e.g.
// "Found 1 extension and 2 tools.".
func Summary(c models.CountSummary) string {
	return fmt.Sprintf("Found %d extension%s and %d tool%s.",
		c.Extensions, plural(c.Extensions), c.Tools, plural(c.Tools))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

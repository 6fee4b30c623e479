package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"awesomearcade/internal/card"
	"awesomearcade/internal/catalog"
	"awesomearcade/internal/config"
	"awesomearcade/internal/models"
	"awesomearcade/internal/renderer"
	"awesomearcade/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog snapshot from the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("type", "", "Only show records of this type (Extension or Tool)")
	addCatalogFlags(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyCatalogFlags(cmd, cfg)

	var only models.RecordType
	if v, _ := cmd.Flags().GetString("type"); v != "" {
		t, err := models.ParseRecordType(v)
		if err != nil {
			return err
		}
		only = t
	}

	cat, err := catalog.ReadSnapshot(filepath.Join(cfg.PublicDir, catalog.SnapshotFile))
	if err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	res := search.Filter(cat, query)

	out := cmd.OutOrStdout()
	if res.Active() {
		fmt.Fprintln(out, search.Summary(*res.Counts))
	}
	for _, category := range res.Catalog.Categories {
		fmt.Fprintf(out, "\n%s\n", category.Label)
		shown := 0
		for _, rec := range category.Records {
			if only != "" && rec.Type != only {
				continue
			}
			shown++
			fmt.Fprintf(out, "  %s (%s) by %s\n", rec.Title, rec.Repo, rec.Author)
			if desc := renderer.PlainText(rec.Description); desc != "" {
				fmt.Fprintf(out, "    %s\n", desc)
			}
		}
		if shown == 0 {
			fmt.Fprintln(out, "  "+card.NoResultsMessage)
		}
	}
	return nil
}

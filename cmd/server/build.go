package main

import (
	"github.com/spf13/cobra"

	"awesomearcade/internal/catalog"
	"awesomearcade/internal/config"
	"awesomearcade/internal/renderer"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build extensions.json and site.webmanifest from the catalog source",
	Long: `Parse the catalog source and write the public artifacts. A malformed
catalog fails the build and nothing is written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		applyCatalogFlags(cmd, cfg)
		_, err := catalog.NewLoader(renderer.New()).Build(buildOptions(cfg))
		return err
	},
}

func init() {
	addCatalogFlags(buildCmd)
}

func addCatalogFlags(cmd *cobra.Command) {
	cmd.Flags().String("catalog", "", "Path to the catalog XML source (env CATALOG_PATH)")
	cmd.Flags().String("public", "", "Directory for generated artifacts (env PUBLIC_DIR)")
}

func applyCatalogFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	if v, _ := cmd.Flags().GetString("public"); v != "" {
		cfg.PublicDir = v
	}
}

func buildOptions(cfg *config.Config) catalog.BuildOptions {
	return catalog.BuildOptions{
		SourcePath:      cfg.CatalogPath,
		PublicDir:       cfg.PublicDir,
		SiteTitle:       cfg.SiteTitle,
		SiteDescription: cfg.SiteDescription,
	}
}

package catalog

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"awesomearcade/internal/models"
)

// BuildOptions controls where the build step reads and writes.
type BuildOptions struct {
	SourcePath      string
	PublicDir       string
	SiteTitle       string
	SiteDescription string
}

// Build runs the build-time pipeline: parse the source, then publish the
// JSON snapshot and web manifest. No artifact is written if parsing fails.
func (l *Loader) Build(opts BuildOptions) (*models.Catalog, error) {
	cat, err := l.LoadFile(opts.SourcePath)
	if err != nil {
		return nil, err
	}

	snapshotPath := filepath.Join(opts.PublicDir, SnapshotFile)
	if err := WriteSnapshot(snapshotPath, cat); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	manifestPath := filepath.Join(opts.PublicDir, ManifestFile)
	if err := WriteManifest(manifestPath, NewManifest(opts.SiteTitle, opts.SiteDescription)); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	slog.Info("catalog built",
		"source", opts.SourcePath,
		"categories", len(cat.Categories),
		"records", cat.Len(),
		"snapshot", snapshotPath)
	return cat, nil
}

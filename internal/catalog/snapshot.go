package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"awesomearcade/internal/models"
)

// SnapshotFile is the public JSON artifact name for external consumers.
const SnapshotFile = "extensions.json"

// WriteSnapshot writes the catalog as indented JSON. The file is replaced
// atomically so readers never see a partial artifact.
func WriteSnapshot(path string, cat *models.Catalog) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// ReadSnapshot loads a catalog previously written by WriteSnapshot.
func ReadSnapshot(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog snapshot: %w", err)
	}
	var cat models.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return &cat, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return os.Rename(tmpName, path)
}

package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"frameforge/internal/catalog/migrations"
	"frameforge/internal/config"
)

// NewCatalogFromConfig creates a Catalog based on the catalog config type
// and brings its schema up to date.
func NewCatalogFromConfig(cfg config.CatalogConfig) (*Catalog, error) {
	var path string
	switch cfg.Type {
	case "memory":
		path = ":memory:"
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite catalog requires data_dir to be set")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating catalog data directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, "frameforge.db")
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}

	c, err := Open(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(c.db); err != nil {
		c.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}

	return c, nil
}

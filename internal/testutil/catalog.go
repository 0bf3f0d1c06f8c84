package testutil

import (
	"testing"

	"frameforge/internal/catalog"
	"frameforge/internal/catalog/migrations"
)

// NewTestCatalog creates a new in-memory SQLite catalog with schema applied.
// The catalog is automatically closed when the test completes.
func NewTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}

	if err := migrations.MigrateUp(c.DB()); err != nil {
		c.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		c.Close()
	})

	return c
}

// Package sqlite provides the public API for the SQLite catalog backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/brightmill/storefront/internal/sqlite"
	"github.com/brightmill/storefront/pkg/catalog"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(catalog.Config{
//	    Backend: catalog.BackendSQLite,
//	    DataDir: ".storefront-db",
//	})
//	defer backend.Detach()
func NewBackend() catalog.Catalog {
	return sqlite.NewBackend()
}

// SeedDemo fills an attached catalog with a small demo store when no store
// exists yet, and returns the demo store's id.
func SeedDemo(cat catalog.Catalog) (string, error) {
	return sqlite.SeedDemo(cat)
}

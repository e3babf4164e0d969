package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/brightmill/storefront/pkg/catalog"
)

// Backend implements catalog.Catalog using SQLite as the query engine and
// JSONL document files as the source of truth. The database file is
// rebuilt from the JSONL files on every Attach; every mutation rewrites
// the affected kind's JSONL file atomically.
type Backend struct {
	mu          sync.RWMutex
	attached    bool
	config      catalog.Config
	db          *sql.DB
	collections map[catalog.Kind]*collection
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		collections: make(map[catalog.Kind]*collection),
	}
}

// Collection returns the collection for the given entity kind.
// Returns catalog.ErrUnknownKind for kinds outside the catalog schema and
// catalog.ErrCatalogDetached when the backend is not attached.
func (b *Backend) Collection(kind catalog.Kind) (catalog.Collection, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, catalog.ErrCatalogDetached
	}

	col, ok := b.collections[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownKind, kind)
	}
	return col, nil
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist, rebuilds the SQLite index, and loads the
// JSONL document files. Returns catalog.ErrAlreadyAttached if already
// attached.
func (b *Backend) Attach(config catalog.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return catalog.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The database is an index over the JSONL documents. Remove any stale
	// file so the schema and contents are rebuilt from scratch.
	dbPath := filepath.Join(config.DataDir, "catalog.db")
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	if err := initJSONLFiles(config.DataDir); err != nil {
		db.Close()
		return fmt.Errorf("initializing document files: %w", err)
	}

	if err := loadAllJSONL(db, config.DataDir); err != nil {
		db.Close()
		return fmt.Errorf("loading documents: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true

	for _, kind := range catalog.Kinds() {
		b.collections[kind] = &collection{backend: b, def: catalog.MustDef(kind)}
	}

	return nil
}

// Detach releases all resources held by the backend. After Detach, all
// operations return catalog.ErrCatalogDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.collections = make(map[catalog.Kind]*collection)

	return nil
}

// Referenced reports whether any record still references id. Store
// ownership counts: a store id is referenced while the store holds records.
func (b *Backend) Referenced(id string) (bool, error) {
	db, err := b.handle()
	if err != nil {
		return false, err
	}
	if id == "" {
		return false, catalog.ErrInvalidID
	}

	var one int
	err = db.QueryRow("SELECT 1 FROM record_refs WHERE ref_id = ? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking references to %s: %w", id, err)
	}
	return true, nil
}

// handle returns the open database, or catalog.ErrCatalogDetached.
func (b *Backend) handle() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, catalog.ErrCatalogDetached
	}
	return b.db, nil
}

// dataDir returns the attached data directory.
func (b *Backend) dataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// generateUUID generates a new UUID v7 for record IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

package catalog

import "errors"

// Collection provides uniform CRUD over the records of one entity kind.
type Collection interface {
	// Get retrieves the record with the given ID.
	// Returns ErrNotFound if no record exists with that ID.
	Get(id string) (Record, error)

	// Put creates or updates a record. When id is empty a new UUID v7 is
	// generated and timestamps are set; otherwise the existing record is
	// replaced, its creation time preserved and its update time touched.
	// Returns the actual ID used (generated or provided).
	Put(id string, rec Record) (string, error)

	// Delete removes the record with the given ID.
	// Returns ErrNotFound if no record exists with that ID.
	Delete(id string) error

	// List returns records matching the query, newest first.
	List(q Query) ([]Record, error)
}

// Query filters a Collection.List call.
type Query struct {
	// StoreID scopes the listing to one store. Empty means no scope
	// filter, which is only meaningful for the stores collection.
	StoreID string

	// Fields holds equality filters on field values.
	Fields map[string]any

	Limit  int
	Offset int
}

// Collection operation errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidID   = errors.New("invalid record id")
	ErrInvalidData = errors.New("invalid record data")
)

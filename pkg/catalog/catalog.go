package catalog

import "errors"

// Catalog provides access to the record collections of one deployment.
// Implementations attach to a storage backend and expose one Collection per
// entity kind.
type Catalog interface {
	// Attach initializes the backend from the configuration. Returns
	// ErrAlreadyAttached when called twice without Detach.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent; after Detach all
	// collection operations return ErrCatalogDetached.
	Detach() error

	// Collection returns the collection holding records of the given kind.
	Collection(kind Kind) (Collection, error)

	// Referenced reports whether any record still references id. Store
	// ownership counts as a reference, so a store with records is
	// referenced until they are removed.
	Referenced(id string) (bool, error)
}

// Catalog lifecycle errors.
var (
	ErrCatalogDetached = errors.New("catalog not attached")
	ErrAlreadyAttached = errors.New("catalog already attached")
)

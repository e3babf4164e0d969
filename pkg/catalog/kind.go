package catalog

import "errors"

// Kind identifies an entity type stored in the catalog.
type Kind string

// Entity kinds. KindStore is the tenancy root; every other kind is owned by
// a store.
const (
	KindStore     Kind = "store"
	KindBillboard Kind = "billboard"
	KindCategory  Kind = "category"
	KindSize      Kind = "size"
	KindColor     Kind = "color"
	KindProduct   Kind = "product"
)

// ErrUnknownKind is returned when a kind or collection segment is not part
// of the catalog.
var ErrUnknownKind = errors.New("unknown entity kind")

// Kinds returns all entity kinds in definition order.
func Kinds() []Kind {
	return []Kind{KindStore, KindBillboard, KindCategory, KindSize, KindColor, KindProduct}
}

// Valid reports whether k names a defined entity kind.
func (k Kind) Valid() bool {
	_, ok := definitions[k]
	return ok
}

// Scoped reports whether records of this kind are owned by a store.
// Stores themselves are top-level.
func (k Kind) Scoped() bool {
	return k != KindStore
}

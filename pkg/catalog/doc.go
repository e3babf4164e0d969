// Package catalog defines the record model, entity definitions, and storage
// interfaces for the storefront catalog system. Every entity kind (store,
// billboard, category, product, size, color) is described by a Definition:
// a declarative field table that drives validation, list projections, and
// the generated endpoint reference. Adding an entity kind means adding one
// Definition.
package catalog

package catalog

import "errors"

// Request payloads for the admin service operations. The REST layer and the
// console client both speak in these shapes.

// ErrStoreRequired is returned when a store-scoped operation arrives without
// a store id.
var ErrStoreRequired = errors.New("store id required")

// CreateRecordRequest creates a record of Kind in the given store. StoreID
// must be empty when Kind is KindStore.
type CreateRecordRequest struct {
	StoreID string
	Kind    Kind
	Fields  Fields
}

// UpdateRecordRequest replaces the field set of an existing record. The
// record must belong to the given store scope.
type UpdateRecordRequest struct {
	StoreID string
	Kind    Kind
	ID      string
	Fields  Fields
}

// DeleteRecordRequest removes a record, subject to the definition's delete
// guard.
type DeleteRecordRequest struct {
	StoreID string
	Kind    Kind
	ID      string
}

// GetRecordRequest fetches one record within a store scope.
type GetRecordRequest struct {
	StoreID string
	Kind    Kind
	ID      string
}

// ListRecordsRequest lists a store's records of one kind, newest first.
// Filter holds optional field equality filters.
type ListRecordsRequest struct {
	StoreID string
	Kind    Kind
	Filter  map[string]any
}

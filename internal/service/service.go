// Package service implements the admin operations over a catalog: CRUD with
// per-definition validation, store tenancy, reference checks, delete
// guards, and the record event feed.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/brightmill/storefront/internal/events"
	"github.com/brightmill/storefront/internal/logx"
	"github.com/brightmill/storefront/pkg/catalog"
)

// Service exposes the admin operations. All methods are safe for concurrent
// use when the underlying catalog is.
type Service struct {
	catalog catalog.Catalog
	sink    events.Sink
}

// New constructs the admin service. A nil sink disables the event feed.
func New(cat catalog.Catalog, sink events.Sink) *Service {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Service{catalog: cat, sink: sink}
}

// scopeStoreID normalizes the store id for a definition: store-scoped kinds
// require one, the stores kind ignores any given.
func scopeStoreID(def catalog.Definition, storeID string) (string, error) {
	if !def.Kind.Scoped() {
		return "", nil
	}
	if storeID == "" {
		return "", fmt.Errorf("%s: %w", def.Kind, catalog.ErrStoreRequired)
	}
	return storeID, nil
}

// requireStore verifies the store exists before hanging records off it.
func (s *Service) requireStore(storeID string) error {
	stores, err := s.catalog.Collection(catalog.KindStore)
	if err != nil {
		return err
	}
	if _, err := stores.Get(storeID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("store %s: %w", storeID, catalog.ErrNotFound)
		}
		return err
	}
	return nil
}

// fetchScoped retrieves a record and enforces store tenancy: a record of
// another store is indistinguishable from a missing one.
func fetchScoped(col catalog.Collection, def catalog.Definition, storeID, id string) (catalog.Record, error) {
	rec, err := col.Get(id)
	if err != nil {
		return catalog.Record{}, err
	}
	if def.Kind.Scoped() && rec.StoreID != storeID {
		return catalog.Record{}, fmt.Errorf("%s %s: %w", def.Kind, id, catalog.ErrNotFound)
	}
	return rec, nil
}

// checkReferences verifies every reference field points at a live record of
// the referenced kind in the same store. Failures come back as field
// messages, same as the validator's.
func (s *Service) checkReferences(def catalog.Definition, storeID string, fields catalog.Fields) error {
	problems := make(map[string]string)

	for _, f := range def.References() {
		refID := fields.String(f.Name)
		if refID == "" {
			continue // required-ness is the validator's call
		}
		col, err := s.catalog.Collection(f.Ref)
		if err != nil {
			return err
		}
		ref, err := col.Get(refID)
		if errors.Is(err, catalog.ErrNotFound) {
			problems[f.Name] = f.Label + " not found in this store"
			continue
		}
		if err != nil {
			return err
		}
		if ref.StoreID != storeID {
			problems[f.Name] = f.Label + " not found in this store"
		}
	}

	if len(problems) > 0 {
		return &catalog.ValidationError{Fields: problems}
	}
	return nil
}

// publish emits one event. Feed failures are logged and never fail the
// operation that produced them.
func (s *Service) publish(ctx context.Context, op events.Op, rec catalog.Record) {
	if err := s.sink.Publish(ctx, events.New(op, rec)); err != nil {
		logx.WithRecord(ctx, rec.StoreID, rec.Kind, rec.ID).Warn("event publish failed", "error", err)
	}
}

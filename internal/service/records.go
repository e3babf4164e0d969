package service

import (
	"context"

	"github.com/brightmill/storefront/internal/events"
	"github.com/brightmill/storefront/internal/logx"
	"github.com/brightmill/storefront/pkg/catalog"
)

// CreateRecord validates the fields, verifies references inside the store,
// and persists a new record with a generated id.
func (s *Service) CreateRecord(ctx context.Context, req catalog.CreateRecordRequest) (catalog.Record, error) {
	def, err := catalog.Def(req.Kind)
	if err != nil {
		return catalog.Record{}, err
	}
	storeID, err := scopeStoreID(def, req.StoreID)
	if err != nil {
		return catalog.Record{}, err
	}
	if def.Kind.Scoped() {
		if err := s.requireStore(storeID); err != nil {
			return catalog.Record{}, err
		}
	}

	if err := catalog.Validate(def, req.Fields); err != nil {
		return catalog.Record{}, err
	}
	if err := s.checkReferences(def, storeID, req.Fields); err != nil {
		return catalog.Record{}, err
	}

	col, err := s.catalog.Collection(def.Kind)
	if err != nil {
		return catalog.Record{}, err
	}
	id, err := col.Put("", catalog.Record{
		StoreID: storeID,
		Kind:    def.Kind,
		Fields:  req.Fields,
	})
	if err != nil {
		return catalog.Record{}, err
	}
	rec, err := col.Get(id)
	if err != nil {
		return catalog.Record{}, err
	}

	logx.WithRecord(ctx, rec.StoreID, rec.Kind, rec.ID).Info("record created")
	s.publish(ctx, events.OpCreated, rec)
	return rec, nil
}

// UpdateRecord replaces the field set of an existing record. The id, kind,
// owning store, and creation time never change.
func (s *Service) UpdateRecord(ctx context.Context, req catalog.UpdateRecordRequest) (catalog.Record, error) {
	def, err := catalog.Def(req.Kind)
	if err != nil {
		return catalog.Record{}, err
	}
	storeID, err := scopeStoreID(def, req.StoreID)
	if err != nil {
		return catalog.Record{}, err
	}

	col, err := s.catalog.Collection(def.Kind)
	if err != nil {
		return catalog.Record{}, err
	}
	if _, err := fetchScoped(col, def, storeID, req.ID); err != nil {
		return catalog.Record{}, err
	}

	if err := catalog.Validate(def, req.Fields); err != nil {
		return catalog.Record{}, err
	}
	if err := s.checkReferences(def, storeID, req.Fields); err != nil {
		return catalog.Record{}, err
	}

	if _, err := col.Put(req.ID, catalog.Record{Fields: req.Fields}); err != nil {
		return catalog.Record{}, err
	}
	rec, err := col.Get(req.ID)
	if err != nil {
		return catalog.Record{}, err
	}

	logx.WithRecord(ctx, rec.StoreID, rec.Kind, rec.ID).Info("record updated")
	s.publish(ctx, events.OpUpdated, rec)
	return rec, nil
}

// DeleteRecord removes a record unless other records still reference it, in
// which case a *catalog.ConflictError carries the definition's guidance and
// nothing changes.
func (s *Service) DeleteRecord(ctx context.Context, req catalog.DeleteRecordRequest) error {
	def, err := catalog.Def(req.Kind)
	if err != nil {
		return err
	}
	storeID, err := scopeStoreID(def, req.StoreID)
	if err != nil {
		return err
	}

	col, err := s.catalog.Collection(def.Kind)
	if err != nil {
		return err
	}
	rec, err := fetchScoped(col, def, storeID, req.ID)
	if err != nil {
		return err
	}

	if def.Guard != "" {
		referenced, err := s.catalog.Referenced(req.ID)
		if err != nil {
			return err
		}
		if referenced {
			return &catalog.ConflictError{Kind: def.Kind, Message: def.Guard}
		}
	}

	if err := col.Delete(req.ID); err != nil {
		return err
	}

	logx.WithRecord(ctx, rec.StoreID, rec.Kind, rec.ID).Info("record deleted")
	s.publish(ctx, events.OpDeleted, rec)
	return nil
}

// GetRecord fetches one record within the store scope.
func (s *Service) GetRecord(ctx context.Context, req catalog.GetRecordRequest) (catalog.Record, error) {
	def, err := catalog.Def(req.Kind)
	if err != nil {
		return catalog.Record{}, err
	}
	storeID, err := scopeStoreID(def, req.StoreID)
	if err != nil {
		return catalog.Record{}, err
	}
	col, err := s.catalog.Collection(def.Kind)
	if err != nil {
		return catalog.Record{}, err
	}
	return fetchScoped(col, def, storeID, req.ID)
}

// ListRecords lists a store's records of one kind, newest first. Filter
// keys must name defined fields.
func (s *Service) ListRecords(ctx context.Context, req catalog.ListRecordsRequest) ([]catalog.Record, error) {
	def, err := catalog.Def(req.Kind)
	if err != nil {
		return nil, err
	}
	storeID, err := scopeStoreID(def, req.StoreID)
	if err != nil {
		return nil, err
	}

	for name := range req.Filter {
		if _, ok := def.Field(name); !ok {
			return nil, &catalog.ValidationError{Fields: map[string]string{name: "Unknown field"}}
		}
	}

	col, err := s.catalog.Collection(def.Kind)
	if err != nil {
		return nil, err
	}
	return col.List(catalog.Query{StoreID: storeID, Fields: req.Filter})
}

// EndpointList generates the REST reference for one entity kind against the
// given service origin.
func (s *Service) EndpointList(storeID string, kind catalog.Kind, baseURL string) ([]catalog.Endpoint, error) {
	def, err := catalog.Def(kind)
	if err != nil {
		return nil, err
	}
	storeID, err = scopeStoreID(def, storeID)
	if err != nil {
		return nil, err
	}
	return catalog.Endpoints(def, baseURL, storeID), nil
}

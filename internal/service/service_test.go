package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightmill/storefront/internal/events"
	"github.com/brightmill/storefront/internal/sqlite"
	"github.com/brightmill/storefront/pkg/catalog"
)

type captureSink struct {
	events []events.Event
}

func (s *captureSink) Publish(_ context.Context, event events.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *captureSink) {
	t.Helper()

	backend := sqlite.NewBackend()
	cfg := catalog.Config{Backend: catalog.BackendSQLite, DataDir: t.TempDir()}
	require.NoError(t, backend.Attach(cfg))
	t.Cleanup(func() { _ = backend.Detach() })

	sink := &captureSink{}
	return New(backend, sink), sink
}

func createStore(t *testing.T, svc *Service, name string) string {
	t.Helper()
	rec, err := svc.CreateRecord(context.Background(), catalog.CreateRecordRequest{
		Kind:   catalog.KindStore,
		Fields: catalog.Fields{"name": name},
	})
	require.NoError(t, err)
	return rec.ID
}

func createBillboard(t *testing.T, svc *Service, storeID, label string) catalog.Record {
	t.Helper()
	rec, err := svc.CreateRecord(context.Background(), catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindBillboard,
		Fields:  catalog.Fields{"label": label, "imageUrl": "http://cdn.example.com/b.png"},
	})
	require.NoError(t, err)
	return rec
}

// seedOptions creates the records a product form needs to reference.
func seedOptions(t *testing.T, svc *Service, storeID string) (categoryID, sizeID, colorID string) {
	t.Helper()
	ctx := context.Background()

	billboard := createBillboard(t, svc, storeID, "Hero")
	category, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindCategory,
		Fields:  catalog.Fields{"name": "Hats", "billboardId": billboard.ID},
	})
	require.NoError(t, err)
	size, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindSize,
		Fields:  catalog.Fields{"name": "Medium", "value": "M"},
	})
	require.NoError(t, err)
	color, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindColor,
		Fields:  catalog.Fields{"name": "Forest", "value": "#228b22"},
	})
	require.NoError(t, err)
	return category.ID, size.ID, color.ID
}

func productFields(categoryID, sizeID, colorID string) catalog.Fields {
	return catalog.Fields{
		"name":       "Wool Beanie",
		"price":      "24.99",
		"categoryId": categoryID,
		"sizeId":     sizeID,
		"colorId":    colorID,
		"images":     []string{"http://cdn.example.com/beanie.png"},
		"isFeatured": true,
		"isArchived": false,
	}
}

func TestCreateStore(t *testing.T) {
	svc, sink := newTestService(t)

	rec, err := svc.CreateRecord(context.Background(), catalog.CreateRecordRequest{
		Kind:   catalog.KindStore,
		Fields: catalog.Fields{"name": "Acme Outfitters"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, catalog.KindStore, rec.Kind)
	require.Empty(t, rec.StoreID)
	require.False(t, rec.CreatedAt.IsZero())

	require.Len(t, sink.events, 1)
	require.Equal(t, events.OpCreated, sink.events[0].Op)
	require.Equal(t, rec.ID, sink.events[0].RecordID)
}

func TestCreateScopedRequiresStore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		Kind:   catalog.KindBillboard,
		Fields: catalog.Fields{"label": "x", "imageUrl": "y"},
	})
	require.ErrorIs(t, err, catalog.ErrStoreRequired)

	_, err = svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: "no-such-store",
		Kind:    catalog.KindBillboard,
		Fields:  catalog.Fields{"label": "x", "imageUrl": "y"},
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCreateValidationBlocksWrite(t *testing.T) {
	svc, sink := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	sink.events = nil

	_, err := svc.CreateRecord(context.Background(), catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindBillboard,
		Fields:  catalog.Fields{"label": "   ", "imageUrl": "http://cdn.example.com/b.png"},
	})

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Label is required", verr.Fields["label"])

	// Invalid input causes no write and no event.
	require.Empty(t, sink.events)
	records, err := svc.ListRecords(context.Background(), catalog.ListRecordsRequest{
		StoreID: storeID,
		Kind:    catalog.KindBillboard,
	})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestCreateRejectsUnknownKindAndField(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	ctx := context.Background()

	_, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    "warehouse",
		Fields:  catalog.Fields{},
	})
	require.ErrorIs(t, err, catalog.ErrUnknownKind)

	_, err = svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindSize,
		Fields:  catalog.Fields{"name": "M", "value": "M", "weight": "heavy"},
	})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Unknown field", verr.Fields["weight"])
}

func TestCreateChecksReferencesInStore(t *testing.T) {
	svc, _ := newTestService(t)
	storeA := createStore(t, svc, "Store A")
	storeB := createStore(t, svc, "Store B")
	ctx := context.Background()

	_, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeA,
		Kind:    catalog.KindCategory,
		Fields:  catalog.Fields{"name": "Hats", "billboardId": "no-such-billboard"},
	})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Billboard not found in this store", verr.Fields["billboardId"])

	// A billboard of another store is just as unusable.
	foreign := createBillboard(t, svc, storeB, "Foreign")
	_, err = svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeA,
		Kind:    catalog.KindCategory,
		Fields:  catalog.Fields{"name": "Hats", "billboardId": foreign.ID},
	})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Billboard not found in this store", verr.Fields["billboardId"])
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	categoryID, sizeID, colorID := seedOptions(t, svc, storeID)

	rec, err := svc.CreateRecord(context.Background(), catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindProduct,
		Fields:  productFields(categoryID, sizeID, colorID),
	})
	require.NoError(t, err)
	require.Equal(t, "24.99", rec.Fields.String("price"))
	require.Equal(t, []string{"http://cdn.example.com/beanie.png"}, rec.Fields.Strings("images"))
	require.Equal(t, true, rec.Fields.Bool("isFeatured"))
}

func TestUpdateRecord(t *testing.T) {
	svc, sink := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	original := createBillboard(t, svc, storeID, "Summer")
	sink.events = nil

	updated, err := svc.UpdateRecord(context.Background(), catalog.UpdateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindBillboard,
		ID:      original.ID,
		Fields:  catalog.Fields{"label": "Winter", "imageUrl": "http://cdn.example.com/w.png"},
	})
	require.NoError(t, err)
	require.Equal(t, original.ID, updated.ID)
	require.Equal(t, storeID, updated.StoreID)
	require.Equal(t, "Winter", updated.Fields.String("label"))
	require.True(t, updated.CreatedAt.Equal(original.CreatedAt))
	require.False(t, updated.UpdatedAt.Before(original.UpdatedAt))

	require.Len(t, sink.events, 1)
	require.Equal(t, events.OpUpdated, sink.events[0].Op)
}

func TestUpdateScopeMiss(t *testing.T) {
	svc, _ := newTestService(t)
	storeA := createStore(t, svc, "Store A")
	storeB := createStore(t, svc, "Store B")
	rec := createBillboard(t, svc, storeA, "Summer")

	_, err := svc.UpdateRecord(context.Background(), catalog.UpdateRecordRequest{
		StoreID: storeB,
		Kind:    catalog.KindBillboard,
		ID:      rec.ID,
		Fields:  catalog.Fields{"label": "Stolen", "imageUrl": "u"},
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	// The record is untouched.
	got, err := svc.GetRecord(context.Background(), catalog.GetRecordRequest{
		StoreID: storeA,
		Kind:    catalog.KindBillboard,
		ID:      rec.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "Summer", got.Fields.String("label"))
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := createStore(t, svc, "Acme")

	_, err := svc.UpdateRecord(context.Background(), catalog.UpdateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindBillboard,
		ID:      "no-such-id",
		Fields:  catalog.Fields{"label": "x", "imageUrl": "y"},
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteGuardedByReferences(t *testing.T) {
	svc, sink := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	billboard := createBillboard(t, svc, storeID, "Hero")
	category, err := svc.CreateRecord(context.Background(), catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindCategory,
		Fields:  catalog.Fields{"name": "Hats", "billboardId": billboard.ID},
	})
	require.NoError(t, err)
	ctx := context.Background()
	sink.events = nil

	// The store holds records; deleting it is blocked with store guidance.
	err = svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{Kind: catalog.KindStore, ID: storeID})
	var conflict *catalog.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "Make sure you removed all products and categories first.", conflict.Message)

	// The billboard is used by a category.
	err = svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		StoreID: storeID, Kind: catalog.KindBillboard, ID: billboard.ID,
	})
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "Make sure you removed all categories using this billboard first.", conflict.Message)

	// A restricted delete leaves the record fetchable and emits nothing.
	_, err = svc.GetRecord(ctx, catalog.GetRecordRequest{
		StoreID: storeID, Kind: catalog.KindBillboard, ID: billboard.ID,
	})
	require.NoError(t, err)
	require.Empty(t, sink.events)

	// Removing the dependents unblocks deletion bottom-up.
	require.NoError(t, svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		StoreID: storeID, Kind: catalog.KindCategory, ID: category.ID,
	}))
	require.NoError(t, svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		StoreID: storeID, Kind: catalog.KindBillboard, ID: billboard.ID,
	}))
	require.NoError(t, svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		Kind: catalog.KindStore, ID: storeID,
	}))
}

func TestDeleteCategoryGuardedByProducts(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	categoryID, sizeID, colorID := seedOptions(t, svc, storeID)
	ctx := context.Background()

	_, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindProduct,
		Fields:  productFields(categoryID, sizeID, colorID),
	})
	require.NoError(t, err)

	var conflict *catalog.ConflictError
	err = svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		StoreID: storeID, Kind: catalog.KindCategory, ID: categoryID,
	})
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "Make sure you removed all products using this category first.", conflict.Message)

	err = svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		StoreID: storeID, Kind: catalog.KindSize, ID: sizeID,
	})
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "Make sure you removed all products using this size first.", conflict.Message)

	err = svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		StoreID: storeID, Kind: catalog.KindColor, ID: colorID,
	})
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "Make sure you removed all products using this color first.", conflict.Message)
}

func TestDeleteProductUnrestricted(t *testing.T) {
	svc, sink := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	categoryID, sizeID, colorID := seedOptions(t, svc, storeID)
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    catalog.KindProduct,
		Fields:  productFields(categoryID, sizeID, colorID),
	})
	require.NoError(t, err)
	sink.events = nil

	require.NoError(t, svc.DeleteRecord(ctx, catalog.DeleteRecordRequest{
		StoreID: storeID, Kind: catalog.KindProduct, ID: rec.ID,
	}))
	require.Len(t, sink.events, 1)
	require.Equal(t, events.OpDeleted, sink.events[0].Op)

	_, err = svc.GetRecord(ctx, catalog.GetRecordRequest{
		StoreID: storeID, Kind: catalog.KindProduct, ID: rec.ID,
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestGetScopeMiss(t *testing.T) {
	svc, _ := newTestService(t)
	storeA := createStore(t, svc, "Store A")
	storeB := createStore(t, svc, "Store B")
	rec := createBillboard(t, svc, storeA, "Hero")

	_, err := svc.GetRecord(context.Background(), catalog.GetRecordRequest{
		StoreID: storeB, Kind: catalog.KindBillboard, ID: rec.ID,
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListRecords(t *testing.T) {
	svc, _ := newTestService(t)
	storeA := createStore(t, svc, "Store A")
	storeB := createStore(t, svc, "Store B")
	first := createBillboard(t, svc, storeA, "First")
	second := createBillboard(t, svc, storeA, "Second")
	createBillboard(t, svc, storeB, "Other")
	ctx := context.Background()

	records, err := svc.ListRecords(ctx, catalog.ListRecordsRequest{
		StoreID: storeA, Kind: catalog.KindBillboard,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, second.ID, records[0].ID)
	require.Equal(t, first.ID, records[1].ID)

	stores, err := svc.ListRecords(ctx, catalog.ListRecordsRequest{Kind: catalog.KindStore})
	require.NoError(t, err)
	require.Len(t, stores, 2)

	_, err = svc.ListRecords(ctx, catalog.ListRecordsRequest{
		Kind: catalog.KindBillboard,
	})
	require.ErrorIs(t, err, catalog.ErrStoreRequired)
}

func TestListRecordsFilter(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := createStore(t, svc, "Acme")
	categoryID, sizeID, colorID := seedOptions(t, svc, storeID)
	ctx := context.Background()

	featured, err := svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID, Kind: catalog.KindProduct,
		Fields: productFields(categoryID, sizeID, colorID),
	})
	require.NoError(t, err)

	plain := productFields(categoryID, sizeID, colorID)
	plain["name"] = "Plain Beanie"
	plain["isFeatured"] = false
	_, err = svc.CreateRecord(ctx, catalog.CreateRecordRequest{
		StoreID: storeID, Kind: catalog.KindProduct, Fields: plain,
	})
	require.NoError(t, err)

	records, err := svc.ListRecords(ctx, catalog.ListRecordsRequest{
		StoreID: storeID, Kind: catalog.KindProduct,
		Filter: map[string]any{"isFeatured": true},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, featured.ID, records[0].ID)

	_, err = svc.ListRecords(ctx, catalog.ListRecordsRequest{
		StoreID: storeID, Kind: catalog.KindProduct,
		Filter: map[string]any{"bogus": true},
	})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Unknown field", verr.Fields["bogus"])
}

func TestEndpointList(t *testing.T) {
	svc, _ := newTestService(t)

	endpoints, err := svc.EndpointList("store-1", catalog.KindBillboard, "http://localhost:5000")
	require.NoError(t, err)
	require.Len(t, endpoints, 5)
	require.Equal(t, "GET", endpoints[0].Method)
	require.Equal(t, "http://localhost:5000/api/store-1/billboards", endpoints[0].Path)
	require.Equal(t, catalog.AccessPublic, endpoints[0].Access)
	require.Equal(t, "http://localhost:5000/api/store-1/billboards/{billboardId}", endpoints[4].Path)
	require.Equal(t, catalog.AccessAdmin, endpoints[4].Access)

	stores, err := svc.EndpointList("", catalog.KindStore, "http://localhost:5000")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000/api/stores", stores[0].Path)

	_, err = svc.EndpointList("", catalog.KindBillboard, "http://localhost:5000")
	require.ErrorIs(t, err, catalog.ErrStoreRequired)
}

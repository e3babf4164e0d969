package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightmill/storefront/internal/apiclient"
	"github.com/brightmill/storefront/internal/events"
	"github.com/brightmill/storefront/internal/httpapi"
	"github.com/brightmill/storefront/internal/media"
	"github.com/brightmill/storefront/internal/service"
	"github.com/brightmill/storefront/pkg/catalog"
	"github.com/brightmill/storefront/pkg/sqlite"
)

// stack is one in-process deployment: sqlite catalog, admin service, HTTP
// server, and a client pointed at it. Events land in Feed instead of a broker.
type stack struct {
	Client  *apiclient.Client
	DataDir string
	BaseURL string
	Feed    *feedRecorder
}

// newStack wires the same components the serve command does, minus the
// listener. The media store needs the server origin as its base URL, so the
// handler is swapped in after the test server has an address.
func newStack(t *testing.T) *stack {
	t.Helper()

	dataDir := t.TempDir()
	backend := sqlite.NewBackend()
	require.NoError(t, backend.Attach(catalog.Config{Backend: catalog.BackendSQLite, DataDir: dataDir}))
	t.Cleanup(func() { _ = backend.Detach() })

	feed := &feedRecorder{}

	var handler http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	mediaStore, err := media.NewStore(t.TempDir(), srv.URL)
	require.NoError(t, err)
	handler = httpapi.NewServer(service.New(backend, feed), mediaStore).Handler()

	return &stack{
		Client:  apiclient.New(srv.URL),
		DataDir: dataDir,
		BaseURL: srv.URL,
		Feed:    feed,
	}
}

// feedRecorder keeps published events in memory for assertions.
type feedRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *feedRecorder) Publish(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *feedRecorder) Close() error { return nil }

func (f *feedRecorder) All() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.events...)
}

func create(t *testing.T, s *stack, storeID string, kind catalog.Kind, fields catalog.Fields) catalog.Record {
	t.Helper()
	rec, err := s.Client.Create(context.Background(), storeID, kind, fields)
	require.NoError(t, err, "create %s", kind)
	return rec
}

func createStore(t *testing.T, s *stack, name string) catalog.Record {
	t.Helper()
	return create(t, s, "", catalog.KindStore, catalog.Fields{"name": name})
}

// seeded is a store with one record of every dependent kind, wired together
// the way the console would build them.
type seeded struct {
	Store     catalog.Record
	Billboard catalog.Record
	Category  catalog.Record
	Size      catalog.Record
	Color     catalog.Record
	Product   catalog.Record
}

func seedStore(t *testing.T, s *stack, name string) seeded {
	t.Helper()

	store := createStore(t, s, name)
	billboard := create(t, s, store.ID, catalog.KindBillboard, catalog.Fields{
		"label":    "Summer Sale",
		"imageUrl": s.BaseURL + "/media/summer.png",
	})
	category := create(t, s, store.ID, catalog.KindCategory, catalog.Fields{
		"name":        "Shoes",
		"billboardId": billboard.ID,
	})
	size := create(t, s, store.ID, catalog.KindSize, catalog.Fields{"name": "Small", "value": "S"})
	color := create(t, s, store.ID, catalog.KindColor, catalog.Fields{"name": "Red", "value": "#ff0000"})
	product := create(t, s, store.ID, catalog.KindProduct, catalog.Fields{
		"name":       "Sneaker",
		"price":      "49.90",
		"categoryId": category.ID,
		"sizeId":     size.ID,
		"colorId":    color.ID,
		"images":     []string{s.BaseURL + "/media/sneaker.png"},
	})

	return seeded{Store: store, Billboard: billboard, Category: category, Size: size, Color: color, Product: product}
}

// apiStatus unwraps the HTTP status carried by a client error.
func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Status
}

package httpapi

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/brightmill/storefront/internal/media"
	"github.com/brightmill/storefront/internal/service"
	"github.com/brightmill/storefront/internal/sqlite"
	"github.com/brightmill/storefront/pkg/catalog"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Backend) {
	t.Helper()

	backend := sqlite.NewBackend()
	cfg := catalog.Config{Backend: catalog.BackendSQLite, DataDir: t.TempDir()}
	require.NoError(t, backend.Attach(cfg))
	t.Cleanup(func() { _ = backend.Detach() })

	store, err := media.NewStore(t.TempDir(), "http://assets.example.com")
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(service.New(backend, nil), store).Handler())
	t.Cleanup(srv.Close)
	return srv, backend
}

func doJSON(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) == 0 {
		return resp.StatusCode, nil
	}
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded), "body: %s", data)
	return resp.StatusCode, decoded
}

func doJSONList(t *testing.T, url string) (int, []map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded), "body: %s", data)
	return resp.StatusCode, decoded
}

func createTestStore(t *testing.T, base, name string) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, base+"/api/stores", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, status)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])
}

func TestStoreCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme Outfitters")

	status, list := doJSONList(t, srv.URL+"/api/stores")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	require.Equal(t, "Acme Outfitters", list[0]["name"])

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/stores/"+storeID, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Acme Outfitters", body["name"])

	status, body = doJSON(t, http.MethodPatch, srv.URL+"/api/stores/"+storeID, map[string]any{"name": "Acme & Co"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Acme & Co", body["name"])

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/stores/"+storeID, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/stores/"+storeID, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestRecordLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme")
	base := srv.URL + "/api/" + storeID + "/billboards"

	status, created := doJSON(t, http.MethodPost, base, map[string]any{
		"label":    "Summer Sale",
		"imageUrl": "http://assets.example.com/media/s.png",
	})
	require.Equal(t, http.StatusCreated, status)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	require.Equal(t, storeID, created["storeId"])
	require.Equal(t, "Summer Sale", created["label"])
	require.Contains(t, created, "createdAt")

	// The wire document is flat: no kind, no nested field map.
	require.NotContains(t, created, "kind")
	require.NotContains(t, created, "fields")

	status, list := doJSONList(t, base)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)

	status, updated := doJSON(t, http.MethodPatch, base+"/"+id, map[string]any{
		"label":    "Winter Sale",
		"imageUrl": "http://assets.example.com/media/w.png",
	})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Winter Sale", updated["label"])
	require.Equal(t, created["createdAt"], updated["createdAt"])

	status, _ = doJSON(t, http.MethodDelete, base+"/"+id, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, list = doJSONList(t, base)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, list)
}

func TestValidationErrorPayload(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/billboards", map[string]any{
		"label":    "",
		"imageUrl": "",
	})
	require.Equal(t, http.StatusBadRequest, status)

	fieldErrors, ok := body["fieldErrors"].(map[string]any)
	require.True(t, ok, "body: %v", body)
	require.Equal(t, "Label is required", fieldErrors["label"])
	require.Equal(t, "Background image is required", fieldErrors["imageUrl"])
}

func TestConflictPayloadCarriesGuidance(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme")

	status, billboard := doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/billboards", map[string]any{
		"label": "Hero", "imageUrl": "u",
	})
	require.Equal(t, http.StatusCreated, status)
	billboardID := billboard["id"].(string)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/categories", map[string]any{
		"name": "Hats", "billboardId": billboardID,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, http.MethodDelete, srv.URL+"/api/"+storeID+"/billboards/"+billboardID, nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "Make sure you removed all categories using this billboard first.", body["error"])

	// Restricted delete leaves the record fetchable.
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/"+storeID+"/billboards/"+billboardID, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestNotFoundMapping(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme")

	status, _ := doJSON(t, http.MethodGet, srv.URL+"/api/"+storeID+"/warehouses", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/"+storeID+"/billboards/no-such-id", nil)
	require.Equal(t, http.StatusNotFound, status)

	// A record of another store is invisible through this store's scope.
	otherStore := createTestStore(t, srv.URL, "Other")
	statusCreated, billboard := doJSON(t, http.MethodPost, srv.URL+"/api/"+otherStore+"/billboards", map[string]any{
		"label": "Hidden", "imageUrl": "u",
	})
	require.Equal(t, http.StatusCreated, statusCreated)
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/"+storeID+"/billboards/"+billboard["id"].(string), nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestListFilterQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme")

	status, billboard := doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/billboards", map[string]any{"label": "B", "imageUrl": "u"})
	require.Equal(t, http.StatusCreated, status)
	status, category := doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/categories", map[string]any{"name": "Hats", "billboardId": billboard["id"]})
	require.Equal(t, http.StatusCreated, status)
	status, size := doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/sizes", map[string]any{"name": "M", "value": "M"})
	require.Equal(t, http.StatusCreated, status)
	status, color := doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/colors", map[string]any{"name": "F", "value": "#228b22"})
	require.Equal(t, http.StatusCreated, status)

	makeProduct := func(name string, featured bool) {
		status, _ := doJSON(t, http.MethodPost, srv.URL+"/api/"+storeID+"/products", map[string]any{
			"name": name, "price": "10.00",
			"categoryId": category["id"], "sizeId": size["id"], "colorId": color["id"],
			"images": []string{"u"}, "isFeatured": featured, "isArchived": false,
		})
		require.Equal(t, http.StatusCreated, status)
	}
	makeProduct("Featured Hat", true)
	makeProduct("Plain Hat", false)

	status, list := doJSONList(t, srv.URL+"/api/"+storeID+"/products?isFeatured=true")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	require.Equal(t, "Featured Hat", list[0]["name"])

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/"+storeID+"/products?bogus=1", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "fieldErrors")
}

func TestDetachedBackendYieldsGenericError(t *testing.T) {
	srv, backend := newTestServer(t)
	require.NoError(t, backend.Detach())

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/stores", nil)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Internal error", body["error"])
}

func uploadFile(t *testing.T, url, filename string, content []byte) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post(url, form.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded), "body: %s", data)
	return resp.StatusCode, decoded
}

func TestMediaUploadAndServe(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme")
	content := []byte("png bytes here")

	status, body := uploadFile(t, srv.URL+"/api/"+storeID+"/media", "product photo.PNG", content)
	require.Equal(t, http.StatusCreated, status)

	name, _ := body["name"].(string)
	require.NotEmpty(t, name)
	require.Equal(t, "http://assets.example.com/media/"+name, body["url"])

	resp, err := http.Get(srv.URL + "/media/" + name)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, content, served)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestMediaUploadRejections(t *testing.T) {
	srv, _ := newTestServer(t)
	storeID := createTestStore(t, srv.URL, "Acme")

	status, _ := uploadFile(t, srv.URL+"/api/"+storeID+"/media", "script.exe", []byte("mz"))
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = uploadFile(t, srv.URL+"/api/no-such-store/media", "photo.png", []byte("x"))
	require.Equal(t, http.StatusNotFound, status)

	resp, err := http.Get(srv.URL + "/media/no-such-file.png")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

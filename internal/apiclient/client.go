// Package apiclient is the REST client for the storefront service. The
// console speaks to the API exclusively through it.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/brightmill/storefront/internal/media"
	"github.com/brightmill/storefront/pkg/catalog"
)

// APIError carries a non-2xx response: the HTTP status, the service's
// error message, and per-field validation messages when present.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// Client talks to one storefront service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the service at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the service origin this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// collectionURL builds the collection path for a kind: /api/stores for
// stores, /api/{storeID}/{plural} for store-scoped kinds.
func (c *Client) collectionURL(storeID string, kind catalog.Kind) (string, error) {
	def, err := catalog.Def(kind)
	if err != nil {
		return "", err
	}
	if !def.Kind.Scoped() {
		return c.baseURL + "/api/" + def.Plural, nil
	}
	if storeID == "" {
		return "", catalog.ErrStoreRequired
	}
	return c.baseURL + "/api/" + storeID + "/" + def.Plural, nil
}

// List fetches a store's records of one kind, newest first.
func (c *Client) List(ctx context.Context, storeID string, kind catalog.Kind) ([]catalog.Record, error) {
	url, err := c.collectionURL(storeID, kind)
	if err != nil {
		return nil, err
	}
	var records []catalog.Record
	if err := c.do(ctx, http.MethodGet, url, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, storeID string, kind catalog.Kind, id string) (catalog.Record, error) {
	url, err := c.collectionURL(storeID, kind)
	if err != nil {
		return catalog.Record{}, err
	}
	var rec catalog.Record
	if err := c.do(ctx, http.MethodGet, url+"/"+id, nil, &rec); err != nil {
		return catalog.Record{}, err
	}
	return rec, nil
}

// Create posts a new record's field set.
func (c *Client) Create(ctx context.Context, storeID string, kind catalog.Kind, fields catalog.Fields) (catalog.Record, error) {
	url, err := c.collectionURL(storeID, kind)
	if err != nil {
		return catalog.Record{}, err
	}
	var rec catalog.Record
	if err := c.do(ctx, http.MethodPost, url, fields, &rec); err != nil {
		return catalog.Record{}, err
	}
	return rec, nil
}

// Update replaces a record's field set.
func (c *Client) Update(ctx context.Context, storeID string, kind catalog.Kind, id string, fields catalog.Fields) (catalog.Record, error) {
	url, err := c.collectionURL(storeID, kind)
	if err != nil {
		return catalog.Record{}, err
	}
	var rec catalog.Record
	if err := c.do(ctx, http.MethodPatch, url+"/"+id, fields, &rec); err != nil {
		return catalog.Record{}, err
	}
	return rec, nil
}

// Delete removes a record. Integrity-restricted deletions come back as an
// *APIError with status 409 and the guidance message.
func (c *Client) Delete(ctx context.Context, storeID string, kind catalog.Kind, id string) error {
	url, err := c.collectionURL(storeID, kind)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, url+"/"+id, nil, nil)
}

// Upload sends one file through the store's media endpoint and returns the
// stored name and URL.
func (c *Client) Upload(ctx context.Context, storeID, filename string, r io.Reader) (media.Upload, error) {
	if storeID == "" {
		return media.Upload{}, catalog.ErrStoreRequired
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return media.Upload{}, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return media.Upload{}, fmt.Errorf("reading upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return media.Upload{}, fmt.Errorf("closing upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+storeID+"/media", &buf)
	if err != nil {
		return media.Upload{}, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var up media.Upload
	if err := c.send(req, &up); err != nil {
		return media.Upload{}, err
	}
	return up, nil
}

// Endpoints generates the REST reference for a kind against this client's
// service origin.
func (c *Client) Endpoints(storeID string, kind catalog.Kind) ([]catalog.Endpoint, error) {
	def, err := catalog.Def(kind)
	if err != nil {
		return nil, err
	}
	if def.Kind.Scoped() && storeID == "" {
		return nil, catalog.ErrStoreRequired
	}
	return catalog.Endpoints(def, c.baseURL, storeID), nil
}

func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Error       string            `json:"error"`
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.FieldErrors = payload.FieldErrors
	}
	return apiErr
}

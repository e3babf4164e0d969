// Package httpapi exposes the admin service as a REST API: per-store CRUD
// for every entity kind, media upload and hosting, and a health probe.
package httpapi

import (
	"net/http"

	"github.com/brightmill/storefront/internal/media"
	"github.com/brightmill/storefront/internal/service"
	"github.com/brightmill/storefront/pkg/catalog"
)

// Server routes HTTP requests to the admin service.
type Server struct {
	service *service.Service
	media   *media.Store
}

// NewServer constructs the REST server over the admin service and media
// store.
func NewServer(svc *service.Service, mediaStore *media.Store) *Server {
	return &Server{service: svc, media: mediaStore}
}

// Handler returns the routed handler with request logging attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /api/stores", s.handleListStores)
	mux.HandleFunc("POST /api/stores", s.handleCreateStore)
	mux.HandleFunc("GET /api/stores/{storeID}", s.handleGetStore)
	mux.HandleFunc("PATCH /api/stores/{storeID}", s.handleUpdateStore)
	mux.HandleFunc("DELETE /api/stores/{storeID}", s.handleDeleteStore)

	mux.HandleFunc("GET /api/{storeID}/{collection}", s.handleListRecords)
	mux.HandleFunc("POST /api/{storeID}/{collection}", s.handleCreateRecord)
	mux.HandleFunc("GET /api/{storeID}/{collection}/{recordID}", s.handleGetRecord)
	mux.HandleFunc("PATCH /api/{storeID}/{collection}/{recordID}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /api/{storeID}/{collection}/{recordID}", s.handleDeleteRecord)

	mux.HandleFunc("POST /api/{storeID}/media", s.handleUploadMedia)
	mux.HandleFunc("GET /media/{path...}", s.handleServeMedia)

	return withRequestLogging(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// collectionKind resolves the {collection} path segment. Unknown segments
// are a 404, not a validation failure.
func collectionKind(w http.ResponseWriter, r *http.Request) (catalog.Kind, bool) {
	kind, err := catalog.KindForSegment(r.PathValue("collection"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return "", false
	}
	return kind, true
}

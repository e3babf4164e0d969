package httpapi

import (
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/brightmill/storefront/internal/logx"
	"github.com/brightmill/storefront/pkg/catalog"
)

func decodeJSON(body io.Reader, target any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeServiceError maps service errors onto HTTP statuses: validation
// failures carry per-field messages, integrity conflicts carry the
// guidance text, and anything unexpected hides behind a generic body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *catalog.ValidationError
	var conflict *catalog.ConflictError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":       "validation failed",
			"fieldErrors": verr.Fields,
		})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{"error": conflict.Message})
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrUnknownKind),
		errors.Is(err, catalog.ErrInvalidID):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, catalog.ErrStoreRequired), errors.Is(err, catalog.ErrInvalidData):
		writeError(w, http.StatusBadRequest, err)
	default:
		logx.Ctx(r.Context()).Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal error"})
	}
}

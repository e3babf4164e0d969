package httpapi

import (
	"errors"
	"net/http"

	"github.com/brightmill/storefront/internal/logx"
	"github.com/brightmill/storefront/internal/media"
	"github.com/brightmill/storefront/pkg/catalog"
)

// uploadBodyLimit caps the whole multipart body; the per-file limit is
// enforced by the media store.
const uploadBodyLimit = media.MaxUploadBytes + 1<<20

func (s *Server) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	storeID := r.PathValue("storeID")
	if _, err := s.service.GetRecord(r.Context(), catalog.GetRecordRequest{
		Kind: catalog.KindStore,
		ID:   storeID,
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, uploadBodyLimit)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	up, err := s.media.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) || errors.Is(err, media.ErrTooLarge) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		logx.WithStore(r.Context(), storeID).Error("media upload failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal error"})
		return
	}

	logx.WithStore(r.Context(), storeID).Info("media uploaded", "name", up.Name, "bytes", up.Size)
	writeJSON(w, http.StatusCreated, up)
}

func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	f, err := s.media.Open(r.PathValue("path"))
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal error"})
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal error"})
		return
	}
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}

package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/brightmill/storefront/pkg/catalog"
)

func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	s.listRecords(w, r, "", catalog.KindStore)
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	s.createRecord(w, r, "", catalog.KindStore)
}

func (s *Server) handleGetStore(w http.ResponseWriter, r *http.Request) {
	s.getRecord(w, r, "", catalog.KindStore, r.PathValue("storeID"))
}

func (s *Server) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	s.updateRecord(w, r, "", catalog.KindStore, r.PathValue("storeID"))
}

func (s *Server) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, "", catalog.KindStore, r.PathValue("storeID"))
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionKind(w, r)
	if !ok {
		return
	}
	s.listRecords(w, r, r.PathValue("storeID"), kind)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionKind(w, r)
	if !ok {
		return
	}
	s.createRecord(w, r, r.PathValue("storeID"), kind)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionKind(w, r)
	if !ok {
		return
	}
	s.getRecord(w, r, r.PathValue("storeID"), kind, r.PathValue("recordID"))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionKind(w, r)
	if !ok {
		return
	}
	s.updateRecord(w, r, r.PathValue("storeID"), kind, r.PathValue("recordID"))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := collectionKind(w, r)
	if !ok {
		return
	}
	s.deleteRecord(w, r, r.PathValue("storeID"), kind, r.PathValue("recordID"))
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request, storeID string, kind catalog.Kind) {
	records, err := s.service.ListRecords(r.Context(), catalog.ListRecordsRequest{
		StoreID: storeID,
		Kind:    kind,
		Filter:  filterFromQuery(kind, r.URL.Query()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []catalog.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request, storeID string, kind catalog.Kind) {
	var fields catalog.Fields
	if err := decodeJSON(r.Body, &fields); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.service.CreateRecord(r.Context(), catalog.CreateRecordRequest{
		StoreID: storeID,
		Kind:    kind,
		Fields:  fields,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request, storeID string, kind catalog.Kind, id string) {
	rec, err := s.service.GetRecord(r.Context(), catalog.GetRecordRequest{
		StoreID: storeID,
		Kind:    kind,
		ID:      id,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request, storeID string, kind catalog.Kind, id string) {
	var fields catalog.Fields
	if err := decodeJSON(r.Body, &fields); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.service.UpdateRecord(r.Context(), catalog.UpdateRecordRequest{
		StoreID: storeID,
		Kind:    kind,
		ID:      id,
		Fields:  fields,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, storeID string, kind catalog.Kind, id string) {
	err := s.service.DeleteRecord(r.Context(), catalog.DeleteRecordRequest{
		StoreID: storeID,
		Kind:    kind,
		ID:      id,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// filterFromQuery builds field equality filters from query parameters.
// Flag fields parse as booleans; everything else filters as a string.
// Unknown parameter names flow through for the service to reject.
func filterFromQuery(kind catalog.Kind, query url.Values) map[string]any {
	if len(query) == 0 {
		return nil
	}
	def, err := catalog.Def(kind)
	if err != nil {
		return nil
	}

	filter := make(map[string]any)
	for name := range query {
		value := query.Get(name)
		if value == "" {
			continue
		}
		if f, ok := def.Field(name); ok && f.Kind == catalog.FieldFlag {
			if b, err := strconv.ParseBool(value); err == nil {
				filter[name] = b
				continue
			}
		}
		filter[name] = value
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/classify"
	"github.com/camden-git/cropsysbackend/services"
)

// FolderHandler exposes the folder hierarchy views to the presentation layer.
type FolderHandler struct {
	Catalog *services.CatalogService
}

// criteriaFromQuery builds filter criteria from query parameters, rejecting
// unknown values instead of silently ignoring them.
func criteriaFromQuery(r *http.Request) (catalog.Criteria, string) {
	q := r.URL.Query()
	var c catalog.Criteria

	if v := q.Get("type"); v != "" && v != "all" {
		t, ok := classify.ParseType(v)
		if !ok {
			return c, "invalid type filter: " + v
		}
		c.Type = t
	}
	c.Search = q.Get("search")
	if v := q.Get("range"); v != "" {
		if !catalog.IsValidRange(v) {
			return c, "invalid date range: " + v
		}
		c.Range = v
	}
	if v := q.Get("sort"); v != "" {
		if !catalog.IsValidSortKey(v) {
			return c, "invalid sort key: " + v
		}
		c.Sort = v
	}
	return c, ""
}

// ListFolders returns all four main folders after applying the criteria
// carried in the query string. An empty query clears any active filters.
func (fh *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	criteria, problem := criteriaFromQuery(r)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}
	fh.Catalog.SetCriteria(criteria)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"folders": fh.Catalog.Folders(),
		"totals":  fh.Catalog.Totals(),
	})
}

// GetFolder returns a single main folder view by category.
func (fh *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !catalog.IsValidCategory(category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category: " + category})
		return
	}

	folder := fh.Catalog.Folder(catalog.Category(category))
	if folder == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "catalog not loaded yet"})
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// Refresh forces a full re-ingestion and hierarchy rebuild. There is no
// automatic retry; clients call this again after a transient failure.
func (fh *FolderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := fh.Catalog.Refresh(r.Context()); err != nil {
		if errors.Is(err, services.ErrRefreshInFlight) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("Error refreshing catalog: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load image records, try again"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totals": fh.Catalog.Totals(),
	})
}

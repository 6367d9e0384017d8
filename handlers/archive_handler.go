package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/services"
)

// ArchiveHandler builds grouped ZIP exports from a folder, the whole visible
// set, or the current selection.
type ArchiveHandler struct {
	Catalog *services.CatalogService
	Archive *services.ArchiveService
}

type archiveRequest struct {
	Scope             string `json:"scope"` // all, selected or folder
	Category          string `json:"category,omitempty"`
	FolderKey         string `json:"folder_key,omitempty"`
	IDs               []uint `json:"ids,omitempty"`
	ConfirmUnverified bool   `json:"confirm_unverified,omitempty"`
}

// resolveImages picks the image set and the archive name prefix for a
// request.
func (ah *ArchiveHandler) resolveImages(req archiveRequest) ([]catalog.Image, string, string) {
	switch req.Scope {
	case "all":
		category := catalog.CategoryAll
		if req.Category != "" {
			if !catalog.IsValidCategory(req.Category) {
				return nil, "", "unknown category: " + req.Category
			}
			category = catalog.Category(req.Category)
		}
		return ah.Catalog.VisibleImages(category), "all", ""

	case "selected":
		return ah.Catalog.ImagesByIDs(req.IDs), "selected", ""

	case "folder":
		if !catalog.IsValidCategory(req.Category) {
			return nil, "", "unknown category: " + req.Category
		}
		mf := ah.Catalog.Folder(catalog.Category(req.Category))
		if mf == nil {
			return nil, "", "catalog not loaded yet"
		}
		folder := catalog.FindFolder(mf, req.FolderKey)
		if folder == nil {
			return nil, "", "folder not found: " + req.FolderKey
		}
		return folder.Images, folder.Name, ""

	default:
		return nil, "", "unknown scope: " + req.Scope
	}
}

func (ah *ArchiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	images, scopeName, problem := ah.resolveImages(req)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}
	if len(images) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no images to export"})
		return
	}

	// exports touching unverified images need an explicit confirmation
	// naming how many are included
	if unverified := services.CountUnverified(images); unverified > 0 && !req.ConfirmUnverified {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":            "export includes unverified images, confirm to continue",
			"unverified_count": unverified,
		})
		return
	}

	result, err := ah.Archive.Export(r.Context(), scopeName, images)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrExportInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, services.ErrNoImagesToExport):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("Error exporting archive (scope %s): %v", req.Scope, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "archive export failed"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

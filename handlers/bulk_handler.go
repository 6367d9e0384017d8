package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/camden-git/cropsysbackend/services"
)

// BulkHandler applies verify/unverify/delete to a posted id set.
type BulkHandler struct {
	Bulk *services.BulkService
}

func (bh *BulkHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		IDs    []uint `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if !services.IsValidAction(req.Action) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action: " + req.Action})
		return
	}

	result, err := bh.Bulk.Execute(r.Context(), services.Action(req.Action), req.IDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSelection):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, services.ErrActionInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			log.Printf("Error executing bulk %s: %v", req.Action, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "bulk action failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

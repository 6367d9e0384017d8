package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/camden-git/cropsysbackend/database"
)

// StatsHandler serves aggregate record counts computed straight from SQL.
type StatsHandler struct {
	DB *sql.DB
}

func (sh *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := database.GetCatalogStats(sh.DB)
	if err != nil {
		log.Printf("Error computing catalog stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

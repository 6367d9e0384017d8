package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// DiseaseStat aggregates record counts for one disease label.
type DiseaseStat struct {
	DiseaseLabel  string `json:"disease_label"`
	Total         int    `json:"total"`
	VerifiedCount int    `json:"verified_count"`
}

// CatalogStats summarizes the whole record set.
type CatalogStats struct {
	TotalImages   int           `json:"total_images"`
	VerifiedCount int           `json:"verified_count"`
	Diseases      []DiseaseStat `json:"diseases"`
}

// GetCatalogStats computes per-disease record counts and verification tallies
// over the live (non soft-deleted) rows.
func GetCatalogStats(db *sql.DB) (CatalogStats, error) {
	var stats CatalogStats

	totalsBuilder := psql.Select(
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN verified THEN 1 ELSE 0 END), 0)",
	).From("images").Where(sq.Eq{"deleted_at": nil})

	sqlStr, args, err := totalsBuilder.ToSql()
	if err != nil {
		return CatalogStats{}, fmt.Errorf("failed to build SQL query for catalog totals: %w", err)
	}
	if err := db.QueryRow(sqlStr, args...).Scan(&stats.TotalImages, &stats.VerifiedCount); err != nil {
		return CatalogStats{}, fmt.Errorf("failed to query catalog totals: %w", err)
	}

	diseaseBuilder := psql.Select(
		"disease_label",
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN verified THEN 1 ELSE 0 END), 0)",
	).From("images").
		Where(sq.Eq{"deleted_at": nil}).
		GroupBy("disease_label").
		OrderBy("COUNT(*) DESC", "disease_label ASC")

	sqlStr, args, err = diseaseBuilder.ToSql()
	if err != nil {
		return CatalogStats{}, fmt.Errorf("failed to build SQL query for disease stats: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return CatalogStats{}, fmt.Errorf("failed to query disease stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat DiseaseStat
		if err := rows.Scan(&stat.DiseaseLabel, &stat.Total, &stat.VerifiedCount); err != nil {
			return CatalogStats{}, fmt.Errorf("failed to scan disease stat row: %w", err)
		}
		stats.Diseases = append(stats.Diseases, stat)
	}
	if err := rows.Err(); err != nil {
		return CatalogStats{}, fmt.Errorf("error iterating disease stat rows: %w", err)
	}

	return stats, nil
}

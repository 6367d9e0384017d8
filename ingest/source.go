// Package ingest supplies the full, ungrouped set of classified image
// records and the mutation endpoints the catalog operates through. Records
// cross this boundary exactly once, through Normalize, so the rest of the
// system works on a single canonical shape.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/classify"
)

// ErrUnauthorized is returned when the backing record service rejects a
// request as unauthenticated. Session handling lives outside this core; the
// sentinel only lets callers tell the case apart from transient failures.
var ErrUnauthorized = errors.New("ingest: unauthorized")

// Source is the record ingestion collaborator: a full-collection fetch, the
// batched verified patch, the per-id delete and the per-image binary fetch.
type Source interface {
	// FetchAll returns every record, freshly read (implementations must not
	// serve a cached collection)
	FetchAll(ctx context.Context) ([]catalog.Image, error)
	// SetVerified flips the verified flag on all given ids in one batch
	SetVerified(ctx context.Context, ids []uint, verified bool) error
	// Delete removes a single record
	Delete(ctx context.Context, id uint) error
	// FetchImageData returns the binary content of one image
	FetchImageData(ctx context.Context, img catalog.Image) ([]byte, error)
}

// RawRecord is the loose wire shape records arrive in. Fields overlap and
// several are optional; Normalize resolves the fallbacks once.
type RawRecord struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	ImageURL     string    `json:"image_url"`
	DiseaseLabel string    `json:"disease_label"`
	Prediction   string    `json:"prediction"` // older backends supply the label here
	Confidence   float64   `json:"confidence"` // fraction or percentage
	ModelUsed    *string   `json:"model_used,omitempty"`
	DiseaseType  *string   `json:"disease_type,omitempty"`
	Verified     bool      `json:"verified"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Filename     string    `json:"filename"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// Normalize converts a raw wire record into the canonical catalog image,
// applying the label and filename fallbacks and running classification
// exactly once.
func Normalize(raw RawRecord) catalog.Image {
	label := raw.DiseaseLabel
	if label == "" {
		label = raw.Prediction
	}
	if label == "" {
		label = "Unknown"
	}

	diseaseType, confidence := classify.Classify(label, raw.Confidence, raw.ModelUsed, raw.DiseaseType)

	filename := raw.Filename
	if filename == "" {
		filename = filenameFromURL(raw.ImageURL)
	}
	if filename == "" {
		filename = fmt.Sprintf("image_%d.jpg", raw.ID)
	}

	return catalog.Image{
		ID:           raw.ID,
		Label:        label,
		Type:         diseaseType,
		Confidence:   confidence,
		Verified:     raw.Verified,
		UploadedAt:   raw.UploadedAt,
		Filename:     filename,
		URL:          raw.ImageURL,
		ThumbnailURL: raw.ThumbnailURL,
	}
}

// NormalizeAll maps Normalize over a fetched collection.
func NormalizeAll(raws []RawRecord) []catalog.Image {
	images := make([]catalog.Image, 0, len(raws))
	for _, raw := range raws {
		images = append(images, Normalize(raw))
	}
	return images
}

func filenameFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

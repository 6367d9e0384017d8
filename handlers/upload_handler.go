package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/camden-git/cropsysbackend/media"
	"github.com/camden-git/cropsysbackend/models"
	"github.com/camden-git/cropsysbackend/repository"
	"github.com/camden-git/cropsysbackend/utils"
	"github.com/camden-git/cropsysbackend/workers"
)

const maxUploadBytes = 50 << 20 // 50 MiB

// UploadHandler accepts new classified images. The disease label and
// confidence come from the external classifier; this service only stores and
// catalogs them.
type UploadHandler struct {
	Repo     repository.ImageRepositoryInterface
	Store    media.Store
	ThumbGen *workers.ThumbnailProcessor
}

func (uh *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing image file"})
		return
	}
	defer file.Close()

	originalFilename := utils.SanitizeFilename(header.Filename)
	if !utils.IsRasterImage(originalFilename) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unsupported image type: " + originalFilename})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Error reading upload %s: %v", originalFilename, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read upload"})
		return
	}

	// EXIF capture time, when present, rides along as display metadata
	takenAt := utils.ExtractTakenAt(bytes.NewReader(data))

	storedUUID, err := uuid.NewRandom()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate storage name"})
		return
	}
	storedName := storedUUID.String() + strings.ToLower(filepath.Ext(originalFilename))

	relPath, err := uh.Store.Save(media.AssetTypeUpload, "", storedName, bytes.NewReader(data))
	if err != nil {
		log.Printf("Error saving upload %s: %v", originalFilename, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to store upload"})
		return
	}

	image := models.Image{
		OriginalPath: relPath,
		Filename:     originalFilename,
		DiseaseLabel: strings.TrimSpace(r.FormValue("disease_label")),
		Verified:     false,
		UploadedAt:   time.Now().Unix(),
		TakenAt:      takenAt,
	}
	if image.DiseaseLabel == "" {
		image.DiseaseLabel = "Unknown"
	}
	if v := r.FormValue("confidence"); v != "" {
		confidence, parseErr := strconv.ParseFloat(v, 64)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid confidence value: " + v})
			return
		}
		image.Confidence = confidence
	}
	if v := r.FormValue("model_used"); v != "" {
		image.ModelUsed = &v
	}
	if v := r.FormValue("disease_type"); v != "" {
		image.DiseaseType = &v
	}
	if v := r.FormValue("user_id"); v != "" {
		userID, parseErr := strconv.ParseUint(v, 10, 32)
		if parseErr == nil {
			image.UserID = uint(userID)
		}
	}

	if err := uh.Repo.Create(&image); err != nil {
		log.Printf("Error creating image record for %s: %v", originalFilename, err)
		if delErr := uh.Store.Delete(relPath); delErr != nil {
			log.Printf("Error cleaning up stored upload %s: %v", relPath, delErr)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create image record"})
		return
	}

	uh.ThumbGen.Enqueue(workers.ThumbnailJob{ImageID: image.ID, OriginalPath: image.OriginalPath})

	writeJSON(w, http.StatusCreated, image)
}

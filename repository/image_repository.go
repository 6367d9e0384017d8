package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/cropsysbackend/database"
	"github.com/camden-git/cropsysbackend/models"
)

// ImageRepository handles database operations for Image entities
type ImageRepository struct {
	DB *gorm.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{DB: db}
}

// Create inserts a new image record
func (r *ImageRepository) Create(image *models.Image) error {
	if image.UploadedAt == 0 {
		image.UploadedAt = time.Now().Unix()
	}
	if err := r.DB.Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image record for %s: %w", image.Filename, err)
	}
	return nil
}

// GetByID retrieves a single image record
func (r *ImageRepository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.DB.First(&image, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get image %d: %w", id, err)
	}
	return &image, nil
}

// GetByIDs retrieves multiple image records by primary key. Missing ids are
// silently absent from the result.
func (r *ImageRepository) GetByIDs(ids []uint) ([]models.Image, error) {
	if len(ids) == 0 {
		return []models.Image{}, nil
	}
	var images []models.Image
	if err := r.DB.Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to get images by ids: %w", err)
	}
	return images, nil
}

// ListAll retrieves every image record, oldest upload first
func (r *ImageRepository) ListAll() ([]models.Image, error) {
	var images []models.Image
	if err := r.DB.Order("uploaded_at ASC, id ASC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// SetVerifiedBatch updates the verified flag for all given ids in a single
// statement and returns the number of affected rows
func (r *ImageRepository) SetVerifiedBatch(ids []uint, verified bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.DB.Model(&models.Image{}).Where("id IN ?", ids).Update("verified", verified)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to batch update verified flag: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Delete soft-deletes a single image record
func (r *ImageRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Image{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete image %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkThumbnailProcessing updates the thumbnail status to 'processing' and
// clears any previous error
func (r *ImageRepository) MarkThumbnailProcessing(id uint) error {
	updates := map[string]interface{}{
		"thumbnail_status": database.StatusProcessing,
		"thumbnail_error":  gorm.Expr("NULL"),
	}
	result := r.DB.Model(&models.Image{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to mark thumbnail processing for image %d: %w", id, result.Error)
	}
	return nil
}

// UpdateThumbnailResult updates the image record with thumbnail generation
// results
func (r *ImageRepository) UpdateThumbnailResult(id uint, thumbPath *string, taskErr error) error {
	now := time.Now().Unix()
	status := database.StatusDone
	var errStr *string

	if taskErr != nil {
		status = database.StatusError
		s := taskErr.Error()
		errStr = &s
	}

	updates := map[string]interface{}{
		"thumbnail_path":         thumbPath,
		"thumbnail_status":       status,
		"thumbnail_processed_at": &now,
		"thumbnail_error":        errStr,
	}
	result := r.DB.Model(&models.Image{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update thumbnail result for image %d: %w", id, result.Error)
	}
	return nil
}

// GetImagesRequiringThumbnails finds records whose thumbnail task is still
// pending or previously errored, for re-queueing on startup
func (r *ImageRepository) GetImagesRequiringThumbnails() ([]models.Image, error) {
	var images []models.Image
	err := r.DB.Where("thumbnail_status IN ?", []string{database.StatusPending, database.StatusError}).Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query images requiring thumbnails: %w", err)
	}
	return images, nil
}

package repository

import "github.com/camden-git/cropsysbackend/models"

// ImageRepositoryInterface defines the methods for image record data
// operations
type ImageRepositoryInterface interface {
	Create(image *models.Image) error
	GetByID(id uint) (*models.Image, error)
	GetByIDs(ids []uint) ([]models.Image, error)
	ListAll() ([]models.Image, error)
	SetVerifiedBatch(ids []uint, verified bool) (int64, error)
	Delete(id uint) error

	MarkThumbnailProcessing(id uint) error
	UpdateThumbnailResult(id uint, thumbPath *string, taskErr error) error
	GetImagesRequiringThumbnails() ([]models.Image, error)
}

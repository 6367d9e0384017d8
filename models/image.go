package models

import "gorm.io/gorm"

// Image represents a classified crop image record in the database using GORM.
// It corresponds to the 'images' table. Confidence is stored exactly as the
// classifier reported it (fraction or percentage); normalization happens once
// at ingestion, see the classify package.
type Image struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"index" json:"user_id"`

	OriginalPath string `gorm:"not null;unique" json:"original_path"` // path relative to the uploads storage dir
	Filename     string `gorm:"not null" json:"filename"`

	DiseaseLabel string  `gorm:"not null;default:'Unknown';index" json:"disease_label"`
	Confidence   float64 `gorm:"not null" json:"confidence"`
	ModelUsed    *string `gorm:"" json:"model_used,omitempty"`   // Nullable, authoritative type hint
	DiseaseType  *string `gorm:"" json:"disease_type,omitempty"` // Nullable, backend-assigned type hint
	Verified     bool    `gorm:"not null;default:false;index" json:"verified"`

	UploadedAt int64  `gorm:"not null;index" json:"uploaded_at"` // Unix timestamp
	TakenAt    *int64 `gorm:"" json:"taken_at,omitempty"`        // Nullable, from EXIF when available

	ThumbnailPath        *string `gorm:"" json:"thumbnail_path,omitempty"` // Nullable
	ThumbnailStatus      string  `gorm:"not null;default:pending" json:"thumbnail_status"`
	ThumbnailProcessedAt *int64  `gorm:"" json:"thumbnail_processed_at,omitempty"` // Nullable, Unix timestamp
	ThumbnailError       *string `gorm:"" json:"thumbnail_error,omitempty"`        // Nullable

	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"` // For soft deletes
}

// TableName explicitly sets the table name for GORM.
func (Image) TableName() string {
	return "images"
}

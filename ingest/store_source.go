package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/media"
	"github.com/camden-git/cropsysbackend/models"
	"github.com/camden-git/cropsysbackend/repository"
)

// StoreSource implements Source over the local repository and media store.
// This is what main wires when the service owns its own records.
type StoreSource struct {
	Repo       repository.ImageRepositoryInterface
	Store      media.Store
	AssetsBase string // URL prefix the asset server is mounted at, e.g. "/api"
}

// NewStoreSource builds a repository-backed record source.
func NewStoreSource(repo repository.ImageRepositoryInterface, store media.Store, assetsBase string) *StoreSource {
	return &StoreSource{Repo: repo, Store: store, AssetsBase: assetsBase}
}

// FetchAll reads every record straight from the database; there is no cache
// in front of it, so each call is already a fresh read.
func (s *StoreSource) FetchAll(ctx context.Context) ([]catalog.Image, error) {
	records, err := s.Repo.ListAll()
	if err != nil {
		return nil, err
	}

	images := make([]catalog.Image, 0, len(records))
	for i := range records {
		images = append(images, Normalize(s.rawFromModel(&records[i])))
	}
	return images, nil
}

// rawFromModel maps a database record onto the wire shape so normalization
// stays single-path regardless of where records come from.
func (s *StoreSource) rawFromModel(img *models.Image) RawRecord {
	raw := RawRecord{
		ID:           img.ID,
		UserID:       img.UserID,
		DiseaseLabel: img.DiseaseLabel,
		Confidence:   img.Confidence,
		ModelUsed:    img.ModelUsed,
		DiseaseType:  img.DiseaseType,
		Verified:     img.Verified,
		UploadedAt:   time.Unix(img.UploadedAt, 0),
		Filename:     img.Filename,
		ImageURL:     s.AssetsBase + "/" + img.OriginalPath,
	}
	if img.ThumbnailPath != nil {
		raw.ThumbnailURL = s.AssetsBase + "/" + *img.ThumbnailPath
	}
	return raw
}

// SetVerified batch-updates the verified flag.
func (s *StoreSource) SetVerified(ctx context.Context, ids []uint, verified bool) error {
	affected, err := s.Repo.SetVerifiedBatch(ids, verified)
	if err != nil {
		return err
	}
	if affected < int64(len(ids)) {
		return fmt.Errorf("batch verified update touched %d of %d records", affected, len(ids))
	}
	return nil
}

// Delete removes the record row plus its stored binaries. The row goes first:
// a dangling file is recoverable, a dangling record is not.
func (s *StoreSource) Delete(ctx context.Context, id uint) error {
	img, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}

	if err := s.Store.Delete(img.OriginalPath); err != nil {
		return fmt.Errorf("record %d deleted but original file removal failed: %w", id, err)
	}
	if img.ThumbnailPath != nil {
		if err := s.Store.Delete(*img.ThumbnailPath); err != nil {
			return fmt.Errorf("record %d deleted but thumbnail removal failed: %w", id, err)
		}
	}
	return nil
}

// FetchImageData reads one image's bytes from the media store.
func (s *StoreSource) FetchImageData(ctx context.Context, img catalog.Image) ([]byte, error) {
	record, err := s.Repo.GetByID(img.ID)
	if err != nil {
		return nil, err
	}

	reader, _, err := s.Store.Get(record.OriginalPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %d data: %w", img.ID, err)
	}
	return data, nil
}

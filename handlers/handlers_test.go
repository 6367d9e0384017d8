package handlers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/classify"
	"github.com/camden-git/cropsysbackend/media"
	"github.com/camden-git/cropsysbackend/services"
)

// fakeRecordSource is a minimal in-memory ingest.Source for handler tests.
type fakeRecordSource struct {
	mu      sync.Mutex
	records []catalog.Image
}

func newFakeRecordSource(records ...catalog.Image) *fakeRecordSource {
	return &fakeRecordSource{records: records}
}

func (f *fakeRecordSource) FetchAll(ctx context.Context) ([]catalog.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]catalog.Image, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeRecordSource) SetVerified(ctx context.Context, ids []uint, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		for i := range f.records {
			if f.records[i].ID == id {
				f.records[i].Verified = verified
			}
		}
	}
	return nil
}

func (f *fakeRecordSource) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("record %d not found", id)
}

func (f *fakeRecordSource) FetchImageData(ctx context.Context, img catalog.Image) ([]byte, error) {
	return []byte("image-bytes-" + img.Filename), nil
}

func recordImage(id uint, verified bool) catalog.Image {
	return catalog.Image{
		ID:         id,
		Label:      "Anthracnose",
		Type:       classify.TypeLeaf,
		Confidence: 90,
		Verified:   verified,
		UploadedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
		Filename:   fmt.Sprintf("leaf_%02d.jpg", id),
	}
}

func newTestCatalog(t *testing.T, src *fakeRecordSource) *services.CatalogService {
	t.Helper()
	catalogSvc := services.NewCatalogService(src)
	require.NoError(t, catalogSvc.Refresh(context.Background()))
	return catalogSvc
}

func newTestArchiveStore(t *testing.T) media.Store {
	t.Helper()
	store, err := media.NewLocalStorage(t.TempDir(), map[media.AssetType]string{
		media.AssetTypeArchive: "archives",
	})
	require.NoError(t, err)
	return store
}

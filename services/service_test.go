package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/classify"
)

// fakeSource is an in-memory ingest.Source with scriptable failures.
type fakeSource struct {
	mu      sync.Mutex
	records []catalog.Image
	data    map[uint][]byte

	failVerifyIDs map[uint]bool // per-id verify failures; also fail the batch containing them
	failDeleteIDs map[uint]bool
	failFetchIDs  map[uint]bool
	fetchAllErr   error
	fetchGate     chan struct{} // when set, FetchAll blocks until closed

	fetchAllCalls int
	verifyCalls   int
}

func newFakeSource(records ...catalog.Image) *fakeSource {
	return &fakeSource{
		records:       records,
		data:          map[uint][]byte{},
		failVerifyIDs: map[uint]bool{},
		failDeleteIDs: map[uint]bool{},
		failFetchIDs:  map[uint]bool{},
	}
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]catalog.Image, error) {
	f.mu.Lock()
	gate := f.fetchGate
	f.fetchAllCalls++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchAllErr != nil {
		return nil, f.fetchAllErr
	}
	out := make([]catalog.Image, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeSource) SetVerified(ctx context.Context, ids []uint, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	for _, id := range ids {
		if f.failVerifyIDs[id] {
			return errors.New("update rejected")
		}
	}
	for _, id := range ids {
		for i := range f.records {
			if f.records[i].ID == id {
				f.records[i].Verified = verified
			}
		}
	}
	return nil
}

func (f *fakeSource) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeleteIDs[id] {
		return errors.New("delete rejected")
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeSource) FetchImageData(ctx context.Context, img catalog.Image) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetchIDs[img.ID] {
		return nil, errors.New("download failed")
	}
	if body, ok := f.data[img.ID]; ok {
		return body, nil
	}
	return []byte("fake-image-bytes"), nil
}

func record(id uint, label string, t classify.DiseaseType, confidence float64, verified bool) catalog.Image {
	return catalog.Image{
		ID:         id,
		Label:      label,
		Type:       t,
		Confidence: confidence,
		Verified:   verified,
		UploadedAt: time.Now(),
		Filename:   label + ".jpg",
	}
}

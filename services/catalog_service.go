package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/ingest"
)

// ErrRefreshInFlight is returned when a hierarchy rebuild is requested while
// one is already running. Rebuilds are never queued.
var ErrRefreshInFlight = errors.New("catalog refresh already in progress")

// CatalogService owns the current folder hierarchy. It re-ingests and
// rebuilds wholesale on every state change; there is no incremental patching.
// The active filter criteria are re-applied after each rebuild so mutations
// don't silently clear the user's view.
type CatalogService struct {
	source ingest.Source

	mu         sync.RWMutex
	folders    []*catalog.MainFolder
	criteria   catalog.Criteria
	refreshing bool
}

func NewCatalogService(source ingest.Source) *CatalogService {
	return &CatalogService{source: source}
}

// Refresh fetches the full record set and rebuilds the hierarchy. A second
// call while one is outstanding is rejected, not queued.
func (cs *CatalogService) Refresh(ctx context.Context) error {
	cs.mu.Lock()
	if cs.refreshing {
		cs.mu.Unlock()
		return ErrRefreshInFlight
	}
	cs.refreshing = true
	cs.mu.Unlock()

	defer func() {
		cs.mu.Lock()
		cs.refreshing = false
		cs.mu.Unlock()
	}()

	records, err := cs.source.FetchAll(ctx)
	if err != nil {
		return err
	}

	folders := catalog.Build(records)

	cs.mu.Lock()
	cs.folders = folders
	catalog.ApplyToMainFolders(cs.folders, cs.criteria, time.Now())
	cs.mu.Unlock()

	log.Printf("catalog: rebuilt hierarchy from %d records", len(records))
	return nil
}

// SetCriteria runs one filter/sort pass with the given criteria and keeps it
// for subsequent rebuilds.
func (cs *CatalogService) SetCriteria(c catalog.Criteria) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.criteria = c
	catalog.ApplyToMainFolders(cs.folders, cs.criteria, time.Now())
}

// ClearCriteria restores the unfiltered view.
func (cs *CatalogService) ClearCriteria() {
	cs.SetCriteria(catalog.Criteria{})
}

// Criteria returns the currently active filter criteria.
func (cs *CatalogService) Criteria() catalog.Criteria {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.criteria
}

// Folders returns the current main folder views.
func (cs *CatalogService) Folders() []*catalog.MainFolder {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.folders
}

// Folder returns one main folder by category, or nil before the first
// refresh.
func (cs *CatalogService) Folder(cat catalog.Category) *catalog.MainFolder {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, mf := range cs.folders {
		if mf.Category == cat {
			return mf
		}
	}
	return nil
}

// Totals returns the filtered image count per category.
func (cs *CatalogService) Totals() map[catalog.Category]int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	totals := make(map[catalog.Category]int, len(cs.folders))
	for _, mf := range cs.folders {
		totals[mf.Category] = mf.Count
	}
	return totals
}

// VisibleImages returns every image in the current (filtered) view of one
// category, in display order.
func (cs *CatalogService) VisibleImages(cat catalog.Category) []catalog.Image {
	mf := cs.Folder(cat)
	if mf == nil {
		return nil
	}
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var images []catalog.Image
	for _, sf := range mf.SubFolders {
		images = append(images, sf.Images...)
	}
	return images
}

// ImagesByIDs resolves selected ids against the unfiltered record set. Ids
// with no matching record are silently dropped; a stale selection is not an
// error.
func (cs *CatalogService) ImagesByIDs(ids []uint) []catalog.Image {
	want := catalog.NewSelection(ids...)
	mf := cs.Folder(catalog.CategoryAll)
	if mf == nil {
		return nil
	}

	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var images []catalog.Image
	for _, sf := range mf.OriginalSubFolders {
		for _, img := range sf.Images {
			if want.Contains(img.ID) {
				images = append(images, img)
			}
		}
	}
	return images
}

package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/classify"
	"github.com/camden-git/cropsysbackend/ingest"
	"github.com/camden-git/cropsysbackend/media"
	"github.com/camden-git/cropsysbackend/utils"
)

var (
	// ErrNoImagesToExport rejects an export invoked on an empty image set
	// before any download starts.
	ErrNoImagesToExport = errors.New("no images to export")
	// ErrExportInFlight rejects a second export while one is outstanding.
	ErrExportInFlight = errors.New("an export is already in progress")
)

// ExportResult describes one produced archive.
type ExportResult struct {
	Filename        string `json:"filename"`
	RelPath         string `json:"path"`    // path relative to the media storage root
	Added           int    `json:"added"`   // images written into the archive
	Skipped         int    `json:"skipped"` // images whose download failed
	UnverifiedCount int    `json:"unverified_count"`
}

// ArchiveService builds disease/type-grouped ZIP archives from arbitrary
// image subsets. Downloads run on a bounded worker pool; one image's failure
// is logged and skipped, never aborting the export.
type ArchiveService struct {
	source  ingest.Source
	store   media.Store
	workers int

	mu        sync.Mutex
	exporting bool
}

// NewArchiveService builds an exporter fetching through source and writing
// finished archives into the media store. workers bounds concurrent image
// downloads.
func NewArchiveService(source ingest.Source, store media.Store, workers int) *ArchiveService {
	if workers <= 0 {
		workers = 1
	}
	return &ArchiveService{source: source, store: store, workers: workers}
}

// CountUnverified reports how many of the given images are unverified. The
// caller surfaces this before an export so the user can confirm including
// them.
func CountUnverified(images []catalog.Image) int {
	count := 0
	for i := range images {
		if !images[i].Verified {
			count++
		}
	}
	return count
}

// Export downloads every image, groups the successful ones by disease and
// type, and writes one ZIP named {scope}_{YYYY-MM-DD}.zip into the archive
// storage dir. Unverified images get an _unverified filename suffix inside
// the archive.
func (as *ArchiveService) Export(ctx context.Context, scope string, images []catalog.Image) (*ExportResult, error) {
	if len(images) == 0 {
		return nil, ErrNoImagesToExport
	}

	as.mu.Lock()
	if as.exporting {
		as.mu.Unlock()
		return nil, ErrExportInFlight
	}
	as.exporting = true
	as.mu.Unlock()
	defer func() {
		as.mu.Lock()
		as.exporting = false
		as.mu.Unlock()
	}()

	data := make([][]byte, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(as.workers)
	for i := range images {
		i := i
		g.Go(func() error {
			img := images[i]
			body, err := as.source.FetchImageData(gctx, img)
			if err != nil {
				// skipped images are counted below by their nil slot
				log.Printf("archive: failed to fetch image %d (%s), skipping: %v", img.ID, img.Filename, err)
				return nil
			}
			data[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ExportResult{
		Filename:        utils.ArchiveFilename(scope, time.Now()),
		UnverifiedCount: CountUnverified(images),
	}

	entries := make([]utils.ArchiveEntry, 0, len(images))
	for i, img := range images {
		if data[i] == nil {
			result.Skipped++
			continue
		}
		filename := img.Filename
		if !img.Verified {
			filename = utils.UnverifiedFilename(filename)
		}
		entries = append(entries, utils.ArchiveEntry{
			GroupDir: classify.DisplayName(img.Label, img.Type),
			Filename: filename,
			Data:     data[i],
		})
		result.Added++
	}
	if result.Added == 0 {
		return nil, errors.New("every image download failed, nothing to archive")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := utils.WriteGroupedArchive(zw, entries); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	relPath, err := as.store.Save(media.AssetTypeArchive, "", result.Filename, &buf)
	if err != nil {
		return nil, err
	}
	result.RelPath = relPath

	log.Printf("archive: exported %s (%d added, %d skipped)", result.Filename, result.Added, result.Skipped)
	return result, nil
}

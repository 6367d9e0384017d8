package workers

import (
	"fmt"
	"log"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/camden-git/cropsysbackend/media"
	"github.com/camden-git/cropsysbackend/repository"
)

type ThumbnailJob struct {
	ImageID      uint
	OriginalPath string // relative to the media storage root
}

// ThumbnailProcessor owns a bounded queue and worker pool generating
// thumbnails for uploaded records. Queued-but-unstarted jobs are deduplicated
// by image id.
type ThumbnailProcessor struct {
	JobQueue  chan ThumbnailJob
	Repo      repository.ImageRepositoryInterface
	Store     media.Store
	Processor *media.Processor
	MaxSize   int
	Wg        sync.WaitGroup
	StopChan  chan struct{}
	Pending   map[uint]bool
	Mutex     sync.Mutex
}

func NewThumbnailProcessor(repo repository.ImageRepositoryInterface, store media.Store, processor *media.Processor, maxSize, queueSize, numWorkers int) *ThumbnailProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	tp := &ThumbnailProcessor{
		JobQueue:  make(chan ThumbnailJob, queueSize),
		Repo:      repo,
		Store:     store,
		Processor: processor,
		MaxSize:   maxSize,
		StopChan:  make(chan struct{}),
		Pending:   make(map[uint]bool),
	}
	tp.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go tp.worker(i)
	}
	log.Printf("Started %d thumbnail worker(s) with queue size %d", numWorkers, queueSize)
	return tp
}

// Enqueue schedules thumbnail generation for an image unless a job for it is
// already queued. Returns false when the queue is full.
func (tp *ThumbnailProcessor) Enqueue(job ThumbnailJob) bool {
	tp.Mutex.Lock()
	if tp.Pending[job.ImageID] {
		tp.Mutex.Unlock()
		return true
	}
	tp.Pending[job.ImageID] = true
	tp.Mutex.Unlock()

	select {
	case tp.JobQueue <- job:
		return true
	default:
		tp.Mutex.Lock()
		delete(tp.Pending, job.ImageID)
		tp.Mutex.Unlock()
		log.Printf("Thumbnail queue full, dropping job for image %d", job.ImageID)
		return false
	}
}

// Stop signals all workers and waits for them to drain.
func (tp *ThumbnailProcessor) Stop() {
	close(tp.StopChan)
	tp.Wg.Wait()
}

func (tp *ThumbnailProcessor) worker(id int) {
	defer tp.Wg.Done()
	log.Printf("Thumbnail worker %d started", id)
	for {
		select {
		case job, ok := <-tp.JobQueue:
			if !ok {
				log.Printf("Thumbnail worker %d stopping: job queue closed", id)
				return
			}
			tp.process(id, job)

			tp.Mutex.Lock()
			delete(tp.Pending, job.ImageID)
			tp.Mutex.Unlock()

		case <-tp.StopChan:
			log.Printf("Thumbnail worker %d stopping: stop signal received", id)
			return
		}
	}
}

// process generates one thumbnail and records the result, success or not, on
// the image row.
func (tp *ThumbnailProcessor) process(workerID int, job ThumbnailJob) {
	if err := tp.Repo.MarkThumbnailProcessing(job.ImageID); err != nil {
		log.Printf("Worker %d: ERROR marking thumbnail processing for image %d: %v. Skipping job.", workerID, job.ImageID, err)
		return
	}

	var taskErr error
	var thumbPathPtr *string

	fullPath, err := tp.Store.GetFullPath(job.OriginalPath)
	if err != nil {
		taskErr = fmt.Errorf("failed to resolve original path: %w", err)
	} else {
		img, openErr := imaging.Open(fullPath)
		if openErr != nil {
			taskErr = fmt.Errorf("failed to open image: %w", openErr)
		} else {
			thumbRelPath, genErr := tp.Processor.GenerateThumbnail(img, job.OriginalPath, tp.MaxSize)
			if genErr != nil {
				taskErr = fmt.Errorf("thumbnail generation failed: %w", genErr)
			} else {
				thumbPathPtr = &thumbRelPath
			}
		}
	}

	if taskErr != nil {
		log.Printf("Worker %d: ERROR processing thumbnail for image %d: %v", workerID, job.ImageID, taskErr)
	}

	if dbErr := tp.Repo.UpdateThumbnailResult(job.ImageID, thumbPathPtr, taskErr); dbErr != nil {
		log.Printf("Worker %d: ERROR updating thumbnail result for image %d: %v", workerID, job.ImageID, dbErr)
	}
}

// EnqueuePendingOnStartup re-queues every record whose thumbnail never got
// generated, typically after a crash or deploy mid-queue.
func (tp *ThumbnailProcessor) EnqueuePendingOnStartup() {
	images, err := tp.Repo.GetImagesRequiringThumbnails()
	if err != nil {
		log.Printf("Failed to query images requiring thumbnails: %v", err)
		return
	}
	for i := range images {
		tp.Enqueue(ThumbnailJob{ImageID: images[i].ID, OriginalPath: images[i].OriginalPath})
	}
	if len(images) > 0 {
		log.Printf("Re-queued %d pending thumbnail job(s)", len(images))
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/camden-git/cropsysbackend/ingest"
)

// Action is one of the bulk operations applicable to a selection.
type Action string

const (
	ActionVerify   Action = "verify"
	ActionUnverify Action = "unverify"
	ActionDelete   Action = "delete"
)

// IsValidAction checks if a string names a known bulk action.
func IsValidAction(s string) bool {
	switch Action(s) {
	case ActionVerify, ActionUnverify, ActionDelete:
		return true
	default:
		return false
	}
}

var (
	// ErrNoSelection rejects a bulk action invoked with zero ids before any
	// network or database call is made.
	ErrNoSelection = errors.New("no images selected")
	// ErrActionInFlight rejects a second invocation of the same action while
	// one is outstanding. Different actions are not serialized against each
	// other; backend storage owns that consistency.
	ErrActionInFlight = errors.New("this action is already in progress")
)

// BulkResult aggregates the outcome of one bulk action. Partial failure is
// data, not an error: some ids succeed, some fail, and the counts plus the
// advisory message carry the whole story.
type BulkResult struct {
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
	Message      string `json:"message"`
}

// BulkService applies verify/unverify/delete to id sets and triggers the
// wholesale catalog rebuild after anything succeeds.
type BulkService struct {
	source  ingest.Source
	catalog *CatalogService

	mu       sync.Mutex
	inFlight map[Action]bool
}

func NewBulkService(source ingest.Source, catalogSvc *CatalogService) *BulkService {
	return &BulkService{
		source:   source,
		catalog:  catalogSvc,
		inFlight: make(map[Action]bool),
	}
}

func (bs *BulkService) acquire(action Action) error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.inFlight[action] {
		return ErrActionInFlight
	}
	bs.inFlight[action] = true
	return nil
}

func (bs *BulkService) release(action Action) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.inFlight[action] = false
}

// Execute runs a bulk action over the given ids and reports aggregated
// counts. On any success the hierarchy is re-ingested and rebuilt; the
// executor never patches folders in place.
func (bs *BulkService) Execute(ctx context.Context, action Action, ids []uint) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, ErrNoSelection
	}
	if err := bs.acquire(action); err != nil {
		return BulkResult{}, err
	}
	defer bs.release(action)

	var result BulkResult
	switch action {
	case ActionVerify, ActionUnverify:
		result = bs.setVerified(ctx, ids, action == ActionVerify)
	case ActionDelete:
		result = bs.deleteEach(ctx, ids)
	default:
		return BulkResult{}, fmt.Errorf("unknown bulk action %q", action)
	}

	result.Message = summarize(action, result)

	if result.SuccessCount > 0 {
		if err := bs.catalog.Refresh(ctx); err != nil {
			log.Printf("bulk: hierarchy rebuild after %s failed: %v", action, err)
		}
	}
	return result, nil
}

// setVerified prefers the single batched update. When the batch is rejected
// it degrades to sequential per-id updates so individual failures stay
// isolated and countable.
func (bs *BulkService) setVerified(ctx context.Context, ids []uint, verified bool) BulkResult {
	err := bs.source.SetVerified(ctx, ids, verified)
	if err == nil {
		return BulkResult{SuccessCount: len(ids)}
	}
	log.Printf("bulk: batched verified update failed, retrying per id: %v", err)

	var result BulkResult
	for _, id := range ids {
		if err := bs.source.SetVerified(ctx, []uint{id}, verified); err != nil {
			log.Printf("bulk: verified update failed for image %d: %v", id, err)
			result.FailureCount++
			continue
		}
		result.SuccessCount++
	}
	return result
}

// deleteEach issues one delete per id; deletion endpoints are per-resource.
// A failing id never aborts the loop.
func (bs *BulkService) deleteEach(ctx context.Context, ids []uint) BulkResult {
	var result BulkResult
	for _, id := range ids {
		if err := bs.source.Delete(ctx, id); err != nil {
			log.Printf("bulk: delete failed for image %d: %v", id, err)
			result.FailureCount++
			continue
		}
		result.SuccessCount++
	}
	return result
}

func summarize(action Action, r BulkResult) string {
	verb := map[Action]string{
		ActionVerify:   "verified",
		ActionUnverify: "unverified",
		ActionDelete:   "deleted",
	}[action]

	if r.FailureCount == 0 {
		return fmt.Sprintf("%d image(s) %s", r.SuccessCount, verb)
	}
	if r.SuccessCount == 0 {
		return fmt.Sprintf("failed to %s %d image(s)", action, r.FailureCount)
	}
	return fmt.Sprintf("%d image(s) %s, %d failed", r.SuccessCount, verb, r.FailureCount)
}

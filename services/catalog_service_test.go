package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/classify"
)

func TestRefreshBuildsHierarchy(t *testing.T) {
	src := newFakeSource(
		record(1, "Anthracnose", classify.TypeLeaf, 92, true),
		record(2, "Stem End Rot", classify.TypeFruit, 38, false),
	)
	svc := NewCatalogService(src)
	require.NoError(t, svc.Refresh(context.Background()))

	require.Len(t, svc.Folders(), 4)
	assert.Equal(t, 2, svc.Folder(catalog.CategoryAll).Count)
	assert.Equal(t, 1, svc.Folder(catalog.CategoryVerified).Count)
	assert.Equal(t, 1, svc.Folder(catalog.CategoryUnknown).Count)

	totals := svc.Totals()
	assert.Equal(t, 2, totals[catalog.CategoryAll])
	assert.Equal(t, 0, totals[catalog.CategoryUnverified])
}

func TestRefreshRejectsReentry(t *testing.T) {
	src := newFakeSource(record(1, "Wilt", classify.TypeLeaf, 80, false))
	src.fetchGate = make(chan struct{})
	svc := NewCatalogService(src)

	firstDone := make(chan error, 1)
	go func() { firstDone <- svc.Refresh(context.Background()) }()

	// wait for the first refresh to reach the blocked fetch
	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.fetchAllCalls == 1
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, svc.Refresh(context.Background()), ErrRefreshInFlight)

	close(src.fetchGate)
	require.NoError(t, <-firstDone)

	// once released, refreshing works again
	src.fetchGate = nil
	assert.NoError(t, svc.Refresh(context.Background()))
}

func TestCriteriaPersistAcrossRefresh(t *testing.T) {
	src := newFakeSource(
		record(1, "Anthracnose", classify.TypeLeaf, 92, false),
		record(2, "Stem End Rot", classify.TypeFruit, 81, false),
	)
	svc := NewCatalogService(src)
	require.NoError(t, svc.Refresh(context.Background()))

	svc.SetCriteria(catalog.Criteria{Type: classify.TypeLeaf})
	assert.Equal(t, 1, svc.Folder(catalog.CategoryAll).Count)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, svc.Folder(catalog.CategoryAll).Count, "filter survives the rebuild")

	svc.ClearCriteria()
	assert.Equal(t, 2, svc.Folder(catalog.CategoryAll).Count)
}

func TestVisibleImagesAndImagesByIDs(t *testing.T) {
	src := newFakeSource(
		record(1, "Anthracnose", classify.TypeLeaf, 92, false),
		record(2, "Stem End Rot", classify.TypeFruit, 81, false),
	)
	svc := NewCatalogService(src)
	require.NoError(t, svc.Refresh(context.Background()))

	visible := svc.VisibleImages(catalog.CategoryAll)
	assert.Len(t, visible, 2)

	svc.SetCriteria(catalog.Criteria{Type: classify.TypeFruit})
	visible = svc.VisibleImages(catalog.CategoryAll)
	require.Len(t, visible, 1)
	assert.Equal(t, uint(2), visible[0].ID)

	// id resolution ignores the active filter and stale ids
	byID := svc.ImagesByIDs([]uint{1, 99})
	require.Len(t, byID, 1)
	assert.Equal(t, uint(1), byID[0].ID)
}

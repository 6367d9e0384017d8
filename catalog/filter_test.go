package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/cropsysbackend/classify"
)

func buildFixture(now time.Time) []*MainFolder {
	records := []Image{
		testImage(1, "Anthracnose", classify.TypeLeaf, 92, false, now.AddDate(0, 0, -1)),
		testImage(2, "Anthracnose", classify.TypeLeaf, 85, false, now.AddDate(0, 0, -3)),
		testImage(3, "Stem End Rot", classify.TypeFruit, 81, false, now.AddDate(0, 0, -10)),
		testImage(4, "Powdery Mildew", classify.TypeLeaf, 77, false, now.AddDate(0, 0, -2)),
	}
	return Build(records)
}

func TestApplyTypeFilter(t *testing.T) {
	now := time.Now()
	folders := buildFixture(now)
	all := folderByCategory(t, folders, CategoryAll)

	view := Apply(all.OriginalSubFolders, Criteria{Type: classify.TypeFruit}, now)
	require.Len(t, view, 1)
	assert.Equal(t, "Stem End Rot (Fruit)", view[0].Name)
}

func TestApplySearchFilter(t *testing.T) {
	now := time.Now()
	folders := buildFixture(now)
	all := folderByCategory(t, folders, CategoryAll)

	view := Apply(all.OriginalSubFolders, Criteria{Search: "mildew"}, now)
	require.Len(t, view, 1)
	assert.Equal(t, "Powdery Mildew (Leaf)", view[0].Name)

	view = Apply(all.OriginalSubFolders, Criteria{Search: "ROT"}, now)
	require.Len(t, view, 1)
	assert.Equal(t, "Stem End Rot (Fruit)", view[0].Name)
}

func TestApplyDateFilterDropsEmptiedFolders(t *testing.T) {
	now := time.Now()
	folders := buildFixture(now)
	all := folderByCategory(t, folders, CategoryAll)
	priorCount := all.Count

	// Stem End Rot's only image is 10 days old, so a week range must remove
	// the whole folder, not keep it with a zero count
	ApplyToMainFolders(folders, Criteria{Range: RangeWeek}, now)

	for _, sf := range all.SubFolders {
		assert.NotEqual(t, "Stem End Rot (Fruit)", sf.Name)
		assert.Greater(t, sf.Count, 0)
	}
	assert.Equal(t, priorCount-1, all.Count)
}

func TestApplyDateFilterRecomputesCounts(t *testing.T) {
	now := time.Now()
	folders := buildFixture(now)
	all := folderByCategory(t, folders, CategoryAll)

	// shift the clock so the week cutoff lands 36 hours before now: only
	// Anthracnose's newest image survives
	view := Apply(all.OriginalSubFolders, Criteria{Range: RangeWeek}, now.AddDate(0, 0, 5).Add(12*time.Hour))
	require.Len(t, view, 1)
	assert.Equal(t, "Anthracnose (Leaf)", view[0].Name)
	assert.Equal(t, 1, view[0].Count)
	assert.Len(t, view[0].Images, 1)
}

func TestApplyNeverMutatesOriginal(t *testing.T) {
	now := time.Now()
	folders := buildFixture(now)
	all := folderByCategory(t, folders, CategoryAll)

	before := make([]string, 0)
	counts := make([]int, 0)
	for _, sf := range all.OriginalSubFolders {
		before = append(before, sf.Name)
		counts = append(counts, sf.Count)
	}

	_ = Apply(all.OriginalSubFolders, Criteria{Type: classify.TypeLeaf, Search: "anthr", Range: RangeWeek, Sort: SortCount}, now)

	for i, sf := range all.OriginalSubFolders {
		assert.Equal(t, before[i], sf.Name)
		assert.Equal(t, counts[i], sf.Count)
		assert.Len(t, sf.Images, sf.Count)
	}
}

func TestApplyClearFiltersRoundTrip(t *testing.T) {
	now := time.Now()
	folders := buildFixture(now)
	all := folderByCategory(t, folders, CategoryAll)

	ApplyToMainFolders(folders, Criteria{Type: classify.TypeLeaf, Search: "anthr"}, now)
	ApplyToMainFolders(folders, Criteria{}, now)

	require.Len(t, all.SubFolders, len(all.OriginalSubFolders))
	for i, sf := range all.SubFolders {
		assert.Same(t, all.OriginalSubFolders[i], sf)
	}
	sum := 0
	for _, sf := range all.SubFolders {
		sum += sf.Count
	}
	assert.Equal(t, sum, all.Count)
}

func TestApplySortKeys(t *testing.T) {
	now := time.Now()
	folders := buildFixture(now)
	all := folderByCategory(t, folders, CategoryAll)

	t.Run("disease sorts lexicographically", func(t *testing.T) {
		view := Apply(all.OriginalSubFolders, Criteria{Sort: SortDisease}, now)
		var names []string
		for _, sf := range view {
			names = append(names, sf.Name)
		}
		assert.Equal(t, []string{"Anthracnose (Leaf)", "Powdery Mildew (Leaf)", "Stem End Rot (Fruit)"}, names)
	})

	t.Run("count sorts descending", func(t *testing.T) {
		view := Apply(all.OriginalSubFolders, Criteria{Sort: SortCount}, now)
		assert.Equal(t, "Anthracnose (Leaf)", view[0].Name)
		for i := 1; i < len(view); i++ {
			assert.GreaterOrEqual(t, view[i-1].Count, view[i].Count)
		}
	})

	t.Run("date sorts by most recent upload descending", func(t *testing.T) {
		view := Apply(all.OriginalSubFolders, Criteria{Sort: SortDate}, now)
		assert.Equal(t, "Anthracnose (Leaf)", view[0].Name)
		assert.Equal(t, "Powdery Mildew (Leaf)", view[1].Name)
		assert.Equal(t, "Stem End Rot (Fruit)", view[2].Name)
	})

	t.Run("count sort is stable on ties", func(t *testing.T) {
		records := []Image{
			testImage(1, "Wilt", classify.TypeLeaf, 80, false, now),
			testImage(2, "Blight", classify.TypeLeaf, 80, false, now),
			testImage(3, "Canker", classify.TypeLeaf, 80, false, now),
		}
		tied := Build(records)
		allTied := folderByCategory(t, tied, CategoryAll)
		view := Apply(allTied.OriginalSubFolders, Criteria{Sort: SortCount}, now)
		var names []string
		for _, sf := range view {
			names = append(names, sf.Label)
		}
		assert.Equal(t, []string{"Wilt", "Blight", "Canker"}, names)
	})
}

func TestRangeCutoff(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	cutoff, ok := RangeCutoff(RangeWeek, now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, -7), cutoff)

	cutoff, ok = RangeCutoff(RangeMonth, now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, -1, 0), cutoff)

	cutoff, ok = RangeCutoff(RangeYear, now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(-1, 0, 0), cutoff)

	_, ok = RangeCutoff(RangeAll, now)
	assert.False(t, ok)
	_, ok = RangeCutoff("", now)
	assert.False(t, ok)
}

package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/cropsysbackend/classify"
)

func TestToggleIsSelfInverse(t *testing.T) {
	s := NewSelection(1, 2)
	roundTrip := s.Toggle(7).Toggle(7)
	assert.Equal(t, s.IDs(), roundTrip.IDs())

	removed := s.Toggle(1)
	assert.False(t, removed.Contains(1))
	assert.Equal(t, s.IDs(), removed.Toggle(1).IDs())
}

func TestSelectionOperationsDoNotAlias(t *testing.T) {
	s := NewSelection(1)
	_ = s.Toggle(2)
	_ = s.Toggle(1)
	assert.Equal(t, []uint{1}, s.IDs(), "operations must not mutate the receiver")
}

func TestClearEmptiesWithoutMutating(t *testing.T) {
	s := NewSelection(1, 2, 3)
	cleared := s.Clear()
	assert.Zero(t, cleared.Len())
	assert.Equal(t, 3, s.Len())
}

func TestSelectAndDeselectFolder(t *testing.T) {
	folder := &DiseaseFolder{
		Label: "Anthracnose",
		Type:  classify.TypeLeaf,
		Images: []Image{
			{ID: 1}, {ID: 2}, {ID: 3},
		},
		Count: 3,
	}

	s := NewSelection(9).SelectFolder(folder)
	assert.Equal(t, []uint{1, 2, 3, 9}, s.IDs())
	assert.True(t, s.IsFolderFullySelected(folder))

	s = s.DeselectFolder(folder)
	assert.Equal(t, []uint{9}, s.IDs())
	assert.False(t, s.IsFolderFullySelected(folder))
}

func TestIsFolderFullySelected(t *testing.T) {
	folder := &DiseaseFolder{Images: []Image{{ID: 1}, {ID: 2}}, Count: 2}

	assert.False(t, NewSelection(1).IsFolderFullySelected(folder))
	assert.True(t, NewSelection(1, 2).IsFolderFullySelected(folder))
	assert.True(t, NewSelection(1, 2, 99).IsFolderFullySelected(folder))

	empty := &DiseaseFolder{}
	assert.False(t, NewSelection(1, 2).IsFolderFullySelected(empty), "empty folder is never fully selected")
}

func TestSelectAllSpansEveryMaterializedSubfolder(t *testing.T) {
	now := time.Now()
	records := []Image{
		testImage(1, "Anthracnose", classify.TypeLeaf, 92, true, now),
		testImage(2, "Stem End Rot", classify.TypeFruit, 81, false, now),
		testImage(3, "Wilt", classify.TypeLeaf, 30, false, now),
	}
	folders := Build(records)

	s := SelectAll(folders)
	assert.Equal(t, []uint{1, 2, 3}, s.IDs())
	assert.Equal(t, 3, s.Len())
}

func TestSelectAllRespectsFilteredView(t *testing.T) {
	now := time.Now()
	records := []Image{
		testImage(1, "Anthracnose", classify.TypeLeaf, 92, true, now),
		testImage(2, "Stem End Rot", classify.TypeFruit, 81, false, now),
	}
	folders := Build(records)
	ApplyToMainFolders(folders, Criteria{Type: classify.TypeLeaf}, now)

	s := SelectAll(folders)
	require.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(1))
}

func TestSelectionSurvivesRebuild(t *testing.T) {
	now := time.Now()
	records := []Image{
		testImage(1, "Anthracnose", classify.TypeLeaf, 92, false, now),
		testImage(2, "Wilt", classify.TypeLeaf, 80, false, now),
	}
	s := NewSelection(1, 2)

	// verify id 1 and rebuild; membership is keyed by id and must not change
	records[0].Verified = true
	folders := Build(records)

	assert.Equal(t, []uint{1, 2}, s.IDs())
	verified := folderByCategory(t, folders, CategoryVerified)
	require.Len(t, verified.SubFolders, 1)
	assert.True(t, s.IsFolderFullySelected(verified.SubFolders[0]))
}

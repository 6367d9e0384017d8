package catalog

import "sort"

// Selection is an immutable set of selected image ids. Every operation
// returns a new set and leaves the receiver untouched, so state changes stay
// observable by simple comparison. Membership is keyed purely by id and
// survives hierarchy rebuilds; it is never auto-pruned when a record changes
// category.
type Selection map[uint]struct{}

// NewSelection builds a selection containing the given ids.
func NewSelection(ids ...uint) Selection {
	s := make(Selection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Selection) clone(extra int) Selection {
	out := make(Selection, len(s)+extra)
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Contains reports membership of an id.
func (s Selection) Contains(id uint) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s)
}

// IDs returns the selected ids in ascending order.
func (s Selection) IDs() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clear returns the empty selection.
func (s Selection) Clear() Selection {
	return NewSelection()
}

// Toggle flips membership of a single id.
func (s Selection) Toggle(id uint) Selection {
	out := s.clone(1)
	if _, ok := out[id]; ok {
		delete(out, id)
	} else {
		out[id] = struct{}{}
	}
	return out
}

// SelectFolder adds every image id in the folder's current (filtered) image
// list.
func (s Selection) SelectFolder(folder *DiseaseFolder) Selection {
	out := s.clone(len(folder.Images))
	for i := range folder.Images {
		out[folder.Images[i].ID] = struct{}{}
	}
	return out
}

// DeselectFolder removes every image id in the folder's current image list.
func (s Selection) DeselectFolder(folder *DiseaseFolder) Selection {
	out := s.clone(0)
	for i := range folder.Images {
		delete(out, folder.Images[i].ID)
	}
	return out
}

// SelectAll returns the union of every image id across every subfolder of
// every main folder currently materialized.
func SelectAll(folders []*MainFolder) Selection {
	out := make(Selection)
	for _, mf := range folders {
		for _, sf := range mf.SubFolders {
			for i := range sf.Images {
				out[sf.Images[i].ID] = struct{}{}
			}
		}
	}
	return out
}

// IsFolderFullySelected reports whether every image id in the folder is a
// member of the selection. An empty folder is never considered fully
// selected.
func (s Selection) IsFolderFullySelected(folder *DiseaseFolder) bool {
	if len(folder.Images) == 0 {
		return false
	}
	for i := range folder.Images {
		if !s.Contains(folder.Images[i].ID) {
			return false
		}
	}
	return true
}

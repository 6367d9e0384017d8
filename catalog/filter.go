package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/camden-git/cropsysbackend/classify"
)

// Date range constants for filtering by upload recency.
const (
	RangeAll   = "all"
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

// Sort key constants for ordering disease folders.
const (
	SortDisease = "disease"
	SortCount   = "count"
	SortDate    = "date"
)

// IsValidRange checks if a string is a valid date range constant.
func IsValidRange(r string) bool {
	switch r {
	case RangeAll, RangeWeek, RangeMonth, RangeYear:
		return true
	default:
		return false
	}
}

// IsValidSortKey checks if a string is a valid sort key constant.
func IsValidSortKey(k string) bool {
	switch k {
	case SortDisease, SortCount, SortDate:
		return true
	default:
		return false
	}
}

// Criteria describes one filter/sort pass. The zero value is a no-op: every
// stage only runs when its field is set, so applying an empty Criteria
// reproduces the original grouping exactly.
type Criteria struct {
	Type   classify.DiseaseType `json:"type,omitempty"`   // "", "all", leaf or fruit
	Search string               `json:"search,omitempty"` // case-insensitive substring on display name
	Range  string               `json:"range,omitempty"`  // "", all, week, month or year
	Sort   string               `json:"sort,omitempty"`   // "", disease, count or date
}

// IsZero reports whether the criteria would pass everything through
// untouched.
func (c Criteria) IsZero() bool {
	return (c.Type == "" || c.Type == "all") && c.Search == "" &&
		(c.Range == "" || c.Range == RangeAll) && c.Sort == ""
}

// RangeCutoff returns the earliest upload time admitted by a date range,
// relative to now. ok is false when the range does not constrain anything.
func RangeCutoff(r string, now time.Time) (time.Time, bool) {
	switch r {
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return now.AddDate(0, -1, 0), true
	case RangeYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Apply derives a filtered, sorted view from a baseline subfolder list. It
// never mutates the input: folders surviving untouched are shared, folders
// shrunk by the date filter are replaced by trimmed copies. Stage order is
// type filter, search, date range, sort; sorts are stable so that ties keep
// their original relative order.
func Apply(original []*DiseaseFolder, c Criteria, now time.Time) []*DiseaseFolder {
	result := append([]*DiseaseFolder(nil), original...)

	if c.Type != "" && c.Type != "all" {
		kept := result[:0]
		for _, folder := range result {
			if folder.Type == c.Type {
				kept = append(kept, folder)
			}
		}
		result = kept
	}

	if term := strings.ToLower(strings.TrimSpace(c.Search)); term != "" {
		kept := result[:0]
		for _, folder := range result {
			if strings.Contains(strings.ToLower(folder.Name), term) {
				kept = append(kept, folder)
			}
		}
		result = kept
	}

	if cutoff, ok := RangeCutoff(c.Range, now); ok {
		trimmed := make([]*DiseaseFolder, 0, len(result))
		for _, folder := range result {
			copied := trimFolderByDate(folder, cutoff)
			if copied.Count == 0 {
				// folders emptied by the date filter disappear from the view
				// entirely rather than lingering with a zero count
				continue
			}
			trimmed = append(trimmed, copied)
		}
		result = trimmed
	}

	switch c.Sort {
	case SortDisease:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Name < result[j].Name
		})
	case SortCount:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Count > result[j].Count
		})
	case SortDate:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].LatestUpload().After(result[j].LatestUpload())
		})
	}

	return result
}

// trimFolderByDate returns a copy of the folder holding only images uploaded
// at or after the cutoff, with the count recomputed.
func trimFolderByDate(folder *DiseaseFolder, cutoff time.Time) *DiseaseFolder {
	copied := &DiseaseFolder{
		Label: folder.Label,
		Type:  folder.Type,
		Name:  folder.Name,
	}
	for _, img := range folder.Images {
		if !img.UploadedAt.Before(cutoff) {
			copied.Images = append(copied.Images, img)
		}
	}
	copied.Count = len(copied.Images)
	return copied
}

// ApplyToMainFolders runs one filter/sort pass over every main folder,
// replacing each working view and recomputing each main folder count from
// the new subfolder counts.
func ApplyToMainFolders(folders []*MainFolder, c Criteria, now time.Time) {
	for _, mf := range folders {
		mf.SubFolders = Apply(mf.OriginalSubFolders, c, now)
		mf.recount()
	}
}

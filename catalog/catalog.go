package catalog

import (
	"sort"
	"time"

	"github.com/facette/natsort"

	"github.com/camden-git/cropsysbackend/classify"
)

// Image is the canonical in-memory record the hierarchy is built from. It is
// produced once at the ingestion boundary (see the ingest package) with the
// confidence already normalized and the type already inferred; nothing
// downstream re-derives those.
type Image struct {
	ID           uint                 `json:"id"`
	Label        string               `json:"disease_label"`
	Type         classify.DiseaseType `json:"disease_type"`
	Confidence   float64              `json:"confidence"` // normalized percentage
	Verified     bool                 `json:"verified"`
	UploadedAt   time.Time            `json:"uploaded_at"`
	Filename     string               `json:"filename"`
	URL          string               `json:"url"`
	ThumbnailURL string               `json:"thumbnail_url,omitempty"`
}

// Category is one of the four fixed top-level partitions.
type Category string

const (
	CategoryAll        Category = "all"
	CategoryVerified   Category = "verified"
	CategoryUnverified Category = "unverified"
	CategoryUnknown    Category = "unknown"
)

// Categories lists the main folder categories in display order.
var Categories = []Category{CategoryAll, CategoryVerified, CategoryUnverified, CategoryUnknown}

// IsValidCategory checks if a string names one of the four main categories.
func IsValidCategory(s string) bool {
	switch Category(s) {
	case CategoryAll, CategoryVerified, CategoryUnverified, CategoryUnknown:
		return true
	default:
		return false
	}
}

// DisplayName returns the human-facing name of the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryAll:
		return "All Images"
	case CategoryVerified:
		return "Verified"
	case CategoryUnverified:
		return "Unverified"
	case CategoryUnknown:
		return "Unknown Confidence"
	default:
		return string(c)
	}
}

// DiseaseFolder groups the images of one main category that share a disease
// label and inferred type. Count is always recomputed from the image list,
// never hand-maintained.
type DiseaseFolder struct {
	Label  string               `json:"disease_label"`
	Type   classify.DiseaseType `json:"disease_type"`
	Name   string               `json:"name"` // display name, e.g. "Anthracnose (Leaf)"
	Images []Image              `json:"images"`
	Count  int                  `json:"count"`
}

// Key returns the composite grouping key for the folder.
func (df *DiseaseFolder) Key() string {
	return df.Label + "|" + string(df.Type)
}

// FolderKey builds the composite key used to group images into disease
// folders.
func FolderKey(label string, t classify.DiseaseType) string {
	return label + "|" + string(t)
}

// LatestUpload returns the most recent upload time among the folder's images,
// or the zero time for an empty folder.
func (df *DiseaseFolder) LatestUpload() time.Time {
	var latest time.Time
	for i := range df.Images {
		if df.Images[i].UploadedAt.After(latest) {
			latest = df.Images[i].UploadedAt
		}
	}
	return latest
}

// MainFolder is one of the four top-level partitions. OriginalSubFolders is
// the untouched baseline produced by Build; SubFolders is the current
// filtered/sorted view derived from it.
type MainFolder struct {
	Category           Category         `json:"category"`
	Name               string           `json:"name"`
	Count              int              `json:"count"`
	SubFolders         []*DiseaseFolder `json:"sub_folders"`
	OriginalSubFolders []*DiseaseFolder `json:"-"`
}

// recount sets Count to the sum of the current subfolder counts.
func (mf *MainFolder) recount() {
	total := 0
	for _, sf := range mf.SubFolders {
		total += sf.Count
	}
	mf.Count = total
}

// Build partitions records into the four main categories and groups each
// category by (disease label, type) into disease folders. Routing precedence:
// a normalized confidence below the threshold sends the record to the unknown
// category; otherwise the verified flag decides between verified and
// unverified. The all category always contains every record.
//
// Builds are wholesale: any state change (verify, delete) re-ingests and
// rebuilds rather than patching folders in place.
func Build(records []Image) []*MainFolder {
	buckets := map[Category][]Image{}
	for _, img := range records {
		buckets[CategoryAll] = append(buckets[CategoryAll], img)
		switch {
		case classify.BelowThreshold(img.Confidence):
			buckets[CategoryUnknown] = append(buckets[CategoryUnknown], img)
		case img.Verified:
			buckets[CategoryVerified] = append(buckets[CategoryVerified], img)
		default:
			buckets[CategoryUnverified] = append(buckets[CategoryUnverified], img)
		}
	}

	folders := make([]*MainFolder, 0, len(Categories))
	for _, cat := range Categories {
		mf := &MainFolder{
			Category:           cat,
			Name:               cat.DisplayName(),
			OriginalSubFolders: groupByDisease(buckets[cat]),
		}
		// the working view starts as a copy of the baseline list so filter
		// passes never touch OriginalSubFolders
		mf.SubFolders = append([]*DiseaseFolder(nil), mf.OriginalSubFolders...)
		mf.recount()
		folders = append(folders, mf)
	}
	return folders
}

// groupByDisease groups images by their composite (label, type) key,
// preserving first-appearance order of the groups. Images inside a folder are
// ordered naturally by filename.
func groupByDisease(images []Image) []*DiseaseFolder {
	byKey := map[string]*DiseaseFolder{}
	var ordered []*DiseaseFolder

	for _, img := range images {
		key := FolderKey(img.Label, img.Type)
		folder, ok := byKey[key]
		if !ok {
			folder = &DiseaseFolder{
				Label: img.Label,
				Type:  img.Type,
				Name:  classify.DisplayName(img.Label, img.Type),
			}
			byKey[key] = folder
			ordered = append(ordered, folder)
		}
		folder.Images = append(folder.Images, img)
	}

	for _, folder := range ordered {
		sort.SliceStable(folder.Images, func(i, j int) bool {
			return natsort.Compare(folder.Images[i].Filename, folder.Images[j].Filename)
		})
		folder.Count = len(folder.Images)
	}
	return ordered
}

// FindFolder locates a disease folder by composite key within a main folder's
// current view. Returns nil when absent (e.g. filtered out).
func FindFolder(mf *MainFolder, key string) *DiseaseFolder {
	for _, sf := range mf.SubFolders {
		if sf.Key() == key {
			return sf
		}
	}
	return nil
}

package utils

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
	"time"
)

// ArchiveEntry is one file destined for a grouped ZIP archive.
type ArchiveEntry struct {
	GroupDir string // archive-internal folder, e.g. "Anthracnose (Leaf)"
	Filename string
	Data     []byte
}

// ArchiveFilename builds the output name for an export: {scope}_{YYYY-MM-DD}.zip.
// The scope is sanitized; folder-scoped exports take it from user-supplied
// disease labels.
func ArchiveFilename(scope string, t time.Time) string {
	return fmt.Sprintf("%s_%s.zip", SanitizeFilename(scope), t.Format("2006-01-02"))
}

// UnverifiedFilename rewrites a filename by inserting an _unverified suffix
// before the extension, so verification status stays visible inside an
// archive.
func UnverifiedFilename(filename string) string {
	ext := path.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "_unverified" + ext
}

// WriteGroupedArchive writes all entries into zw, one archive directory per
// group. Duplicate filenames within a group get a numeric suffix instead of
// silently producing colliding zip entries.
func WriteGroupedArchive(zw *zip.Writer, entries []ArchiveEntry) error {
	seen := map[string]int{}
	for _, entry := range entries {
		// group and filename both originate from wire data; keep entries
		// confined to their group directory
		group := SanitizeFilename(entry.GroupDir)
		filename := SanitizeFilename(entry.Filename)

		name := path.Join(group, filename)
		if n := seen[name]; n > 0 {
			ext := path.Ext(filename)
			base := strings.TrimSuffix(filename, ext)
			name = path.Join(group, fmt.Sprintf("%s_%d%s", base, n+1, ext))
		}
		seen[path.Join(group, filename)]++

		writer, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create zip entry %s: %w", name, err)
		}
		if _, err := writer.Write(entry.Data); err != nil {
			return fmt.Errorf("failed to write zip entry %s: %w", name, err)
		}
	}
	return nil
}

package utils

import (
	"io"

	"github.com/rwcarlsen/goexif/exif"
)

// ExtractTakenAt reads EXIF data from an uploaded image and returns the
// capture time as a Unix timestamp. Images without EXIF (or without a date
// tag) return nil; that is normal for screenshots and processed files, not an
// error.
func ExtractTakenAt(r io.Reader) *int64 {
	exifData, err := exif.Decode(r)
	if err != nil {
		return nil
	}

	taken, err := exifData.DateTime()
	if err != nil {
		return nil
	}

	ts := taken.Unix()
	return &ts
}

package enums

import "fmt"

// MediaBucket names the storage bucket an upload belongs to.
type MediaBucket string

const (
	MediaBucketProduct MediaBucket = "product"
	MediaBucketGallery MediaBucket = "gallery"
)

var validMediaBuckets = []MediaBucket{
	MediaBucketProduct,
	MediaBucketGallery,
}

// String implements fmt.Stringer.
func (m MediaBucket) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MediaBucket.
func (m MediaBucket) IsValid() bool {
	for _, candidate := range validMediaBuckets {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaBucket converts raw input into a MediaBucket.
func ParseMediaBucket(value string) (MediaBucket, error) {
	for _, candidate := range validMediaBuckets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media bucket %q", value)
}

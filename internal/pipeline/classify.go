package pipeline

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Bucket is a display category for a publication type.
type Bucket int

// BucketDefault is used for missing or non-string types. Every other type
// lands in 1..bucketCount.
const (
	BucketDefault Bucket = 0
	bucketCount          = 4
)

// Classify maps a publication type to a bucket. The mapping depends only on
// the string, so it is the same in every run and on every machine.
func Classify(publicationType string) Bucket {
	if strings.TrimSpace(publicationType) == "" {
		return BucketDefault
	}
	return Bucket(xxhash.Sum64String(publicationType)%bucketCount + 1)
}

// ClassifyValue classifies a loosely typed value. Anything other than a
// string or non-nil *string gets BucketDefault.
func ClassifyValue(v any) Bucket {
	switch t := v.(type) {
	case string:
		return Classify(t)
	case *string:
		if t == nil {
			return BucketDefault
		}
		return Classify(*t)
	}
	return BucketDefault
}

// Class returns the CSS class for the bucket.
func (b Bucket) Class() string {
	return fmt.Sprintf("type-bucket-%d", int(b))
}

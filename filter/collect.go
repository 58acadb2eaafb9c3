package filter

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Collect drains seq into a bitmap of matching indices.
func Collect(seq iter.Seq2[Block, error]) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	for b, err := range seq {
		if err != nil {
			return nil, err
		}
		bm.AddMany(b.Indices)
	}
	bm.RunOptimize()
	return bm, nil
}

// Count drains seq and returns the number of matching and scanned points.
func Count(seq iter.Seq2[Block, error]) (matched, scanned uint64, err error) {
	for b, err := range seq {
		if err != nil {
			return matched, scanned, err
		}
		matched += uint64(len(b.Indices))
		scanned += uint64(b.Count)
	}
	return matched, scanned, nil
}

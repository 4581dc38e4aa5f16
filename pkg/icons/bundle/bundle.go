// Package bundle assembles rendered bitmaps into the two bundle forms the
// shells consume: a multi-image ICO container and a conventional iconset
// directory of per-size PNGs.
//
// A bundle is either complete (every ladder size present, container
// validated) or construction fails; no partially-valid bundle is ever
// observable, on disk or in memory.
package bundle

import (
	"fmt"

	"github.com/iconify-go/iconify/pkg/icons/errors"
	"github.com/iconify-go/iconify/pkg/icons/raster"
)

// Bundle is a validated, ladder-complete set of bitmaps. It owns its
// bitmaps exclusively; they are never shared across bundles.
type Bundle struct {
	Bitmaps  []raster.Bitmap // ladder order, ascending
	Ladder   raster.SizeLadder
	OriginID string
	Degraded bool
}

// New checks a bitmap set against the ladder and wraps it as a Bundle.
// Missing or surplus sizes fail with ErrIncompleteBundle.
func New(set *raster.BitmapSet, ladder raster.SizeLadder) (*Bundle, error) {
	if err := ladder.Validate(); err != nil {
		return nil, err
	}

	bySize := make(map[int]raster.Bitmap, len(set.Bitmaps))
	for _, bm := range set.Bitmaps {
		if !ladder.Contains(bm.Size) {
			return nil, fmt.Errorf("%w: unexpected size %d", errors.ErrIncompleteBundle, bm.Size)
		}
		if bm.Image == nil || bm.Image.Bounds().Dx() != bm.Size || bm.Image.Bounds().Dy() != bm.Size {
			return nil, fmt.Errorf("%w: bitmap for size %d has wrong dimensions", errors.ErrIncompleteBundle, bm.Size)
		}
		bySize[bm.Size] = bm
	}

	ordered := make([]raster.Bitmap, 0, len(ladder))
	for _, size := range ladder {
		bm, ok := bySize[size]
		if !ok {
			return nil, fmt.Errorf("%w: missing size %d", errors.ErrIncompleteBundle, size)
		}
		ordered = append(ordered, bm)
	}

	return &Bundle{
		Bitmaps:  ordered,
		Ladder:   ladder,
		OriginID: set.OriginID,
		Degraded: set.Degraded,
	}, nil
}

// Package raster converts one artwork candidate into the fixed ladder of
// square bitmaps an icon bundle is built from.
//
// Vector artwork renders directly at each target size. Raster artwork is
// normalized (trimmed, padded square) and scaled; upscaling is allowed but
// flags the result as degraded so callers can warn.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/nfnt/resize"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/iconify-go/iconify/pkg/icons/artwork"
	icoerr "github.com/iconify-go/iconify/pkg/icons/errors"
)

// SizeLadder is the ascending set of square pixel sizes a bundle must hold.
type SizeLadder []int

// MaxIconSize is the largest size an ICO directory entry can declare; the
// width/height fields are single bytes with 0 meaning 256.
const MaxIconSize = 256

// DefaultLadder covers the sizes the Windows shell actually reads.
func DefaultLadder() SizeLadder {
	return SizeLadder{16, 32, 48, 64, 128, 256}
}

// Validate checks that sizes are positive, unique, ascending, and
// representable in an ICO directory entry.
func (l SizeLadder) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("size ladder is empty")
	}
	prev := 0
	for _, s := range l {
		if s <= prev {
			return fmt.Errorf("size ladder must be unique and ascending, got %v", l)
		}
		if s > MaxIconSize {
			return fmt.Errorf("size %d exceeds the container maximum of %d", s, MaxIconSize)
		}
		prev = s
	}
	return nil
}

// Contains reports whether size is part of the ladder.
func (l SizeLadder) Contains(size int) bool {
	i := sort.SearchInts(l, size)
	return i < len(l) && l[i] == size
}

// Bitmap is one rendered square. Never mutated after creation.
type Bitmap struct {
	Size  int
	Image *image.RGBA
}

// BitmapSet is the ladder-ordered render of one artwork candidate.
type BitmapSet struct {
	Bitmaps  []Bitmap
	OriginID string
	// Degraded marks that at least one size required upscaling past the
	// source's native resolution.
	Degraded bool
}

// Rasterizer renders artwork candidates against a size ladder.
type Rasterizer struct {
	logger hclog.Logger
}

func NewRasterizer(logger hclog.Logger) *Rasterizer {
	return &Rasterizer{logger: logger.Named("raster")}
}

// Rasterize produces one bitmap per ladder size from the candidate.
// Decode failures abort with ErrDecode; there is no partial result.
func (r *Rasterizer) Rasterize(cand artwork.Candidate, ladder SizeLadder) (*BitmapSet, error) {
	if err := ladder.Validate(); err != nil {
		return nil, err
	}

	if cand.Format == artwork.FormatVector {
		return r.rasterizeVector(cand, ladder)
	}
	return r.rasterizeRaster(cand, ladder)
}

// rasterizeVector renders the SVG once per target size. Rendering at the
// final resolution avoids the quality loss of scaling an intermediate
// raster, and is deterministic for identical input bytes.
func (r *Rasterizer) rasterizeVector(cand artwork.Candidate, ladder SizeLadder) (*BitmapSet, error) {
	set := &BitmapSet{OriginID: cand.SourceID}
	for _, size := range ladder {
		img, err := renderSVG(cand.Payload, size)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", icoerr.ErrDecode, err)
		}
		set.Bitmaps = append(set.Bitmaps, Bitmap{Size: size, Image: img})
	}
	r.logger.Debug("🖌️ Vector artwork rendered", "origin", cand.SourceID, "sizes", len(ladder))
	return set, nil
}

// renderSVG rasterizes an SVG document onto a transparent square canvas,
// preserving aspect ratio and centering the content.
func renderSVG(payload []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = float64(size), float64(size)
	}
	scale := float64(size) / vw
	if vh > vw {
		scale = float64(size) / vh
	}
	tw, th := vw*scale, vh*scale
	icon.SetTarget((float64(size)-tw)/2, (float64(size)-th)/2, tw, th)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, 1.0)
	return img, nil
}

// rasterizeRaster normalizes the source image and scales it to each ladder
// size. Downsampling uses Lanczos; upscaling falls back to bilinear and
// marks the set as degraded.
func (r *Rasterizer) rasterizeRaster(cand artwork.Candidate, ladder SizeLadder) (*BitmapSet, error) {
	src, _, err := image.Decode(bytes.NewReader(cand.Payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", icoerr.ErrDecode, err)
	}

	base := Normalize(src)
	native := base.Bounds().Dx() // square after normalization

	set := &BitmapSet{OriginID: cand.SourceID}
	for _, size := range ladder {
		var scaled image.Image
		if native >= size {
			scaled = resize.Resize(uint(size), uint(size), base, resize.Lanczos3)
		} else {
			// Upscaling cannot add detail, but a complete ladder beats a
			// missing entry. The caller is told via Degraded.
			scaled = resize.Resize(uint(size), uint(size), base, resize.Bilinear)
			set.Degraded = true
		}
		set.Bitmaps = append(set.Bitmaps, Bitmap{Size: size, Image: toRGBA(scaled)})
	}

	if set.Degraded {
		r.logger.Warn("⚠️ Source smaller than ladder top; some sizes are upscaled",
			"origin", cand.SourceID,
			"native", native,
			"ladder_max", ladder[len(ladder)-1])
	}
	r.logger.Debug("🖼️ Raster artwork scaled", "origin", cand.SourceID, "native", native)
	return set, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	xdraw.Draw(out, out.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return out
}

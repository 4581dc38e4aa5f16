package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

const (
	// Pixels with alpha at or below this count as empty when trimming.
	alphaThreshold = 8

	// Per-channel difference needed to count as content on opaque images.
	bgTolerance = 10

	// Fraction of the content side added as transparent margin.
	padRatio = 0.10
)

// Normalize prepares a decoded source image for the size ladder: trim the
// canvas to actual content, center-crop what remains to a square, then pad
// with a small transparent margin so small renditions do not look
// undersized. Nothing is ever stretched anisotropically.
func Normalize(src image.Image) *image.RGBA {
	rgba := toRGBA(src)
	trimmed := trimToContent(rgba)
	return padSquare(centerCropSquare(trimmed))
}

// centerCropSquare crops the longer dimension to the shorter one, centered.
func centerCropSquare(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return img
	}
	side := w
	if h < side {
		side = h
	}
	x := b.Min.X + (w-side)/2
	y := b.Min.Y + (h-side)/2
	return cropRGBA(img, image.Rect(x, y, x+side, y+side))
}

// trimToContent crops to the alpha bounding box, or, for fully opaque
// images (social previews and the like), to pixels differing from the
// top-left background color beyond a tolerance.
func trimToContent(img *image.RGBA) *image.RGBA {
	b := img.Bounds()

	if box, ok := alphaBounds(img); ok {
		return cropRGBA(img, box)
	}

	bg := img.RGBAAt(b.Min.X, b.Min.Y)
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.RGBAAt(x, y)
			if absDiff(px.R, bg.R) > bgTolerance ||
				absDiff(px.G, bg.G) > bgTolerance ||
				absDiff(px.B, bg.B) > bgTolerance {
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return img
	}
	return cropRGBA(img, image.Rect(minX, minY, maxX+1, maxY+1))
}

// alphaBounds returns the bounding box of non-transparent pixels. The
// second result is false when the image has no transparency at all, in
// which case the caller falls back to background-diff trimming.
func alphaBounds(img *image.RGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	sawTransparent := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := img.RGBAAt(x, y).A
			if a <= alphaThreshold {
				sawTransparent = true
				continue
			}
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if !sawTransparent || maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// padSquare centers square content on a larger transparent canvas.
func padSquare(img *image.RGBA) *image.RGBA {
	side := img.Bounds().Dx()
	pad := int(float64(side) * padRatio)
	outSide := side + 2*pad

	out := image.NewRGBA(image.Rect(0, 0, outSide, outSide))
	offset := image.Pt(pad, pad)
	xdraw.Draw(out, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(side, side))}, img, img.Bounds().Min, xdraw.Over)
	return out
}

func cropRGBA(img *image.RGBA, box image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	xdraw.Draw(out, out.Bounds(), img, box.Min, xdraw.Src)
	return out
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

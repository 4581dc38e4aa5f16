package bundle

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/iconify-go/iconify/pkg/utils/atomicfile"
)

// IconsetName returns the file name for one size slot in an iconset
// directory. Retina slots carry the @2x suffix and hold an image rendered
// at twice the nominal size.
func IconsetName(size int, retina bool) string {
	if retina {
		return fmt.Sprintf("icon_%dx%d@2x.png", size, size)
	}
	return fmt.Sprintf("icon_%dx%d.png", size, size)
}

// WriteIconset materializes the bundle as a <path>.iconset-style directory
// with one PNG per ladder size. The directory is staged next to the target
// and swapped in whole, so a partially written set is never observable.
//
// When retina is true, each size also gets an @2x entry reusing the bitmap
// of the doubled size where the ladder has one.
func (c *Composer) WriteIconset(b *Bundle, path string, retina bool) error {
	parent := filepath.Dir(path)
	stage, err := os.MkdirTemp(parent, ".iconset-stage-")
	if err != nil {
		return fmt.Errorf("staging iconset: %w", err)
	}
	defer os.RemoveAll(stage)

	bySize := make(map[int]int, len(b.Bitmaps))
	for i, bm := range b.Bitmaps {
		bySize[bm.Size] = i
	}

	for _, bm := range b.Bitmaps {
		if err := writeIconsetPNG(filepath.Join(stage, IconsetName(bm.Size, false)), bm.Image); err != nil {
			return err
		}
		if !retina {
			continue
		}
		if j, ok := bySize[bm.Size*2]; ok {
			if err := writeIconsetPNG(filepath.Join(stage, IconsetName(bm.Size, true)), b.Bitmaps[j].Image); err != nil {
				return err
			}
		}
	}

	if err := atomicfile.ReplaceDir(stage, path); err != nil {
		return fmt.Errorf("publishing iconset: %w", err)
	}
	c.logger.Info("✅ Iconset written", "path", path, "images", len(b.Bitmaps), "retina", retina)
	return nil
}

func writeIconsetPNG(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating iconset entry: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding iconset entry: %w", err)
	}
	return f.Close()
}

package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	icoerr "github.com/iconify-go/iconify/pkg/icons/errors"

	// Raster formats accepted from local files and scraped candidates.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FileProvider wraps a local image path as a single candidate.
type FileProvider struct {
	logger hclog.Logger
}

func NewFileProvider(logger hclog.Logger) *FileProvider {
	return &FileProvider{logger: logger.Named("file")}
}

// Resolve validates that the file decodes as a raster image and returns it
// as the only candidate. Animated GIFs are flattened to the requested frame.
func (p *FileProvider) Resolve(ctx context.Context, req Request) ([]Candidate, error) {
	payload, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", icoerr.ErrInvalidImage, req.ImagePath)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", icoerr.ErrInvalidImage, req.ImagePath, err)
	}

	if format == "gif" && req.Frame > 0 {
		payload, err = flattenGIFFrame(payload, req.Frame)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", icoerr.ErrInvalidImage, req.ImagePath, err)
		}
	}

	native := cfg.Width
	if cfg.Height < native {
		native = cfg.Height
	}

	p.logger.Debug("🖼️ Local image accepted",
		"path", req.ImagePath,
		"format", format,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))

	return []Candidate{{
		SourceID:    "file:" + filepath.Base(req.ImagePath),
		Format:      FormatRaster,
		NativeSize:  native,
		Payload:     payload,
		QualityRank: cfg.Width * cfg.Height,
	}}, nil
}

// flattenGIFFrame composites animation frames up to the requested index and
// re-encodes the result as PNG. Frames past the end clamp to the last one.
func flattenGIFFrame(payload []byte, frame int) ([]byte, error) {
	g, err := gif.DecodeAll(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}
	if frame >= len(g.Image) {
		frame = len(g.Image) - 1
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	// GIF frames may be partial updates; composite in order.
	for i := 0; i <= frame; i++ {
		draw.Draw(canvas, g.Image[i].Bounds(), g.Image[i], g.Image[i].Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

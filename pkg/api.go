// Package pkg exposes the high level iconify pipeline: resolve artwork,
// rasterize it against a size ladder, compose the icon bundle outputs, and
// optionally apply them to a folder or drive target.
package pkg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/iconify-go/iconify/internal/emoji"
	"github.com/iconify-go/iconify/pkg/icons/artwork"
	"github.com/iconify-go/iconify/pkg/icons/bundle"
	"github.com/iconify-go/iconify/pkg/icons/errors"
	"github.com/iconify-go/iconify/pkg/icons/platform"
	"github.com/iconify-go/iconify/pkg/icons/raster"
)

// Options describes one end-to-end iconify run.
type Options struct {
	Emoji     string // friendly name, hex code, U+ form, or literal emoji
	ImagePath string // local image path, used with the file source
	Source    string // artwork source selector; empty means twemoji
	Candidate int    // scraped candidate index; negative means best ranked
	Frame     int    // GIF frame to flatten

	Sizes     []int  // size ladder; nil means the default ladder
	OutputDir string // where the .ico and .iconset land; empty means cwd
	Name      string // output basename; empty means derived
	Retina    bool   // also emit @2x iconset entries

	Target       string   // folder or drive root to apply the icon to
	Drive        bool     // treat the target as a drive root regardless of shape
	NoApply      bool     // compose only, never touch the target
	ForceElevate bool     // request elevation even for folder targets
	ElevateArgs  []string // argv to relaunch with when elevation is needed
	Refresh      bool
	RefreshForce bool
}

// Result reports what a run produced.
type Result struct {
	ICOPath     string
	IconsetPath string
	OriginID    string
	Degraded    bool
	Applied     *platform.PersistenceRecord
	// Relaunched means an elevated copy of the process has taken over
	// and this one should exit without further work.
	Relaunched bool
}

// Iconify runs the full pipeline. Stages are strictly ordered; a failure
// in any stage leaves no partial output behind.
func Iconify(ctx context.Context, opts Options, logger hclog.Logger) (*Result, error) {
	req, err := buildRequest(ctx, opts)
	if err != nil {
		return nil, err
	}

	provider := artwork.NewProvider(req.Source, logger)
	candidates, err := provider.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	cand := artwork.Pick(candidates, opts.Candidate)
	logger.Info("🎨 Artwork resolved",
		"source", cand.SourceID,
		"format", cand.Format.String(),
		"candidates", len(candidates))

	ladder := raster.SizeLadder(opts.Sizes)
	if len(ladder) == 0 {
		ladder = raster.DefaultLadder()
	}

	set, err := raster.NewRasterizer(logger).Rasterize(cand, ladder)
	if err != nil {
		return nil, err
	}

	b, err := bundle.New(set, ladder)
	if err != nil {
		return nil, err
	}

	name := outputName(opts, req)
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}

	composer := bundle.NewComposer(logger)
	icoData, err := composer.EncodeICO(b)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ICOPath:     filepath.Join(outDir, name+".ico"),
		IconsetPath: filepath.Join(outDir, name+".iconset"),
		OriginID:    b.OriginID,
		Degraded:    b.Degraded,
	}
	if err := composer.PublishICO(icoData, res.ICOPath); err != nil {
		return nil, err
	}
	if err := composer.WriteIconset(b, res.IconsetPath, opts.Retina); err != nil {
		return nil, err
	}

	if opts.Target != "" && !opts.NoApply {
		target := platform.DetectTarget(opts.Target)
		if opts.Drive {
			target.Kind = platform.TargetDrive
		}
		needsElevation := opts.ForceElevate || platform.NeedsElevation(target)
		if needsElevation && !platform.IsElevated() && len(opts.ElevateArgs) > 0 {
			relaunched, err := platform.EnsureElevated(logger, opts.ElevateArgs)
			if err != nil {
				return nil, err
			}
			if relaunched {
				res.Relaunched = true
				return res, nil
			}
		}
		rec, err := platform.NewApplier(logger).Apply(target, icoData)
		if err != nil {
			return nil, err
		}
		res.Applied = rec
	}

	if opts.Refresh || opts.RefreshForce {
		if err := platform.Refresh(logger, platform.RefreshOptions{Force: opts.RefreshForce}); err != nil {
			logger.Warn("⚠️ Shell cache refresh incomplete", "error", err)
		}
	}

	return res, nil
}

func buildRequest(ctx context.Context, opts Options) (artwork.Request, error) {
	src, err := artwork.ParseSource(opts.Source)
	if err != nil {
		return artwork.Request{}, err
	}
	if opts.ImagePath != "" && opts.Source == "" {
		src = artwork.SourceFile
	}

	req := artwork.Request{
		ImagePath: opts.ImagePath,
		Source:    src,
		Candidate: opts.Candidate,
		Frame:     opts.Frame,
	}

	if src == artwork.SourceFile {
		if opts.ImagePath == "" {
			return req, fmt.Errorf("%w: file source requires an image path", errors.ErrNoArtwork)
		}
		return req, nil
	}

	if opts.Emoji == "" {
		return req, fmt.Errorf("%w: an emoji identifier is required", errors.ErrNotFound)
	}

	// The scraped design listing is keyed by friendly-name slug, not by
	// codepoints. Only the vector CDN path needs hex codepoints.
	if src == artwork.SourceScrape {
		req.EmojiID = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(opts.Emoji), " ", "-"))
		return req, nil
	}

	code, err := emoji.Parse(ctx, opts.Emoji)
	if err != nil {
		return req, fmt.Errorf("%w: %v", errors.ErrNotFound, err)
	}
	req.EmojiID = code
	return req, nil
}

func outputName(opts Options, req artwork.Request) string {
	if opts.Name != "" {
		return opts.Name
	}
	if req.Source == artwork.SourceFile {
		base := filepath.Base(opts.ImagePath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if opts.Emoji != "" && !strings.ContainsAny(opts.Emoji, `/\:*?"<>| `) && isASCII(opts.Emoji) {
		return strings.ToLower(opts.Emoji)
	}
	return req.EmojiID
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

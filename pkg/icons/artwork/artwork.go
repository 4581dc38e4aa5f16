// Package artwork resolves icon requests to candidate source images.
//
// Three providers exist behind one capability interface: a vector-first
// provider (one canonical SVG per emoji), a best-effort scraped provider
// (ranked raster candidates of varying quality), and a local file provider.
// The set is closed; callers pick a provider with an explicit Source value.
package artwork

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Format describes the encoding family of a candidate payload.
type Format int

const (
	FormatVector Format = iota // SVG document
	FormatRaster               // PNG/JPEG/GIF/WEBP/BMP/TIFF bytes
)

func (f Format) String() string {
	if f == FormatVector {
		return "vector"
	}
	return "raster"
}

// Source selects one of the fixed provider variants.
type Source int

const (
	SourceTwemoji Source = iota // canonical vector artwork
	SourceScrape                // scraped vendor designs, ranked
	SourceFile                  // user-supplied image path
)

// ParseSource maps a CLI selector string to a Source.
func ParseSource(s string) (Source, error) {
	switch s {
	case "twemoji", "vector", "":
		return SourceTwemoji, nil
	case "scrape", "designs":
		return SourceScrape, nil
	case "file", "image":
		return SourceFile, nil
	}
	return SourceTwemoji, fmt.Errorf("unknown artwork source %q", s)
}

// Request describes what artwork to resolve.
type Request struct {
	EmojiID   string // friendly name, hex codepoints, or literal emoji char
	ImagePath string // used by SourceFile only
	Source    Source
	Candidate int // candidate index; negative means auto (rank order)
	Frame     int // frame to use for animated sources
}

// Candidate is one resolved source image. Immutable once fetched.
type Candidate struct {
	SourceID    string // provenance label, e.g. "twemoji:1f98a"
	Format      Format
	NativeSize  int // square-relevant native resolution; 0 for vector
	Payload     []byte
	QualityRank int // higher ranks first
}

// Provider resolves a request to an ordered candidate sequence.
type Provider interface {
	Resolve(ctx context.Context, req Request) ([]Candidate, error)
}

// NewProvider returns the provider implementing the requested source.
func NewProvider(src Source, logger hclog.Logger) Provider {
	switch src {
	case SourceScrape:
		return NewScrapeProvider(logger)
	case SourceFile:
		return NewFileProvider(logger)
	default:
		return NewTwemojiProvider(logger)
	}
}

// Pick selects a candidate by index, clamped to the available range.
// A negative index means the default (highest ranked) candidate.
func Pick(candidates []Candidate, index int) Candidate {
	if index < 0 {
		index = 0
	}
	if index >= len(candidates) {
		index = len(candidates) - 1
	}
	return candidates[index]
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// httpTimeout returns the per-request timeout, overridable for slow links.
func httpTimeout() time.Duration {
	if v := os.Getenv("ICONIFY_HTTP_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 30 * time.Second
}

func newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

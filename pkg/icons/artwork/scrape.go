package artwork

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	icoerr "github.com/iconify-go/iconify/pkg/icons/errors"
)

const (
	// GraphQL endpoint serving the per-emoji vendor design listing.
	designEndpoint = "https://emojipedia.org/api/graphql"

	// Host serving the design source assets.
	designAssetHost = "https://em-content.zobj.net/"

	// At most this many candidate fetches run at once. A slow or failed
	// fetch must not block the others.
	fetchConcurrency = 4

	maxCandidates = 25
)

// declaredSizeRe matches explicit size folders in asset paths, e.g. /512/.
var declaredSizeRe = regexp.MustCompile(`/(2048|1024|512|256|128|64|32)/`)

const designQuery = `
query emojiV1($slug: Slug!, $lang: Language) {
  emoji_v1(slug: $slug, lang: $lang) {
    vendorsAndPlatforms {
      slug
      title
      items {
        slug
        title
        image {
          source
        }
      }
    }
  }
}
`

// ScrapeProvider is the best-effort raster provider. It lists vendor
// designs for an emoji and fetches them concurrently, ranking by estimated
// quality. Individual fetch failures drop the candidate, never the set.
type ScrapeProvider struct {
	client *http.Client
	logger hclog.Logger
}

func NewScrapeProvider(logger hclog.Logger) *ScrapeProvider {
	return &ScrapeProvider{
		client: &http.Client{Timeout: httpTimeout()},
		logger: logger.Named("scrape"),
	}
}

type designListing struct {
	Data struct {
		EmojiV1 struct {
			VendorsAndPlatforms []struct {
				Slug  string `json:"slug"`
				Title string `json:"title"`
				Items []struct {
					Slug  string `json:"slug"`
					Title string `json:"title"`
					Image struct {
						Source string `json:"source"`
					} `json:"image"`
				} `json:"items"`
			} `json:"vendorsAndPlatforms"`
		} `json:"emoji_v1"`
	} `json:"data"`
}

type designRef struct {
	vendor string
	url    string
}

// Resolve lists designs for the emoji and returns ranked raster candidates.
func (p *ScrapeProvider) Resolve(ctx context.Context, req Request) ([]Candidate, error) {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.EmojiID), " ", "-"))
	if slug == "" {
		return nil, fmt.Errorf("%w: empty identifier", icoerr.ErrNoArtwork)
	}

	refs, err := p.listDesigns(ctx, slug)
	if err != nil {
		p.logger.Warn("⚠️ Design listing failed", "slug", slug, "error", err)
		refs = nil
	}
	if len(refs) > maxCandidates {
		refs = refs[:maxCandidates]
	}

	p.logger.Debug("🔎 Fetching design candidates", "slug", slug, "count", len(refs))

	candidates := p.fetchAll(ctx, refs)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", icoerr.ErrNoArtwork, slug)
	}

	// Rank by estimated quality; ties keep discovery order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].QualityRank > candidates[j].QualityRank
	})

	p.logger.Info("✅ Artwork candidates resolved",
		"slug", slug,
		"candidates", len(candidates),
		"best", candidates[0].SourceID)
	return candidates, nil
}

func (p *ScrapeProvider) listDesigns(ctx context.Context, slug string) ([]designRef, error) {
	body, err := json.Marshal(map[string]interface{}{
		"operationName": "emojiV1",
		"query":         designQuery,
		"variables":     map[string]string{"slug": slug, "lang": "EN"},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, designEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var listing designListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	var refs []designRef
	for _, vp := range listing.Data.EmojiV1.VendorsAndPlatforms {
		vendor := vp.Title
		if vendor == "" {
			vendor = vp.Slug
		}
		for _, item := range vp.Items {
			src := item.Image.Source
			if src == "" {
				continue
			}
			refs = append(refs, designRef{
				vendor: vendor,
				url:    designAssetHost + strings.TrimPrefix(src, "/"),
			})
		}
	}
	return refs, nil
}

// fetchAll downloads candidate images with bounded concurrency. Failures
// are swallowed per candidate; only the merged result can be empty.
func (p *ScrapeProvider) fetchAll(ctx context.Context, refs []designRef) []Candidate {
	results := make([]*Candidate, len(refs))
	sem := make(chan struct{}, fetchConcurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref designRef) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cand, err := p.fetchOne(ctx, ref)
			if err != nil {
				p.logger.Debug("⏭️ Dropping candidate", "url", ref.url, "error", err)
				return
			}
			results[i] = cand
		}(i, ref)
	}
	wg.Wait()

	var candidates []Candidate
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	return candidates
}

func (p *ScrapeProvider) fetchOne(ctx context.Context, ref designRef) (*Candidate, error) {
	httpReq, err := newRequest(ctx, ref.url)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("not a decodable image: %w", err)
	}

	native := cfg.Width
	if cfg.Height < native {
		native = cfg.Height
	}

	return &Candidate{
		SourceID:    "design:" + ref.vendor,
		Format:      FormatRaster,
		NativeSize:  native,
		Payload:     payload,
		QualityRank: declaredSizeScore(ref.url) + cfg.Width*cfg.Height,
	}, nil
}

// declaredSizeScore prefers assets served from explicit size folders.
func declaredSizeScore(url string) int {
	m := declaredSizeRe.FindStringSubmatch(url)
	if m == nil {
		return 0
	}
	s, _ := strconv.Atoi(m[1])
	return s * s
}

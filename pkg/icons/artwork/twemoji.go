package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/iconify-go/iconify/internal/emoji"
	icoerr "github.com/iconify-go/iconify/pkg/icons/errors"
)

// TwemojiBaseURL hosts one canonical SVG per emoji codepoint sequence.
const TwemojiBaseURL = "https://raw.githubusercontent.com/twitter/twemoji/master/assets/svg"

// TwemojiProvider is the high-trust vector-first provider. It resolves an
// emoji identifier to exactly one canonical SVG candidate.
type TwemojiProvider struct {
	client *http.Client
	logger hclog.Logger
}

func NewTwemojiProvider(logger hclog.Logger) *TwemojiProvider {
	return &TwemojiProvider{
		client: &http.Client{Timeout: httpTimeout()},
		logger: logger.Named("twemoji"),
	}
}

// SVGURL returns the canonical asset URL for a hex codepoint string.
func SVGURL(code string) string {
	code = strings.ToLower(code)
	code = strings.ReplaceAll(code, "u+", "")
	code = strings.ReplaceAll(code, "0x", "")
	code = strings.ReplaceAll(code, " ", "")
	return fmt.Sprintf("%s/%s.svg", TwemojiBaseURL, code)
}

// Resolve returns the single canonical candidate for the requested emoji.
func (p *TwemojiProvider) Resolve(ctx context.Context, req Request) ([]Candidate, error) {
	code, err := emoji.Parse(ctx, req.EmojiID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", icoerr.ErrNotFound, req.EmojiID)
	}

	url := SVGURL(code)
	p.logger.Debug("🎨 Fetching canonical vector artwork", "code", code, "url", url)

	httpReq, err := newRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching twemoji asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no vector asset for %s", icoerr.ErrNotFound, code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching twemoji asset: unexpected status %s", resp.Status)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading twemoji asset: %w", err)
	}

	p.logger.Debug("✅ Vector artwork resolved", "code", code, "bytes", len(payload))

	return []Candidate{{
		SourceID:    "twemoji:" + code,
		Format:      FormatVector,
		NativeSize:  0, // scalable
		Payload:     payload,
		QualityRank: 1000,
	}}, nil
}

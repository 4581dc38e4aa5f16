// Package emoji resolves emoji identifiers to the hex codepoint strings
// used by vector asset CDNs (lowercase hex, multi-codepoint joined with '-').
package emoji

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

// MetadataURL is the Unicode consortium's emoji listing. Each
// "fully-qualified" line maps a codepoint sequence to a friendly name.
const MetadataURL = "https://unicode.org/Public/emoji/latest/emoji-test.txt"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// fallbackNames keeps common lookups working when unicode.org is unreachable.
var fallbackNames = map[string]string{
	"fox":        "1f98a",
	"lotus":      "1fab7",
	"paw_prints": "1f43e",
	"dragon":     "1f409",
	"wolf":       "1f43a",
	"cat":        "1f431",
	"dog":        "1f436",
	"unicorn":    "1f984",
	"phoenix":    "1f985",
	"butterfly":  "1f98b",
	"rose":       "1f339",
}

var codeRe = regexp.MustCompile(`^[0-9a-f]{4,6}(-[0-9a-f]{4,6})*$`)

var (
	metaOnce  sync.Once
	metaCache map[string]string
)

// Metadata returns a mapping of friendly name -> hex codepoint string.
// The table is fetched from unicode.org once per process; on failure the
// embedded fallback table is returned instead.
func Metadata(ctx context.Context) map[string]string {
	metaOnce.Do(func() {
		table, err := fetchMetadata(ctx)
		if err != nil {
			table = make(map[string]string, 2*len(fallbackNames))
			for name, code := range fallbackNames {
				table[name] = code
				table[code] = code
			}
		}
		metaCache = table
	})
	return metaCache
}

func fetchMetadata(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, MetadataURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: 20 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching emoji metadata: %s", resp.Status)
	}

	return ParseMetadata(resp.Body), nil
}

// ParseMetadata reads emoji-test.txt content and builds the name table.
// Both the first word of a name and the full underscored name are keys, so
// "fox" and "fox_face" style lookups both resolve.
func ParseMetadata(r io.Reader) map[string]string {
	table := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "; fully-qualified") {
			continue
		}
		code := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(strings.SplitN(line, ";", 2)[0]), " ", "-"))

		// Comment fragment: "# <emoji> <version> <name...>"
		_, after, ok := strings.Cut(line, "#")
		if !ok {
			continue
		}
		parts := strings.Fields(after)
		if len(parts) >= 3 {
			nameWords := parts[2:]
			first := strings.ToLower(nameWords[0])
			underscored := strings.ToLower(strings.Join(nameWords, "_"))
			if _, dup := table[first]; !dup {
				table[first] = code
			}
			table[underscored] = code
		}
		table[code] = code
	}
	return table
}

// Parse resolves an emoji argument to a hex codepoint string. Accepted
// forms: a friendly name ("fox"), bare hex ("1f98a"), "U+1F98A", or a
// literal emoji character. Returns an error when nothing matches.
func Parse(ctx context.Context, arg string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(arg))
	if s == "" {
		return "", fmt.Errorf("empty emoji identifier")
	}

	if code, ok := Metadata(ctx)[s]; ok {
		return code, nil
	}

	s = strings.ReplaceAll(s, "u+", "")
	s = strings.ReplaceAll(s, "0x", "")
	if codeRe.MatchString(s) {
		return s, nil
	}

	// Best-effort: treat the argument as a literal emoji character.
	if lit := strings.TrimSpace(arg); hasNonASCII(lit) {
		var cps []string
		for _, r := range lit {
			cps = append(cps, fmt.Sprintf("%x", r))
		}
		return strings.Join(cps, "-"), nil
	}

	return "", fmt.Errorf("could not parse emoji identifier %q", arg)
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}

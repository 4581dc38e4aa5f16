package emoji

import (
	"context"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

const sampleMetadata = `# emoji-test.txt
# Format: code points; status # emoji name

1F98A                                                  ; fully-qualified     # 🦊 E1.0 fox
1F431                                                  ; fully-qualified     # 🐱 E0.6 cat face
1F408 200D 2B1B                                        ; fully-qualified     # 🐈‍⬛ E13.0 black cat
1F408                                                  ; unqualified         # 🐈 E0.7 cat
26A0 FE0F                                              ; fully-qualified     # ⚠️ E0.6 warning
`

// TestParseMetadata tests building the name table from the listing format
func TestParseMetadata(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "emoji_test",
		Level: hclog.Trace,
	})

	table := ParseMetadata(strings.NewReader(sampleMetadata))
	logger.Info("🧪 Parsed metadata table", "entries", len(table))

	testCases := []struct {
		name     string
		key      string
		expected string
	}{
		{"first word", "fox", "1f98a"},
		{"underscored name", "cat_face", "1f431"},
		{"first word keeps first occurrence", "cat", "1f431"},
		{"multi codepoint sequence", "black_cat", "1f408-200d-2b1b"},
		{"variation selector kept", "warning", "26a0-fe0f"},
		{"code maps to itself", "1f98a", "1f98a"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := table[tc.key]
			if !ok {
				t.Fatalf("key %q missing from table", tc.key)
			}
			if got != tc.expected {
				t.Errorf("table[%q] = %q, want %q", tc.key, got, tc.expected)
			}
			logger.Debug("✅ Lookup verified", "key", tc.key, "code", got)
		})
	}

	// Non-qualified lines never contribute entries.
	if _, ok := table["1f408"]; ok {
		t.Error("unqualified line leaked into the table")
	}
}

// TestParse tests identifier resolution without touching the network. The
// context is pre-canceled so the metadata fetch fails and the embedded
// fallback table is used.
func TestParse(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "emoji_test",
		Level: hclog.Trace,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := []struct {
		name     string
		arg      string
		expected string
		wantErr  bool
	}{
		{"friendly name", "fox", "1f98a", false},
		{"name is case insensitive", "FOX", "1f98a", false},
		{"bare hex", "1f98a", "1f98a", false},
		{"uppercase hex", "1F98A", "1f98a", false},
		{"u-plus form", "U+1F98A", "1f98a", false},
		{"literal emoji", "🦊", "1f98a", false},
		{"literal emoji with surrounding space", " 🦊 ", "1f98a", false},
		{"multi codepoint literal", "⚠️", "26a0-fe0f", false},
		{"unknown name", "definitely_not_an_emoji", "", true},
		{"empty", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger.Info("🧪 Parsing identifier", "arg", tc.arg)

			code, err := Parse(ctx, tc.arg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %q, want error", tc.arg, code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tc.arg, err)
			}
			if code != tc.expected {
				t.Errorf("Parse(%q) = %q, want %q", tc.arg, code, tc.expected)
			}
			logger.Debug("✅ Resolved", "arg", tc.arg, "code", code)
		})
	}
}

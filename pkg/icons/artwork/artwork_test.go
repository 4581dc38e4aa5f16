package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"

	icoerr "github.com/iconify-go/iconify/pkg/icons/errors"
)

func testLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.Trace,
	})
}

// TestParseSource tests CLI selector mapping
func TestParseSource(t *testing.T) {
	testCases := []struct {
		arg      string
		expected Source
		wantErr  bool
	}{
		{"", SourceTwemoji, false},
		{"twemoji", SourceTwemoji, false},
		{"vector", SourceTwemoji, false},
		{"scrape", SourceScrape, false},
		{"designs", SourceScrape, false},
		{"file", SourceFile, false},
		{"image", SourceFile, false},
		{"bogus", SourceTwemoji, true},
	}

	for _, tc := range testCases {
		t.Run("selector_"+tc.arg, func(t *testing.T) {
			got, err := ParseSource(tc.arg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseSource(%q) error = %v, wantErr %v", tc.arg, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.expected {
				t.Errorf("ParseSource(%q) = %v, want %v", tc.arg, got, tc.expected)
			}
		})
	}
}

// TestPick tests candidate index clamping
func TestPick(t *testing.T) {
	candidates := []Candidate{
		{SourceID: "a"}, {SourceID: "b"}, {SourceID: "c"},
	}

	testCases := []struct {
		name     string
		index    int
		expected string
	}{
		{"auto picks best ranked", -1, "a"},
		{"explicit first", 0, "a"},
		{"explicit middle", 1, "b"},
		{"past the end clamps to last", 99, "c"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Pick(candidates, tc.index)
			if got.SourceID != tc.expected {
				t.Errorf("Pick(_, %d) = %s, want %s", tc.index, got.SourceID, tc.expected)
			}
		})
	}
}

// TestSVGURL tests codepoint to asset URL mapping
func TestSVGURL(t *testing.T) {
	testCases := []struct {
		code     string
		expected string
	}{
		{"1f98a", TwemojiBaseURL + "/1f98a.svg"},
		{"1F98A", TwemojiBaseURL + "/1f98a.svg"},
		{"U+1F98A", TwemojiBaseURL + "/1f98a.svg"},
		{"26a0-fe0f", TwemojiBaseURL + "/26a0-fe0f.svg"},
	}

	for _, tc := range testCases {
		if got := SVGURL(tc.code); got != tc.expected {
			t.Errorf("SVGURL(%q) = %s, want %s", tc.code, got, tc.expected)
		}
	}
}

// TestDeclaredSizeScore tests quality ranking from asset path size folders
func TestDeclaredSizeScore(t *testing.T) {
	testCases := []struct {
		url      string
		expected int
	}{
		{"https://cdn.example/thumbs/512/apple/fox_1f98a.png", 512 * 512},
		{"https://cdn.example/thumbs/2048/apple/fox.png", 2048 * 2048},
		{"https://cdn.example/source/fox.png", 0},
		{"https://cdn.example/thumbs/500/fox.png", 0},
	}

	for _, tc := range testCases {
		if got := declaredSizeScore(tc.url); got != tc.expected {
			t.Errorf("declaredSizeScore(%q) = %d, want %d", tc.url, got, tc.expected)
		}
	}
}

func servePNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	img.SetRGBA(0, 0, color.RGBA{R: 1, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// TestFetchAll tests bounded concurrent candidate fetching with per-item
// failure tolerance
func TestFetchAll(t *testing.T) {
	logger := testLogger("artwork_test")

	big := servePNG(t, 128)
	small := servePNG(t, 32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/512/big.png":
			w.Write(big)
		case "/32/small.png":
			w.Write(small)
		case "/broken.png":
			http.Error(w, "gone", http.StatusNotFound)
		default:
			w.Write([]byte("not an image"))
		}
	}))
	defer srv.Close()

	p := &ScrapeProvider{client: srv.Client(), logger: logger.Named("scrape")}
	refs := []designRef{
		{vendor: "Alpha", url: srv.URL + "/512/big.png"},
		{vendor: "Beta", url: srv.URL + "/broken.png"},
		{vendor: "Gamma", url: srv.URL + "/garbage.bin"},
		{vendor: "Delta", url: srv.URL + "/32/small.png"},
	}

	candidates := p.fetchAll(context.Background(), refs)
	logger.Info("🧪 Fetched candidates", "count", len(candidates))

	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 (failures dropped)", len(candidates))
	}
	if candidates[0].SourceID != "design:Alpha" || candidates[1].SourceID != "design:Delta" {
		t.Errorf("discovery order not preserved: %s, %s", candidates[0].SourceID, candidates[1].SourceID)
	}
	if candidates[0].NativeSize != 128 {
		t.Errorf("NativeSize = %d, want 128", candidates[0].NativeSize)
	}
	if candidates[0].QualityRank <= candidates[1].QualityRank {
		t.Error("declared 512 folder should outrank the 32 folder")
	}
}

// TestFileProviderPNG tests local raster acceptance
func TestFileProviderPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "art.png")
	if err := os.WriteFile(path, servePNG(t, 64), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(testLogger("artwork_test"))
	candidates, err := p.Resolve(context.Background(), Request{ImagePath: path, Source: SourceFile})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	c := candidates[0]
	if c.SourceID != "file:art.png" || c.Format != FormatRaster || c.NativeSize != 64 {
		t.Errorf("unexpected candidate: %+v", c)
	}
}

// TestFileProviderRejectsNonImage tests the invalid image failure path
func TestFileProviderRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(testLogger("artwork_test"))
	_, err := p.Resolve(context.Background(), Request{ImagePath: path, Source: SourceFile})
	if !errors.Is(err, icoerr.ErrInvalidImage) {
		t.Fatalf("error = %v, want ErrInvalidImage", err)
	}
}

// TestFileProviderGIFFrame tests frame selection on animated sources
func TestFileProviderGIFFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anim.gif")

	palette := color.Palette{color.RGBA{A: 255}, color.RGBA{R: 255, A: 255}, color.RGBA{G: 255, A: 255}}
	g := &gif.GIF{Config: image.Config{Width: 8, Height: 8}}
	for frame := 1; frame <= 2; frame++ {
		img := image.NewPaletted(image.Rect(0, 0, 8, 8), palette)
		for i := range img.Pix {
			img.Pix[i] = uint8(frame)
		}
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewFileProvider(testLogger("artwork_test"))

	testCases := []struct {
		name  string
		frame int
		want  color.RGBA
	}{
		{"second frame", 1, color.RGBA{G: 255, A: 255}},
		{"frame index clamps", 99, color.RGBA{G: 255, A: 255}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			candidates, err := p.Resolve(context.Background(), Request{ImagePath: path, Source: SourceFile, Frame: tc.frame})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			img, _, err := image.Decode(bytes.NewReader(candidates[0].Payload))
			if err != nil {
				t.Fatalf("flattened payload does not decode: %v", err)
			}
			r, gg, b, a := img.At(4, 4).RGBA()
			got := color.RGBA{uint8(r >> 8), uint8(gg >> 8), uint8(b >> 8), uint8(a >> 8)}
			if got != tc.want {
				t.Errorf("frame %d center pixel = %v, want %v", tc.frame, got, tc.want)
			}
		})
	}
}

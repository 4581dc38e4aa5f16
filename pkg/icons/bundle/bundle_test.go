package bundle

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/hashicorp/go-hclog"

	icoerr "github.com/iconify-go/iconify/pkg/icons/errors"
	"github.com/iconify-go/iconify/pkg/icons/raster"
)

func testLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.Trace,
	})
}

func solidBitmap(size int, c color.RGBA) raster.Bitmap {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return raster.Bitmap{Size: size, Image: img}
}

func testSet(sizes ...int) *raster.BitmapSet {
	set := &raster.BitmapSet{OriginID: "test:set"}
	for _, s := range sizes {
		set.Bitmaps = append(set.Bitmaps, solidBitmap(s, color.RGBA{R: 200, G: 100, B: 50, A: 255}))
	}
	return set
}

// TestNew tests bundle completeness validation against the ladder
func TestNew(t *testing.T) {
	logger := testLogger("bundle_test")
	ladder := raster.SizeLadder{16, 32, 48}

	testCases := []struct {
		name    string
		set     *raster.BitmapSet
		wantErr bool
	}{
		{"complete", testSet(16, 32, 48), false},
		{"complete out of order", testSet(48, 16, 32), false},
		{"missing size", testSet(16, 32), true},
		{"extra size", testSet(16, 32, 48, 64), true},
		{"wrong size", testSet(16, 32, 64), true},
		{"empty", testSet(), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger.Info("🧪 Validating bundle", "test", tc.name)

			b, err := New(tc.set, ladder)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.Is(err, icoerr.ErrIncompleteBundle) {
					t.Errorf("error = %v, want ErrIncompleteBundle", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			for i, size := range ladder {
				if b.Bitmaps[i].Size != size {
					t.Errorf("bitmap %d has size %d, want ladder order %d", i, b.Bitmaps[i].Size, size)
				}
			}
			logger.Info("✅ Bundle accepted", "test", tc.name)
		})
	}
}

// TestDIBCodecRoundTrip tests the uncompressed bitmap payload encoding
func TestDIBCodecRoundTrip(t *testing.T) {
	logger := testLogger("bundle_test")
	codec, err := codecByID(CodecDIB)
	if err != nil {
		t.Fatalf("DIB codec not registered: %v", err)
	}

	src := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x * 5), G: uint8(y * 5), B: 77, A: 255})
		}
	}

	data, err := codec.Encode(src)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	logger.Info("📦 DIB encoded", "bytes", len(data))

	if !codec.Sniff(data) {
		t.Error("DIB codec does not sniff its own output")
	}
	if pc, _ := codecByID(CodecPNG); pc.Sniff(data) {
		t.Error("PNG codec sniffs DIB output")
	}

	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 48 || b.Dy() != 48 {
		t.Fatalf("decoded bounds = %v, want 48x48", b)
	}
	for _, pt := range []image.Point{{0, 0}, {47, 0}, {0, 47}, {47, 47}, {20, 31}} {
		want := src.RGBAAt(pt.X, pt.Y)
		r, g, bb, a := decoded.At(pt.X, pt.Y).RGBA()
		got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bb >> 8), uint8(a >> 8)}
		if got != want {
			t.Errorf("pixel %v = %v, want %v", pt, got, want)
		}
	}
	logger.Info("✅ DIB round trip verified")
}

// TestPNGCodecRoundTrip tests the compressed payload encoding
func TestPNGCodecRoundTrip(t *testing.T) {
	codec, err := codecByID(CodecPNG)
	if err != nil {
		t.Fatalf("PNG codec not registered: %v", err)
	}

	src := image.NewRGBA(image.Rect(0, 0, 256, 256))
	src.SetRGBA(128, 128, color.RGBA{R: 9, G: 8, B: 7, A: 255})

	data, err := codec.Encode(src)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !codec.Sniff(data) {
		t.Error("PNG codec does not sniff its own output")
	}
	decoded, err := codec.Decode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Errorf("decoded bounds = %v, want 256x256", b)
	}
}

// TestSniffUnknownPayload tests rejection of unrecognizable payload bytes
func TestSniffUnknownPayload(t *testing.T) {
	if _, err := sniffCodec([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0}); err == nil {
		t.Fatal("expected sniff failure for unknown payload")
	}
}

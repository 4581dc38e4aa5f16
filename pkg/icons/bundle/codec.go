package bundle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
)

// Payload codec identifiers stored per container entry.
const (
	CodecDIB = 0x01 // uncompressed 32-bit BMP DIB with AND mask
	CodecPNG = 0x02 // PNG stream
)

// Codec encodes one bitmap into a container payload and decodes it back
// for validation. The set is fixed: every mainstream shell reads DIB
// entries, and PNG entries are read since Windows Vista.
type Codec interface {
	// ID returns the codec identifier
	ID() uint8

	// Name returns the human-readable name
	Name() string

	// Encode converts a square RGBA bitmap into payload bytes
	Encode(img *image.RGBA) ([]byte, error)

	// Decode converts payload bytes back into an image
	Decode(data []byte) (image.Image, error)

	// Sniff reports whether the payload looks like this codec's output
	Sniff(data []byte) bool
}

// registry maps codec IDs to implementations
var registry = make(map[uint8]Codec)

func register(c Codec) {
	registry[c.ID()] = c
}

func init() {
	register(&dibCodec{})
	register(&pngCodec{})
}

// codecByID retrieves a codec implementation.
func codecByID(id uint8) (Codec, error) {
	c, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("unknown payload codec: 0x%02x", id)
	}
	return c, nil
}

// sniffCodec identifies the codec that produced a payload.
func sniffCodec(data []byte) (Codec, error) {
	for _, c := range registry {
		if c.Sniff(data) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("payload matches no known codec")
}

// ---- PNG ----

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type pngCodec struct{}

func (*pngCodec) ID() uint8    { return CodecPNG }
func (*pngCodec) Name() string { return "PNG" }

func (*pngCodec) Encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png payload: %w", err)
	}
	return buf.Bytes(), nil
}

func (*pngCodec) Decode(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding png payload: %w", err)
	}
	return img, nil
}

func (*pngCodec) Sniff(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

// ---- DIB ----

const dibHeaderSize = 40

type dibCodec struct{}

func (*dibCodec) ID() uint8    { return CodecDIB }
func (*dibCodec) Name() string { return "DIB" }

// Encode writes a BITMAPINFOHEADER with doubled height, bottom-up BGRA
// pixel rows, and an all-zero 1-bit AND mask (alpha carries transparency).
func (*dibCodec) Encode(img *image.RGBA) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != h {
		return nil, fmt.Errorf("dib payloads must be square, got %dx%d", w, h)
	}

	xorSize := w * h * 4
	maskStride := ((w + 31) / 32) * 4 // 1bpp rows padded to 32-bit boundary
	andSize := maskStride * h

	buf := make([]byte, dibHeaderSize+xorSize+andSize)

	binary.LittleEndian.PutUint32(buf[0:], dibHeaderSize)
	binary.LittleEndian.PutUint32(buf[4:], uint32(w))
	binary.LittleEndian.PutUint32(buf[8:], uint32(2*h)) // XOR + AND planes
	binary.LittleEndian.PutUint16(buf[12:], 1)          // planes
	binary.LittleEndian.PutUint16(buf[14:], 32)         // bits per pixel
	binary.LittleEndian.PutUint32(buf[16:], 0)          // BI_RGB
	binary.LittleEndian.PutUint32(buf[20:], uint32(xorSize+andSize))

	// Bottom-up BGRA rows.
	off := dibHeaderSize
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			px := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			buf[off+0] = px.B
			buf[off+1] = px.G
			buf[off+2] = px.R
			buf[off+3] = px.A
			off += 4
		}
	}
	// AND mask stays zero: transparency comes from the alpha channel.

	return buf, nil
}

func (*dibCodec) Decode(data []byte) (image.Image, error) {
	if len(data) < dibHeaderSize {
		return nil, fmt.Errorf("dib payload too short: %d bytes", len(data))
	}
	if binary.LittleEndian.Uint32(data[0:]) != dibHeaderSize {
		return nil, fmt.Errorf("unexpected dib header size")
	}
	w := int(int32(binary.LittleEndian.Uint32(data[4:])))
	h2 := int(int32(binary.LittleEndian.Uint32(data[8:])))
	bpp := binary.LittleEndian.Uint16(data[14:])
	if bpp != 32 {
		return nil, fmt.Errorf("unsupported dib bit depth %d", bpp)
	}
	if w <= 0 || h2 <= 0 || h2%2 != 0 {
		return nil, fmt.Errorf("invalid dib dimensions %dx%d", w, h2)
	}
	h := h2 / 2
	if len(data) < dibHeaderSize+w*h*4 {
		return nil, fmt.Errorf("dib payload truncated")
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	off := dibHeaderSize
	for y := h - 1; y >= 0; y-- {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = data[off+2] // R
			img.Pix[i+1] = data[off+1] // G
			img.Pix[i+2] = data[off+0] // B
			img.Pix[i+3] = data[off+3] // A
			off += 4
		}
	}
	return img, nil
}

func (*dibCodec) Sniff(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[0:]) == dibHeaderSize
}

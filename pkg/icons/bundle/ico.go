package bundle

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/iconify-go/iconify/pkg/utils/atomicfile"
)

// ICO container layout constants.
const (
	icoHeaderSize = 6
	icoEntrySize  = 16
	icoTypeIcon   = 1

	// Sizes below this threshold are stored as uncompressed DIBs, which
	// pre-Vista shells require; this size and up are stored as PNG to
	// keep the container small. Tunable policy, not a format invariant.
	DefaultPNGThreshold = 64
)

// Composer encodes bundles into their on-disk forms.
type Composer struct {
	logger hclog.Logger

	// PNGThreshold is the smallest size stored as PNG inside the
	// container. Zero means DefaultPNGThreshold.
	PNGThreshold int
}

func NewComposer(logger hclog.Logger) *Composer {
	return &Composer{logger: logger.Named("compose")}
}

func (c *Composer) pngThreshold() int {
	if c.PNGThreshold > 0 {
		return c.PNGThreshold
	}
	return DefaultPNGThreshold
}

// EncodeICO serializes the bundle into a multi-image ICO container and
// validates the produced stream before returning it.
func (c *Composer) EncodeICO(b *Bundle) ([]byte, error) {
	// Encode payloads first so directory offsets are known.
	payloads := make([][]byte, len(b.Bitmaps))
	for i, bm := range b.Bitmaps {
		codec, err := codecByID(c.codecIDFor(bm.Size))
		if err != nil {
			return nil, err
		}
		data, err := codec.Encode(bm.Image)
		if err != nil {
			return nil, fmt.Errorf("encoding %dpx entry: %w", bm.Size, err)
		}
		payloads[i] = data
		c.logger.Debug("📦 Encoded container entry",
			"size", bm.Size, "codec", codec.Name(), "bytes", len(data))
	}

	total := icoHeaderSize + icoEntrySize*len(b.Bitmaps)
	for _, p := range payloads {
		total += len(p)
	}
	out := make([]byte, total)

	// ICONDIR
	binary.LittleEndian.PutUint16(out[0:], 0)          // reserved
	binary.LittleEndian.PutUint16(out[2:], icoTypeIcon)
	binary.LittleEndian.PutUint16(out[4:], uint16(len(b.Bitmaps)))

	// ICONDIRENTRY table + payloads
	offset := icoHeaderSize + icoEntrySize*len(b.Bitmaps)
	for i, bm := range b.Bitmaps {
		entry := out[icoHeaderSize+i*icoEntrySize:]
		entry[0] = sizeByte(bm.Size) // width, 0 means 256
		entry[1] = sizeByte(bm.Size) // height
		entry[2] = 0                 // color count (truecolor)
		entry[3] = 0                 // reserved
		binary.LittleEndian.PutUint16(entry[4:], 1)  // planes
		binary.LittleEndian.PutUint16(entry[6:], 32) // bits per pixel
		binary.LittleEndian.PutUint32(entry[8:], uint32(len(payloads[i])))
		binary.LittleEndian.PutUint32(entry[12:], uint32(offset))

		copy(out[offset:], payloads[i])
		offset += len(payloads[i])
	}

	// A bundle is only handed out once the stream proves internally
	// consistent: entry count, bounds, non-overlap, declared dimensions.
	if err := ValidateICO(out, b.Ladder); err != nil {
		return nil, fmt.Errorf("composed container failed validation: %w", err)
	}

	c.logger.Info("✅ Container composed",
		"images", len(b.Bitmaps),
		"bytes", len(out),
		"origin", b.OriginID)
	return out, nil
}

// WriteICO composes the container and publishes it at path atomically.
func (c *Composer) WriteICO(b *Bundle, path string) error {
	data, err := c.EncodeICO(b)
	if err != nil {
		return err
	}
	return c.PublishICO(data, path)
}

// PublishICO writes already-composed container bytes to path atomically.
func (c *Composer) PublishICO(data []byte, path string) error {
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing container temp file: %w", err)
	}
	if err := atomicfile.Replace(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	c.logger.Debug("💾 Container published", "path", path)
	return nil
}

func (c *Composer) codecIDFor(size int) uint8 {
	if size < c.pngThreshold() {
		return CodecDIB
	}
	return CodecPNG
}

func sizeByte(size int) byte {
	if size >= 256 {
		return 0
	}
	return byte(size)
}

// ICOEntry describes one image slot decoded from a container.
type ICOEntry struct {
	Size   int
	Offset int
	Length int
	Image  image.Image
}

// DecodeICO parses an ICO container and decodes every payload.
func DecodeICO(data []byte) ([]ICOEntry, error) {
	if len(data) < icoHeaderSize {
		return nil, fmt.Errorf("container too short: %d bytes", len(data))
	}
	if binary.LittleEndian.Uint16(data[0:]) != 0 || binary.LittleEndian.Uint16(data[2:]) != icoTypeIcon {
		return nil, fmt.Errorf("not an ICO container")
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))
	dirEnd := icoHeaderSize + icoEntrySize*count
	if len(data) < dirEnd {
		return nil, fmt.Errorf("directory truncated: %d entries declared", count)
	}

	entries := make([]ICOEntry, 0, count)
	for i := 0; i < count; i++ {
		e := data[icoHeaderSize+i*icoEntrySize:]
		size := int(e[0])
		if size == 0 {
			size = 256
		}
		length := int(binary.LittleEndian.Uint32(e[8:]))
		offset := int(binary.LittleEndian.Uint32(e[12:]))

		if offset < dirEnd || length <= 0 || offset+length > len(data) {
			return nil, fmt.Errorf("entry %d payload out of bounds (offset=%d length=%d)", i, offset, length)
		}

		payload := data[offset : offset+length]
		codec, err := sniffCodec(payload)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		img, err := codec.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		entries = append(entries, ICOEntry{Size: size, Offset: offset, Length: length, Image: img})
	}
	return entries, nil
}

// ValidateICO checks a composed stream against the ladder: the directory
// count matches, payload ranges do not overlap, and every entry's declared
// size matches both the ladder and the stored image dimensions.
func ValidateICO(data []byte, ladder []int) error {
	entries, err := DecodeICO(data)
	if err != nil {
		return err
	}
	if len(entries) != len(ladder) {
		return fmt.Errorf("directory count %d does not match ladder size %d", len(entries), len(ladder))
	}

	for i, entry := range entries {
		if entry.Size != ladder[i] {
			return fmt.Errorf("entry %d declares size %d, ladder requires %d", i, entry.Size, ladder[i])
		}
		bounds := entry.Image.Bounds()
		if bounds.Dx() != entry.Size || bounds.Dy() != entry.Size {
			return fmt.Errorf("entry %d stores %dx%d pixels but declares %d",
				i, bounds.Dx(), bounds.Dy(), entry.Size)
		}
	}

	// Non-overlap check across payload ranges.
	sorted := make([]ICOEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Offset+sorted[i-1].Length > sorted[i].Offset {
			return fmt.Errorf("payloads overlap at offset %d", sorted[i].Offset)
		}
	}
	return nil
}

// ReadICOFile decodes a container from disk, for tests and verification.
func ReadICOFile(path string) ([]ICOEntry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return DecodeICO(data)
}

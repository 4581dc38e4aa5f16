package errors

import "errors"

var (
	// Acquisition errors 🎨
	ErrNotFound  = errors.New("❌ no canonical artwork mapping for identifier")
	ErrNoArtwork = errors.New("❌ no artwork candidates available")

	// Rasterization errors 🖼️
	ErrInvalidImage = errors.New("❌ file is not a decodable raster image")
	ErrDecode       = errors.New("❌ artwork payload failed to decode")

	// Composition errors 📦
	ErrIncompleteBundle = errors.New("❌ bundle is missing required sizes")

	// Application errors 💾
	ErrTargetNotFound    = errors.New("❌ target path does not exist")
	ErrTargetNotWritable = errors.New("❌ target is not writable")

	// Privilege errors 🔒
	ErrInsufficientPrivilege = errors.New("❌ elevation declined or unavailable")
)

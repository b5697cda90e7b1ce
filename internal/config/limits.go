package config

const (
	// MaxUploadBytes is the hard ceiling for a capture image before
	// compression. Images above this are rejected outright rather than
	// compressed down, since flyer photos this large are almost always
	// misconfigured camera output.
	MaxUploadBytes = 5 << 20 // 5 MB

	// CompressedTargetBytes is the post-compression ceiling. A first-pass
	// JPEG that still exceeds this triggers exactly one recompression at
	// lower quality.
	CompressedTargetBytes = 2 << 20 // 2 MB

	// CompressQualityFirst and CompressQualitySecond are the JPEG quality
	// settings for the two compression passes.
	CompressQualityFirst  = 85
	CompressQualitySecond = 60

	// CompressMinDimension is the floor for the shorter image edge after
	// resizing. Gemini flyer extraction degrades sharply below this.
	CompressMinDimension = 300

	// MaxAddressLength bounds free-text address input. Japanese addresses
	// fit comfortably; anything longer is garbage input.
	MaxAddressLength = 200

	// MinSuggestInputLength is the minimum input length before autocomplete
	// lookups are issued.
	MinSuggestInputLength = 2

	// DefaultHistoryPageSize is the page size for history listings.
	DefaultHistoryPageSize = 20

	// MaxHistoryPageSize caps a caller-supplied history limit.
	MaxHistoryPageSize = 100
)

// Analysis radii in meters, derived from address precision.
const (
	RadiusExact       = 300
	RadiusDistrict    = 800
	RadiusApproximate = 1500
)

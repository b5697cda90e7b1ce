package capture

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"maisoku/internal/config"
)

// CompressionResult reports what the compressor did to the image.
type CompressionResult struct {
	Data    []byte
	Width   int
	Height  int
	Passes  int
	Quality int
}

// Compress re-encodes a captured image as JPEG for upload. Decoding and
// re-encoding strips EXIF, so no location or orientation metadata ever
// leaves the device.
//
// Pass one encodes at quality 85. If the output still exceeds the transfer
// target, exactly one more pass runs at quality 60 on a downscaled copy.
// The second pass result is final whatever its size.
func Compress(data []byte) (*CompressionResult, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	encoded, err := encodeJPEG(img, config.CompressQualityFirst)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	result := &CompressionResult{
		Data:    encoded,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Passes:  1,
		Quality: config.CompressQualityFirst,
	}
	if len(encoded) <= config.CompressedTargetBytes {
		return result, nil
	}

	// Second pass: halve the dimensions, clamped so the short side never
	// drops below the minimum, and drop the quality.
	width, height := halveClamped(bounds.Dx(), bounds.Dy())
	if width != bounds.Dx() || height != bounds.Dy() {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	encoded, err = encodeJPEG(img, config.CompressQualitySecond)
	if err != nil {
		return nil, err
	}

	result.Data = encoded
	result.Width = width
	result.Height = height
	result.Passes = 2
	result.Quality = config.CompressQualitySecond
	return result, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// halveClamped halves both dimensions while keeping the short side at or
// above the minimum. Images already at or below the minimum keep their size.
func halveClamped(width, height int) (int, int) {
	short := width
	if height < short {
		short = height
	}
	if short <= config.CompressMinDimension {
		return width, height
	}

	scale := 0.5
	if float64(short)*scale < float64(config.CompressMinDimension) {
		scale = float64(config.CompressMinDimension) / float64(short)
	}
	return int(float64(width) * scale), int(float64(height) * scale)
}

package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	reasonResolution = "Image resolution too low for accurate analysis. Please provide a higher quality image."
	reasonFileSize   = "Image file size too small. This may indicate a low-quality image."
	reasonUndecoded  = "Failed to load image for quality validation"
)

// Thresholds are the minimum dimensions and byte size an image needs to be worth analysing.
type Thresholds struct {
	MinWidth  int
	MinHeight int
	MinBytes  int64
}

// DefaultThresholds returns 100x50 pixels and 1000 bytes.
func DefaultThresholds() Thresholds {
	return Thresholds{MinWidth: 100, MinHeight: 50, MinBytes: 1000}
}

type Validator struct {
	thresholds Thresholds
}

func NewValidator(thresholds Thresholds) *Validator {
	return &Validator{thresholds: thresholds}
}

// Validate decodes the image header and checks it against the thresholds.
// Only the first violated threshold is reported: resolution, then size.
// On success the asset's Width and Height are filled in.
func (v *Validator) Validate(asset *ImageAsset) error {
	if asset == nil || len(asset.Data) == 0 {
		return &QualityError{Reason: reasonUndecoded}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(asset.Data))
	if err != nil {
		return &QualityError{Asset: asset.Name, Reason: reasonUndecoded}
	}
	asset.Width = cfg.Width
	asset.Height = cfg.Height

	if cfg.Width < v.thresholds.MinWidth || cfg.Height < v.thresholds.MinHeight {
		return &QualityError{Asset: asset.Name, Reason: reasonResolution}
	}
	if asset.Size < v.thresholds.MinBytes {
		return &QualityError{Asset: asset.Name, Reason: reasonFileSize}
	}

	return nil
}

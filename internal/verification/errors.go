package verification

import "errors"

var (
	ErrMissingInput = errors.New("document and signature images are required")
	ErrEmptyReport  = errors.New("model returned an empty report")
)

// AssetKind names which upload a check refers to
type AssetKind string

const (
	AssetDocument AssetKind = "document"
	AssetSample   AssetKind = "sample"
)

// PlausibilityRejection is returned when a content check does not answer YES.
type PlausibilityRejection struct {
	Asset   AssetKind
	Message string
}

func (e *PlausibilityRejection) Error() string {
	return e.Message
}

package imaging

import (
	"encoding/base64"
	"fmt"
)

// Payload is an image ready to be embedded in a JSON request body.
type Payload struct {
	MediaType string
	Data      string
}

// Encode converts the asset to standard base64. The transform is lossless.
func Encode(asset *ImageAsset) (Payload, error) {
	if asset == nil {
		return Payload{}, &EncodingError{Err: fmt.Errorf("no image asset")}
	}
	if len(asset.Data) == 0 {
		return Payload{}, &EncodingError{Name: asset.Name, Err: fmt.Errorf("image is empty")}
	}

	return Payload{
		MediaType: asset.MediaType,
		Data:      base64.StdEncoding.EncodeToString(asset.Data),
	}, nil
}

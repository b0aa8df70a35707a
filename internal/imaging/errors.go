package imaging

import "fmt"

// QualityError rejects an image before any network call. Reason is shown to the user as is.
type QualityError struct {
	Asset  string
	Reason string
}

func (e *QualityError) Error() string {
	return e.Reason
}

// EncodingError reports an image source that could not be read or encoded.
type EncodingError struct {
	Name string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to read image %q: %v", e.Name, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

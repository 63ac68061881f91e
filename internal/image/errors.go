package imagepkg

import (
	"errors"
	"fmt"
)

// Asset names reported in a DecodeError.
const (
	AssetBackground = "background"
	AssetLogo       = "logo"
	AssetPhoto      = "photo"
)

// ErrInvalidDimensions is returned when the resolved photo size is not
// positive or does not fit on the canvas.
var ErrInvalidDimensions = errors.New("invalid photo dimensions")

// DecodeError reports an image that could not be decoded.
type DecodeError struct {
	Asset string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Asset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsPhotoDecodeError reports whether err is a DecodeError for the uploaded photo.
func IsPhotoDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Asset == AssetPhoto
}

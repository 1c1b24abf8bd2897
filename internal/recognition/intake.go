package recognition

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jwalitptl/pharmacy-api/pkg/errors"
)

// MaxImageSize is the intake cap enforced before any pipeline stage runs.
const MaxImageSize = 10 << 20 // 10MB

// Common raster types only. Content is sniffed, never trusted from the
// filename or Content-Type header.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/tiff": {},
	"image/bmp":  {},
	"image/gif":  {},
}

// ValidateImage rejects non-image input and oversized uploads with a
// user-facing message.
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return errors.NewBadRequest("uploaded file is empty", nil)
	}
	if len(data) > MaxImageSize {
		return errors.NewBadRequest(
			fmt.Sprintf("image exceeds the %dMB limit", MaxImageSize>>20), nil)
	}

	mime := mimetype.Detect(data)
	if _, ok := allowedImageTypes[mime.String()]; !ok {
		return errors.NewBadRequest(
			fmt.Sprintf("unsupported file type %s: upload a photo of the prescription", mime.String()), nil)
	}
	return nil
}

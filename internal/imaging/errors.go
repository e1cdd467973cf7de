package imaging

import (
	"image"

	"github.com/pkg/errors"
)

// Error kinds shared by the imaging operations and the batch pipeline.
// Callers match them with errors.Is; the concrete error carries the
// path or dimensions that triggered it.
var (
	// ErrDecode is returned when a file cannot be read or decoded.
	ErrDecode = errors.New("decode failed")

	// ErrEmptyCrop is returned when a bounding box or aspect crop has zero area.
	ErrEmptyCrop = errors.New("crop has zero area")

	// ErrChannelMismatch is returned when an operation that needs color
	// input is handed a single-channel image.
	ErrChannelMismatch = errors.New("image does not have three color channels")

	// ErrWrite is returned when an output image cannot be encoded or written.
	ErrWrite = errors.New("write failed")
)

// requireColor rejects the explicitly single-channel Go image types.
func requireColor(img image.Image) error {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return errors.Wrapf(ErrChannelMismatch, "got %T", img)
	}
	return nil
}

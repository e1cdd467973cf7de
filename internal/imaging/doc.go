// Package imaging provides the image operations used to prepare a training
// corpus: edge detection, content and aspect cropping, resizing, per-image
// color summaries and file decode/encode.
//
// All operations accept standard Go image.Image values and return images
// anchored at (0,0). The coordinate system puts (0,0) at the top-left corner,
// with X increasing rightward and Y increasing downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, the minimum corner is inclusive and the maximum corner is
//     exclusive
//
// # Channels
//
// Color operations work on three channels. Input is normalized to
// *image.NRGBA and alpha is ignored. The single-channel Go image types
// (*image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16) are rejected with
// ErrChannelMismatch by every operation that needs color. FileCodec.Decode
// promotes single-channel files to *image.NRGBA, so this only applies to
// images built in memory.
//
// # Value Range
//
// Brightness figures use the 8-bit scale (0-255) for RGB channels and for the
// HSV value channel. FloatImage keeps results unclipped; ToNRGBA clamps.
//
// # Error Handling
//
// Failures wrap one of the package sentinels (ErrDecode, ErrEmptyCrop,
// ErrChannelMismatch, ErrWrite) so batch callers can classify them with
// errors.Is.
//
// # Thread Safety
//
// Every function is stateless and may be called concurrently on different
// images.
package imaging

package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// FileCodec reads and writes images on the local filesystem.
//
// Decoding accepts every format registered with the image package plus the
// ones disintegration/imaging adds (TIFF, BMP). Encoding picks the format from
// the output file extension, so an output tree keeps the extensions of its
// input tree.
//
// # Example Usage
//
//	codec := imaging.FileCodec{AutoOrient: true}
//	img, err := codec.Decode("/data/raw/cats/001.jpg")
//	if err != nil {
//	    return err
//	}
//	err = codec.Encode(img, "/data/clean/cats/001.jpg")
type FileCodec struct {
	// AutoOrient applies the EXIF orientation tag of JPEG input, so the
	// crop heuristics see the image the way a viewer would.
	AutoOrient bool

	// JPEGQuality is used for .jpg/.jpeg output. Zero means the library default.
	JPEGQuality int
}

// Decode loads the image at path. Single-channel files (grayscale PNG or
// JPEG) are promoted to *image.NRGBA with R = G = B, so every decoded image
// has three color channels.
//
// # Errors
//
//   - ErrDecode if the file does not exist, cannot be read, or is not a
//     supported image.
func (c FileCodec) Decode(path string) (image.Image, error) {
	var opts []imaging.DecodeOption
	if c.AutoOrient {
		opts = append(opts, imaging.AutoOrientation(true))
	}

	img, err := imaging.Open(path, opts...)
	if err != nil {
		return nil, errors.Wrapf(ErrDecode, "%s: %v", path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.Wrapf(ErrDecode, "%s: image has no pixels", path)
	}
	if requireColor(img) != nil {
		return imaging.Clone(img), nil
	}
	return img, nil
}

// Encode writes img to path, creating parent directories as needed and
// overwriting any existing file.
//
// # Errors
//
//   - ErrWrite if the directory cannot be created, the extension has no
//     encoder, or encoding fails.
func (c FileCodec) Encode(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(ErrWrite, "create output dir for %s: %v", path, err)
	}

	var opts []imaging.EncodeOption
	if c.JPEGQuality > 0 {
		opts = append(opts, imaging.JPEGQuality(c.JPEGQuality))
	}
	if err := imaging.Save(img, path, opts...); err != nil {
		return errors.Wrapf(ErrWrite, "%s: %v", path, err)
	}
	return nil
}

// CanEncode reports whether Encode has an encoder for the extension of path.
func CanEncode(path string) bool {
	_, err := imaging.FormatFromFilename(path)
	return err == nil
}

// EncodablePath returns path unchanged when its extension can be encoded, and
// path with its extension replaced by fallback (for example ".png")
// otherwise. WebP input, which can be decoded but not encoded, is the usual
// case.
func EncodablePath(path, fallback string) string {
	if CanEncode(path) {
		return path
	}
	if !strings.HasPrefix(fallback, ".") {
		fallback = "." + fallback
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + fallback
}

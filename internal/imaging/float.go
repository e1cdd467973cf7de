package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// FloatImage is a dense RGB buffer with float64 channels on the 0-255 scale.
//
// Brightness corrections produce FloatImages so values outside 0-255 survive
// until the caller decides how to persist them. Pixels are stored row-major
// as R, G, B triples. Alpha is not represented.
type FloatImage struct {
	Width  int
	Height int
	Pix    []float64
}

// NewFloatImage allocates a zeroed width x height image.
func NewFloatImage(width, height int) *FloatImage {
	return &FloatImage{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height*3),
	}
}

// ToFloat converts a color image to a FloatImage with origin (0,0).
// A *FloatImage argument is copied.
func ToFloat(img image.Image) (*FloatImage, error) {
	if f, ok := img.(*FloatImage); ok {
		return f.Clone(), nil
	}
	if err := requireColor(img); err != nil {
		return nil, err
	}

	src := asNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := NewFloatImage(w, h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		dst := out.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			dst[x*3] = float64(row[x*4])
			dst[x*3+1] = float64(row[x*4+1])
			dst[x*3+2] = float64(row[x*4+2])
		}
	}
	return out, nil
}

// Clone returns a deep copy.
func (f *FloatImage) Clone() *FloatImage {
	out := &FloatImage{Width: f.Width, Height: f.Height, Pix: make([]float64, len(f.Pix))}
	copy(out.Pix, f.Pix)
	return out
}

// RGB returns the channels at (x, y).
func (f *FloatImage) RGB(x, y int) (r, g, b float64) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB stores the channels at (x, y).
func (f *FloatImage) SetRGB(x, y int, r, g, b float64) {
	i := (y*f.Width + x) * 3
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// MeanRGB returns the per-channel means. An empty image yields zeros.
func (f *FloatImage) MeanRGB() [3]float64 {
	var sum [3]float64
	n := f.Width * f.Height
	if n == 0 {
		return sum
	}
	for i := 0; i < len(f.Pix); i += 3 {
		sum[0] += f.Pix[i]
		sum[1] += f.Pix[i+1]
		sum[2] += f.Pix[i+2]
	}
	for c := range sum {
		sum[c] /= float64(n)
	}
	return sum
}

// ToNRGBA rounds every channel to the nearest integer and clamps it to 0-255.
// The result is fully opaque.
func (f *FloatImage) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Width*3 : (y+1)*f.Width*3]
		dst := out.Pix[y*out.Stride : y*out.Stride+f.Width*4]
		for x := 0; x < f.Width; x++ {
			dst[x*4] = clampUint8(src[x*3])
			dst[x*4+1] = clampUint8(src[x*3+1])
			dst[x*4+2] = clampUint8(src[x*3+2])
			dst[x*4+3] = 0xff
		}
	}
	return out
}

// ColorModel, Bounds and At let a FloatImage be passed anywhere an
// image.Image is accepted. At clamps like ToNRGBA.
func (f *FloatImage) ColorModel() color.Model { return color.NRGBAModel }

func (f *FloatImage) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

func (f *FloatImage) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.NRGBA{}
	}
	r, g, b := f.RGB(x, y)
	return color.NRGBA{R: clampUint8(r), G: clampUint8(g), B: clampUint8(b), A: 0xff}
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// asNRGBA returns img itself when it is already an NRGBA anchored at the
// origin, and an NRGBA copy otherwise.
func asNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	if f, ok := img.(*FloatImage); ok {
		return f.ToNRGBA()
	}
	return imaging.Clone(img)
}

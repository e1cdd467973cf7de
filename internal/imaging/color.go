package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Summary holds the brightness figures of a single image.
type Summary struct {
	// MeanV is the mean HSV value channel on the 0-255 scale.
	MeanV float64 `json:"mean_v"`

	// MeanRGB holds the mean red, green and blue channels on the 0-255 scale.
	MeanRGB [3]float64 `json:"mean_rgb"`
}

// Summarize computes the per-image figures the dataset statistics are
// built from.
//
// # Errors
//
//   - ErrChannelMismatch for single-channel input
func Summarize(img image.Image) (Summary, error) {
	f, err := ToFloat(img)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		MeanV:   MeanValue(f),
		MeanRGB: f.MeanRGB(),
	}, nil
}

// MeanValue returns the mean of the HSV value channel of f on the 0-255
// scale. An empty image yields 0.
func MeanValue(f *FloatImage) float64 {
	n := f.Width * f.Height
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(f.Pix); i += 3 {
		sum += hsvValue(f.Pix[i], f.Pix[i+1], f.Pix[i+2])
	}
	return sum / float64(n)
}

// HSV splits an 8-bit scale RGB triple into hue (degrees), saturation (0-1)
// and value (0-255). The value is the largest channel, returned exactly.
func HSV(r, g, b float64) (h, s, v float64) {
	h, s, _ = colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Hsv()
	return h, s, math.Max(r, math.Max(g, b))
}

// FromHSV is the inverse of HSV.
func FromHSV(h, s, v float64) (r, g, b float64) {
	c := colorful.Hsv(h, s, v/255)
	return c.R * 255, c.G * 255, c.B * 255
}

func hsvValue(r, g, b float64) float64 {
	return math.Max(r, math.Max(g, b))
}

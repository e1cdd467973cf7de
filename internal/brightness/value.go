package brightness

import (
	"image"
	"math"

	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/ironsheep/corpus-prep/internal/stats"
)

// ValueShift moves the mean HSV value of an image onto the corpus mean.
//
// The image is quantized to 8 bits per channel first. Both means are
// truncated to integers and every pixel's 8-bit value channel is shifted by
// their difference. The shift wraps around (uint8 arithmetic) instead of
// clamping, so a very dark image pushed far up can turn some bright pixels
// dark. Hue and saturation are kept.
type ValueShift struct{}

func (ValueShift) Name() string { return "value" }

func (ValueShift) Apply(img image.Image, gs stats.GlobalStats) (*imaging.FloatImage, error) {
	src, err := imaging.ToFloat(img)
	if err != nil {
		return nil, err
	}
	quantize(src)

	shift := int(gs.MeanV()) - int(imaging.MeanValue(src))

	out := imaging.NewFloatImage(src.Width, src.Height)
	for i := 0; i < len(src.Pix); i += 3 {
		h, s, v := imaging.HSV(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
		shifted := uint8(int(math.Round(v)) + shift)
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = imaging.FromHSV(h, s, float64(shifted))
	}
	return out, nil
}

// quantize rounds and clamps every channel to the 0-255 integer grid.
func quantize(f *imaging.FloatImage) {
	for i, v := range f.Pix {
		f.Pix[i] = math.Max(0, math.Min(255, math.Round(v)))
	}
}

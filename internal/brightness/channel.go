package brightness

import (
	"image"

	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/ironsheep/corpus-prep/internal/stats"
)

// ChannelShift moves each RGB channel mean onto the corpus RGB mean:
//
//	out = img + globalRGB - ownRGB
//
// Results are not clipped; values below 0 or above 255 are kept in the
// returned FloatImage.
type ChannelShift struct{}

func (ChannelShift) Name() string { return "channel" }

func (ChannelShift) Apply(img image.Image, gs stats.GlobalStats) (*imaging.FloatImage, error) {
	out, err := imaging.ToFloat(img)
	if err != nil {
		return nil, err
	}

	own := out.MeanRGB()
	global := gs.MeanRGB()
	var delta [3]float64
	for c := range delta {
		delta[c] = global[c] - own[c]
	}

	for i := 0; i < len(out.Pix); i += 3 {
		out.Pix[i] += delta[0]
		out.Pix[i+1] += delta[1]
		out.Pix[i+2] += delta[2]
	}
	return out, nil
}

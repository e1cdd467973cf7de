// Package brightness shifts an image's brightness toward a corpus-wide
// reference.
//
// Two strategies are provided and selected by name:
//
//   - "channel" (alias "rgb"): adds globalRGB - ownRGB to every pixel,
//     per channel, without clipping.
//   - "value" (alias "hsv"): shifts the 8-bit HSV value channel of every pixel
//     by int(globalV) - int(ownV), wrapping around like uint8 arithmetic.
//
// Both are pure functions of the image and the statistics.
package brightness

import (
	"image"
	"sort"
	"strings"

	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/ironsheep/corpus-prep/internal/stats"
	"github.com/pkg/errors"
)

// ErrUnknownStrategy is returned by Lookup for an unregistered name.
var ErrUnknownStrategy = errors.New("unknown brightness strategy")

// Strategy corrects the brightness of one image against GlobalStats.
type Strategy interface {
	// Name is the canonical configuration name.
	Name() string

	// Apply returns the corrected image. img is not modified.
	Apply(img image.Image, gs stats.GlobalStats) (*imaging.FloatImage, error)
}

var registry = map[string]Strategy{
	"channel": ChannelShift{},
	"rgb":     ChannelShift{},
	"value":   ValueShift{},
	"hsv":     ValueShift{},
}

// Lookup returns the strategy registered under name (case-insensitive).
func Lookup(name string) (Strategy, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists every accepted strategy name in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

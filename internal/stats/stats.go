// Package stats reduces per-image summaries into the dataset-wide brightness
// reference used by the normalizers.
package stats

import (
	"fmt"

	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrNoSamples is returned when statistics are requested for an empty corpus.
var ErrNoSamples = errors.New("no images were summarized")

// GlobalStats is the brightness reference of a whole corpus. The zero value
// is not meaningful; obtain one from Accumulator.Freeze, Compute or New.
// Fields are unexported so a value cannot change once built.
type GlobalStats struct {
	meanV   float64
	meanRGB [3]float64
	samples int
}

// New builds GlobalStats from known reference values.
func New(meanV float64, meanRGB [3]float64) GlobalStats {
	return GlobalStats{meanV: meanV, meanRGB: meanRGB, samples: 1}
}

// MeanV is the mean of the per-image mean HSV values (0-255 scale).
func (g GlobalStats) MeanV() float64 { return g.meanV }

// MeanRGB is the elementwise mean of the per-image mean RGB vectors.
func (g GlobalStats) MeanRGB() [3]float64 { return g.meanRGB }

// Samples is the number of images the statistics were computed from.
func (g GlobalStats) Samples() int { return g.samples }

func (g GlobalStats) String() string {
	return fmt.Sprintf("mean_v=%.3f mean_rgb=[%.3f %.3f %.3f] samples=%d",
		g.meanV, g.meanRGB[0], g.meanRGB[1], g.meanRGB[2], g.samples)
}

// Accumulator is a running fold over image summaries. Add returns a new
// value, so an Accumulator can be copied and merged freely.
//
// Every image weighs the same regardless of its pixel count: the result is a
// mean of per-image means, not a pixel-weighted mean.
type Accumulator struct {
	n      int
	sumV   float64
	sumRGB [3]float64
}

// Add folds one summary into the accumulator.
func (a Accumulator) Add(s imaging.Summary) Accumulator {
	a.n++
	a.sumV += s.MeanV
	for c := range a.sumRGB {
		a.sumRGB[c] += s.MeanRGB[c]
	}
	return a
}

// Merge combines two partial folds, for example from disjoint shards.
func (a Accumulator) Merge(b Accumulator) Accumulator {
	a.n += b.n
	a.sumV += b.sumV
	for c := range a.sumRGB {
		a.sumRGB[c] += b.sumRGB[c]
	}
	return a
}

// Len returns the number of summaries folded so far.
func (a Accumulator) Len() int { return a.n }

// Freeze turns the fold into GlobalStats.
func (a Accumulator) Freeze() (GlobalStats, error) {
	if a.n == 0 {
		return GlobalStats{}, ErrNoSamples
	}
	n := float64(a.n)
	g := GlobalStats{meanV: a.sumV / n, samples: a.n}
	for c := range g.meanRGB {
		g.meanRGB[c] = a.sumRGB[c] / n
	}
	return g, nil
}

// Compute reduces a complete slice of summaries in one call.
func Compute(summaries []imaging.Summary) (GlobalStats, error) {
	acc := lo.Reduce(summaries, func(acc Accumulator, s imaging.Summary, _ int) Accumulator {
		return acc.Add(s)
	}, Accumulator{})
	return acc.Freeze()
}

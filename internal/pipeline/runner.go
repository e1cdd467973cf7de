// Package pipeline drives the two passes that turn a raw image tree into a
// normalized corpus.
//
// Pass 1 decodes every entry and folds its brightness summary into the
// corpus statistics. Pass 2 decodes every entry again, crops it to the target
// aspect ratio, resizes it, corrects its brightness against the statistics
// and writes it to the mirrored output path. Both passes iterate the same
// materialized listing.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ironsheep/corpus-prep/internal/brightness"
	"github.com/ironsheep/corpus-prep/internal/corpus"
	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/ironsheep/corpus-prep/internal/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultProgressEvery is the number of entries between progress lines.
const DefaultProgressEvery = 100

// DefaultFallbackExt is used for outputs whose source format cannot be written.
const DefaultFallbackExt = ".png"

// Lister produces the entries of the input tree.
type Lister interface {
	List(ctx context.Context) (corpus.Listing, error)
}

// Codec reads source images and writes results.
type Codec interface {
	Decode(path string) (image.Image, error)
	Encode(img image.Image, path string) error
}

// Options configures a Runner.
type Options struct {
	// OutputDir receives the mirrored tree. Stats does not need it.
	OutputDir string

	// FallbackExt replaces the extension of an output path that has no
	// encoder (".webp"). Empty means DefaultFallbackExt.
	FallbackExt string

	// Output size of every written image.
	Width  int
	Height int

	AspectRatio float64

	// ContentCrop enables the edge-based border crop before the aspect crop.
	ContentCrop   bool
	EdgeThreshold uint8
	CropMargin    float64

	Strategy brightness.Strategy

	// FailFast aborts the run on the first entry error instead of skipping
	// the entry.
	FailFast bool

	ProgressEvery int
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("output size must be positive, got %dx%d", o.Width, o.Height)
	case !(o.AspectRatio > 0):
		return fmt.Errorf("aspect ratio must be positive, got %v", o.AspectRatio)
	case !(o.CropMargin >= 0 && o.CropMargin <= 1):
		return fmt.Errorf("crop margin must be within [0,1], got %v", o.CropMargin)
	case o.Strategy == nil:
		return errors.New("brightness strategy is required")
	}
	return nil
}

// Runner executes the passes. It is not safe for concurrent use.
type Runner struct {
	lister  Lister
	codec   Codec
	opts    Options
	logger  logrus.FieldLogger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewRunner validates opts and builds a Runner. A nil metrics value gets a
// private registry.
func NewRunner(lister Lister, codec Codec, opts Options, logger logrus.FieldLogger, metrics *Metrics) (*Runner, error) {
	if lister == nil || codec == nil {
		return nil, errors.New("lister and codec are required")
	}
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pipeline options")
	}
	if opts.FallbackExt == "" {
		opts.FallbackExt = DefaultFallbackExt
	}
	if !strings.HasPrefix(opts.FallbackExt, ".") {
		opts.FallbackExt = "." + opts.FallbackExt
	}
	if !imaging.CanEncode("output" + opts.FallbackExt) {
		return nil, errors.Errorf("invalid pipeline options: no encoder for fallback extension %q", opts.FallbackExt)
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}

	return &Runner{
		lister:  lister,
		codec:   codec,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("corpus-prep/pipeline"),
	}, nil
}

// Run lists the corpus once and executes both passes over that listing.
//
// In skip mode a failing entry is logged, recorded in the tally and left out
// of the output; the run only errors when the listing fails, when no image
// could be summarized, or when ctx is canceled. In fail-fast mode the first
// entry error aborts the run. The tally is valid in every case.
func (r *Runner) Run(ctx context.Context) (Tally, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	var tally Tally
	err := r.run(ctx, &tally)

	span.SetAttributes(
		attribute.Int("run.attempted", tally.Attempted),
		attribute.Int("run.succeeded", tally.Succeeded),
		attribute.Int("run.failed", tally.Failed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.metrics.lastRunOK.Set(0)
	} else {
		r.metrics.lastRunOK.Set(1)
	}
	return tally, err
}

func (r *Runner) run(ctx context.Context, tally *Tally) error {
	if strings.TrimSpace(r.opts.OutputDir) == "" {
		return errors.New("output directory is required")
	}
	listing, err := r.lister.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list corpus")
	}
	r.logger.WithFields(logrus.Fields{"root": listing.Root, "entries": listing.Len()}).Info("corpus listed")

	gs, failed, err := r.collect(ctx, listing, tally)
	if err != nil {
		return err
	}
	r.logger.WithField("stats", gs.String()).Info("global statistics frozen")

	return r.write(ctx, listing, gs, failed, tally)
}

// Stats runs pass 1 only and returns the corpus statistics.
func (r *Runner) Stats(ctx context.Context) (stats.GlobalStats, Tally, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.stats")
	defer span.End()

	var tally Tally
	listing, err := r.lister.List(ctx)
	if err != nil {
		return stats.GlobalStats{}, tally, errors.Wrap(err, "list corpus")
	}
	gs, failed, err := r.collect(ctx, listing, &tally)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats.GlobalStats{}, tally, err
	}
	tally.Succeeded = tally.Attempted - len(failed)
	return gs, tally, nil
}

// collect is pass 1. It returns the frozen statistics and the set of entries
// that already failed, so pass 2 does not attempt them again.
func (r *Runner) collect(ctx context.Context, listing corpus.Listing, tally *Tally) (stats.GlobalStats, map[int]bool, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.pass.stats",
		trace.WithAttributes(attribute.Int("pass.entries", listing.Len())))
	defer span.End()

	var acc stats.Accumulator
	failed := make(map[int]bool)

	for i, entry := range listing.Entries {
		if err := ctx.Err(); err != nil {
			return stats.GlobalStats{}, failed, err
		}
		if i%r.opts.ProgressEvery == 0 {
			r.logger.Infof("Reading %d images", i)
		}
		tally.Attempted++

		started := time.Now()
		summary, err := r.summarize(listing.Path(entry))
		r.metrics.entryDuration.WithLabelValues(PassStats).Observe(time.Since(started).Seconds())
		if err != nil {
			failed[i] = true
			if abort := r.handleFailure(tally, entry, PassStats, err); abort != nil {
				return stats.GlobalStats{}, failed, abort
			}
			continue
		}
		r.metrics.entriesTotal.WithLabelValues(PassStats, "ok").Inc()
		acc = acc.Add(summary)
	}
	r.logger.Infof("Reading %d images, complete", listing.Len())

	gs, err := acc.Freeze()
	if err != nil {
		return stats.GlobalStats{}, failed, errors.Wrapf(err, "pass 1 over %d entries", listing.Len())
	}

	r.metrics.globalMeanV.Set(gs.MeanV())
	for c, name := range []string{"r", "g", "b"} {
		r.metrics.globalMeanRGB.WithLabelValues(name).Set(gs.MeanRGB()[c])
	}
	span.SetAttributes(
		attribute.Int("stats.samples", gs.Samples()),
		attribute.Float64("stats.mean_v", gs.MeanV()),
	)
	return gs, failed, nil
}

func (r *Runner) summarize(path string) (imaging.Summary, error) {
	img, err := r.codec.Decode(path)
	if err != nil {
		return imaging.Summary{}, err
	}
	return imaging.Summarize(img)
}

// write is pass 2.
func (r *Runner) write(ctx context.Context, listing corpus.Listing, gs stats.GlobalStats, failed map[int]bool, tally *Tally) error {
	ctx, span := r.tracer.Start(ctx, "pipeline.pass.write",
		trace.WithAttributes(
			attribute.Int("pass.entries", listing.Len()),
			attribute.String("pass.strategy", r.opts.Strategy.Name()),
		))
	defer span.End()

	written := 0
	for i, entry := range listing.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i%r.opts.ProgressEvery == 0 {
			r.logger.Infof("Writing %d preprocessed images", i)
		}
		if failed[i] {
			continue
		}

		started := time.Now()
		err := r.writeEntry(listing, entry, gs)
		r.metrics.entryDuration.WithLabelValues(PassWrite).Observe(time.Since(started).Seconds())
		if err != nil {
			if abort := r.handleFailure(tally, entry, PassWrite, err); abort != nil {
				return abort
			}
			continue
		}
		r.metrics.entriesTotal.WithLabelValues(PassWrite, "ok").Inc()
		tally.Succeeded++
		written++
	}
	r.logger.Infof("Wrote %d images, complete", written)
	return nil
}

func (r *Runner) writeEntry(listing corpus.Listing, entry corpus.Entry, gs stats.GlobalStats) error {
	img, err := r.codec.Decode(listing.Path(entry))
	if err != nil {
		return err
	}
	out, err := r.transform(img, gs)
	if err != nil {
		return err
	}
	return r.codec.Encode(out, r.outputPath(entry))
}

// outputPath mirrors entry under the output root. Extensions without an
// encoder get the fallback extension instead.
func (r *Runner) outputPath(entry corpus.Entry) string {
	return imaging.EncodablePath(entry.Rebase(r.opts.OutputDir), r.opts.FallbackExt)
}

// transform applies the per-image chain of pass 2: optional content crop,
// aspect crop, resize, brightness correction.
func (r *Runner) transform(img image.Image, gs stats.GlobalStats) (*image.NRGBA, error) {
	src := img
	if r.opts.ContentCrop {
		cropped, box, err := imaging.CropToContent(src, r.opts.EdgeThreshold, r.opts.CropMargin)
		if err != nil {
			return nil, err
		}
		r.logger.WithField("box", box.String()).Debug("content crop")
		src = cropped
	}

	cropped, err := imaging.CropToAspect(src, r.opts.AspectRatio)
	if err != nil {
		return nil, err
	}
	resized, err := imaging.Resize(cropped, r.opts.Width, r.opts.Height)
	if err != nil {
		return nil, err
	}
	corrected, err := r.opts.Strategy.Apply(resized, gs)
	if err != nil {
		return nil, err
	}
	return corrected.ToNRGBA(), nil
}

// handleFailure records a failed entry. It returns a non-nil error when the
// run must stop.
func (r *Runner) handleFailure(tally *Tally, entry corpus.Entry, pass string, err error) error {
	kind := Kind(err)
	tally.fail(Failure{Entry: entry, Pass: pass, Kind: kind, Err: err})
	r.metrics.entriesTotal.WithLabelValues(pass, kind).Inc()

	r.logger.WithFields(logrus.Fields{
		"path": entry.String(),
		"pass": pass,
		"kind": kind,
	}).WithError(err).Warn("entry failed")

	if r.opts.FailFast {
		return errors.Wrapf(err, "%s pass aborted at %s", pass, entry)
	}
	return nil
}

package pipeline

import (
	"context"

	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/ironsheep/corpus-prep/internal/stats"
	"github.com/pkg/errors"
)

// Failure kinds used in logs, the run tally and metric labels.
const (
	KindDecode          = "decode"
	KindEmptyCrop       = "empty_crop"
	KindChannelMismatch = "channel_mismatch"
	KindWrite           = "write"
	KindCanceled        = "canceled"
	KindOther           = "other"
)

// ErrNoSamples is returned when pass 1 summarized no image at all, so there
// is no reference to normalize against.
var ErrNoSamples = stats.ErrNoSamples

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, imaging.ErrDecode):
		return KindDecode
	case errors.Is(err, imaging.ErrEmptyCrop):
		return KindEmptyCrop
	case errors.Is(err, imaging.ErrChannelMismatch):
		return KindChannelMismatch
	case errors.Is(err, imaging.ErrWrite):
		return KindWrite
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindOther
	}
}

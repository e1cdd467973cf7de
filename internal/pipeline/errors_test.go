package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/ironsheep/corpus-prep/internal/corpus"
	"github.com/ironsheep/corpus-prep/internal/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"decode", errors.Wrap(imaging.ErrDecode, "a.png"), KindDecode},
		{"empty crop", errors.Wrapf(imaging.ErrEmptyCrop, "box"), KindEmptyCrop},
		{"channels", fmt.Errorf("wrapped: %w", imaging.ErrChannelMismatch), KindChannelMismatch},
		{"write", errors.Wrap(imaging.ErrWrite, "out.png"), KindWrite},
		{"canceled", errors.Wrap(context.Canceled, "pass"), KindCanceled},
		{"deadline", context.DeadlineExceeded, KindCanceled},
		{"other", errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestTally_String(t *testing.T) {
	var tally Tally
	tally.Attempted = 4
	tally.Succeeded = 1
	tally.fail(Failure{Entry: corpus.Entry{Dir: ".", Name: "a"}, Kind: KindWrite})
	tally.fail(Failure{Entry: corpus.Entry{Dir: ".", Name: "b"}, Kind: KindDecode})
	tally.fail(Failure{Entry: corpus.Entry{Dir: ".", Name: "c"}, Kind: KindDecode})

	assert.Equal(t, "attempted=4 succeeded=1 failed=3 (decode=2 write=1)", tally.String())
	assert.Equal(t, "attempted=0 succeeded=0 failed=0", Tally{}.String())
}

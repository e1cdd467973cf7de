package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/corpus-prep/internal/corpus"
	"github.com/samber/lo"
)

// Pass names.
const (
	PassStats = "stats"
	PassWrite = "write"
)

// Failure records why one entry was dropped from the output.
type Failure struct {
	Entry corpus.Entry `json:"entry"`
	Pass  string       `json:"pass"`
	Kind  string       `json:"kind"`
	Err   error        `json:"-"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s pass=%s kind=%s: %v", f.Entry, f.Pass, f.Kind, f.Err)
}

// Tally is the outcome of a run. After a completed run every attempted entry
// is either succeeded or failed. A run that aborts early reports the entries
// it reached, and entries still between passes count as neither.
type Tally struct {
	Attempted int       `json:"attempted"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Failures  []Failure `json:"failures,omitempty"`
}

func (t *Tally) fail(f Failure) {
	t.Failed++
	t.Failures = append(t.Failures, f)
}

// ByKind counts failures per kind.
func (t Tally) ByKind() map[string]int {
	groups := lo.GroupBy(t.Failures, func(f Failure) string { return f.Kind })
	return lo.MapValues(groups, func(fs []Failure, _ string) int { return len(fs) })
}

func (t Tally) String() string {
	s := fmt.Sprintf("attempted=%d succeeded=%d failed=%d", t.Attempted, t.Succeeded, t.Failed)
	counts := t.ByKind()
	if len(counts) == 0 {
		return s
	}
	kinds := lo.Keys(counts)
	sort.Strings(kinds)
	parts := lo.Map(kinds, func(k string, _ int) string { return fmt.Sprintf("%s=%d", k, counts[k]) })
	return s + " (" + strings.Join(parts, " ") + ")"
}

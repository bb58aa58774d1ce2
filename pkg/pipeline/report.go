package pipeline

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stickerpack/pkg/compose"
)

// Report contains the outcome of a pipeline run or stage.
type Report struct {
	// RunID identifies the run in logs and ledger entries.
	RunID string

	// Tracks holds one entry per image, keyed by document filename.
	Tracks map[string]*Track

	// Outcomes lists the per-collection stage results in execution order.
	Outcomes []*compose.Outcome

	// Failures lists every per-document failure and warning.
	Failures []compose.Failure

	// Variants lists the variant collections composed, in template order.
	Variants []string

	// Exported lists the PNG files written.
	Exported []string

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Images       int
	ResizeTime   time.Duration
	ComposeTime  time.Duration
	ExportTime   time.Duration
	ExportCached int
}

func newReport() *Report {
	return &Report{RunID: uuid.NewString(), Tracks: make(map[string]*Track)}
}

// Track returns the track for a document, or nil.
func (r *Report) Track(document string) *Track { return r.Tracks[document] }

// Documents returns the tracked document names, sorted.
func (r *Report) Documents() []string {
	names := make([]string, 0, len(r.Tracks))
	for name := range r.Tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failed reports whether any image failed or any non-warning failure was
// recorded.
func (r *Report) Failed() bool {
	for _, t := range r.Tracks {
		if t.Failed() {
			return true
		}
	}
	for _, f := range r.Failures {
		if !f.Warning() {
			return true
		}
	}
	return false
}

// Errors returns the non-warning failures.
func (r *Report) Errors() []compose.Failure {
	var out []compose.Failure
	for _, f := range r.Failures {
		if !f.Warning() {
			out = append(out, f)
		}
	}
	return out
}

// Warnings returns the warning-only failures.
func (r *Report) Warnings() []compose.Failure {
	var out []compose.Failure
	for _, f := range r.Failures {
		if f.Warning() {
			out = append(out, f)
		}
	}
	return out
}

func (r *Report) addOutcome(o *compose.Outcome) {
	if o == nil {
		return
	}
	r.Outcomes = append(r.Outcomes, o)
	r.Failures = append(r.Failures, o.Failures...)
}

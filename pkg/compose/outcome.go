package compose

import (
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// Stage names a pipeline stage in outcomes and reports.
type Stage string

const (
	StageResize  Stage = "resize"
	StageFanOut  Stage = "fanout"
	StageMerge   Stage = "merge"
	StageRelabel Stage = "relabel"
	StageExport  Stage = "export"
)

// Failure records a document that a stage could not process.
type Failure struct {
	Stage      Stage
	Collection string
	Document   string
	Err        error
}

// Warning reports whether the failure is informational only.
func (f Failure) Warning() bool { return errors.IsWarning(f.Err) }

// Outcome summarizes one stage run over one collection.
type Outcome struct {
	Stage      Stage
	Collection string

	// Done lists the documents the stage completed, in processing order.
	Done []string
	// Unchanged lists documents that needed no work.
	Unchanged []string
	Failures  []Failure
}

// NewOutcome starts an empty outcome for stage over collection.
func NewOutcome(stage Stage, collection string) *Outcome {
	return &Outcome{Stage: stage, Collection: collection}
}

// Count returns the number of documents the stage completed.
func (o *Outcome) Count() int { return len(o.Done) }

// Failed reports whether any document failed with a non-warning error.
func (o *Outcome) Failed() bool {
	for _, f := range o.Failures {
		if !f.Warning() {
			return true
		}
	}
	return false
}

// FailedDocs returns the set of documents with non-warning failures.
func (o *Outcome) FailedDocs() map[string]bool {
	out := make(map[string]bool)
	for _, f := range o.Failures {
		if !f.Warning() {
			out[f.Document] = true
		}
	}
	return out
}

// Record marks doc as completed.
func (o *Outcome) Record(doc string) { o.Done = append(o.Done, doc) }

// RecordFailure records a failure or warning for doc.
func (o *Outcome) RecordFailure(collection, doc string, err error) {
	o.Failures = append(o.Failures, Failure{Stage: o.Stage, Collection: collection, Document: doc, Err: err})
}

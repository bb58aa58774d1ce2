package pipeline

import (
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// State is a position in the per-image pipeline.
type State int

const (
	StateRaw State = iota
	StateResized
	StateBaselineSaved
	StateFannedOut
	StateMerged
	StateLabeled
	StateDone
)

var stateNames = [...]string{
	StateRaw:           "RAW",
	StateResized:       "RESIZED",
	StateBaselineSaved: "BASELINE_SAVED",
	StateFannedOut:     "FANNED_OUT",
	StateMerged:        "MERGED",
	StateLabeled:       "LABELED",
	StateDone:          "DONE",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// next reports whether to is a legal successor of from. LABELED is optional
// between MERGED and DONE.
func next(from, to State) bool {
	switch {
	case to == from+1:
		return true
	case from == StateMerged && to == StateDone:
		return true
	}
	return false
}

// Track follows one image through the pipeline.
//
// Up to BASELINE_SAVED the image has a single state. After that each variant
// collection the image is fanned out to has its own state, starting at
// BASELINE_SAVED. Transitions only move forward one step at a time.
type Track struct {
	// Document is the image's document filename, e.g. "a.ldoc".
	Document string
	// Source is the input image filename, empty when resumed from a baseline.
	Source string

	state    State
	variants map[string]State
	order    []string
	errs     map[string]error
}

// NewTrack starts tracking an input image in state RAW.
func NewTrack(source, document string) *Track {
	return &Track{Source: source, Document: document}
}

// ResumeTrack tracks a document that already reached state s, e.g. one read
// back from an existing baseline collection.
func ResumeTrack(document string, s State) *Track {
	return &Track{Document: document, state: s}
}

// State returns the image-level state.
func (t *Track) State() State { return t.state }

// Variant returns the state of one variant and whether it is tracked.
func (t *Track) Variant(name string) (State, bool) {
	s, ok := t.variants[name]
	return s, ok
}

// Variants returns the tracked variant names in the order first seen.
func (t *Track) Variants() []string { return t.order }

// Advance moves the image-level state to to.
func (t *Track) Advance(to State) error {
	if err := t.check("", t.state, to); err != nil {
		return err
	}
	if to > StateBaselineSaved {
		return errors.New(errors.ErrCodeInternal, "%s: %s is a variant state", t.Document, to)
	}
	t.state = to
	return nil
}

// AdvanceVariant moves variant to to. The first transition of a variant
// must be to FANNED_OUT, and the image must be at BASELINE_SAVED.
func (t *Track) AdvanceVariant(variant string, to State) error {
	if t.state != StateBaselineSaved {
		return errors.New(errors.ErrCodeInternal, "%s: variant %s advanced before baseline was saved", t.Document, variant)
	}
	from, ok := t.variants[variant]
	if !ok {
		from = StateBaselineSaved
	}
	if err := t.check(variant, from, to); err != nil {
		return err
	}
	if t.variants == nil {
		t.variants = make(map[string]State)
	}
	if !ok {
		t.order = append(t.order, variant)
	}
	t.variants[variant] = to
	return nil
}

func (t *Track) check(variant string, from, to State) error {
	if _, failed := t.errs[variant]; failed {
		return errors.New(errors.ErrCodeInternal, "%s: cannot advance failed %s", t.Document, scope(variant))
	}
	if _, failed := t.errs[""]; failed {
		return errors.New(errors.ErrCodeInternal, "%s: cannot advance failed image", t.Document)
	}
	if !next(from, to) {
		return errors.New(errors.ErrCodeInternal, "%s: invalid transition %s -> %s for %s", t.Document, from, to, scope(variant))
	}
	return nil
}

func scope(variant string) string {
	if variant == "" {
		return "image"
	}
	return "variant " + variant
}

// Fail records a terminal failure for the image (variant "") or one variant.
// Only the first error per scope is kept.
func (t *Track) Fail(variant string, err error) {
	if t.errs == nil {
		t.errs = make(map[string]error)
	}
	if _, ok := t.errs[variant]; !ok {
		t.errs[variant] = err
	}
}

// Err returns the failure recorded for the image (variant "") or a variant.
func (t *Track) Err(variant string) error { return t.errs[variant] }

// Failed reports whether the image or any of its variants failed.
func (t *Track) Failed() bool { return len(t.errs) > 0 }

// Done reports whether every tracked variant reached DONE without failure.
func (t *Track) Done() bool {
	if t.Failed() || len(t.variants) == 0 {
		return false
	}
	for _, s := range t.variants {
		if s != StateDone {
			return false
		}
	}
	return true
}

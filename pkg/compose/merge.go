package compose

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/errors"
	"github.com/matzehuels/stickerpack/pkg/template"
)

// Guard selects how MergeGroup protects against merging the same group into
// a document twice.
type Guard string

const (
	// GuardNone merges unconditionally. Merging twice stacks two copies.
	GuardNone Guard = "none"
	// GuardName skips documents that already have a top-level group with the
	// template group's name.
	GuardName Guard = "name"
	// GuardLedger skips documents the Marker has recorded as merged.
	GuardLedger Guard = "ledger"
)

// ParseGuard validates a guard name. The empty string selects GuardNone.
func ParseGuard(s string) (Guard, error) {
	switch Guard(s) {
	case "":
		return GuardNone, nil
	case GuardNone, GuardName, GuardLedger:
		return Guard(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "invalid merge guard %q (must be none, name or ledger)", s)
}

// Marker persists which (collection, document, group) merges have happened.
type Marker interface {
	Merged(ctx context.Context, collection, document, group string) (bool, error)
	MarkMerged(ctx context.Context, collection, document, group string) error
}

// MergeOptions configures MergeGroup.
type MergeOptions struct {
	Guard  Guard
	Marker Marker // required for GuardLedger
	Logger *log.Logger
}

// MergeGroup duplicates group from the template into every document of coll,
// above all existing layers, and saves each document.
//
// tmpl must be an open template handle. Before each duplication the template
// is made the active document, and after the target is saved the template is
// made active again. Documents that cannot be opened, and documents for which
// the group cannot be resolved in the template, are recorded and skipped; a
// document that fails is never saved.
func MergeGroup(ctx context.Context, eng *engine.Engine, coll *collection.Collection, tmpl *engine.Handle, group template.Group, opts MergeOptions) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Guard == GuardLedger && opts.Marker == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "ledger guard requires a marker")
	}

	names, err := coll.List()
	if err != nil {
		return nil, err
	}

	o := NewOutcome(StageMerge, coll.Name())
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return o, err
		}
		err := mergeOne(ctx, eng, coll, tmpl, group, name, opts)
		switch {
		case err == nil:
			o.Record(name)
		case errors.IsWarning(err):
			logger.Info("already merged", "collection", coll.Name(), "document", name, "group", group.Name)
			o.Unchanged = append(o.Unchanged, name)
			o.RecordFailure(coll.Name(), name, err)
		default:
			logger.Warn("merge failed", "collection", coll.Name(), "document", name, "group", group.Name, "err", err)
			o.RecordFailure(coll.Name(), name, err)
		}
	}

	if err := eng.Activate(tmpl); err != nil {
		return o, err
	}
	logger.Debug("merged group", "collection", coll.Name(), "group", group.Name, "documents", o.Count())
	return o, nil
}

// mergeOne merges group into one document. A guard that suppresses the merge
// yields an ALREADY_MERGED warning.
func mergeOne(ctx context.Context, eng *engine.Engine, coll *collection.Collection, tmpl *engine.Handle, group template.Group, name string, opts MergeOptions) error {
	if opts.Guard == GuardLedger {
		done, err := opts.Marker.Merged(ctx, coll.Name(), name, group.Name)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "check ledger for %s", name)
		}
		if done {
			return errors.New(errors.ErrCodeAlreadyMerged, "%s already has %q", name, group.Name)
		}
	}

	doc, err := eng.Open(coll.Path(name))
	if err != nil {
		return err
	}
	defer eng.Close(doc)

	if opts.Guard == GuardName {
		if n, ok := doc.Document().Layer(group.Name); ok && n.Kind() == document.KindGroup {
			return errors.New(errors.ErrCodeAlreadyMerged, "%s already has %q", name, group.Name)
		}
	}

	if err := eng.Activate(tmpl); err != nil {
		return errors.Wrap(errors.ErrCodeMerge, err, "activate template")
	}
	src, err := group.Resolve(tmpl.Document())
	if err != nil {
		return err
	}
	if _, err := eng.Duplicate(tmpl, src, doc, engine.PlaceAtBeginning); err != nil {
		return errors.Wrap(errors.ErrCodeMerge, err, "duplicate %q into %s", group.Name, name)
	}

	if err := eng.Activate(doc); err != nil {
		return errors.Wrap(errors.ErrCodeMerge, err, "activate %s", name)
	}
	if err := eng.Save(doc); err != nil {
		return errors.Wrap(errors.ErrCodeMerge, err, "save %s", name)
	}
	if err := eng.Activate(tmpl); err != nil {
		return errors.Wrap(errors.ErrCodeMerge, err, "restore template")
	}

	if opts.Marker != nil {
		if err := opts.Marker.MarkMerged(ctx, coll.Name(), name, group.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "record merge of %s", name)
		}
	}
	return nil
}

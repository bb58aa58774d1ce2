package compose

import (
	"context"
	"io"
	"net/url"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// Traversal selects which collections RelabelByFilename visits.
type Traversal string

const (
	// Flat visits only the given collection.
	Flat Traversal = "flat"
	// Nested visits the given collection and each of its immediate,
	// non-hidden sub-collections.
	Nested Traversal = "nested"
)

// ParseTraversal validates a traversal name. The empty string selects Flat.
func ParseTraversal(s string) (Traversal, error) {
	switch Traversal(s) {
	case "":
		return Flat, nil
	case Flat, Nested:
		return Traversal(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "invalid traversal %q (must be flat or nested)", s)
}

// RelabelOptions configures RelabelByFilename.
type RelabelOptions struct {
	Traversal Traversal
	Logger    *log.Logger
}

// LabelFor returns the label text for a document filename: the base name
// without its final extension, percent-decoded. Escapes that do not decode
// to valid UTF-8 fail with RELABEL.
func LabelFor(filename string) (string, error) {
	label, err := url.PathUnescape(document.StripExt(filename))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRelabel, err, "decode label from %q", filename)
	}
	if !utf8.ValidString(label) {
		return "", errors.New(errors.ErrCodeRelabel, "label decoded from %q is not valid UTF-8", filename)
	}
	return label, nil
}

// RelabelByFilename sets every text layer directly inside the group named
// groupName to the document's label (see LabelFor).
//
// The group is looked up among top-level layers first, then one level down.
// A document without the group is recorded as a RELABEL_SKIPPED warning. A
// document is saved only if at least one text layer was updated. The
// returned outcome's Done lists updated documents as "collection/name" for
// nested traversal and "name" otherwise.
func RelabelByFilename(ctx context.Context, eng *engine.Engine, coll *collection.Collection, groupName string, opts RelabelOptions) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	targets := []*collection.Collection{coll}
	if opts.Traversal == Nested {
		subs, err := coll.Sub()
		if err != nil {
			return nil, err
		}
		targets = append(targets, subs...)
	}

	o := NewOutcome(StageRelabel, coll.Name())
	for _, c := range targets {
		names, err := c.List()
		if err != nil {
			return o, err
		}
		for _, name := range names {
			if err := ctx.Err(); err != nil {
				return o, err
			}
			id := name
			if c != coll {
				id = c.Name() + "/" + name
			}
			updated, err := relabelOne(eng, c, name, groupName)
			switch {
			case errors.IsWarning(err):
				logger.Warn("label group not found", "collection", c.Name(), "document", name, "group", groupName)
				o.RecordFailure(c.Name(), name, err)
			case err != nil:
				logger.Warn("relabel failed", "collection", c.Name(), "document", name, "err", err)
				o.RecordFailure(c.Name(), name, err)
			case updated:
				o.Record(id)
			default:
				o.Unchanged = append(o.Unchanged, id)
			}
		}
	}
	logger.Debug("relabeled collection", "collection", coll.Name(), "group", groupName, "documents", o.Count())
	return o, nil
}

func relabelOne(eng *engine.Engine, c *collection.Collection, name, groupName string) (bool, error) {
	label, err := LabelFor(name)
	if err != nil {
		return false, err
	}

	h, err := eng.Open(c.Path(name))
	if err != nil {
		return false, err
	}
	defer eng.Close(h)

	g, ok := h.Document().FindGroup(groupName)
	if !ok {
		return false, errors.New(errors.ErrCodeRelabelSkipped, "%s has no group %q", name, groupName)
	}

	texts := g.Texts()
	if len(texts) == 0 {
		return false, nil
	}
	for _, t := range texts {
		t.Content = label
	}
	h.MarkDirty()

	if err := eng.Activate(h); err != nil {
		return false, errors.Wrap(errors.ErrCodeRelabel, err, "activate %s", name)
	}
	if err := eng.Save(h); err != nil {
		return false, errors.Wrap(errors.ErrCodeRelabel, err, "save %s", name)
	}
	return true, nil
}

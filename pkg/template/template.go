// Package template loads overlay templates and finds their active groups.
//
// A template is a layered document whose top-level groups each define one
// variant. A group takes part in a run only if it is visible; hidden groups
// produce no output collection at all.
//
// Templates are read either from a layered document (document.Ext) or from a
// TOML manifest (see [ParseManifest]) that is converted to a document on load.
package template

import (
	"context"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// Group is an active top-level template group.
type Group struct {
	// Index is the group's position among all top-level template layers.
	Index int
	// Slot is the 1-based position among active groups.
	Slot int
	Name string
	// Ref is the group as loaded. It is detached from any open document.
	Ref *document.Group
}

// Resolve returns the group at g.Index in doc, checking that it is still a
// group with the same name.
func (g Group) Resolve(doc *document.Document) (*document.Group, error) {
	if g.Index < 0 || g.Index >= len(doc.Layers) {
		return nil, errors.New(errors.ErrCodeMerge, "template group %q no longer exists", g.Name)
	}
	grp, ok := doc.Layers[g.Index].(*document.Group)
	if !ok || grp.Name() != g.Name {
		return nil, errors.New(errors.ErrCodeMerge, "template group %q no longer exists", g.Name)
	}
	return grp, nil
}

// Open opens the template at p with eng and returns its handle. The handle
// is the active document on return.
func Open(eng *engine.Engine, p string) (*engine.Handle, error) {
	if strings.EqualFold(path.Ext(p), ".toml") {
		doc, err := LoadManifest(eng.FS(), p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeTemplateOpen, err, "open template %s", p)
		}
		h := eng.Create(doc, p)
		return h, nil
	}
	h, err := eng.Open(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTemplateOpen, err, "open template %s", p)
	}
	return h, nil
}

// LoadActiveGroups opens the template once, returns its visible top-level
// groups in document order, and closes it again.
func LoadActiveGroups(ctx context.Context, eng *engine.Engine, p string, logger *log.Logger) ([]Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := Open(eng, p)
	if err != nil {
		return nil, err
	}
	defer eng.Close(h)

	return ActiveGroups(h.Document(), logger)
}

// ActiveGroups returns the visible top-level groups of doc. It fails with
// TEMPLATE_EMPTY if doc has no top-level layers.
func ActiveGroups(doc *document.Document, logger *log.Logger) ([]Group, error) {
	if len(doc.Layers) == 0 {
		return nil, errors.New(errors.ErrCodeTemplateEmpty, "template %s has no layers", doc.Name)
	}

	var out []Group
	for i, n := range doc.Layers {
		switch n := n.(type) {
		case *document.Group:
			if !n.Visible() {
				if logger != nil {
					logger.Debug("skipping hidden template group", "group", n.Name())
				}
				continue
			}
			out = append(out, Group{
				Index: i,
				Slot:  len(out) + 1,
				Name:  n.Name(),
				Ref:   document.Clone(n).(*document.Group),
			})
		case *document.Text, *document.Pixel:
			if logger != nil {
				logger.Debug("ignoring top-level template layer", "layer", n.Name(), "kind", n.Kind())
			}
		}
	}
	return out, nil
}

package pipeline

import (
	"context"
	"path"
	"time"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/compose"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/errors"
	"github.com/matzehuels/stickerpack/pkg/observability"
	"github.com/matzehuels/stickerpack/pkg/template"
)

// variant pairs an active template group with its output collection name.
type variant struct {
	group template.Group
	name  string
}

// variants maps groups to collection names and rejects names that collide
// with each other or with reserved folders.
func variants(opts Options, groups []template.Group) ([]variant, error) {
	naming := opts.NamingScheme()
	seen := make(map[string]string, len(groups))
	out := make([]variant, 0, len(groups))
	for _, g := range groups {
		name := naming.VariantName(g.Slot, g.Name)
		switch name {
		case opts.Baseline, DefaultExportDir:
			return nil, errors.New(errors.ErrCodeInvalidConfig, "template group %q maps to reserved collection %q", g.Name, name)
		}
		if other, ok := seen[name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "template groups %q and %q both map to collection %q", other, g.Name, name)
		}
		seen[name] = g.Name
		out = append(out, variant{group: g, name: name})
	}
	return out, nil
}

// compose fans out and merges every active group in template order, then
// relabels the label variant.
func (r *Runner) compose(ctx context.Context, eng *engine.Engine, opts Options, rep *Report, tmpl *engine.Handle, vs []variant) error {
	return r.merge(ctx, eng, opts, rep, tmpl, vs, true)
}

// merge runs the per-group loop. With fanOut, each variant collection is
// rebuilt from the baseline right before its group is merged; otherwise the
// existing variant collections are merged in place.
func (r *Runner) merge(ctx context.Context, eng *engine.Engine, opts Options, rep *Report, tmpl *engine.Handle, vs []variant, fanOut bool) error {
	baseline, err := collection.Open(r.FS, path.Join(opts.Output, opts.Baseline))
	if err != nil {
		return err
	}

	mopts := compose.MergeOptions{Logger: opts.Logger}
	mopts.Guard, _ = compose.ParseGuard(opts.MergeGuard)
	if mopts.Guard == compose.GuardLedger {
		st, err := r.ledgerFor(opts, rep.RunID)
		if err != nil {
			return err
		}
		mopts.Marker = st
	}

	for _, v := range vs {
		if err := ctx.Err(); err != nil {
			return err
		}
		dir := path.Join(opts.Output, v.name)

		var out *collection.Collection
		if fanOut {
			observability.Pipeline().OnStageStart(ctx, string(compose.StageFanOut), v.name)
			start := time.Now()
			coll, fo, err := compose.FanOut(ctx, baseline, dir, opts.Logger)
			observe(ctx, compose.StageFanOut, v.name, start, fo, err)
			if err != nil {
				return err
			}
			out = coll
			rep.addOutcome(fo)
			advance(rep, v.name, StateFannedOut, fo, nil)

			if mopts.Marker != nil {
				if err := r.Ledger.Forget(ctx, v.name); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "reset ledger for %s", v.name)
				}
			}
		} else {
			coll, err := collection.Open(r.FS, dir)
			if err != nil {
				return err
			}
			out = coll
			if err := markPresent(rep, out, v.name); err != nil {
				return err
			}
		}

		observability.Pipeline().OnStageStart(ctx, string(compose.StageMerge), v.name)
		start := time.Now()
		mo, err := compose.MergeGroup(ctx, eng, out, tmpl, v.group, mopts)
		observe(ctx, compose.StageMerge, v.name, start, mo, err)
		if err != nil {
			return err
		}
		rep.addOutcome(mo)
		advance(rep, v.name, StateMerged, mo, mo.Unchanged)
		rep.Variants = append(rep.Variants, v.name)
		opts.Logger.Info("merged group", "group", v.group.Name, "collection", v.name, "documents", mo.Count())
	}

	if err := r.relabel(ctx, eng, opts, rep, vs); err != nil {
		return err
	}

	for _, t := range rep.Tracks {
		for _, v := range t.Variants() {
			if s, _ := t.Variant(v); s == StateMerged || s == StateLabeled {
				_ = t.AdvanceVariant(v, StateDone)
			}
		}
	}
	return nil
}

// relabel rewrites the label variant's text from filenames. It does nothing
// if the label group is not active.
func (r *Runner) relabel(ctx context.Context, eng *engine.Engine, opts Options, rep *Report, vs []variant) error {
	var label string
	for _, v := range vs {
		if v.group.Name == opts.LabelGroup {
			label = v.name
			break
		}
	}
	if label == "" {
		opts.Logger.Debug("label group not active", "group", opts.LabelGroup)
		return nil
	}

	traversal, _ := compose.ParseTraversal(opts.Traversal)
	dir, prefix := path.Join(opts.Output, label), ""
	if traversal == compose.Nested {
		dir, prefix = opts.Output, label+"/"
	}
	target, err := collection.Open(r.FS, dir)
	if err != nil {
		return err
	}

	observability.Pipeline().OnStageStart(ctx, string(compose.StageRelabel), label)
	start := time.Now()
	ro, err := compose.RelabelByFilename(ctx, eng, target, opts.LabelGroup, compose.RelabelOptions{
		Traversal: traversal,
		Logger:    opts.Logger,
	})
	observe(ctx, compose.StageRelabel, label, start, ro, err)
	if err != nil {
		return err
	}
	rep.addOutcome(ro)

	labeled := make(map[string]bool)
	for _, id := range append(append([]string{}, ro.Done...), ro.Unchanged...) {
		labeled[id] = true
	}
	for _, f := range ro.Failures {
		if f.Collection != label || f.Warning() {
			continue
		}
		if t := rep.Tracks[f.Document]; t != nil {
			t.Fail(label, f.Err)
		}
	}
	for doc, t := range rep.Tracks {
		if s, ok := t.Variant(label); ok && s == StateMerged && labeled[prefix+doc] {
			_ = t.AdvanceVariant(label, StateLabeled)
		}
	}
	opts.Logger.Info("relabeled documents", "collection", label, "documents", ro.Count())
	return nil
}

// advance moves every document completed by o (plus extra) to state s in
// variant, and fails the variant for every non-warning failure.
func advance(rep *Report, variant string, s State, o *compose.Outcome, extra []string) {
	for _, f := range o.Failures {
		if f.Warning() {
			continue
		}
		if t := rep.Tracks[f.Document]; t != nil {
			t.Fail(variant, f.Err)
		}
	}
	for _, doc := range append(append([]string{}, o.Done...), extra...) {
		t := rep.Tracks[doc]
		if t == nil {
			continue
		}
		if err := t.AdvanceVariant(variant, s); err != nil {
			t.Fail(variant, err)
		}
	}
}

// markPresent advances tracked documents found in an existing variant
// collection to FANNED_OUT.
func markPresent(rep *Report, coll *collection.Collection, variant string) error {
	names, err := coll.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		if t := rep.Tracks[name]; t != nil {
			if err := t.AdvanceVariant(variant, StateFannedOut); err != nil {
				t.Fail(variant, err)
			}
		}
	}
	return nil
}

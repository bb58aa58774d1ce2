package pipeline

import (
	"context"
	"path"
	"time"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/compose"
	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/errors"
	"github.com/matzehuels/stickerpack/pkg/observability"
	"github.com/matzehuels/stickerpack/pkg/raster"
)

// resize turns every input image into a baseline document. Baseline
// documents that were not produced by this call are removed afterwards, so
// the baseline holds exactly the images that reached BASELINE_SAVED.
func (r *Runner) resize(ctx context.Context, eng *engine.Engine, opts Options, rep *Report) error {
	input, err := collection.Open(r.FS, opts.Input)
	if err != nil {
		return err
	}
	names, err := input.ListFunc(collection.Images)
	if err != nil {
		return err
	}
	baseline, err := collection.Ensure(r.FS, path.Join(opts.Output, opts.Baseline))
	if err != nil {
		return err
	}

	observability.Pipeline().OnStageStart(ctx, string(compose.StageResize), baseline.Name())
	start := time.Now()
	o := compose.NewOutcome(compose.StageResize, baseline.Name())
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		docName := document.StripExt(name) + document.Ext
		if prev := rep.Tracks[docName]; prev != nil {
			err := errors.New(errors.ErrCodeResize, "%s and %s both map to %s", prev.Source, name, docName)
			opts.Logger.Warn("skipping image", "image", name, "err", err)
			o.RecordFailure(baseline.Name(), docName, err)
			continue
		}

		t := NewTrack(name, docName)
		rep.Tracks[docName] = t
		if err := r.resizeOne(eng, input, baseline, t, opts.MaxDimension); err != nil {
			opts.Logger.Warn("resize failed", "image", name, "err", err)
			t.Fail("", err)
			o.RecordFailure(baseline.Name(), docName, err)
			continue
		}
		o.Record(docName)
	}
	rep.Stats.Images = len(rep.Tracks)

	if err := r.pruneBaseline(baseline, rep, opts); err != nil {
		return err
	}
	rep.addOutcome(o)
	observe(ctx, compose.StageResize, baseline.Name(), start, o, nil)
	return nil
}

func (r *Runner) resizeOne(eng *engine.Engine, input, baseline *collection.Collection, t *Track, max int) error {
	img, err := raster.Load(r.FS, input.Path(t.Source))
	if err != nil {
		return err
	}
	resized, err := raster.Resize(img, max)
	if err != nil {
		return err
	}
	if err := t.Advance(StateResized); err != nil {
		return err
	}

	h := eng.Create(raster.Baseline(t.Document, resized), baseline.Path(t.Document))
	defer eng.Close(h)
	if err := eng.Activate(h); err != nil {
		return err
	}
	if err := eng.Save(h); err != nil {
		return errors.Wrap(errors.ErrCodeResize, err, "save baseline %s", t.Document)
	}
	return t.Advance(StateBaselineSaved)
}

// pruneBaseline removes baseline documents without a successful track.
func (r *Runner) pruneBaseline(baseline *collection.Collection, rep *Report, opts Options) error {
	existing, err := baseline.List()
	if err != nil {
		return err
	}
	for _, name := range existing {
		if t := rep.Tracks[name]; t != nil && !t.Failed() {
			continue
		}
		if err := r.FS.Remove(baseline.Path(name)); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "remove stale baseline %s", name)
		}
		opts.Logger.Debug("removed stale baseline document", "document", name)
	}
	return nil
}

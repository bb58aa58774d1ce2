package pipeline

import (
	"context"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/matzehuels/stickerpack/pkg/cache"
	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/compose"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/ledger"
	"github.com/matzehuels/stickerpack/pkg/observability"
	"github.com/matzehuels/stickerpack/pkg/template"
)

// Runner encapsulates pipeline execution against one filesystem.
//
// All option paths are resolved on FS. The Runner keeps no results between
// calls; each call opens its own document engine.
type Runner struct {
	FS     billy.Filesystem
	Cache  cache.Cache
	Keyer  cache.Keyer
	Ledger ledger.Store
	Logger *log.Logger
}

var _ compose.Marker = ledger.Store(nil)

// NewRunner creates a runner on fs with the given export cache.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(fs billy.Filesystem, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		FS:     fs,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Logger: logger,
	}
}

// Execute runs resize, compose and (if enabled) export.
//
// The template is opened once, before any image is touched, and stays open
// until every group has been merged. The returned error is non-nil only for
// fatal conditions; per-image problems are in the report.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	rep := newReport()
	eng := engine.New(r.FS, opts.Logger)
	defer eng.CloseAll()

	tmpl, vs, err := r.openTemplate(eng, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := r.resize(ctx, eng, opts, rep); err != nil {
		return nil, err
	}
	rep.Stats.ResizeTime = time.Since(start)
	opts.Logger.Info("resized images", "images", rep.Stats.Images, "duration", rep.Stats.ResizeTime)

	start = time.Now()
	if err := r.compose(ctx, eng, opts, rep, tmpl, vs); err != nil {
		return nil, err
	}
	rep.Stats.ComposeTime = time.Since(start)
	opts.Logger.Info("composed variants", "variants", len(rep.Variants), "duration", rep.Stats.ComposeTime)

	if opts.Export.Enabled {
		start = time.Now()
		if err := r.export(ctx, opts, rep); err != nil {
			return nil, err
		}
		rep.Stats.ExportTime = time.Since(start)
		opts.Logger.Info("exported png files",
			"files", len(rep.Exported),
			"cached", rep.Stats.ExportCached,
			"duration", rep.Stats.ExportTime)
	}
	return rep, nil
}

// Resize runs only the resize stage.
func (r *Runner) Resize(ctx context.Context, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResize(); err != nil {
		return nil, err
	}

	rep := newReport()
	eng := engine.New(r.FS, opts.Logger)
	defer eng.CloseAll()

	start := time.Now()
	if err := r.resize(ctx, eng, opts, rep); err != nil {
		return nil, err
	}
	rep.Stats.ResizeTime = time.Since(start)
	return rep, nil
}

// Compose runs fan-out, merge and relabel against an existing baseline
// collection.
func (r *Runner) Compose(ctx context.Context, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompose(); err != nil {
		return nil, err
	}

	rep := newReport()
	eng := engine.New(r.FS, opts.Logger)
	defer eng.CloseAll()

	tmpl, vs, err := r.openTemplate(eng, opts)
	if err != nil {
		return nil, err
	}
	if err := r.resumeTracks(opts, rep, StateBaselineSaved); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := r.compose(ctx, eng, opts, rep, tmpl, vs); err != nil {
		return nil, err
	}
	rep.Stats.ComposeTime = time.Since(start)
	return rep, nil
}

// Merge merges every active template group into its existing variant
// collection without fanning out first, then relabels. Use a merge guard
// to make repeated merges safe.
func (r *Runner) Merge(ctx context.Context, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompose(); err != nil {
		return nil, err
	}

	rep := newReport()
	eng := engine.New(r.FS, opts.Logger)
	defer eng.CloseAll()

	tmpl, vs, err := r.openTemplate(eng, opts)
	if err != nil {
		return nil, err
	}
	if err := r.resumeTracks(opts, rep, StateBaselineSaved); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := r.merge(ctx, eng, opts, rep, tmpl, vs, false); err != nil {
		return nil, err
	}
	rep.Stats.ComposeTime = time.Since(start)
	return rep, nil
}

// Export runs only the export stage over the existing output collections.
func (r *Runner) Export(ctx context.Context, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	rep := newReport()
	start := time.Now()
	if err := r.export(ctx, opts, rep); err != nil {
		return nil, err
	}
	rep.Stats.ExportTime = time.Since(start)
	return rep, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// openTemplate opens the template, reads its active groups and maps them to
// variant collections. It fails before any document is written if a group
// maps to a reserved or duplicate collection. The handle stays open for the
// merge phase.
func (r *Runner) openTemplate(eng *engine.Engine, opts Options) (*engine.Handle, []variant, error) {
	tmpl, err := template.Open(eng, opts.Template)
	if err != nil {
		return nil, nil, err
	}
	groups, err := template.ActiveGroups(tmpl.Document(), opts.Logger)
	if err != nil {
		eng.Close(tmpl)
		return nil, nil, err
	}
	vs, err := variants(opts, groups)
	if err != nil {
		eng.Close(tmpl)
		return nil, nil, err
	}
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	opts.Logger.Debug("loaded template", "path", opts.Template, "active", names)
	return tmpl, vs, nil
}

// resumeTracks tracks every document of the baseline collection at state s.
func (r *Runner) resumeTracks(opts Options, rep *Report, s State) error {
	baseline, err := collection.Open(r.FS, path.Join(opts.Output, opts.Baseline))
	if err != nil {
		return err
	}
	names, err := baseline.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		rep.Tracks[name] = ResumeTrack(name, s)
	}
	rep.Stats.Images = len(names)
	return nil
}

// ledgerFor returns the ledger used by the ledger merge guard, creating the
// default file store under the output root on first use.
func (r *Runner) ledgerFor(opts Options, runID string) (ledger.Store, error) {
	if r.Ledger == nil {
		st, err := ledger.NewFileStore(r.FS, path.Join(opts.Output, ledger.DefaultPath))
		if err != nil {
			return nil, err
		}
		r.Ledger = st
	}
	if st, ok := r.Ledger.(*ledger.FileStore); ok {
		st.SetRunID(runID)
	}
	return r.Ledger, nil
}

// observe reports a finished stage to the registered hooks.
func observe(ctx context.Context, stage compose.Stage, coll string, start time.Time, o *compose.Outcome, err error) {
	hooks := observability.Pipeline()
	n := 0
	if o != nil {
		n = o.Count()
		for _, f := range o.Failures {
			hooks.OnDocumentFailed(ctx, string(f.Stage), f.Collection, f.Document, f.Err)
		}
	}
	hooks.OnStageComplete(ctx, string(stage), coll, n, time.Since(start), err)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

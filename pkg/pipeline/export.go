package pipeline

import (
	"bytes"
	"context"
	"os"
	"path"
	"time"

	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/cache"
	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/compose"
	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/errors"
	"github.com/matzehuels/stickerpack/pkg/observability"
	"github.com/matzehuels/stickerpack/pkg/raster"
)

const exportFormat = "png"

// ExportName returns the PNG filename for a document exported with prefix.
func ExportName(prefix, doc string) string {
	return prefix + "_" + document.StripExt(doc) + ".png"
}

// export flattens every document of every output collection into
// Output/png/{prefix}_{base}.png. The baseline is skipped unless
// Export.IncludeBaseline is set. Flattened PNGs are cached by document
// content, so unchanged documents are not re-rendered.
func (r *Runner) export(ctx context.Context, opts Options, rep *Report) error {
	root, err := collection.Open(r.FS, opts.Output)
	if err != nil {
		return err
	}
	subs, err := root.Sub()
	if err != nil {
		return err
	}
	pngDir := path.Join(opts.Output, DefaultExportDir)

	for _, c := range subs {
		name := c.Name()
		if name == DefaultExportDir || (name == opts.Baseline && !opts.Export.IncludeBaseline) {
			continue
		}
		docs, err := c.List()
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			continue
		}

		observability.Pipeline().OnStageStart(ctx, string(compose.StageExport), name)
		start := time.Now()
		o := compose.NewOutcome(compose.StageExport, name)
		prefix := opts.ExportPrefix(name)
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}
			dst := path.Join(pngDir, ExportName(prefix, doc))
			cached, err := r.exportOne(ctx, c.Path(doc), dst, opts.Export.Refresh)
			if err != nil {
				opts.Logger.Warn("export failed", "collection", name, "document", doc, "err", err)
				o.RecordFailure(name, doc, err)
				continue
			}
			if cached {
				rep.Stats.ExportCached++
				o.Unchanged = append(o.Unchanged, doc)
			} else {
				o.Record(doc)
			}
			rep.Exported = append(rep.Exported, dst)
		}
		rep.addOutcome(o)
		observe(ctx, compose.StageExport, name, start, o, nil)
		opts.Logger.Debug("exported collection", "collection", name, "prefix", prefix, "written", o.Count(), "cached", len(o.Unchanged))
	}
	return nil
}

// exportOne writes the PNG for the document at src to dst. It reports
// whether the cached rendering was used.
func (r *Runner) exportOne(ctx context.Context, src, dst string, refresh bool) (bool, error) {
	data, err := util.ReadFile(r.FS, src)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeUnreadableMember, err, "read %s", src)
	}
	key := r.Keyer.ExportKey(cache.Hash(data), cache.ExportKeyOpts{Format: exportFormat})

	if !refresh {
		if png, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "export")
			if existing, err := util.ReadFile(r.FS, dst); err == nil && bytes.Equal(existing, png) {
				return true, nil
			} else if err != nil && !os.IsNotExist(err) {
				return false, errors.Wrap(errors.ErrCodeExport, err, "read %s", dst)
			}
			return true, r.writeFile(dst, png)
		}
		observability.Cache().OnCacheMiss(ctx, "export")
	}

	d, err := document.Unmarshal(data)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s", src)
	}
	img, err := raster.Flatten(d)
	if err != nil {
		return false, err
	}
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		return false, errors.Wrap(errors.ErrCodeExport, err, "encode %s", dst)
	}
	if err := r.writeFile(dst, buf.Bytes()); err != nil {
		return false, err
	}
	if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLExport); err == nil {
		observability.Cache().OnCacheSet(ctx, "export", buf.Len())
	}
	return false, nil
}

func (r *Runner) writeFile(p string, data []byte) error {
	if err := r.FS.MkdirAll(path.Dir(p), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "create %s", path.Dir(p))
	}
	if err := util.WriteFile(r.FS, p, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", p)
	}
	return nil
}

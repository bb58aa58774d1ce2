package compose

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// FanOut makes the collection at dir an unmerged copy of baseline.
//
// The output collection is created if absent. Every document in baseline is
// copied byte for byte under the same filename, replacing any previous copy.
// Documents in the output that were not copied in this call are removed, so
// on success both collections hold the same filenames. An unreadable baseline
// member is recorded as UNREADABLE_MEMBER and skipped.
func FanOut(ctx context.Context, baseline *collection.Collection, dir string, logger *log.Logger) (*collection.Collection, *Outcome, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	names, err := baseline.List()
	if err != nil {
		return nil, nil, err
	}
	fs := baseline.FS()
	out, err := collection.Ensure(fs, dir)
	if err != nil {
		return nil, nil, err
	}

	o := NewOutcome(StageFanOut, out.Name())
	copied := make(map[string]bool, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, o, err
		}
		data, err := util.ReadFile(fs, baseline.Path(name))
		if err != nil {
			logger.Warn("skipping unreadable document", "collection", baseline.Name(), "document", name, "err", err)
			o.RecordFailure(out.Name(), name, errors.Wrap(errors.ErrCodeUnreadableMember, err, "read %s", baseline.Path(name)))
			continue
		}
		if err := util.WriteFile(fs, out.Path(name), data, 0o644); err != nil {
			o.RecordFailure(out.Name(), name, errors.Wrap(errors.ErrCodeInternal, err, "write %s", out.Path(name)))
			continue
		}
		copied[name] = true
		o.Record(name)
	}

	existing, err := out.List()
	if err != nil {
		return out, o, err
	}
	for _, name := range existing {
		if copied[name] {
			continue
		}
		if err := fs.Remove(out.Path(name)); err != nil {
			o.RecordFailure(out.Name(), name, errors.Wrap(errors.ErrCodeInternal, err, "remove stale %s", out.Path(name)))
			continue
		}
		logger.Debug("removed stale document", "collection", out.Name(), "document", name)
	}

	logger.Debug("fanned out collection", "from", baseline.Name(), "to", out.Name(), "documents", o.Count())
	return out, o, nil
}

// Package ledger records which template groups have been merged into which
// documents.
//
// The merge step itself is not idempotent: merging the same group twice
// stacks two copies. A ledger lets a rerun skip documents that already carry
// the group without inspecting the document. Entries are keyed by
// (collection, document, group).
//
// Fanning out a collection replaces its documents with fresh baseline copies,
// so callers must [Store.Forget] the collection after every fan-out.
//
// # Usage
//
//	store, err := ledger.NewFileStore(fs, "out/.stickerpack/ledger.json")
//	if err != nil {
//	    return err
//	}
//	store.SetRunID(runID)
//
//	done, err := store.Merged(ctx, "logo1", "a.ldoc", "logo1")
//	...
//	store.MarkMerged(ctx, "logo1", "a.ldoc", "logo1")
package ledger

import (
	"context"
	"time"
)

// DefaultPath is the ledger location relative to the output root.
const DefaultPath = ".stickerpack/ledger.json"

// Entry is one recorded merge.
type Entry struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id,omitempty"`
	Collection string    `json:"collection"`
	Document   string    `json:"document"`
	Group      string    `json:"group"`
	MergedAt   time.Time `json:"merged_at"`
}

// Store is the interface for ledger backends.
type Store interface {
	// Merged reports whether group has been recorded for the document.
	Merged(ctx context.Context, collection, document, group string) (bool, error)

	// MarkMerged records a merge. Recording an existing key is a no-op.
	MarkMerged(ctx context.Context, collection, document, group string) error

	// Forget removes every entry for collection.
	Forget(ctx context.Context, collection string) error

	// Entries returns all entries, oldest first.
	Entries(ctx context.Context) ([]Entry, error)
}

type key struct{ collection, document, group string }

func (e Entry) key() key { return key{e.Collection, e.Document, e.Group} }

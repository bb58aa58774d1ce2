package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"

	"github.com/matzehuels/stickerpack/pkg/errors"
)

const fileVersion = 1

type fileJSON struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// FileStore is a ledger kept as a single JSON file.
type FileStore struct {
	mu    sync.RWMutex
	fs    billy.Filesystem
	path  string
	runID string
	now   func() time.Time
}

// NewFileStore creates a ledger stored at p on fs. The file is created on
// the first write.
func NewFileStore(fs billy.Filesystem, p string) (*FileStore, error) {
	if p == "" {
		p = DefaultPath
	}
	if dir := path.Dir(p); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create ledger dir")
		}
	}
	return &FileStore{fs: fs, path: p, now: time.Now}, nil
}

// SetRunID tags subsequent entries with the given run.
func (s *FileStore) SetRunID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = id
}

// Path returns the ledger file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Merged(ctx context.Context, collection, document, group string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return false, err
	}
	k := key{collection, document, group}
	for _, e := range entries {
		if e.key() == k {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) MarkMerged(ctx context.Context, collection, document, group string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	k := key{collection, document, group}
	for _, e := range entries {
		if e.key() == k {
			return nil
		}
	}
	entries = append(entries, Entry{
		ID:         uuid.NewString(),
		RunID:      s.runID,
		Collection: collection,
		Document:   document,
		Group:      group,
		MergedAt:   s.now().UTC(),
	})
	return s.store(entries)
}

func (s *FileStore) Forget(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Collection != collection {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.store(kept)
}

func (s *FileStore) Entries(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileStore) load() ([]Entry, error) {
	data, err := util.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read ledger")
	}
	var f fileJSON
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse ledger %s", s.path)
	}
	if f.Version != fileVersion {
		return nil, errors.New(errors.ErrCodeUnsupported, "ledger %s has version %d", s.path, f.Version)
	}
	return f.Entries, nil
}

func (s *FileStore) store(entries []Entry) error {
	data, err := json.MarshalIndent(fileJSON{Version: fileVersion, Entries: entries}, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal ledger")
	}
	if err := util.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write ledger")
	}
	return nil
}

var _ Store = (*FileStore)(nil)

// Package collection provides folder-like containers of documents.
//
// A [Collection] is a directory on a billy filesystem. Members are listed in
// filename order so that every traversal within a run is stable. Only files
// matching a [Predicate] count as members; by default that is non-hidden
// files with the layered-document extension.
package collection

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// Predicate reports whether a directory entry is a member of a collection.
type Predicate func(fi os.FileInfo) bool

// Accept returns a predicate matching regular, non-hidden files whose
// extension equals one of exts, case-insensitively.
func Accept(exts ...string) Predicate {
	return func(fi os.FileInfo) bool {
		if fi.IsDir() || Hidden(fi.Name()) {
			return false
		}
		ext := path.Ext(fi.Name())
		for _, e := range exts {
			if strings.EqualFold(ext, e) {
				return true
			}
		}
		return false
	}
}

// Predicates for the two kinds of collection the pipeline reads.
var (
	Documents = Accept(document.Ext)
	Images    = Accept(".jpg", ".jpeg", ".png", ".gif")
)

// Hidden reports whether name is a hidden file or directory.
func Hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Collection is a directory of documents.
type Collection struct {
	fs  billy.Filesystem
	dir string
}

// Open returns the existing collection at dir. It fails with
// SOURCE_COLLECTION if dir is missing or not a directory.
func Open(fs billy.Filesystem, dir string) (*Collection, error) {
	fi, err := fs.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceCollection, err, "open collection %s", dir)
	}
	if !fi.IsDir() {
		return nil, errors.New(errors.ErrCodeSourceCollection, "open collection %s: not a directory", dir)
	}
	return &Collection{fs: fs, dir: dir}, nil
}

// Ensure returns the collection at dir, creating it if absent.
func Ensure(fs billy.Filesystem, dir string) (*Collection, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create collection %s", dir)
	}
	return Open(fs, dir)
}

// Name returns the collection's directory name.
func (c *Collection) Name() string { return path.Base(c.dir) }

// Dir returns the collection's directory.
func (c *Collection) Dir() string { return c.dir }

// FS returns the filesystem backing the collection.
func (c *Collection) FS() billy.Filesystem { return c.fs }

// Path returns the path of the member named name.
func (c *Collection) Path(name string) string { return path.Join(c.dir, name) }

// List returns the names of all layered documents in the collection.
func (c *Collection) List() ([]string, error) {
	return c.ListFunc(Documents)
}

// ListFunc returns the names of members matching accept, sorted by name.
func (c *Collection) ListFunc(accept Predicate) ([]string, error) {
	entries, err := c.fs.ReadDir(c.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceCollection, err, "list collection %s", c.dir)
	}
	var names []string
	for _, fi := range entries {
		if accept(fi) {
			names = append(names, fi.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Sub returns the immediate non-hidden sub-directories as collections,
// sorted by name.
func (c *Collection) Sub() ([]*Collection, error) {
	entries, err := c.fs.ReadDir(c.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceCollection, err, "list collection %s", c.dir)
	}
	var subs []*Collection
	for _, fi := range entries {
		if fi.IsDir() && !Hidden(fi.Name()) {
			subs = append(subs, &Collection{fs: c.fs, dir: path.Join(c.dir, fi.Name())})
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].dir < subs[j].dir })
	return subs, nil
}

// Contains reports whether the collection has a member named name.
func (c *Collection) Contains(name string) bool {
	fi, err := c.fs.Stat(c.Path(name))
	return err == nil && !fi.IsDir()
}

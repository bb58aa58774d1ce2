// Package engine owns open documents and the single active-document token.
//
// All document mutation goes through an [Engine]. Exactly one open document
// may be active at a time, and operations that act "from" a document require
// that document to be active first:
//
//	tmpl, _ := eng.Open("template.ldoc")
//	doc, _ := eng.Open("plain/a.ldoc")
//	_ = eng.Activate(tmpl)
//	_, _ = eng.Duplicate(tmpl, group, doc, engine.PlaceAtBeginning)
//	_ = eng.Activate(doc)
//	_ = eng.Save(doc)
//	_ = eng.Close(doc)
//
// Callers never assume which document a previous caller left active; they
// select the one they need. Methods are safe for concurrent use, but the
// pipeline drives the engine from a single goroutine.
package engine

import (
	"bytes"
	"io"
	"path"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// Placement selects where a duplicated layer lands in the target's stack.
type Placement int

const (
	// PlaceAtBeginning puts the layer above all existing top-level layers.
	PlaceAtBeginning Placement = iota
	// PlaceAtEnd puts the layer below all existing top-level layers.
	PlaceAtEnd
)

// Handle refers to one open document.
type Handle struct {
	path   string
	doc    *document.Document
	dirty  bool
	closed bool
}

// Path returns the filesystem path the document saves to.
func (h *Handle) Path() string { return h.path }

// Name returns the document's filename.
func (h *Handle) Name() string { return path.Base(h.path) }

// Document returns the open document. Mutations are persisted by Save.
func (h *Handle) Document() *document.Document { return h.doc }

// Dirty reports whether the document has unsaved changes made through the
// engine. Direct edits to Document() should be followed by MarkDirty.
func (h *Handle) Dirty() bool { return h.dirty }

// MarkDirty flags the document as modified.
func (h *Handle) MarkDirty() { h.dirty = true }

// Engine manages open documents on a filesystem.
type Engine struct {
	fs     billy.Filesystem
	logger *log.Logger

	mu     sync.Mutex
	open   map[*Handle]struct{}
	active *Handle
}

// New creates an engine over fs. If logger is nil, logging is discarded.
func New(fs billy.Filesystem, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{
		fs:     fs,
		logger: logger,
		open:   make(map[*Handle]struct{}),
	}
}

// FS returns the filesystem the engine reads and writes.
func (e *Engine) FS() billy.Filesystem { return e.fs }

// Open reads the document at p and makes it the active document.
func (e *Engine) Open(p string) (*Handle, error) {
	data, err := util.ReadFile(e.fs, p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnreadableMember, err, "open %s", p)
	}
	doc, err := document.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "open %s", p)
	}
	doc.Name = path.Base(p)

	h := &Handle{path: p, doc: doc}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[h] = struct{}{}
	e.active = h
	e.logger.Debug("opened document", "path", p, "layers", len(doc.Layers))
	return h, nil
}

// Create registers a new, unsaved document that will save to p and makes it
// the active document.
func (e *Engine) Create(doc *document.Document, p string) *Handle {
	doc.Name = path.Base(p)
	h := &Handle{path: p, doc: doc, dirty: true}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[h] = struct{}{}
	e.active = h
	return h
}

// Activate makes h the active document.
func (e *Engine) Activate(h *Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkOpen(h); err != nil {
		return err
	}
	e.active = h
	return nil
}

// Active returns the active document, or nil if none is open.
func (e *Engine) Active() *Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// OpenCount returns the number of open documents.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.open)
}

// Duplicate copies node, which must be a layer of src, into dst. src must be
// the active document. The copy is a deep copy of the whole subtree; src is
// not modified. The active document is unchanged.
func (e *Engine) Duplicate(src *Handle, node document.Node, dst *Handle, at Placement) (document.Node, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(src); err != nil {
		return nil, err
	}
	if err := e.checkOpen(dst); err != nil {
		return nil, err
	}
	if e.active != src {
		return nil, errors.New(errors.ErrCodeNotActive, "duplicate from %s: document is not active", src.Name())
	}
	if !contains(src.doc, node) {
		return nil, errors.New(errors.ErrCodeMerge, "layer %q is not part of %s", nodeName(node), src.Name())
	}

	dup := document.Clone(node)
	switch at {
	case PlaceAtBeginning:
		dst.doc.InsertTop(dup)
	case PlaceAtEnd:
		dst.doc.Append(dup)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown placement %d", at)
	}
	dst.dirty = true
	return dup, nil
}

// Save writes h to its path. h must be the active document.
func (e *Engine) Save(h *Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(h); err != nil {
		return err
	}
	if e.active != h {
		return errors.New(errors.ErrCodeNotActive, "save %s: document is not active", h.Name())
	}

	var buf bytes.Buffer
	if err := document.Encode(&buf, h.doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "save %s", h.path)
	}
	if dir := path.Dir(h.path); dir != "." && dir != "/" {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "save %s", h.path)
		}
	}
	if err := util.WriteFile(e.fs, h.path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save %s", h.path)
	}
	h.dirty = false
	e.logger.Debug("saved document", "path", h.path)
	return nil
}

// Close releases h, discarding unsaved changes. Closing the active document
// leaves no document active. Closing a closed handle is a no-op.
func (e *Engine) Close(h *Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h == nil || h.closed {
		return nil
	}
	if h.dirty {
		e.logger.Debug("discarding unsaved changes", "path", h.path)
	}
	h.closed = true
	delete(e.open, h)
	if e.active == h {
		e.active = nil
	}
	return nil
}

// CloseAll releases every open document without saving.
func (e *Engine) CloseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for h := range e.open {
		h.closed = true
	}
	e.open = make(map[*Handle]struct{})
	e.active = nil
}

func (e *Engine) checkOpen(h *Handle) error {
	if h == nil {
		return errors.New(errors.ErrCodeNotOpen, "nil document handle")
	}
	if _, ok := e.open[h]; !ok || h.closed {
		return errors.New(errors.ErrCodeNotOpen, "document %s is not open", h.Name())
	}
	return nil
}

// contains reports whether node is a layer of doc, compared by identity.
func contains(doc *document.Document, node document.Node) bool {
	if node == nil {
		return false
	}
	found := false
	doc.Walk(func(n document.Node, _ int) bool {
		if n == node {
			found = true
		}
		return !found
	})
	return found
}

func nodeName(n document.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name()
}

package engine

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

func writeDoc(t *testing.T, e *Engine, p string, d *document.Document) {
	t.Helper()
	data, err := document.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := util.WriteFile(e.FS(), p, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func newTemplate() *document.Document {
	d := document.New("layers.ldoc", 10, 10)
	d.Append(document.NewGroup("label", document.NewText("caption", "XYZ")))
	d.Append(document.NewGroup("logo1"))
	return d
}

func newTarget(name string) *document.Document {
	d := document.New(name, 10, 10)
	d.Append(document.NewPixel("Background", nil))
	return d
}

func TestOpenMakesActive(t *testing.T) {
	e := New(memfs.New(), nil)
	writeDoc(t, e, "a.ldoc", newTarget("a.ldoc"))

	h, err := e.Open("a.ldoc")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if e.Active() != h {
		t.Error("opened document should be active")
	}
	if h.Document().Name != "a.ldoc" {
		t.Errorf("Name = %q, want a.ldoc", h.Document().Name)
	}
}

func TestOpenErrors(t *testing.T) {
	e := New(memfs.New(), nil)
	if _, err := e.Open("missing.ldoc"); !errors.Is(err, errors.ErrCodeUnreadableMember) {
		t.Errorf("missing file: got %v, want UNREADABLE_MEMBER", err)
	}

	_ = util.WriteFile(e.FS(), "bad.ldoc", []byte("garbage"), 0o644)
	if _, err := e.Open("bad.ldoc"); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("corrupt file: got %v, want INVALID_DOCUMENT", err)
	}
	if e.OpenCount() != 0 {
		t.Errorf("failed opens left %d documents open", e.OpenCount())
	}
}

func TestDuplicateRequiresActiveSource(t *testing.T) {
	e := New(memfs.New(), nil)
	writeDoc(t, e, "layers.ldoc", newTemplate())
	writeDoc(t, e, "a.ldoc", newTarget("a.ldoc"))

	tmpl, _ := e.Open("layers.ldoc")
	doc, _ := e.Open("a.ldoc")
	group := tmpl.Document().Layers[0]

	_, err := e.Duplicate(tmpl, group, doc, PlaceAtBeginning)
	if !errors.Is(err, errors.ErrCodeNotActive) {
		t.Fatalf("Duplicate with inactive source: got %v, want NOT_ACTIVE", err)
	}

	if err := e.Activate(tmpl); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	dup, err := e.Duplicate(tmpl, group, doc, PlaceAtBeginning)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup == group {
		t.Error("Duplicate returned the source node instead of a copy")
	}
	if got := doc.Document().Layers[0].Name(); got != "label" {
		t.Errorf("top layer = %q, want label", got)
	}
	if len(doc.Document().Layers) != 2 {
		t.Errorf("target has %d layers, want 2", len(doc.Document().Layers))
	}
	if len(tmpl.Document().Layers) != 2 {
		t.Error("source document was modified")
	}
	if e.Active() != tmpl {
		t.Error("Duplicate changed the active document")
	}
	if !doc.Dirty() {
		t.Error("target should be dirty after Duplicate")
	}
}

func TestDuplicatePlaceAtEnd(t *testing.T) {
	e := New(memfs.New(), nil)
	tmpl := e.Create(newTemplate(), "layers.ldoc")
	doc := e.Create(newTarget("a.ldoc"), "a.ldoc")
	_ = e.Activate(tmpl)

	if _, err := e.Duplicate(tmpl, tmpl.Document().Layers[1], doc, PlaceAtEnd); err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	layers := doc.Document().Layers
	if layers[len(layers)-1].Name() != "logo1" {
		t.Errorf("bottom layer = %q, want logo1", layers[len(layers)-1].Name())
	}
}

func TestDuplicateForeignLayer(t *testing.T) {
	e := New(memfs.New(), nil)
	tmpl := e.Create(newTemplate(), "layers.ldoc")
	doc := e.Create(newTarget("a.ldoc"), "a.ldoc")
	_ = e.Activate(tmpl)

	foreign := document.NewGroup("label")
	if _, err := e.Duplicate(tmpl, foreign, doc, PlaceAtBeginning); !errors.Is(err, errors.ErrCodeMerge) {
		t.Errorf("foreign layer: got %v, want MERGE", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	e := New(memfs.New(), nil)
	h := e.Create(newTarget("a.ldoc"), "out/label/a.ldoc")

	if err := e.Save(h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if h.Dirty() {
		t.Error("Save should clear dirty flag")
	}
	_ = e.Close(h)

	got, err := e.Open("out/label/a.ldoc")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(got.Document().Layers) != 1 {
		t.Errorf("reopened document has %d layers, want 1", len(got.Document().Layers))
	}
}

func TestSaveRequiresActive(t *testing.T) {
	e := New(memfs.New(), nil)
	a := e.Create(newTarget("a.ldoc"), "a.ldoc")
	e.Create(newTarget("b.ldoc"), "b.ldoc")

	if err := e.Save(a); !errors.Is(err, errors.ErrCodeNotActive) {
		t.Errorf("Save inactive: got %v, want NOT_ACTIVE", err)
	}
}

func TestCloseReleasesActive(t *testing.T) {
	e := New(memfs.New(), nil)
	h := e.Create(newTarget("a.ldoc"), "a.ldoc")

	if err := e.Close(h); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if e.Active() != nil {
		t.Error("closing the active document should clear the active token")
	}
	if err := e.Activate(h); !errors.Is(err, errors.ErrCodeNotOpen) {
		t.Errorf("Activate closed: got %v, want NOT_OPEN", err)
	}
	if err := e.Close(h); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if e.OpenCount() != 0 {
		t.Errorf("OpenCount = %d, want 0", e.OpenCount())
	}
}

func TestCloseAll(t *testing.T) {
	e := New(memfs.New(), nil)
	e.Create(newTarget("a.ldoc"), "a.ldoc")
	e.Create(newTarget("b.ldoc"), "b.ldoc")
	e.CloseAll()
	if e.OpenCount() != 0 || e.Active() != nil {
		t.Error("CloseAll should release everything")
	}
}

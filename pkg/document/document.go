package document

import (
	"path"
	"strings"
)

// Ext is the file extension of persisted layered documents.
const Ext = ".ldoc"

// DefaultDPI is the resolution recorded on documents that do not set one.
const DefaultDPI = 72

// Document is a layered image document.
type Document struct {
	// Name is the document's filename, including the extension.
	Name   string
	Width  int
	Height int
	DPI    int

	// Layers holds the top-level layers, topmost first.
	Layers []Node
}

// New creates an empty document with the given canvas size.
func New(name string, width, height int) *Document {
	return &Document{Name: name, Width: width, Height: height, DPI: DefaultDPI}
}

// BaseName returns the document name without its final extension.
func (d *Document) BaseName() string {
	return StripExt(d.Name)
}

// StripExt removes the final extension from a file name.
func StripExt(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSuffix(name, path.Ext(name))
}

// InsertTop places n above every existing top-level layer.
func (d *Document) InsertTop(n Node) {
	d.Layers = append([]Node{n}, d.Layers...)
}

// Append places n below every existing top-level layer.
func (d *Document) Append(n Node) {
	d.Layers = append(d.Layers, n)
}

// Layer returns the first top-level layer with the given name.
func (d *Document) Layer(name string) (Node, bool) {
	for _, n := range d.Layers {
		if n.Name() == name {
			return n, true
		}
	}
	return nil, false
}

// FindGroup returns the first group named name. Top-level layers are searched
// first, then the direct children of each top-level group.
func (d *Document) FindGroup(name string) (*Group, bool) {
	for _, n := range d.Layers {
		if g, ok := n.(*Group); ok && g.Name() == name {
			return g, true
		}
	}
	for _, n := range d.Layers {
		parent, ok := n.(*Group)
		if !ok {
			continue
		}
		for _, c := range parent.Children {
			if g, ok := c.(*Group); ok && g.Name() == name {
				return g, true
			}
		}
	}
	return nil, false
}

// Groups returns the top-level groups in stacking order.
func (d *Document) Groups() []*Group {
	var out []*Group
	for _, n := range d.Layers {
		if g, ok := n.(*Group); ok {
			out = append(out, g)
		}
	}
	return out
}

// Walk calls fn for every layer in depth-first order, parents before children.
// depth is 0 for top-level layers. Returning false from fn stops descent into
// that node's children.
func (d *Document) Walk(fn func(n Node, depth int) bool) {
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for _, n := range nodes {
			if !fn(n, depth) {
				continue
			}
			if g, ok := n.(*Group); ok {
				walk(g.Children, depth+1)
			}
		}
	}
	walk(d.Layers, 0)
}

// Count returns the total number of layers, including nested ones.
func (d *Document) Count() int {
	n := 0
	d.Walk(func(Node, int) bool { n++; return true })
	return n
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := *d
	out.Layers = make([]Node, len(d.Layers))
	for i, n := range d.Layers {
		out.Layers[i] = n.clone()
	}
	return &out
}

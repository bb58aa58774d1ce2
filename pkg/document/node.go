package document

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// Kind identifies the concrete type of a layer.
type Kind int

const (
	KindGroup Kind = iota
	KindText
	KindPixel
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindText:
		return "text"
	case KindPixel:
		return "pixel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a single layer in a document. Implemented only by *Group, *Text
// and *Pixel.
type Node interface {
	Name() string
	Kind() Kind
	Visible() bool
	SetVisible(bool)

	// clone returns a deep copy with no shared mutable state.
	clone() Node
}

// Clone returns a deep copy of n. Group children are copied recursively and
// keep their order.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}
	return n.clone()
}

// layer carries the attributes shared by every node type.
type layer struct {
	name   string
	hidden bool
}

func (l *layer) Name() string      { return l.name }
func (l *layer) Visible() bool     { return !l.hidden }
func (l *layer) SetVisible(v bool) { l.hidden = !v }

// =============================================================================
// Group
// =============================================================================

// Group owns an ordered list of child layers. Children[0] is the topmost.
type Group struct {
	layer
	Children []Node
}

// NewGroup creates a visible group with the given children.
func NewGroup(name string, children ...Node) *Group {
	return &Group{layer: layer{name: name}, Children: children}
}

func (g *Group) Kind() Kind { return KindGroup }

func (g *Group) clone() Node {
	out := &Group{layer: g.layer}
	if g.Children != nil {
		out.Children = make([]Node, len(g.Children))
		for i, c := range g.Children {
			out.Children[i] = c.clone()
		}
	}
	return out
}

// Texts returns the direct children of g that are text layers.
func (g *Group) Texts() []*Text {
	var out []*Text
	for _, c := range g.Children {
		if t, ok := c.(*Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// Text
// =============================================================================

// Text is a leaf layer whose payload is rendered text.
//
// X and Y locate the anchor point of the text in document pixels. The anchor
// is the horizontal center and vertical baseline-center of the rendered line.
type Text struct {
	layer
	Content string
	X, Y    float64
	Size    float64 // points at 72 dpi
	Color   string  // #rrggbb or #rrggbbaa
}

// NewText creates a visible text layer.
func NewText(name, content string) *Text {
	return &Text{layer: layer{name: name}, Content: content, Size: DefaultTextSize, Color: DefaultTextColor}
}

// Default text attributes for layers that do not set them.
const (
	DefaultTextSize  = 48
	DefaultTextColor = "#000000"
)

func (t *Text) Kind() Kind { return KindText }

func (t *Text) clone() Node {
	c := *t
	return &c
}

// =============================================================================
// Pixel
// =============================================================================

// Pixel is a leaf layer holding raster content placed at an offset.
type Pixel struct {
	layer
	X, Y int
	img  *image.NRGBA
}

// NewPixel creates a visible pixel layer. The image is copied.
func NewPixel(name string, img image.Image) *Pixel {
	return &Pixel{layer: layer{name: name}, img: toNRGBA(img)}
}

func (p *Pixel) Kind() Kind { return KindPixel }

// Image returns the layer's raster data. Callers must not modify it.
func (p *Pixel) Image() *image.NRGBA { return p.img }

// SetImage replaces the layer's raster data with a copy of img.
func (p *Pixel) SetImage(img image.Image) { p.img = toNRGBA(img) }

// Bounds returns the layer rectangle in document coordinates.
func (p *Pixel) Bounds() image.Rectangle {
	if p.img == nil {
		return image.Rectangle{}
	}
	return p.img.Bounds().Sub(p.img.Bounds().Min).Add(image.Pt(p.X, p.Y))
}

func (p *Pixel) clone() Node {
	c := *p
	c.img = toNRGBA(p.img)
	return &c
}

// encodePNG returns the layer image as PNG bytes.
func (p *Pixel) encodePNG() ([]byte, error) {
	if p.img == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
)

// Format identifies the document encoding.
const (
	Format  = "stickerpack/ldoc"
	Version = 1
)

// maxDepth bounds layer nesting on decode.
const maxDepth = 16

type fileJSON struct {
	Format  string      `json:"format"`
	Version int         `json:"version"`
	Name    string      `json:"name,omitempty"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	DPI     int         `json:"dpi,omitempty"`
	Layers  []layerJSON `json:"layers"`
}

type layerJSON struct {
	Kind    string      `json:"kind"`
	Name    string      `json:"name"`
	Hidden  bool        `json:"hidden,omitempty"`
	Layers  []layerJSON `json:"layers,omitempty"`
	Content *string     `json:"content,omitempty"`
	X       float64     `json:"x,omitempty"`
	Y       float64     `json:"y,omitempty"`
	Size    float64     `json:"size,omitempty"`
	Color   string      `json:"color,omitempty"`
	PNG     []byte      `json:"png,omitempty"`
}

// Encode writes d to w.
func Encode(w io.Writer, d *Document) error {
	out := fileJSON{
		Format:  Format,
		Version: Version,
		Name:    d.Name,
		Width:   d.Width,
		Height:  d.Height,
		DPI:     d.DPI,
	}
	layers, err := encodeLayers(d.Layers)
	if err != nil {
		return err
	}
	out.Layers = layers

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the encoded form of d.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeLayers(nodes []Node) ([]layerJSON, error) {
	out := make([]layerJSON, 0, len(nodes))
	for _, n := range nodes {
		lj := layerJSON{Kind: n.Kind().String(), Name: n.Name(), Hidden: !n.Visible()}
		switch n := n.(type) {
		case *Group:
			children, err := encodeLayers(n.Children)
			if err != nil {
				return nil, err
			}
			lj.Layers = children
		case *Text:
			content := n.Content
			lj.Content = &content
			lj.X, lj.Y = n.X, n.Y
			lj.Size = n.Size
			lj.Color = n.Color
		case *Pixel:
			data, err := n.encodePNG()
			if err != nil {
				return nil, fmt.Errorf("layer %q: %w", n.Name(), err)
			}
			lj.X, lj.Y = float64(n.X), float64(n.Y)
			lj.PNG = data
		}
		out = append(out, lj)
	}
	return out, nil
}

// Decode reads a document from r. The returned document's Name is taken from
// the payload; callers that know the filename should overwrite it.
func Decode(r io.Reader) (*Document, error) {
	var in fileJSON
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if in.Format != Format {
		return nil, fmt.Errorf("decode: unknown format %q", in.Format)
	}
	if in.Version > Version {
		return nil, fmt.Errorf("decode: unsupported version %d", in.Version)
	}
	layers, err := decodeLayers(in.Layers, 0)
	if err != nil {
		return nil, err
	}
	d := &Document{
		Name:   in.Name,
		Width:  in.Width,
		Height: in.Height,
		DPI:    in.DPI,
		Layers: layers,
	}
	if d.DPI == 0 {
		d.DPI = DefaultDPI
	}
	return d, nil
}

// Unmarshal decodes a document from data.
func Unmarshal(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

func decodeLayers(in []layerJSON, depth int) ([]Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("decode: layers nested deeper than %d", maxDepth)
	}
	out := make([]Node, 0, len(in))
	for _, lj := range in {
		n, err := decodeLayer(lj, depth)
		if err != nil {
			return nil, err
		}
		n.SetVisible(!lj.Hidden)
		out = append(out, n)
	}
	return out, nil
}

func decodeLayer(lj layerJSON, depth int) (Node, error) {
	switch lj.Kind {
	case "group":
		children, err := decodeLayers(lj.Layers, depth+1)
		if err != nil {
			return nil, err
		}
		return NewGroup(lj.Name, children...), nil
	case "text":
		t := NewText(lj.Name, "")
		if lj.Content != nil {
			t.Content = *lj.Content
		}
		t.X, t.Y = lj.X, lj.Y
		if lj.Size > 0 {
			t.Size = lj.Size
		}
		if lj.Color != "" {
			t.Color = lj.Color
		}
		return t, nil
	case "pixel":
		p := &Pixel{layer: layer{name: lj.Name}, X: int(lj.X), Y: int(lj.Y)}
		if len(lj.PNG) > 0 {
			img, err := png.Decode(bytes.NewReader(lj.PNG))
			if err != nil {
				return nil, fmt.Errorf("decode: layer %q: %w", lj.Name, err)
			}
			p.img = toNRGBA(img)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("decode: layer %q: unknown kind %q", lj.Name, lj.Kind)
	}
}

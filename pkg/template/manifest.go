package template

import (
	"bytes"
	"fmt"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/disintegration/imaging"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/document"
)

// Manifest is the TOML form of a template.
//
//	width = 618
//	height = 618
//
//	[[group]]
//	name = "label"
//
//	  [[group.layer]]
//	  kind = "text"
//	  name = "caption"
//	  content = "XYZ"
//	  x = 309.0
//	  y = 580.0
//	  size = 64.0
//	  color = "#ffffff"
//
//	[[group]]
//	name = "logo1"
//	visible = false
//
//	  [[group.layer]]
//	  kind = "pixel"
//	  name = "heart"
//	  src = "heart.png"
type Manifest struct {
	Width  int             `toml:"width"`
	Height int             `toml:"height"`
	Groups []ManifestGroup `toml:"group"`
}

// ManifestGroup is a top-level template group.
type ManifestGroup struct {
	Name    string          `toml:"name"`
	Visible *bool           `toml:"visible"`
	Layers  []ManifestLayer `toml:"layer"`
}

// ManifestLayer is a layer inside a template group.
type ManifestLayer struct {
	Kind    string  `toml:"kind"`
	Name    string  `toml:"name"`
	Visible *bool   `toml:"visible"`
	Content string  `toml:"content"`
	X       float64 `toml:"x"`
	Y       float64 `toml:"y"`
	Size    float64 `toml:"size"`
	Color   string  `toml:"color"`
	Src     string  `toml:"src"`
}

// ParseManifest decodes a TOML template manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// LoadManifest reads the manifest at p and builds the template document.
// Pixel sources are resolved relative to the manifest's directory.
func LoadManifest(fs billy.Filesystem, p string) (*document.Document, error) {
	data, err := util.ReadFile(fs, p)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	return m.Document(path.Base(p), func(src string) ([]byte, error) {
		return util.ReadFile(fs, path.Join(path.Dir(p), src))
	})
}

// Document converts the manifest into a layered document. readSrc loads the
// bytes of pixel layer sources.
func (m *Manifest) Document(name string, readSrc func(string) ([]byte, error)) (*document.Document, error) {
	doc := document.New(name, m.Width, m.Height)
	for _, mg := range m.Groups {
		g := document.NewGroup(mg.Name)
		g.SetVisible(visible(mg.Visible))
		for _, ml := range mg.Layers {
			n, err := ml.node(readSrc)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", mg.Name, err)
			}
			g.Children = append(g.Children, n)
		}
		doc.Append(g)
	}
	return doc, nil
}

func (ml ManifestLayer) node(readSrc func(string) ([]byte, error)) (document.Node, error) {
	var n document.Node
	switch ml.Kind {
	case "text":
		t := document.NewText(ml.Name, ml.Content)
		t.X, t.Y = ml.X, ml.Y
		if ml.Size > 0 {
			t.Size = ml.Size
		}
		if ml.Color != "" {
			t.Color = ml.Color
		}
		n = t
	case "pixel":
		if ml.Src == "" {
			return nil, fmt.Errorf("pixel layer %q: src is required", ml.Name)
		}
		data, err := readSrc(ml.Src)
		if err != nil {
			return nil, fmt.Errorf("pixel layer %q: %w", ml.Name, err)
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("pixel layer %q: %w", ml.Name, err)
		}
		px := document.NewPixel(ml.Name, img)
		px.X, px.Y = int(ml.X), int(ml.Y)
		n = px
	case "group":
		return nil, fmt.Errorf("layer %q: groups cannot be nested in a template group", ml.Name)
	default:
		return nil, fmt.Errorf("layer %q: unknown kind %q", ml.Name, ml.Kind)
	}
	n.SetVisible(visible(ml.Visible))
	return n, nil
}

func visible(v *bool) bool {
	return v == nil || *v
}

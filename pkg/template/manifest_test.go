package template

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/engine"
)

const manifestTOML = `
width = 100
height = 80

[[group]]
name = "plain"
visible = false

[[group]]
name = "label"

  [[group.layer]]
  kind = "text"
  name = "caption"
  content = "XYZ"
  x = 50.0
  y = 70.0
  size = 12.0
  color = "#ffffff"

  [[group.layer]]
  kind = "pixel"
  name = "ribbon"
  src = "ribbon.png"
  y = 60

[[group]]
name = "logo1"
`

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadManifest(t *testing.T) {
	fs := memfs.New()
	_ = util.WriteFile(fs, "tpl/layers.toml", []byte(manifestTOML), 0o644)
	_ = util.WriteFile(fs, "tpl/ribbon.png", pngBytes(t), 0o644)

	doc, err := LoadManifest(fs, "tpl/layers.toml")
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if doc.Width != 100 || doc.Height != 80 {
		t.Errorf("canvas = %dx%d, want 100x80", doc.Width, doc.Height)
	}
	if len(doc.Layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(doc.Layers))
	}
	if doc.Layers[0].Visible() {
		t.Error("plain should be hidden")
	}

	label := doc.Layers[1].(*document.Group)
	caption := label.Children[0].(*document.Text)
	if caption.Content != "XYZ" || caption.Size != 12 || caption.Color != "#ffffff" {
		t.Errorf("caption = %+v", caption)
	}
	ribbon := label.Children[1].(*document.Pixel)
	if ribbon.Y != 60 || ribbon.Image().Bounds().Dx() != 4 {
		t.Errorf("ribbon = %v at y=%d", ribbon.Image().Bounds(), ribbon.Y)
	}
}

func TestLoadActiveGroupsFromManifest(t *testing.T) {
	fs := memfs.New()
	_ = util.WriteFile(fs, "tpl/layers.toml", []byte(manifestTOML), 0o644)
	_ = util.WriteFile(fs, "tpl/ribbon.png", pngBytes(t), 0o644)

	e := engine.New(fs, nil)
	groups, err := LoadActiveGroups(context.Background(), e, "tpl/layers.toml", nil)
	if err != nil {
		t.Fatalf("LoadActiveGroups: %v", err)
	}
	if len(groups) != 2 || groups[0].Name != "label" || groups[1].Name != "logo1" {
		t.Errorf("groups = %+v", groups)
	}
}

func TestManifestErrors(t *testing.T) {
	noSrc := func(string) ([]byte, error) { return nil, nil }
	tests := []struct {
		name string
		toml string
	}{
		{"bad toml", "[[group"},
		{"unknown kind", "[[group]]\nname='a'\n[[group.layer]]\nkind='smart'\nname='x'"},
		{"nested group", "[[group]]\nname='a'\n[[group.layer]]\nkind='group'\nname='x'"},
		{"pixel without src", "[[group]]\nname='a'\n[[group.layer]]\nkind='pixel'\nname='x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.toml))
			if err == nil {
				_, err = m.Document("t.toml", noSrc)
			}
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

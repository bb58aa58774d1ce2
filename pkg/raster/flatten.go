package raster

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"path"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/errors"
	"github.com/matzehuels/stickerpack/pkg/fonts"
)

// Flatten composites the visible layers of d onto a transparent canvas of the
// document's size. Layers are painted from the bottom of the stack up; hidden
// groups hide their whole subtree.
func Flatten(d *document.Document) (*image.NRGBA, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, errors.New(errors.ErrCodeExport, "document %s has no canvas", d.Name)
	}
	canvas := imaging.New(d.Width, d.Height, color.NRGBA{})
	var err error
	canvas, err = paint(canvas, d.Layers, float64(d.DPI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "flatten %s", d.Name)
	}
	return canvas, nil
}

func paint(canvas *image.NRGBA, nodes []document.Node, dpi float64) (*image.NRGBA, error) {
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if !n.Visible() {
			continue
		}
		var err error
		switch n := n.(type) {
		case *document.Group:
			canvas, err = paint(canvas, n.Children, dpi)
		case *document.Pixel:
			if img := n.Image(); img != nil {
				canvas = imaging.Overlay(canvas, img, image.Pt(n.X, n.Y), 1.0)
			}
		case *document.Text:
			canvas, err = drawText(canvas, n, dpi)
		}
		if err != nil {
			return nil, err
		}
	}
	return canvas, nil
}

func drawText(canvas *image.NRGBA, t *document.Text, dpi float64) (*image.NRGBA, error) {
	if t.Content == "" {
		return canvas, nil
	}
	size := t.Size
	if size <= 0 {
		size = document.DefaultTextSize
	}
	face, err := fonts.Face(size, dpi)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dc := gg.NewContextForImage(canvas)
	dc.SetFontFace(face)
	hex := t.Color
	if hex == "" {
		hex = document.DefaultTextColor
	}
	dc.SetHexColor(hex)
	dc.DrawStringAnchored(t.Content, t.X, t.Y, 0.5, 0.5)
	return imaging.Clone(dc.Image()), nil
}

// EncodePNG writes img to w as PNG with its alpha channel.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// WritePNG writes img as a PNG file at p on fs, creating parent directories.
func WritePNG(fs billy.Filesystem, p string, img image.Image) error {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "encode %s", p)
	}
	if err := fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "create dir for %s", p)
	}
	if err := util.WriteFile(fs, p, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", p)
	}
	return nil
}

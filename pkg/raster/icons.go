package raster

import (
	"context"
	"fmt"
	"image"
	"path"

	"github.com/disintegration/imaging"
	"github.com/go-git/go-billy/v5"
)

// IconSpec is one entry of an icon size table.
type IconSpec struct {
	Width, Height int
}

// Name returns the output filename, e.g. "87x87.png".
func (s IconSpec) Name() string { return fmt.Sprintf("%dx%d.png", s.Width, s.Height) }

// SquareIcons are rendered from the square (1024×1024) source.
var SquareIcons = []IconSpec{
	{1024, 1024},
	{87, 87},
	{58, 58},
}

// RectIcons are rendered from the 4:3 (1024×768) source.
var RectIcons = []IconSpec{
	{1024, 768},
	{180, 135},
	{148, 110},
	{134, 100},
	{120, 90},
	{96, 72},
	{81, 60},
	{64, 48},
	{54, 40},
}

// Icons resizes src to every entry of specs and writes each as PNG into dir.
// It returns the written paths in table order.
func Icons(ctx context.Context, fs billy.Filesystem, src image.Image, specs []IconSpec, dir string) ([]string, error) {
	var written []string
	for _, s := range specs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		img := imaging.Resize(src, s.Width, s.Height, imaging.CatmullRom)
		if s.Width < src.Bounds().Dx() {
			img = imaging.Sharpen(img, 0.5)
		}
		p := path.Join(dir, s.Name())
		if err := WritePNG(fs, p, img); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

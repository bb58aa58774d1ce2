package raster

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/go-git/go-billy/v5"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// BackgroundLayer is the name of the single pixel layer in a baseline document.
const BackgroundLayer = "Background"

// OutputSize returns the size that scales w×h so the longer side equals max,
// keeping the aspect ratio. The shorter side is rounded and at least 1.
func OutputSize(w, h, max int) (int, int) {
	if w <= 0 || h <= 0 || max <= 0 {
		return 0, 0
	}
	if w >= h {
		return max, scaleSide(h, w, max)
	}
	return scaleSide(w, h, max), max
}

func scaleSide(short, long, max int) int {
	n := int(math.Round(float64(short) * float64(max) / float64(long)))
	if n < 1 {
		return 1
	}
	return n
}

// Resize scales img so its longer side equals max using a Lanczos filter.
// Smaller images are scaled up.
func Resize(img image.Image, max int) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h := OutputSize(b.Dx(), b.Dy(), max)
	if w == 0 {
		return nil, errors.New(errors.ErrCodeResize, "cannot resize %dx%d image to %d", b.Dx(), b.Dy(), max)
	}
	if w == b.Dx() && h == b.Dy() {
		return imaging.Clone(img), nil
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// Load decodes the image at p on fs, applying any EXIF orientation.
func Load(fs billy.Filesystem, p string) (image.Image, error) {
	f, err := fs.Open(p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnreadableMember, err, "open image %s", p)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResize, err, "decode image %s", p)
	}
	return img, nil
}

// Baseline returns a document the size of img with img as its only layer,
// named BackgroundLayer.
func Baseline(name string, img image.Image) *document.Document {
	b := img.Bounds()
	d := document.New(name, b.Dx(), b.Dy())
	d.DPI = document.DefaultDPI
	d.Append(document.NewPixel(BackgroundLayer, img))
	return d
}

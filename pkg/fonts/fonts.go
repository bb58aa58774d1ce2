// Package fonts provides the typeface used to rasterize text layers.
//
// The font is the Go Regular TrueType font from golang.org/x/image, compiled
// into the binary, so flattening needs no system fonts.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Family is the name reported for the embedded font.
const Family = "Go Regular"

var (
	regular     *truetype.Font
	regularErr  error
	regularOnce sync.Once
)

// Regular returns the parsed embedded font.
// The result is cached after first computation.
func Regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Face returns a face of the embedded font at size points, rendered at dpi.
func Face(size, dpi float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 72
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: dpi, Hinting: font.HintingFull}), nil
}

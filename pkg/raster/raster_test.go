package raster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/document"
)

func TestOutputSize(t *testing.T) {
	tests := []struct {
		w, h, max int
		wantW     int
		wantH     int
	}{
		{1000, 500, 618, 618, 309},
		{500, 1000, 618, 309, 618},
		{800, 800, 618, 618, 618},
		{100, 50, 618, 618, 309},
		{3000, 1, 618, 618, 1},
		{0, 10, 618, 0, 0},
		{10, 10, 0, 0, 0},
	}
	for _, tt := range tests {
		w, h := OutputSize(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("OutputSize(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestResizeLongerSide(t *testing.T) {
	src := imaging.New(40, 20, color.NRGBA{255, 0, 0, 255})
	got, err := Resize(src, 100)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if b := got.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("size = %v, want 100x50", b.Size())
	}
	if _, err := Resize(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 100); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestLoadAndBaseline(t *testing.T) {
	fs := memfs.New()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(4, 3, color.NRGBA{0, 0, 255, 255})); err != nil {
		t.Fatal(err)
	}
	_ = util.WriteFile(fs, "in/a.png", buf.Bytes(), 0o644)

	img, err := Load(fs, "in/a.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Baseline("a.ldoc", img)
	if d.Width != 4 || d.Height != 3 || d.DPI != 72 {
		t.Errorf("document = %dx%d @%d", d.Width, d.Height, d.DPI)
	}
	if len(d.Layers) != 1 || d.Layers[0].Name() != BackgroundLayer {
		t.Fatalf("layers = %v", d.Layers)
	}

	if _, err := Load(fs, "in/missing.png"); err == nil {
		t.Error("expected error for missing image")
	}
	_ = util.WriteFile(fs, "in/bad.png", []byte("nope"), 0o644)
	if _, err := Load(fs, "in/bad.png"); err == nil {
		t.Error("expected error for undecodable image")
	}
}

func TestFlattenStackingOrder(t *testing.T) {
	red := imaging.New(2, 2, color.NRGBA{255, 0, 0, 255})
	green := imaging.New(1, 1, color.NRGBA{0, 255, 0, 255})

	d := document.New("x.ldoc", 2, 2)
	top := document.NewPixel("top", green)
	hidden := document.NewGroup("hidden", document.NewPixel("blue", imaging.New(2, 2, color.NRGBA{0, 0, 255, 255})))
	hidden.SetVisible(false)
	d.Append(top)
	d.Append(hidden)
	d.Append(document.NewPixel("Background", red))

	img, err := Flatten(d)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("(0,0) = %v, want green on top", got)
	}
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("(1,1) = %v, want red background", got)
	}
}

func TestFlattenDrawsText(t *testing.T) {
	d := document.New("x.ldoc", 64, 64)
	txt := document.NewText("t", "A")
	txt.X, txt.Y = 32, 32
	d.Append(txt)

	img, err := Flatten(d)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	opaque := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if img.NRGBAAt(x, y).A > 0 {
				opaque++
			}
		}
	}
	if opaque == 0 {
		t.Error("text layer left the canvas empty")
	}
	if img.NRGBAAt(0, 0).A != 0 {
		t.Error("corner should stay transparent")
	}
}

func TestWritePNGKeepsAlpha(t *testing.T) {
	fs := memfs.New()
	src := imaging.New(2, 2, color.NRGBA{10, 20, 30, 128})
	if err := WritePNG(fs, "out/png/x.png", src); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	f, _ := fs.Open("out/png/x.png")
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a>>8 != 128 {
		t.Errorf("alpha = %d, want 128", a>>8)
	}
}

func TestIcons(t *testing.T) {
	fs := memfs.New()
	src := imaging.New(1024, 768, color.NRGBA{200, 100, 50, 255})
	paths, err := Icons(context.Background(), fs, src, RectIcons, "icons")
	if err != nil {
		t.Fatalf("Icons: %v", err)
	}
	if len(paths) != len(RectIcons) {
		t.Fatalf("wrote %d icons, want %d", len(paths), len(RectIcons))
	}
	for i, s := range RectIcons {
		f, err := fs.Open(paths[i])
		if err != nil {
			t.Fatalf("open %s: %v", paths[i], err)
		}
		cfg, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", paths[i], err)
		}
		if cfg.Width != s.Width || cfg.Height != s.Height {
			t.Errorf("%s = %dx%d", paths[i], cfg.Width, cfg.Height)
		}
	}
	if paths[1] != "icons/180x135.png" {
		t.Errorf("paths[1] = %q", paths[1])
	}
}

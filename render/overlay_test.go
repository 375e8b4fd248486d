package render

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestAnnotate(t *testing.T) {
	src := imaging.New(200, 80, color.White)
	out := Annotate(src, "Label: goldfish, 90.00%")

	if out.Bounds().Size() != src.Bounds().Size() {
		t.Fatalf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}

	red := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 200; x++ {
			r, g, b, _ := out.At(x, y).RGBA()
			if r > 0xc000 && g < 0x4000 && b < 0x4000 {
				red++
			}
		}
	}
	if red == 0 {
		t.Error("no caption pixels drawn near the top-left corner")
	}

	// The source is left untouched.
	if c := color.NRGBAModel.Convert(src.At(10, 20)).(color.NRGBA); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("source pixel changed to %v", c)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotated.png")
	img := Annotate(imaging.New(32, 32, color.Black), "x")
	if err := Save(path, img); err != nil {
		t.Fatal(err)
	}
	back, err := imaging.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Bounds() != image.Rect(0, 0, 32, 32) {
		t.Errorf("bounds = %v", back.Bounds())
	}

	if err := Save(filepath.Join(t.TempDir(), "out.unknown"), img); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

package imgproc

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// TestFromImageNormalization verifies 8-bit channel values are divided
// by 255
func TestFromImageNormalization(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 128, B: 255, A: 255})

	im := FromImage(src)

	if im.Rows != 1 || im.Cols != 2 {
		t.Fatalf("Expected 1x2 image, got %dx%d", im.Rows, im.Cols)
	}
	if im.At(0, 0, 0) != 1.0 {
		t.Errorf("Expected R=1.0 at (0,0), got %g", im.At(0, 0, 0))
	}
	if math.Abs(im.At(0, 0, 2)-51.0/255.0) > 1e-12 {
		t.Errorf("Expected B=51/255 at (0,0), got %g", im.At(0, 0, 2))
	}
	if math.Abs(im.At(0, 1, 1)-128.0/255.0) > 1e-12 {
		t.Errorf("Expected G=128/255 at (0,1), got %g", im.At(0, 1, 1))
	}
}

// TestCropRoundTrip verifies that a crop matches a manual re-slice of the
// source image
func TestCropRoundTrip(t *testing.T) {
	im := NewImage(8, 10)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			for c := 0; c < 3; c++ {
				im.Set(y, x, c, float64(y*100+x*10+c)/1000.0)
			}
		}
	}

	crop := im.Crop(2, 4, 4)
	if crop.Rows != 4 || crop.Cols != 4 {
		t.Fatalf("Expected 4x4 crop, got %dx%d", crop.Rows, crop.Cols)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			for c := 0; c < 3; c++ {
				if crop.At(y, x, c) != im.At(2+y, 4+x, c) {
					t.Fatalf("Crop mismatch at (%d,%d,%d): got %g, want %g",
						y, x, c, crop.At(y, x, c), im.At(2+y, 4+x, c))
				}
			}
		}
	}

	// The crop owns its pixels: writing to it must not alias the source
	crop.Set(0, 0, 0, -1)
	if im.At(2, 4, 0) == -1 {
		t.Errorf("Crop aliases the source image")
	}
}

// TestShave verifies half-open range trimming
func TestShave(t *testing.T) {
	im := NewImage(30, 40)
	im.Set(10, 10, 0, 0.75)

	out := im.Shave(10, 20, 10, 30)
	if out.Rows != 10 || out.Cols != 20 {
		t.Fatalf("Expected 10x20 after shave, got %dx%d", out.Rows, out.Cols)
	}
	if out.At(0, 0, 0) != 0.75 {
		t.Errorf("Expected shaved origin to hold source value 0.75, got %g", out.At(0, 0, 0))
	}
}

// TestGray verifies the BT.601 luminance weights
func TestGray(t *testing.T) {
	im := NewImage(1, 3)
	im.Set(0, 0, 0, 1) // pure red
	im.Set(0, 1, 1, 1) // pure green
	im.Set(0, 2, 2, 1) // pure blue

	g := im.Gray()
	if math.Abs(g.At(0, 0)-0.299) > 1e-12 {
		t.Errorf("Expected red luma 0.299, got %g", g.At(0, 0))
	}
	if math.Abs(g.At(0, 1)-0.587) > 1e-12 {
		t.Errorf("Expected green luma 0.587, got %g", g.At(0, 1))
	}
	if math.Abs(g.At(0, 2)-0.114) > 1e-12 {
		t.Errorf("Expected blue luma 0.114, got %g", g.At(0, 2))
	}
}

// TestSaveLoadRoundTrip verifies images built from exact 8-bit values
// survive a PNG save/load cycle bit-identically
func TestSaveLoadRoundTrip(t *testing.T) {
	im := NewImage(6, 5)
	for y := 0; y < im.Rows; y++ {
		for x := 0; x < im.Cols; x++ {
			for c := 0; c < 3; c++ {
				im.Set(y, x, c, float64((y*im.Cols+x+c*7)%256)/255.0)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "roundtrip.png")
	if err := SavePNG(im, path); err != nil {
		t.Fatalf("Failed to save PNG: %v", err)
	}

	loaded, err := LoadImage(path)
	if err != nil {
		t.Fatalf("Failed to load PNG: %v", err)
	}

	if loaded.Rows != im.Rows || loaded.Cols != im.Cols {
		t.Fatalf("Expected %dx%d, got %dx%d", im.Rows, im.Cols, loaded.Rows, loaded.Cols)
	}
	for i := range im.Pix {
		if im.Pix[i] != loaded.Pix[i] {
			t.Fatalf("Pixel %d changed across save/load: %g != %g", i, im.Pix[i], loaded.Pix[i])
		}
	}
}

// TestLoadImageMissing verifies that a missing file is reported
func TestLoadImageMissing(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Errorf("Expected error for missing image file")
	}
}

// TestListImages verifies extension filtering and stable ordering
func TestListImages(t *testing.T) {
	dir := t.TempDir()
	im := NewImage(4, 4)
	for _, name := range []string{"b.png", "a.png", "c.png"} {
		if err := SavePNG(im, filepath.Join(dir, name)); err != nil {
			t.Fatalf("Failed to save %s: %v", name, err)
		}
	}
	// Non-image files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0644); err != nil {
		t.Fatalf("Failed to create non-image file: %v", err)
	}

	paths, err := ListImages(dir)
	if err != nil {
		t.Fatalf("Failed to list images: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(paths))
	}
	for i, want := range []string{"a.png", "b.png", "c.png"} {
		if filepath.Base(paths[i]) != want {
			t.Errorf("Expected paths[%d]=%s, got %s", i, want, filepath.Base(paths[i]))
		}
	}
}

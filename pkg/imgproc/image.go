// Package imgproc provides the floating-point image and scalar-map
// primitives the patch sampler is built on: loading images as normalized
// float grids, cubic resampling, gradient-energy maps, and the
// probability maps used to bias crop-center selection toward detailed
// regions.
package imgproc

import (
	"image"
	"image/color"
)

// Image is a 3-channel floating-point pixel grid with values normalized
// to [0,1]. Pixels are stored row-major with interleaved RGB channels:
// Pix[(y*Cols+x)*3+c].
type Image struct {
	// Rows is the image height in pixels
	Rows int

	// Cols is the image width in pixels
	Cols int

	// Pix holds the normalized channel values
	Pix []float64
}

// NewImage creates a zero-valued image with the given dimensions
func NewImage(rows, cols int) *Image {
	return &Image{
		Rows: rows,
		Cols: cols,
		Pix:  make([]float64, rows*cols*3),
	}
}

// FromImage converts a decoded image to a normalized float grid.
// Channel values are reduced to 8 bits and divided by 255, matching the
// normalization the training pipeline expects.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	out := NewImage(bounds.Dy(), bounds.Dx())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			i := ((y-bounds.Min.Y)*out.Cols + (x - bounds.Min.X)) * 3
			out.Pix[i] = float64(r>>8) / 255.0
			out.Pix[i+1] = float64(g>>8) / 255.0
			out.Pix[i+2] = float64(b>>8) / 255.0
		}
	}
	return out
}

// At returns the value of channel c at (y, x)
func (im *Image) At(y, x, c int) float64 {
	return im.Pix[(y*im.Cols+x)*3+c]
}

// Set sets the value of channel c at (y, x)
func (im *Image) Set(y, x, c int, v float64) {
	im.Pix[(y*im.Cols+x)*3+c] = v
}

// Clone creates a deep copy of the image
func (im *Image) Clone() *Image {
	out := NewImage(im.Rows, im.Cols)
	copy(out.Pix, im.Pix)
	return out
}

// Crop slices the square size x size sub-grid whose top-left corner is at
// (top, left). The caller owns the returned copy; the source image is not
// aliased. The crop box must lie fully inside the image.
func (im *Image) Crop(top, left, size int) *Image {
	out := NewImage(size, size)
	for y := 0; y < size; y++ {
		srcOff := ((top+y)*im.Cols + left) * 3
		dstOff := y * size * 3
		copy(out.Pix[dstOff:dstOff+size*3], im.Pix[srcOff:srcOff+size*3])
	}
	return out
}

// Shave trims the image to the half-open row range [top, bottom) and
// column range [left, right), returning a copy.
func (im *Image) Shave(top, bottom, left, right int) *Image {
	rows := bottom - top
	cols := right - left
	out := NewImage(rows, cols)
	for y := 0; y < rows; y++ {
		srcOff := ((top+y)*im.Cols + left) * 3
		dstOff := y * cols * 3
		copy(out.Pix[dstOff:dstOff+cols*3], im.Pix[srcOff:srcOff+cols*3])
	}
	return out
}

// Gray collapses the image to a luminance map using the ITU-R BT.601
// weights, the same weighting the original pipeline's rgb2gray applies.
func (im *Image) Gray() *Map {
	out := NewMap(im.Rows, im.Cols)
	for y := 0; y < im.Rows; y++ {
		for x := 0; x < im.Cols; x++ {
			i := (y*im.Cols + x) * 3
			out.Data[y*im.Cols+x] = 0.299*im.Pix[i] + 0.587*im.Pix[i+1] + 0.114*im.Pix[i+2]
		}
	}
	return out
}

// ToImage converts the float grid back to an 8-bit NRGBA image for saving
func (im *Image) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Cols, im.Rows))
	for y := 0; y < im.Rows; y++ {
		for x := 0; x < im.Cols; x++ {
			i := (y*im.Cols + x) * 3
			out.SetNRGBA(x, y, color.NRGBA{
				R: quantize8(im.Pix[i]),
				G: quantize8(im.Pix[i+1]),
				B: quantize8(im.Pix[i+2]),
				A: 255,
			})
		}
	}
	return out
}

func quantize8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Map is a single-channel floating-point scalar field over the pixel grid
// of an image, stored row-major as Data[y*Cols+x].
type Map struct {
	Rows int
	Cols int
	Data []float64
}

// NewMap creates a zero-valued map with the given dimensions
func NewMap(rows, cols int) *Map {
	return &Map{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// At returns the value at (y, x)
func (m *Map) At(y, x int) float64 {
	return m.Data[y*m.Cols+x]
}

// Set sets the value at (y, x)
func (m *Map) Set(y, x int, v float64) {
	m.Data[y*m.Cols+x] = v
}

// Package tensor provides the channel-first numeric tensors the sampler
// hands to the training loop: single patches as [C,H,W] and multi-image
// batches as [N,C,H,W].
package tensor

import (
	"fmt"

	"github.com/axiniu/TTASR/pkg/imgproc"
)

// Tensor is a dense row-major numeric tensor. Data is laid out so the
// last shape dimension varies fastest.
type Tensor struct {
	Shape []int
	Data  []float64
}

// Numel returns the total number of elements
func (t Tensor) Numel() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	if len(t.Shape) == 0 {
		return 0
	}
	return n
}

// At returns the element at the given multi-dimensional index
func (t Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: %d indices for %d dimensions", len(idx), len(t.Shape)))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= t.Shape[d] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d of size %d", i, d, t.Shape[d]))
		}
		off = off*t.Shape[d] + i
	}
	return t.Data[off]
}

// FromImage packs a float image into a [3,H,W] channel-first tensor
func FromImage(im *imgproc.Image) Tensor {
	plane := im.Rows * im.Cols
	data := make([]float64, 3*plane)
	for y := 0; y < im.Rows; y++ {
		for x := 0; x < im.Cols; x++ {
			for c := 0; c < 3; c++ {
				data[c*plane+y*im.Cols+x] = im.At(y, x, c)
			}
		}
	}
	return Tensor{Shape: []int{3, im.Rows, im.Cols}, Data: data}
}

// Stack packs equally-sized float images into a [N,3,H,W] batch tensor
func Stack(imgs []*imgproc.Image) (Tensor, error) {
	if len(imgs) == 0 {
		return Tensor{}, fmt.Errorf("tensor: cannot stack zero images")
	}
	rows, cols := imgs[0].Rows, imgs[0].Cols
	plane := rows * cols
	data := make([]float64, len(imgs)*3*plane)

	for n, im := range imgs {
		if im.Rows != rows || im.Cols != cols {
			return Tensor{}, fmt.Errorf("tensor: image %d is %dx%d, want %dx%d", n, im.Rows, im.Cols, rows, cols)
		}
		base := n * 3 * plane
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				for c := 0; c < 3; c++ {
					data[base+c*plane+y*cols+x] = im.At(y, x, c)
				}
			}
		}
	}
	return Tensor{Shape: []int{len(imgs), 3, rows, cols}, Data: data}, nil
}

// ToImage unpacks a [3,H,W] tensor back into a float image
func (t Tensor) ToImage() (*imgproc.Image, error) {
	if len(t.Shape) != 3 || t.Shape[0] != 3 {
		return nil, fmt.Errorf("tensor: shape %v is not a [3,H,W] image tensor", t.Shape)
	}
	rows, cols := t.Shape[1], t.Shape[2]
	plane := rows * cols
	im := imgproc.NewImage(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for c := 0; c < 3; c++ {
				im.Set(y, x, c, t.Data[c*plane+y*cols+x])
			}
		}
	}
	return im, nil
}

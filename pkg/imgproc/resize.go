package imgproc

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Kernel selects the resampling kernel used by Resize.
type Kernel int

const (
	// KernelCubic uses Catmull-Rom cubic interpolation, the kernel the
	// sampler uses for building the downscaled gradient map and the
	// bicubic reference patch.
	KernelCubic Kernel = iota

	// KernelLinear uses bilinear interpolation
	KernelLinear

	// KernelNearest uses nearest-neighbor interpolation
	KernelNearest
)

// Resize resamples a float image by the given scale factor. Both
// dimensions are scaled and rounded to the nearest pixel. The image
// round-trips through a 16-bit buffer for the scaler, which is well below
// the precision the gradient statistics are sensitive to.
func Resize(im *Image, scaleFactor float64, kernel Kernel) *Image {
	outRows := int(math.Round(float64(im.Rows) * scaleFactor))
	outCols := int(math.Round(float64(im.Cols) * scaleFactor))

	src := im.toRGBA64()
	dst := image.NewRGBA64(image.Rect(0, 0, outCols, outRows))

	var scaler draw.Scaler
	switch kernel {
	case KernelCubic:
		scaler = draw.CatmullRom
	case KernelLinear:
		scaler = draw.BiLinear
	case KernelNearest:
		scaler = draw.NearestNeighbor
	default:
		scaler = draw.CatmullRom
	}

	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return fromRGBA64(dst)
}

func (im *Image) toRGBA64() *image.RGBA64 {
	out := image.NewRGBA64(image.Rect(0, 0, im.Cols, im.Rows))
	for y := 0; y < im.Rows; y++ {
		for x := 0; x < im.Cols; x++ {
			i := (y*im.Cols + x) * 3
			out.SetRGBA64(x, y, rgba64At(im.Pix[i], im.Pix[i+1], im.Pix[i+2]))
		}
	}
	return out
}

func fromRGBA64(img *image.RGBA64) *Image {
	bounds := img.Bounds()
	out := NewImage(bounds.Dy(), bounds.Dx())
	for y := 0; y < out.Rows; y++ {
		for x := 0; x < out.Cols; x++ {
			c := img.RGBA64At(x, y)
			i := (y*out.Cols + x) * 3
			out.Pix[i] = float64(c.R) / 65535.0
			out.Pix[i+1] = float64(c.G) / 65535.0
			out.Pix[i+2] = float64(c.B) / 65535.0
		}
	}
	return out
}

func rgba64At(r, g, b float64) color.RGBA64 {
	return color.RGBA64{R: quantize16(r), G: quantize16(g), B: quantize16(b), A: 65535}
}

func quantize16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}

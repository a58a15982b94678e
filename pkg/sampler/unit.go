// Package sampler produces an unbounded, reproducible stream of aligned
// high-resolution/low-resolution patch pairs from one or many source
// images, biased toward regions with high local structural detail. A
// sequence is built once, up front, from a source image: the image is
// edge-shaved, gradient-based probability maps are computed at both
// branch resolutions, and the full curriculum of crop-center indices is
// drawn deterministically. After construction every access is a pure read
// of immutable state, safe for concurrent callers.
package sampler

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/axiniu/TTASR/pkg/config"
	"github.com/axiniu/TTASR/pkg/imgproc"
)

// Branch identifies one of the two jointly trained resolutions
type Branch int

const (
	// BranchG is the high-resolution generator branch
	BranchG Branch = iota

	// BranchD is the low-resolution discriminator branch
	BranchD
)

// shaveBorder is the synthetic-image border trim in pixels. Synthetic
// degradation leaves artifacts at image edges; genuine captured images
// keep their borders.
const shaveBorder = 10

// minShaveDim is the smallest per-side size an image may have before the
// border trim; anything smaller would be degenerate after shaving.
const minShaveDim = 2 * shaveBorder

// ShaveEdges preprocesses a source image for sampling: synthetic images
// lose a 10-pixel border on all four sides, and trailing rows/columns are
// trimmed (never padded) until both dimensions are exact multiples of the
// integer downscale ratio. Returns ErrInvalidImage if the image cannot
// survive the trims.
func ShaveEdges(im *imgproc.Image, conf *config.Config) (*imgproc.Image, error) {
	out := im
	if !conf.Data.RealImage {
		if im.Rows <= minShaveDim || im.Cols <= minShaveDim {
			return nil, fmt.Errorf("%w: %dx%d image too small for %dpx border shave",
				ErrInvalidImage, im.Rows, im.Cols, shaveBorder)
		}
		out = im.Shave(shaveBorder, im.Rows-shaveBorder, shaveBorder, im.Cols-shaveBorder)
	}

	sf := conf.InverseScale()
	rows := out.Rows - out.Rows%sf
	cols := out.Cols - out.Cols%sf
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: image degenerate after divisibility trim to multiples of %d",
			ErrInvalidImage, sf)
	}
	if rows != out.Rows || cols != out.Cols {
		out = out.Shave(0, rows, 0, cols)
	}
	return out, nil
}

// unit is the per-image sampling state: the preprocessed image together
// with its precomputed crop-center index sequences for both branches.
// Everything inside a unit is immutable after construction.
type unit struct {
	img *imgproc.Image

	gSize int
	dSize int

	// Flattened crop-center indices into the preprocessed image's pixel
	// grid, one per access, drawn once at construction.
	gIndices []int
	dIndices []int
}

// newUnit builds the sampling state for one image: preprocessing,
// probability maps at both scales, and the full index curriculum drawn
// from an explicitly-owned generator seeded with seed. G indices are
// drawn before D indices, so a fixed seed pins down both sequences.
func newUnit(im *imgproc.Image, conf *config.Config, seed uint64) (*unit, error) {
	shaved, err := ShaveEdges(im, conf)
	if err != nil {
		return nil, err
	}

	gSize := conf.Data.InputCropSize
	dSize := conf.DInputSize()
	if gSize > shaved.Rows || gSize > shaved.Cols {
		return nil, fmt.Errorf("%w: crop size %d exceeds preprocessed image %dx%d",
			ErrInvalidConfig, gSize, shaved.Rows, shaved.Cols)
	}

	probBig, probSml := buildProbMaps(shaved, conf)

	n := conf.Data.NumIters * conf.Data.BatchSize
	src := rand.NewSource(seed)
	u := &unit{
		img:      shaved,
		gSize:    gSize,
		dSize:    dSize,
		gIndices: drawIndices(probSml, n, src),
		dIndices: drawIndices(probBig, n, src),
	}
	return u, nil
}

// buildProbMaps computes the two sampling distributions for an image.
// The big map comes from the full-resolution gradient energy, normalized
// at the low-resolution crop size. The small map comes from the gradients
// of the cubic-downscaled image, replicated back to full pixel count with
// nearest-neighbor upsampling so its flat indices stay compatible with
// the big map's pixel grid, and is normalized at the high-resolution crop
// size.
func buildProbMaps(im *imgproc.Image, conf *config.Config) (probBig, probSml []float64) {
	lossBig := imgproc.GradientMap(im)
	downscaled := imgproc.Resize(im, conf.Data.ScaleFactorDownsampler, imgproc.KernelCubic)
	lossSml := imgproc.GradientMap(downscaled)

	probBig = imgproc.ProbabilityMap(lossBig, conf.DInputSize())
	probSml = imgproc.ProbabilityMap(imgproc.NNUpsample(lossSml, conf.InverseScale()), conf.Data.InputCropSize)
	return probBig, probSml
}

// drawIndices draws n flattened pixel indices independently with
// replacement according to the given distribution.
func drawIndices(prob []float64, n int, src rand.Source) []int {
	dist := distuv.NewCategorical(prob, src)
	out := make([]int, n)
	for i := range out {
		out[i] = int(dist.Rand())
	}
	return out
}

// indices returns the crop-center index sequence for a branch
func (u *unit) indices(b Branch) []int {
	if b == BranchG {
		return u.gIndices
	}
	return u.dIndices
}

// size returns the patch side length for a branch
func (u *unit) size(b Branch) int {
	if b == BranchG {
		return u.gSize
	}
	return u.dSize
}

// cropOrigin translates the precomputed crop-center index for the given
// branch and access index into a top-left origin. The flat center is
// split into (row, col) against the image's column count, shifted by half
// the patch size, clamped so the crop box stays inside the image, and
// snapped to even coordinates so crops from the two branches stay aligned
// on a common pixel grid.
func (u *unit) cropOrigin(b Branch, idx int) (top, left int) {
	size := u.size(b)
	center := u.indices(b)[idx]
	row, col := center/u.img.Cols, center%u.img.Cols

	top = clamp(row-size/2, 0, u.img.Rows-size)
	left = clamp(col-size/2, 0, u.img.Cols-size)

	// Even origins only, to avoid misalignment between the branch crops
	return top - top%2, left - left%2
}

// crop slices the patch for the given branch and access index
func (u *unit) crop(b Branch, idx int) *imgproc.Image {
	top, left := u.cropOrigin(b, idx)
	return u.img.Crop(top, left, u.size(b))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

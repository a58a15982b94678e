package imgproc

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	// gradientWindow is the side length of the box filter applied to the
	// combined gradient map, and the width of the border zeroed out before
	// the extreme-value clipping.
	gradientWindow = 5

	// clipPercentile keeps only the top fraction of gradient values; flat
	// regions contribute no sampling mass.
	clipPercentile = 0.97
)

// GradientMap measures the local structural detail of an image as a
// per-pixel scalar field. Horizontal and vertical luminance gradients are
// taken with central differences, their borders zeroed, extreme values
// clipped at the 97th percentile, the two directions combined with equal
// total weight, and the result box-blurred and normalized to mean 1.
func GradientMap(im *Image) *Map {
	gray := im.Gray()
	gy, gx := gradients(gray)

	gyPad := padEdges(gy, gradientWindow)
	gxPad := padEdges(gx, gradientWindow)
	lmY := clipExtreme(gyPad, clipPercentile)
	lmX := clipExtreme(gxPad, clipPercentile)

	// Combine both directions with equal total mass
	combined := NewMap(im.Rows, im.Cols)
	sumY := floats.Sum(lmY.Data)
	sumX := floats.Sum(lmX.Data)
	for i := range combined.Data {
		if sumY > 0 {
			combined.Data[i] += lmY.Data[i] / sumY
		}
		if sumX > 0 {
			combined.Data[i] += lmX.Data[i] / sumX
		}
	}

	loss := boxBlur(combined, gradientWindow)

	// Normalize so the map's mean is 1
	mean := floats.Sum(loss.Data) / float64(len(loss.Data))
	if mean > 0 {
		floats.Scale(1/mean, loss.Data)
	}
	return loss
}

// ProbabilityMap converts a loss map into a flattened sampling
// distribution over pixel positions for crops of the given size. The map
// is blurred with a half-crop box window so mass spreads over whole-patch
// neighborhoods, and a half-crop border is zeroed so only valid crop
// centers carry probability. The result is non-negative and sums to 1;
// a map with no mass at all falls back to the uniform distribution.
func ProbabilityMap(loss *Map, cropSize int) []float64 {
	blurred := boxBlur(loss, cropSize/2)
	prob := padEdges(blurred, cropSize/2)

	vec := prob.Data
	sum := floats.Sum(vec)
	if sum <= 0 {
		uniform := make([]float64, len(vec))
		for i := range uniform {
			uniform[i] = 1 / float64(len(uniform))
		}
		return uniform
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / sum
	}
	return out
}

// NNUpsample replicates every map cell into a factor x factor block so a
// map computed at a downscaled resolution regains the pixel count of the
// full-resolution grid. Flat indices into the result therefore address
// the same pixel grid as maps built at full resolution.
func NNUpsample(m *Map, factor int) *Map {
	out := NewMap(m.Rows*factor, m.Cols*factor)
	for y := 0; y < out.Rows; y++ {
		srcRow := y / factor
		for x := 0; x < out.Cols; x++ {
			out.Data[y*out.Cols+x] = m.Data[srcRow*m.Cols+x/factor]
		}
	}
	return out
}

// gradients computes per-axis central differences of a scalar map, with
// one-sided differences at the borders (the np.gradient convention the
// original pipeline relies on).
func gradients(m *Map) (gy, gx *Map) {
	gy = NewMap(m.Rows, m.Cols)
	gx = NewMap(m.Rows, m.Cols)

	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			// Row direction
			switch {
			case m.Rows == 1:
				// Leave zero
			case y == 0:
				gy.Set(y, x, m.At(1, x)-m.At(0, x))
			case y == m.Rows-1:
				gy.Set(y, x, m.At(y, x)-m.At(y-1, x))
			default:
				gy.Set(y, x, (m.At(y+1, x)-m.At(y-1, x))/2)
			}

			// Column direction
			switch {
			case m.Cols == 1:
				// Leave zero
			case x == 0:
				gx.Set(y, x, m.At(y, 1)-m.At(y, 0))
			case x == m.Cols-1:
				gx.Set(y, x, m.At(y, x)-m.At(y, x-1))
			default:
				gx.Set(y, x, (m.At(y, x+1)-m.At(y, x-1))/2)
			}
		}
	}
	return gy, gx
}

// padEdges zeroes a border of the given width without changing the map
// size, so crops and filters never draw mass from boundary artifacts.
// A border wider than the map zeroes it entirely.
func padEdges(m *Map, edge int) *Map {
	out := NewMap(m.Rows, m.Cols)
	for y := edge; y < m.Rows-edge; y++ {
		for x := edge; x < m.Cols-edge; x++ {
			out.Set(y, x, m.At(y, x))
		}
	}
	return out
}

// clipExtreme zeroes all values below the percentile threshold and clips
// everything above it to the next distinct value, leaving a map that is
// zero except where the strongest gradients live.
func clipExtreme(m *Map, percent float64) *Map {
	if len(m.Data) < 2 {
		return NewMap(m.Rows, m.Cols)
	}

	sorted := make([]float64, len(m.Data))
	copy(sorted, m.Data)
	sort.Float64s(sorted)

	pivot := int(percent * float64(len(sorted)))
	if pivot >= len(sorted)-1 {
		pivot = len(sorted) - 2
	}
	if pivot < 0 {
		pivot = 0
	}
	vMin := sorted[pivot]
	vMax := sorted[pivot+1]
	if vMax <= vMin {
		vMax = vMin + 1e-9
	}

	out := NewMap(m.Rows, m.Cols)
	for i, v := range m.Data {
		if v < vMin {
			v = vMin
		}
		if v > vMax {
			v = vMax
		}
		out.Data[i] = v - vMin
	}
	return out
}

// boxBlur convolves the map with a window x window box filter, treating
// pixels outside the map as zero. A summed-area table keeps the cost
// independent of the window size, which matters for the half-crop windows
// the probability map uses.
func boxBlur(m *Map, window int) *Map {
	if window <= 1 {
		out := NewMap(m.Rows, m.Cols)
		copy(out.Data, m.Data)
		return out
	}

	// integral[y][x] holds the sum over rows < y, cols < x
	iw := m.Cols + 1
	integral := make([]float64, (m.Rows+1)*iw)
	for y := 0; y < m.Rows; y++ {
		rowSum := 0.0
		for x := 0; x < m.Cols; x++ {
			rowSum += m.At(y, x)
			integral[(y+1)*iw+x+1] = integral[y*iw+x+1] + rowSum
		}
	}

	out := NewMap(m.Rows, m.Cols)
	half := (window - 1) / 2
	norm := 1 / float64(window*window)
	for y := 0; y < m.Rows; y++ {
		y0 := clampInt(y-half, 0, m.Rows)
		y1 := clampInt(y-half+window, 0, m.Rows)
		for x := 0; x < m.Cols; x++ {
			x0 := clampInt(x-half, 0, m.Cols)
			x1 := clampInt(x-half+window, 0, m.Cols)
			sum := integral[y1*iw+x1] - integral[y0*iw+x1] - integral[y1*iw+x0] + integral[y0*iw+x0]
			out.Set(y, x, sum*norm)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

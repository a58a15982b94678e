package sampler

import (
	"fmt"

	"github.com/axiniu/TTASR/pkg/config"
	"github.com/axiniu/TTASR/pkg/imgproc"
	"github.com/axiniu/TTASR/pkg/tensor"
)

// Sample is one training example: a high-resolution patch, its
// co-registered low-resolution patch, and in single-image mode a bicubic
// upsampling of the low-resolution patch as a reference signal.
type Sample struct {
	// HR is the generator-branch patch, [3,H,W] in single-image mode and
	// [N,3,H,W] in multi-image mode
	HR tensor.Tensor

	// LR is the discriminator-branch patch at the downsampled crop size
	LR tensor.Tensor

	// LRBicubic is the LR patch resampled back up to the HR crop size
	// with the cubic kernel. Only populated in single-image mode.
	LRBicubic tensor.Tensor
}

// Sequence is the single-image sample sequence. It loads and preprocesses
// its image once, precomputes both crop-index curricula, and then serves
// any access index in any order, repeatedly and idempotently. Concurrent
// access is safe: every access only reads construction-time state and
// allocates its own outputs.
type Sequence struct {
	conf   *config.Config
	u      *unit
	length int
}

// NewSequence builds the sample sequence for the configured input image.
// All failures are fatal here; a sequence that constructs successfully
// can serve every index in range.
func NewSequence(conf *config.Config) (*Sequence, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	fmt.Printf("Preparing data from %s ...\n", conf.Paths.InputImagePath)

	img, err := imgproc.LoadImage(conf.Paths.InputImagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	u, err := newUnit(img, conf, 0)
	if err != nil {
		return nil, err
	}

	return &Sequence{
		conf:   conf,
		u:      u,
		length: conf.Data.NumIters * conf.Data.BatchSize,
	}, nil
}

// Len returns the fixed sequence length, iterations x batch size
func (s *Sequence) Len() int {
	return s.length
}

// ImageSize returns the dimensions of the preprocessed source image
func (s *Sequence) ImageSize() (rows, cols int) {
	return s.u.img.Rows, s.u.img.Cols
}

// At returns the sample for the given access index: the G crop, the D
// crop, and the bicubic reference built by resampling the D crop back up
// by the integer downscale ratio. Repeated calls with the same index
// return bit-identical patches.
func (s *Sequence) At(idx int) (Sample, error) {
	if idx < 0 || idx >= s.length {
		return Sample{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, idx, s.length)
	}

	gIn := s.u.crop(BranchG, idx)
	dIn := s.u.crop(BranchD, idx)
	dBq := imgproc.Resize(dIn, float64(s.conf.InverseScale()), imgproc.KernelCubic)

	return Sample{
		HR:        tensor.FromImage(gIn),
		LR:        tensor.FromImage(dIn),
		LRBicubic: tensor.FromImage(dBq),
	}, nil
}

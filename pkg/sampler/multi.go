package sampler

import (
	"fmt"

	"github.com/axiniu/TTASR/pkg/config"
	"github.com/axiniu/TTASR/pkg/imgproc"
	"github.com/axiniu/TTASR/pkg/tensor"
)

// MultiSequence samples from every image in a directory simultaneously.
// Each image gets its own independently preprocessed state and index
// curricula; every access yields one crop per image per branch, stacked
// into a batch dimension. No bicubic reference is produced in this mode.
type MultiSequence struct {
	conf   *config.Config
	units  []*unit
	length int
}

// NewMultiSequence discovers all images under the configured input
// directory and builds the per-image sampling state. Images are prepared
// in parallel; each image owns its own generator seeded with 0, so the
// result does not depend on completion order. Any failure aborts the
// whole construction.
func NewMultiSequence(conf *config.Config) (*MultiSequence, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	paths, err := imgproc.ListImages(conf.Paths.InputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no images found in %s", ErrInvalidImage, conf.Paths.InputDir)
	}

	fmt.Printf("Preparing data for %d images from %s ...\n", len(paths), conf.Paths.InputDir)

	type buildResult struct {
		idx int
		u   *unit
		err error
	}
	resultChan := make(chan buildResult)

	for i, path := range paths {
		go func(idx int, path string) {
			img, err := imgproc.LoadImage(path)
			if err != nil {
				resultChan <- buildResult{idx: idx, err: fmt.Errorf("%w: %v", ErrInvalidImage, err)}
				return
			}
			u, err := newUnit(img, conf, 0)
			if err != nil {
				resultChan <- buildResult{idx: idx, err: fmt.Errorf("image %s: %w", path, err)}
				return
			}
			resultChan <- buildResult{idx: idx, u: u}
		}(i, path)
	}

	units := make([]*unit, len(paths))
	var firstErr error
	for range paths {
		res := <-resultChan
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		units[res.idx] = res.u
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return &MultiSequence{
		conf:   conf,
		units:  units,
		length: conf.Data.NumIters * conf.Data.BatchSize,
	}, nil
}

// Len returns the fixed sequence length, iterations x batch size
func (m *MultiSequence) Len() int {
	return m.length
}

// NumImages returns how many images the sequence samples from
func (m *MultiSequence) NumImages() int {
	return len(m.units)
}

// At returns the stacked sample for the given access index: one crop per
// image per branch, using each image's own index curriculum, batched into
// [N,3,H,W] tensors.
func (m *MultiSequence) At(idx int) (Sample, error) {
	if idx < 0 || idx >= m.length {
		return Sample{}, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, idx, m.length)
	}

	gCrops := make([]*imgproc.Image, len(m.units))
	dCrops := make([]*imgproc.Image, len(m.units))
	for i, u := range m.units {
		gCrops[i] = u.crop(BranchG, idx)
		dCrops[i] = u.crop(BranchD, idx)
	}

	hr, err := tensor.Stack(gCrops)
	if err != nil {
		return Sample{}, err
	}
	lr, err := tensor.Stack(dCrops)
	if err != nil {
		return Sample{}, err
	}

	return Sample{HR: hr, LR: lr}, nil
}

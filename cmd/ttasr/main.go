package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/axiniu/TTASR/pkg/config"
	"github.com/axiniu/TTASR/pkg/imgproc"
	"github.com/axiniu/TTASR/pkg/sampler"
	"github.com/axiniu/TTASR/pkg/tensor"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Path to YAML configuration file")
	inputImage := flag.String("input", "", "Path to one specific input image (single-image mode)")
	inputDir := flag.String("input-dir", "", "Directory of input images (multi-image mode)")
	cropSize := flag.Int("crop", 0, "Crop size for the high-resolution patch")
	scaleFactor := flag.Float64("scale", 0, "Downsampler scale factor (e.g. 0.5)")
	numIters := flag.Int("iters", 0, "Number of training iterations the sequence feeds")
	batchSize := flag.Int("batch", 0, "Batch size")
	outputDir := flag.String("out", "", "Output directory for dumped patches")
	realImage := flag.Bool("real", false, "Input is a genuine captured low-resolution image (skip border shave)")
	dumpCount := flag.Int("dump", 0, "Dump the first N samples' patches as PNGs")
	flag.Parse()

	// Load configuration, then apply flag overrides
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *inputImage != "" {
		cfg.Paths.InputImagePath = *inputImage
	}
	if *inputDir != "" {
		cfg.Paths.InputDir = *inputDir
	}
	if *cropSize > 0 {
		cfg.Data.InputCropSize = *cropSize
	}
	if *scaleFactor > 0 {
		cfg.Data.ScaleFactorDownsampler = *scaleFactor
	}
	if *numIters > 0 {
		cfg.Data.NumIters = *numIters
	}
	if *batchSize > 0 {
		cfg.Data.BatchSize = *batchSize
	}
	if *outputDir != "" {
		cfg.Paths.OutputDir = *outputDir
	}
	if *realImage {
		cfg.Data.RealImage = true
	}

	if cfg.Paths.InputImagePath == "" && *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	fmt.Println("================================")
	fmt.Println("TTASR PATCH SAMPLER")
	fmt.Println("Gradient-biased crop sampling for test-time-training super-resolution")
	fmt.Println("================================")

	if *inputDir != "" {
		runMulti(cfg, *dumpCount)
	} else {
		runSingle(cfg, *dumpCount)
	}
}

// runSingle builds the single-image sequence and optionally dumps patches
func runSingle(cfg *config.Config, dumpCount int) {
	seq, err := sampler.NewSequence(cfg)
	if err != nil {
		log.Fatalf("Failed to build sample sequence: %v", err)
	}

	rows, cols := seq.ImageSize()
	fmt.Printf("Preprocessed image: %dx%d\n", rows, cols)
	fmt.Printf("Patch sizes: G=%d, D=%d\n", cfg.Data.InputCropSize, cfg.DInputSize())
	fmt.Printf("Sequence length: %d (%d iterations x batch %d)\n",
		seq.Len(), cfg.Data.NumIters, cfg.Data.BatchSize)

	for i := 0; i < dumpCount && i < seq.Len(); i++ {
		sample, err := seq.At(i)
		if err != nil {
			log.Fatalf("Failed to draw sample %d: %v", i, err)
		}
		if err := dumpSample(cfg.Paths.OutputDir, i, sample); err != nil {
			log.Fatalf("Failed to dump sample %d: %v", i, err)
		}
	}
	if dumpCount > 0 {
		fmt.Printf("Dumped %d samples to %s\n", dumpCount, cfg.Paths.OutputDir)
	}
}

// runMulti builds the multi-image sequence and optionally dumps patches
func runMulti(cfg *config.Config, dumpCount int) {
	seq, err := sampler.NewMultiSequence(cfg)
	if err != nil {
		log.Fatalf("Failed to build multi-image sample sequence: %v", err)
	}

	fmt.Printf("Images: %d\n", seq.NumImages())
	fmt.Printf("Patch sizes: G=%d, D=%d\n", cfg.Data.InputCropSize, cfg.DInputSize())
	fmt.Printf("Sequence length: %d (%d iterations x batch %d)\n",
		seq.Len(), cfg.Data.NumIters, cfg.Data.BatchSize)

	for i := 0; i < dumpCount && i < seq.Len(); i++ {
		sample, err := seq.At(i)
		if err != nil {
			log.Fatalf("Failed to draw sample %d: %v", i, err)
		}
		fmt.Printf("Sample %d: HR %v, LR %v\n", i, sample.HR.Shape, sample.LR.Shape)
	}
}

// dumpSample writes a single-image sample's patches as PNG files
func dumpSample(outDir string, idx int, sample sampler.Sample) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	patches := map[string]tensor.Tensor{
		"hr":         sample.HR,
		"lr":         sample.LR,
		"lr_bicubic": sample.LRBicubic,
	}
	for name, t := range patches {
		im, err := t.ToImage()
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("%04d_%s.png", idx, name))
		if err := imgproc.SavePNG(im, path); err != nil {
			return err
		}
	}
	return nil
}

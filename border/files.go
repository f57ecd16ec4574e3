package border

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const outputSuffix = "_bordered.png"

// ApplyFile reads a transparent PNG, draws the border described by spec
// around its subject and writes the result to outputPath as PNG. Inputs that
// are not already RGBA are converted with a warning. An image with no
// subject is written through unchanged.
func ApplyFile(inputPath, outputPath string, spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	img, err := imaging.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", inputPath, err)
	}
	if _, ok := img.(*image.NRGBA); !ok {
		slog.Warn("input is not in RGBA mode, converting", "path", inputPath)
	}

	result, painted, err := Apply(img, spec)
	if err != nil {
		return err
	}
	if painted == 0 {
		slog.Warn("no non-transparent pixels found", "path", inputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer f.Close()

	// always encode PNG, the alpha channel must survive
	if err := imaging.Encode(f, result, imaging.PNG); err != nil {
		return fmt.Errorf("encode %s: %w", outputPath, err)
	}
	return nil
}

// ProcessDirectory applies the border to every .png file in inputDir,
// writing "<stem>_bordered.png" files into outputDir. Per-file failures are
// logged and skipped; the success and total counts are returned so the
// caller can decide the exit status.
func ProcessDirectory(inputDir, outputDir string, spec Spec) (succeeded, total int, err error) {
	if err := spec.Validate(); err != nil {
		return 0, 0, err
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}
		total++

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		inPath := filepath.Join(inputDir, entry.Name())
		outPath := filepath.Join(outputDir, stem+outputSuffix)

		if err := ApplyFile(inPath, outPath, spec); err != nil {
			slog.Error("border failed", "path", inPath, "error", err)
			continue
		}
		succeeded++
	}
	return succeeded, total, nil
}

package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// renderPages rasterizes the first maxPages pages of a PDF to PNG files via
// pdftoppm. The caller must invoke cleanup when done with the images.
func renderPages(ctx context.Context, runner Runner, pdfPath string, dpi, maxPages int) (images []string, cleanup func(), err error) {
	tmpDir, err := os.MkdirTemp("", "pdfcite-ocr-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() { os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", dpi), "-png"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", maxPages))
	}
	args = append(args, pdfPath, prefix)

	if _, errb, err := runner.Run(ctx, "pdftoppm", args...); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm produced no images for %s", pdfPath)
	}
	if maxPages > 0 && len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	return matches, cleanup, nil
}

package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/pdfcite/internal/layout"
)

// newBackends constructs the full backend list in priority order:
// transformer-based first, classic engine last.
func newBackends(runner Runner) []Backend {
	return []Backend{
		&commandBackend{
			name: "surya", binary: "surya_ocr",
			disableEnv: "PDFCITE_DISABLE_SURYA",
			runner:     runner, recognize: recognizeSurya,
		},
		&commandBackend{
			name: "paddleocr", binary: "paddleocr",
			disableEnv: "PDFCITE_DISABLE_PADDLEOCR",
			runner:     runner, recognize: recognizePaddle,
		},
		&commandBackend{
			name: "easyocr", binary: "easyocr",
			disableEnv: "PDFCITE_DISABLE_EASYOCR",
			runner:     runner, recognize: recognizeEasyOCR,
		},
		&commandBackend{
			name: "rapidocr", binary: "rapidocr",
			disableEnv: "PDFCITE_DISABLE_RAPIDOCR",
			runner:     runner, recognize: recognizeRapidOCR,
		},
		&commandBackend{
			name: "tesseract", binary: "tesseract",
			disableEnv: "PDFCITE_DISABLE_TESSERACT",
			runner:     runner, recognize: recognizeTesseract,
		},
	}
}

// suryaResult mirrors the relevant part of surya_ocr's results.json.
type suryaResult struct {
	TextLines []struct {
		Text string    `json:"text"`
		BBox []float64 `json:"bbox"` // x1, y1, x2, y2
	} `json:"text_lines"`
}

// recognizeSurya runs surya_ocr, which writes JSON results (with line
// bounding boxes) to an output directory.
func recognizeSurya(ctx context.Context, b *commandBackend, imagePath string) ([]layout.TextBlock, error) {
	outDir, err := os.MkdirTemp("", "pdfcite-surya-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	if _, errb, err := b.runner.Run(ctx, b.binary, imagePath, "--output_dir", outDir); err != nil {
		return nil, fmt.Errorf("surya_ocr: %w: %s", err, truncate(string(errb), 512))
	}

	stem := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	data, err := os.ReadFile(filepath.Join(outDir, stem, "results.json"))
	if err != nil {
		return nil, fmt.Errorf("reading surya results: %w", err)
	}

	var results map[string][]suryaResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing surya results: %w", err)
	}

	var blocks []layout.TextBlock
	for _, pages := range results {
		for _, page := range pages {
			for _, line := range page.TextLines {
				text := stripMarkup(strings.TrimSpace(line.Text))
				if text == "" || len(line.BBox) != 4 {
					continue
				}
				h := line.BBox[3] - line.BBox[1]
				blocks = append(blocks, layout.TextBlock{
					Text:     text,
					FontSize: h,
					X:        line.BBox[0],
					Y:        line.BBox[1],
					Width:    line.BBox[2] - line.BBox[0],
					Height:   h,
				})
			}
		}
	}
	return blocks, nil
}

// paddleLineRe extracts the recognized string from paddleocr's stdout, which
// logs tuples like ('text', 0.98) per detected line.
var paddleLineRe = regexp.MustCompile(`\('(.+?)',\s*[0-9.]+\)`)

func recognizePaddle(ctx context.Context, b *commandBackend, imagePath string) ([]layout.TextBlock, error) {
	out, errb, err := b.runner.Run(ctx, b.binary,
		"--image_dir", imagePath, "--lang", "ch", "--use_angle_cls", "true")
	if err != nil {
		return nil, fmt.Errorf("paddleocr: %w: %s", err, truncate(string(errb), 512))
	}

	var lines []string
	for _, m := range paddleLineRe.FindAllStringSubmatch(string(out), -1) {
		lines = append(lines, m[1])
	}
	return SynthesizeBlocks(lines, 0), nil
}

func recognizeEasyOCR(ctx context.Context, b *commandBackend, imagePath string) ([]layout.TextBlock, error) {
	out, errb, err := b.runner.Run(ctx, b.binary,
		"-l", "ch_sim", "en", "-f", imagePath, "--detail", "0", "--paragraph", "False")
	if err != nil {
		return nil, fmt.Errorf("easyocr: %w: %s", err, truncate(string(errb), 512))
	}
	return SynthesizeBlocks(strings.Split(string(out), "\n"), 0), nil
}

func recognizeRapidOCR(ctx context.Context, b *commandBackend, imagePath string) ([]layout.TextBlock, error) {
	out, errb, err := b.runner.Run(ctx, b.binary, "-img", imagePath)
	if err != nil {
		return nil, fmt.Errorf("rapidocr: %w: %s", err, truncate(string(errb), 512))
	}
	return SynthesizeBlocks(strings.Split(string(out), "\n"), 0), nil
}

// recognizeTesseract uses TSV output, which carries word bounding boxes.
// Words are regrouped into lines; the line box height stands in for the
// font size.
func recognizeTesseract(ctx context.Context, b *commandBackend, imagePath string) ([]layout.TextBlock, error) {
	out, errb, err := b.runner.Run(ctx, b.binary,
		imagePath, "stdout", "-l", "eng+chi_sim", "tsv")
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return parseTesseractTSV(string(out)), nil
}

// parseTesseractTSV groups word rows by (page, block, paragraph, line).
// TSV columns: level page block par line word left top width height conf text.
func parseTesseractTSV(tsv string) []layout.TextBlock {
	type lineKey struct{ page, block, par, line int }
	type lineAcc struct {
		words                  []string
		left, top, right, bott float64
		order                  int
	}

	acc := make(map[lineKey]*lineAcc)
	var order []lineKey
	for i, row := range strings.Split(tsv, "\n") {
		if i == 0 {
			continue // header
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}
		level, _ := strconv.Atoi(cols[0])
		if level != 5 { // word rows only
			continue
		}
		conf, _ := strconv.ParseFloat(cols[10], 64)
		text := strings.TrimSpace(cols[11])
		if conf < 0 || text == "" {
			continue
		}

		page, _ := strconv.Atoi(cols[1])
		blockNum, _ := strconv.Atoi(cols[2])
		par, _ := strconv.Atoi(cols[3])
		line, _ := strconv.Atoi(cols[4])
		left, _ := strconv.ParseFloat(cols[6], 64)
		top, _ := strconv.ParseFloat(cols[7], 64)
		width, _ := strconv.ParseFloat(cols[8], 64)
		height, _ := strconv.ParseFloat(cols[9], 64)

		key := lineKey{page, blockNum, par, line}
		la, ok := acc[key]
		if !ok {
			la = &lineAcc{left: left, top: top, right: left + width, bott: top + height, order: len(order)}
			acc[key] = la
			order = append(order, key)
		}
		la.words = append(la.words, text)
		if left < la.left {
			la.left = left
		}
		if top < la.top {
			la.top = top
		}
		if r := left + width; r > la.right {
			la.right = r
		}
		if bt := top + height; bt > la.bott {
			la.bott = bt
		}
	}

	var blocks []layout.TextBlock
	for _, key := range order {
		la := acc[key]
		h := la.bott - la.top
		blocks = append(blocks, layout.TextBlock{
			Text:     strings.Join(la.words, " "),
			FontSize: h,
			X:        la.left,
			Y:        la.top,
			Width:    la.right - la.left,
			Height:   h,
			Page:     key.page - 1,
		})
	}
	return blocks
}

// ocrMarkupRes strip HTML-ish tags some engines emit around recognized text.
var ocrMarkupRes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`<sup>[^<]*</sup>`), ""},
	{regexp.MustCompile(`<sub>[^<]*</sub>`), ""},
	{regexp.MustCompile(`<br\s*/?>`), " "},
	{regexp.MustCompile(`<[^>]+>`), ""},
	{regexp.MustCompile(`  +`), " "},
}

func stripMarkup(s string) string {
	for _, m := range ocrMarkupRes {
		s = m.re.ReplaceAllString(s, m.repl)
	}
	return s
}

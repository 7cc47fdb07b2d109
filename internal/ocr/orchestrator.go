package ocr

import (
	"context"
	"errors"
	"log/slog"

	"github.com/matsen/pdfcite/internal/layout"
)

const (
	// MinTextLength is the embedded-text density below which a page is
	// treated as scanned and OCR kicks in.
	MinTextLength = 50

	DefaultDPI      = 250
	DefaultMaxPages = 3
)

// ErrNoText is returned when every backend is unavailable or produced
// nothing.
var ErrNoText = errors.New("no text obtainable: all OCR backends unavailable or empty")

// Orchestrator decides when OCR is needed and runs backends in priority
// order until one yields text.
type Orchestrator struct {
	registry *Registry
	runner   Runner

	DPI      int
	MaxPages int
}

// NewOrchestrator wires the orchestrator to a registry. A nil runner uses
// the real exec runner for page rasterization.
func NewOrchestrator(registry *Registry, runner Runner) *Orchestrator {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Orchestrator{
		registry: registry,
		runner:   runner,
		DPI:      DefaultDPI,
		MaxPages: DefaultMaxPages,
	}
}

// NeedsOCR reports whether the embedded text layer is too sparse to use.
func (o *Orchestrator) NeedsOCR(density int) bool {
	return density < MinTextLength
}

// ExtractBlocks rasterizes the document's leading pages and tries each
// available backend in priority order until one returns non-empty blocks.
// The winning backend's name is returned alongside the blocks.
func (o *Orchestrator) ExtractBlocks(ctx context.Context, pdfPath string) ([]layout.TextBlock, string, error) {
	backends := o.registry.Available()
	if len(backends) == 0 {
		return nil, "", ErrNoText
	}

	images, cleanup, err := renderPages(ctx, o.runner, pdfPath, o.DPI, o.MaxPages)
	if err != nil {
		return nil, "", err
	}
	defer cleanup()

	for _, backend := range backends {
		blocks, err := o.recognizeAll(ctx, backend, images)
		if err != nil {
			slog.Warn("ocr backend failed", "backend", backend.Name(), "path", pdfPath, "error", err)
			continue
		}
		if len(blocks) > 0 {
			slog.Info("ocr extracted text", "backend", backend.Name(), "path", pdfPath, "blocks", len(blocks))
			return blocks, backend.Name(), nil
		}
	}
	return nil, "", ErrNoText
}

// recognizeAll runs one backend over every rendered page, tagging blocks
// with their page index.
func (o *Orchestrator) recognizeAll(ctx context.Context, backend Backend, images []string) ([]layout.TextBlock, error) {
	var all []layout.TextBlock
	for page, image := range images {
		blocks, err := backend.Recognize(ctx, image)
		if err != nil {
			return nil, err
		}
		for i := range blocks {
			blocks[i].Page = page
		}
		all = append(all, blocks...)
	}
	return all, nil
}

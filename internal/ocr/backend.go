package ocr

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/matsen/pdfcite/internal/layout"
)

// Backend is a uniform adapter over one OCR engine. Recognize returns
// positioned text blocks; when the engine provides no geometry, blocks are
// synthesized line by line with the box height standing in for font size.
type Backend interface {
	Name() string
	// Available reports whether the engine's binary is installed and the
	// backend is not disabled via its environment switch.
	Available() bool
	// Recognize runs OCR on one page image. Calls on a single backend are
	// serialized; none of the engines are documented as reentrant.
	Recognize(ctx context.Context, imagePath string) ([]layout.TextBlock, error)
}

// commandBackend wraps an external OCR CLI. The first call checks binary
// availability once; recognition calls hold the backend mutex so only one
// invocation per engine is in flight at a time.
type commandBackend struct {
	name       string
	binary     string
	disableEnv string
	runner     Runner
	recognize  func(ctx context.Context, b *commandBackend, imagePath string) ([]layout.TextBlock, error)

	availOnce sync.Once
	avail     bool

	mu sync.Mutex
}

func (b *commandBackend) Name() string { return b.name }

func (b *commandBackend) Available() bool {
	b.availOnce.Do(func() {
		if disabled(b.disableEnv) {
			b.avail = false
			return
		}
		_, err := exec.LookPath(b.binary)
		b.avail = err == nil
	})
	return b.avail
}

func (b *commandBackend) Recognize(ctx context.Context, imagePath string) ([]layout.TextBlock, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recognize(ctx, b, imagePath)
}

// disabled reports whether an environment switch like
// PDFCITE_DISABLE_TESSERACT is set to a truthy value.
func disabled(env string) bool {
	v := strings.ToLower(os.Getenv(env))
	return v == "1" || v == "true" || v == "yes"
}

// SynthesizeBlocks builds layout blocks from plain recognized lines, stacked
// top to bottom with a nominal line height. Used by engines that report no
// geometry.
func SynthesizeBlocks(lines []string, page int) []layout.TextBlock {
	const lineHeight = 12.0
	var blocks []layout.TextBlock
	y := 0.0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		blocks = append(blocks, layout.TextBlock{
			Text:     line,
			FontSize: lineHeight,
			Y:        y,
			Width:    float64(len(line)) * lineHeight * 0.5,
			Height:   lineHeight,
			Page:     page,
		})
		y += lineHeight * 1.4
	}
	return blocks
}

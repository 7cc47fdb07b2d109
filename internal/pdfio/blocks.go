// Package pdfio reads the embedded text layer of PDF documents.
package pdfio

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/pdfcite/internal/layout"
)

const defaultPageHeight = 792 // US Letter in points

// FirstPageBlocks extracts positioned text blocks from the first non-empty
// page. Y coordinates are flipped to top-origin so downstream layout code
// can reason in reading order. The reader panics on some malformed files;
// those are recovered and returned as errors.
func FirstPageBlocks(path string) (blocks []layout.TextBlock, pageHeight float64, err error) {
	defer func() {
		if val := recover(); val != nil {
			err = fmt.Errorf("pdf reader panic: %v", val)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var page pdf.Page
	pageIndex := 0
	for i := 1; i <= r.NumPage(); i++ {
		if p := r.Page(i); !p.V.IsNull() {
			page = p
			pageIndex = i
			break
		}
	}
	if pageIndex == 0 {
		return nil, 0, nil
	}

	pageHeight = mediaBoxHeight(page)
	blocks = assembleBlocks(page.Content().Text, pageHeight)
	for i := range blocks {
		blocks[i].Page = pageIndex - 1
	}
	return blocks, pageHeight, nil
}

// assembleBlocks merges character-level text runs into line blocks. Runs
// join the current line while the font size matches and the baseline has
// not moved; otherwise a new block starts.
func assembleBlocks(texts []pdf.Text, pageHeight float64) []layout.TextBlock {
	var blocks []layout.TextBlock
	var cur *lineBuilder
	for _, t := range texts {
		if cur == nil {
			cur = newLineBuilder(t)
			continue
		}
		if !cur.tryAppend(t) {
			if b, ok := cur.build(pageHeight); ok {
				blocks = append(blocks, b)
			}
			cur = newLineBuilder(t)
		}
	}
	if cur != nil {
		if b, ok := cur.build(pageHeight); ok {
			blocks = append(blocks, b)
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Y < blocks[j].Y })
	return blocks
}

// lineBuilder accumulates text runs that belong to one visual line.
type lineBuilder struct {
	fontSize float64
	baseline float64
	minX     float64
	prevX    float64
	b        strings.Builder
}

func newLineBuilder(t pdf.Text) *lineBuilder {
	lb := &lineBuilder{
		fontSize: t.FontSize,
		baseline: t.Y,
		minX:     t.X,
		prevX:    t.X + t.W,
	}
	lb.b.WriteString(printable(t.S))
	return lb
}

func (lb *lineBuilder) tryAppend(t pdf.Text) bool {
	if math.Abs(t.FontSize-lb.fontSize) >= 0.5 {
		return false
	}
	// A baseline shift of more than half the font size is a new line.
	if math.Abs(t.Y-lb.baseline) > lb.fontSize*0.5 {
		return false
	}
	// Insert a word gap when the horizontal advance jumps.
	if t.X-lb.prevX >= lb.fontSize*0.16 {
		lb.b.WriteString(" ")
	}
	lb.b.WriteString(printable(t.S))
	lb.prevX = t.X + t.W
	return true
}

func (lb *lineBuilder) build(pageHeight float64) (layout.TextBlock, bool) {
	text := strings.Join(strings.Fields(lb.b.String()), " ")
	if text == "" {
		return layout.TextBlock{}, false
	}
	return layout.TextBlock{
		Text:     text,
		FontSize: lb.fontSize,
		X:        lb.minX,
		Y:        pageHeight - lb.baseline - lb.fontSize, // top-origin
		Width:    lb.prevX - lb.minX,
		Height:   lb.fontSize * 1.2,
	}, true
}

// mediaBoxHeight reads the page height, walking up the page tree for
// inherited attributes.
func mediaBoxHeight(page pdf.Page) float64 {
	v := page.V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			h := numValue(mb.Index(3)) - numValue(mb.Index(1))
			if h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

func numValue(v pdf.Value) float64 {
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	}
	return 0
}

// printable replaces undecodable or non-graphic runes with spaces.
func printable(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == utf8.RuneError || !unicode.IsGraphic(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

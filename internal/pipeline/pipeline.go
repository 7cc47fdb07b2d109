// Package pipeline sequences extraction stages per document and fans a
// batch out to a bounded worker pool. Failures stay document-local: each
// input yields exactly one record, successful or not.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/matsen/pdfcite/internal/author"
	"github.com/matsen/pdfcite/internal/filename"
	"github.com/matsen/pdfcite/internal/layout"
	"github.com/matsen/pdfcite/internal/ocr"
	"github.com/matsen/pdfcite/internal/paper"
	"github.com/matsen/pdfcite/internal/pdfio"
	"github.com/matsen/pdfcite/internal/year"
)

// yearSearchPages widens the year search beyond page one; titles live on the
// first page but years often hide in running heads or reference blocks.
const yearSearchPages = 3

// Source is the document text-layer accessor. The real one reads PDFs;
// tests substitute fixtures.
type Source interface {
	FirstPageBlocks(path string) ([]layout.TextBlock, float64, error)
	Text(path string, maxPages int) (string, error)
}

// PDFSource reads through the pdf text layer.
type PDFSource struct{}

func (PDFSource) FirstPageBlocks(path string) ([]layout.TextBlock, float64, error) {
	return pdfio.FirstPageBlocks(path)
}

func (PDFSource) Text(path string, maxPages int) (string, error) {
	return pdfio.Text(path, maxPages)
}

// OCR is the fallback text extractor. Nil disables the fallback.
type OCR interface {
	ExtractBlocks(ctx context.Context, pdfPath string) ([]layout.TextBlock, string, error)
}

// Processor drives one document through open, text extraction, OCR
// fallback, layout detection, year resolution, author parsing, and
// filename generation.
type Processor struct {
	Source   Source
	OCR      OCR
	Years    *year.Resolver
	Template paper.Template
	Builder  filename.Builder
	Claimer  *filename.Claimer

	Workers      int
	DryRun       bool
	FallbackYear int
}

// New builds a processor with the real PDF source and default settings.
// Callers attach an OCR orchestrator separately when OCR is enabled.
func New(tmpl paper.Template) *Processor {
	return &Processor{
		Source:   PDFSource{},
		Years:    year.NewResolver(),
		Template: tmpl,
		Claimer:  filename.NewClaimer(),
		Workers:  defaultWorkers,
	}
}

// Process runs the per-document state machine and always returns a record.
func (p *Processor) Process(ctx context.Context, path string) *paper.Record {
	rec := &paper.Record{SourcePath: path, Status: paper.StatusPending}

	blocks, pageHeight, err := p.extractText(ctx, path, rec)
	if err != nil {
		rec.Status = paper.StatusError
		return rec
	}

	fullText, textErr := p.Source.Text(path, yearSearchPages)
	pageText := layout.JoinText(blocks)
	if textErr != nil || fullText == "" {
		fullText = pageText
	}

	res := p.detectLayout(blocks, pageHeight, pageText, fullText, rec)
	rec.Title = res.Title

	p.resolveYear(fullText, rec)
	p.parseAuthors(res.AuthorLine, rec)
	p.buildFilename(path, rec)

	if rec.Status == paper.StatusPending {
		rec.Status = paper.StatusSuccess
	}
	return rec
}

// extractText returns first-page blocks, falling back to OCR when the
// embedded text layer is missing or too sparse.
func (p *Processor) extractText(ctx context.Context, path string, rec *paper.Record) ([]layout.TextBlock, float64, error) {
	blocks, pageHeight, err := p.Source.FirstPageBlocks(path)
	density := layout.Density(blocks)
	if err == nil && density >= ocr.MinTextLength {
		return blocks, pageHeight, nil
	}

	if p.OCR != nil {
		ocrBlocks, backend, ocrErr := p.OCR.ExtractBlocks(ctx, path)
		if ocrErr == nil && len(ocrBlocks) > 0 {
			rec.UsedOCR = true
			rec.OCRBackend = backend
			return ocrBlocks, 0, nil
		}
		if err != nil || density == 0 {
			reason := "no embedded text and OCR yielded nothing"
			if ocrErr != nil {
				reason = fmt.Sprintf("no embedded text: %v", ocrErr)
			}
			rec.AddError(paper.StageOCR, paper.KindExtractionFailure, reason)
			return nil, 0, fmt.Errorf("%s", reason)
		}
		// Sparse but present embedded text beats a failed OCR pass.
		return blocks, pageHeight, nil
	}

	if err != nil {
		rec.AddError(paper.StageOpen, paper.KindExtractionFailure, err.Error())
		return nil, 0, err
	}
	if density == 0 {
		rec.AddError(paper.StageTextExtract, paper.KindExtractionFailure, "document has no text layer")
		return nil, 0, fmt.Errorf("no text layer: %s", path)
	}
	return blocks, pageHeight, nil
}

// detectLayout picks title and author line. Labeled thesis cover fields win
// outright; otherwise font geometry decides, or line scoring when the text
// came from OCR without usable metrics.
func (p *Processor) detectLayout(blocks []layout.TextBlock, pageHeight float64, pageText, fullText string, rec *paper.Record) layout.Result {
	if title, authorLine, ok := layout.DetectThesis(fullText); ok {
		return layout.Result{Title: title, AuthorLine: authorLine}
	}

	var res layout.Result
	if rec.UsedOCR && pageHeight == 0 {
		res = layout.DetectLines(pageText)
	} else {
		res = layout.Detect(blocks, pageHeight)
	}
	if res.Ambiguous {
		rec.AddError(paper.StageLayout, paper.KindAmbiguousTitle,
			"multiple equally sized title candidates; picked the topmost")
	}
	if res.Title == "" {
		res = layout.DetectLines(pageText)
	}
	return res
}

func (p *Processor) resolveYear(text string, rec *paper.Record) {
	if c, ok := p.Years.Resolve(text); ok {
		rec.Year = c.Year
		rec.Confidence = c.Confidence
		return
	}
	rec.AddError(paper.StageYear, paper.KindYearNotFound, "no year strategy matched")
	if p.FallbackYear > 0 {
		rec.Year = p.FallbackYear
	}
}

func (p *Processor) parseAuthors(authorLine string, rec *paper.Record) {
	rec.Authors = author.Parse(authorLine)
	if len(rec.Authors) == 0 {
		rec.AddError(paper.StageAuthors, paper.KindAuthorParseFailure,
			"no author names recognized")
	}
}

// buildFilename renders the citation name and, outside dry-run, claims it
// against the destination directory.
func (p *Processor) buildFilename(path string, rec *paper.Record) {
	rendered := author.Render(rec.Authors, p.Template)
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".pdf"
	}
	name := p.Builder.Build(rendered, rec.Year, rec.Title, ext)

	if p.DryRun || p.Claimer == nil {
		rec.NewFilename = name
		return
	}

	claimed, err := p.Claimer.Claim(filepath.Dir(path), name, path)
	if err != nil {
		rec.AddError(paper.StageFilename, paper.KindCollisionUnresolved, err.Error())
		rec.Status = paper.StatusError
		return
	}
	rec.NewFilename = claimed
}

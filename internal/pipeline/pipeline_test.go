package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/pdfcite/internal/filename"
	"github.com/matsen/pdfcite/internal/layout"
	"github.com/matsen/pdfcite/internal/paper"
	"github.com/matsen/pdfcite/internal/year"
)

// fakeSource serves canned text layers keyed by path basename.
type fakeSource struct {
	blocks     map[string][]layout.TextBlock
	pageHeight float64
	text       map[string]string
	blocksErr  error
}

func (f *fakeSource) FirstPageBlocks(path string) ([]layout.TextBlock, float64, error) {
	if f.blocksErr != nil {
		return nil, 0, f.blocksErr
	}
	return f.blocks[filepath.Base(path)], f.pageHeight, nil
}

func (f *fakeSource) Text(path string, maxPages int) (string, error) {
	t, ok := f.text[filepath.Base(path)]
	if !ok {
		return "", errors.New("no text")
	}
	return t, nil
}

type fakeOCR struct {
	blocks  []layout.TextBlock
	backend string
	err     error
	calls   int
}

func (f *fakeOCR) ExtractBlocks(ctx context.Context, pdfPath string) ([]layout.TextBlock, string, error) {
	f.calls++
	return f.blocks, f.backend, f.err
}

// paperBlocks is a plausible first page: large title, author line beneath,
// dense abstract below.
func paperBlocks() []layout.TextBlock {
	return []layout.TextBlock{
		{Text: "Deep Residual Learning for Image Recognition", FontSize: 20, X: 60, Y: 100, Width: 440, Height: 22},
		{Text: "Kaiming He, Xiangyu Zhang, Shaoqing Ren", FontSize: 11, X: 90, Y: 150, Width: 360, Height: 12},
		{Text: "We present a residual learning framework to ease the training of networks that are substantially deeper than those used previously.", FontSize: 10, X: 60, Y: 300, Width: 440, Height: 40},
	}
}

func newTestProcessor(src Source) *Processor {
	tmpl, _ := paper.NewTemplate("first_surname", 3)
	return &Processor{
		Source:   src,
		Years:    year.NewResolver(),
		Template: tmpl,
		Builder:  filename.Builder{},
		Claimer:  filename.NewClaimer(),
		DryRun:   true,
	}
}

func TestProcess_EmbeddedText(t *testing.T) {
	src := &fakeSource{
		blocks:     map[string][]layout.TextBlock{"paper.pdf": paperBlocks()},
		pageHeight: 800,
		text:       map[string]string{"paper.pdf": "Deep Residual Learning. CVPR 2016. We present a residual learning framework."},
	}
	p := newTestProcessor(src)

	rec := p.Process(context.Background(), "/papers/paper.pdf")

	if rec.Status != paper.StatusSuccess {
		t.Fatalf("status = %q, errors = %+v", rec.Status, rec.Errors)
	}
	if rec.Title != "Deep Residual Learning for Image Recognition" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Year != 2016 || rec.Confidence != 100 {
		t.Errorf("Year = %d (conf %d), want 2016 (conf 100)", rec.Year, rec.Confidence)
	}
	if len(rec.Authors) != 3 {
		t.Fatalf("Authors = %+v", rec.Authors)
	}
	if rec.UsedOCR {
		t.Error("UsedOCR = true for a document with a text layer")
	}
	want := "He et al. (2016) - Deep Residual Learning for Image Recognition.pdf"
	if rec.NewFilename != want {
		t.Errorf("NewFilename = %q, want %q", rec.NewFilename, want)
	}
}

func TestProcess_OCRFallback(t *testing.T) {
	src := &fakeSource{blocksErr: errors.New("no text layer")}
	ocrText := []layout.TextBlock{
		{Text: "A Comprehensive Survey of Neural Machine Translation Systems", FontSize: 12, Y: 0},
		{Text: "John Smith, Jane Doe", FontSize: 12, Y: 17},
		{Text: "Abstract We survey the field of neural machine translation in depth.", FontSize: 12, Y: 34},
		{Text: "© 2021 IEEE. Personal use is permitted.", FontSize: 12, Y: 51},
	}
	p := newTestProcessor(src)
	p.OCR = &fakeOCR{blocks: ocrText, backend: "tesseract"}

	rec := p.Process(context.Background(), "/papers/scan.pdf")

	if rec.Status != paper.StatusSuccess {
		t.Fatalf("status = %q, errors = %+v", rec.Status, rec.Errors)
	}
	if !rec.UsedOCR || rec.OCRBackend != "tesseract" {
		t.Errorf("UsedOCR = %v, backend = %q", rec.UsedOCR, rec.OCRBackend)
	}
	if rec.Title != "A Comprehensive Survey of Neural Machine Translation Systems" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Year != 2021 {
		t.Errorf("Year = %d, want 2021 from the copyright line", rec.Year)
	}
	if len(rec.Authors) != 2 {
		t.Errorf("Authors = %+v", rec.Authors)
	}
}

func TestProcess_NoTextNoOCR(t *testing.T) {
	src := &fakeSource{blocksErr: errors.New("encrypted")}
	p := newTestProcessor(src)

	rec := p.Process(context.Background(), "/papers/broken.pdf")

	if rec.Status != paper.StatusError {
		t.Errorf("status = %q, want error", rec.Status)
	}
	if !rec.HasError(paper.KindExtractionFailure) {
		t.Errorf("missing extraction failure, errors = %+v", rec.Errors)
	}
	if rec.SourcePath != "/papers/broken.pdf" {
		t.Errorf("SourcePath = %q", rec.SourcePath)
	}
}

func TestProcess_OCRExhausted(t *testing.T) {
	src := &fakeSource{blocksErr: errors.New("no text layer")}
	p := newTestProcessor(src)
	p.OCR = &fakeOCR{err: errors.New("all backends unavailable")}

	rec := p.Process(context.Background(), "/papers/scan.pdf")

	if rec.Status != paper.StatusError {
		t.Errorf("status = %q, want error", rec.Status)
	}
	if !rec.HasError(paper.KindExtractionFailure) {
		t.Errorf("errors = %+v", rec.Errors)
	}
}

func TestProcess_FallbackYear(t *testing.T) {
	src := &fakeSource{
		blocks:     map[string][]layout.TextBlock{"paper.pdf": paperBlocks()},
		pageHeight: 800,
		text:       map[string]string{"paper.pdf": "No temporal information whatsoever in this text."},
	}
	p := newTestProcessor(src)
	p.FallbackYear = 2024

	rec := p.Process(context.Background(), "/papers/paper.pdf")

	if rec.Year != 2024 {
		t.Errorf("Year = %d, want fallback 2024", rec.Year)
	}
	if !rec.HasError(paper.KindYearNotFound) {
		t.Errorf("fallback year must still be recorded as YearNotFound, errors = %+v", rec.Errors)
	}
	if rec.Status != paper.StatusSuccess {
		t.Errorf("status = %q; a fallback year is not fatal", rec.Status)
	}
}

func TestProcess_ThesisLabelsOverrideLayout(t *testing.T) {
	thesis := "学位论文\n论文题目：基于深度学习的图像识别研究\n作者姓名：张三\n指导教师：李教授\n2023 年 6 月"
	src := &fakeSource{
		blocks:     map[string][]layout.TextBlock{"thesis.pdf": paperBlocks()},
		pageHeight: 800,
		text:       map[string]string{"thesis.pdf": thesis},
	}
	p := newTestProcessor(src)

	rec := p.Process(context.Background(), "/papers/thesis.pdf")

	if rec.Title != "基于深度学习的图像识别研究" {
		t.Errorf("Title = %q, want the labeled thesis title", rec.Title)
	}
	if len(rec.Authors) != 1 || rec.Authors[0].Raw != "张三" {
		t.Errorf("Authors = %+v", rec.Authors)
	}
	if rec.Year != 2023 {
		t.Errorf("Year = %d", rec.Year)
	}
}

func TestProcess_NoAuthorsStillNamed(t *testing.T) {
	blocks := []layout.TextBlock{
		{Text: "An Anonymous Technical Report on Distributed Consensus", FontSize: 18, X: 60, Y: 100, Width: 400, Height: 20},
		{Text: "This report describes a protocol for reaching agreement among unreliable processes in a network.", FontSize: 10, X: 60, Y: 300, Width: 440, Height: 30},
	}
	src := &fakeSource{
		blocks:     map[string][]layout.TextBlock{"anon.pdf": blocks},
		pageHeight: 800,
		text:       map[string]string{"anon.pdf": "Published 2019."},
	}
	p := newTestProcessor(src)

	rec := p.Process(context.Background(), "/papers/anon.pdf")

	if !rec.HasError(paper.KindAuthorParseFailure) {
		t.Errorf("errors = %+v", rec.Errors)
	}
	want := "Unknown (2019) - An Anonymous Technical Report on Distributed Consensus.pdf"
	if rec.NewFilename != want {
		t.Errorf("NewFilename = %q, want %q", rec.NewFilename, want)
	}
	if rec.Status != paper.StatusSuccess {
		t.Errorf("status = %q; missing authors are not fatal", rec.Status)
	}
}

func TestProcessDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.pdf", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	src := &fakeSource{
		blocks: map[string][]layout.TextBlock{
			"a.pdf": paperBlocks(),
			"b.pdf": paperBlocks(),
		},
		pageHeight: 800,
		text: map[string]string{
			"a.pdf": "CVPR 2016",
			"b.pdf": "CVPR 2017",
		},
	}
	p := newTestProcessor(src)
	p.Workers = 2

	records, err := p.ProcessDir(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("ProcessDir() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (txt file excluded)", len(records))
	}
	// Input order is sorted by path.
	if filepath.Base(records[0].SourcePath) != "a.pdf" || filepath.Base(records[1].SourcePath) != "b.pdf" {
		t.Errorf("record order: %q, %q", records[0].SourcePath, records[1].SourcePath)
	}
	if records[0].Year != 2016 || records[1].Year != 2017 {
		t.Errorf("years = %d, %d", records[0].Year, records[1].Year)
	}
}

func TestProcessDir_Empty(t *testing.T) {
	p := newTestProcessor(&fakeSource{})
	_, err := p.ProcessDir(context.Background(), t.TempDir(), false)
	if !errors.Is(err, ErrNoPDFs) {
		t.Errorf("err = %v, want ErrNoPDFs", err)
	}
}

func TestProcessDir_Unreadable(t *testing.T) {
	p := newTestProcessor(&fakeSource{})
	_, err := p.ProcessDir(context.Background(), "/nonexistent/path", false)
	if err == nil {
		t.Error("expected an error for an unreadable directory")
	}
}

func TestFindPDFs_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{
		filepath.Join(dir, "top.pdf"),
		filepath.Join(sub, "nested.PDF"),
		filepath.Join(sub, "skip.txt"),
	} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	flat, err := FindPDFs(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat) != 1 {
		t.Errorf("flat scan found %d files, want 1", len(flat))
	}

	deep, err := FindPDFs(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(deep) != 2 {
		t.Errorf("recursive scan found %d files, want 2 (case-insensitive ext)", len(deep))
	}
}

func TestCollisionAcrossDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x.pdf", "y.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	src := &fakeSource{
		blocks: map[string][]layout.TextBlock{
			"x.pdf": paperBlocks(),
			"y.pdf": paperBlocks(),
		},
		pageHeight: 800,
		text: map[string]string{
			"x.pdf": "CVPR 2016",
			"y.pdf": "CVPR 2016",
		},
	}
	p := newTestProcessor(src)
	p.DryRun = false
	p.Workers = 1

	records, err := p.ProcessDir(context.Background(), dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].NewFilename == records[1].NewFilename {
		t.Fatalf("both documents claimed %q", records[0].NewFilename)
	}
	base := "He et al. (2016) - Deep Residual Learning for Image Recognition"
	if records[0].NewFilename != base+".pdf" || records[1].NewFilename != base+" (1).pdf" {
		t.Errorf("claims = %q, %q", records[0].NewFilename, records[1].NewFilename)
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "x.pdf")
	if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	p := newTestProcessor(&fakeSource{})
	p.DryRun = false
	rec := &paper.Record{
		SourcePath:  source,
		NewFilename: "He (2016) - Title.pdf",
		Status:      paper.StatusSuccess,
	}
	p.Apply([]*paper.Record{rec})

	if _, err := os.Stat(filepath.Join(dir, "He (2016) - Title.pdf")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Errorf("source still present: %v", err)
	}
}

func TestApply_DryRunNoop(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "x.pdf")
	if err := os.WriteFile(source, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	p := newTestProcessor(&fakeSource{})
	rec := &paper.Record{
		SourcePath:  source,
		NewFilename: "He (2016) - Title.pdf",
		Status:      paper.StatusSuccess,
	}
	p.Apply([]*paper.Record{rec})

	if _, err := os.Stat(source); err != nil {
		t.Errorf("dry-run must not rename: %v", err)
	}
}

func TestApply_RenameFailureRecorded(t *testing.T) {
	p := newTestProcessor(&fakeSource{})
	p.DryRun = false
	rec := &paper.Record{
		SourcePath:  filepath.Join(t.TempDir(), "missing.pdf"),
		NewFilename: "He (2016) - Title.pdf",
		Status:      paper.StatusSuccess,
	}
	p.Apply([]*paper.Record{rec})

	if rec.Status != paper.StatusError || !rec.HasError(paper.KindRenameFailed) {
		t.Errorf("status = %q, errors = %+v", rec.Status, rec.Errors)
	}
}

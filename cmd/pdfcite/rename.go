package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/pdfcite/internal/config"
	"github.com/matsen/pdfcite/internal/export"
	"github.com/matsen/pdfcite/internal/filename"
	"github.com/matsen/pdfcite/internal/ocr"
	"github.com/matsen/pdfcite/internal/paper"
	"github.com/matsen/pdfcite/internal/pipeline"
	"github.com/matsen/pdfcite/internal/storage"
	"github.com/matsen/pdfcite/internal/year"
)

var (
	renameDir        string
	renameRecursive  bool
	renameExecute    bool
	renameFormat     string
	renameNumAuthors int
	renameNoOCR      bool
	renameWorkers    int
	renameCSVPath    string
	renameXLSXPath   string
	renameVerbose    bool
)

func init() {
	renameCmd.Flags().StringVar(&renameDir, "dir", ".", "Directory containing PDFs")
	renameCmd.Flags().BoolVar(&renameRecursive, "recursive", false, "Scan subdirectories too")
	renameCmd.Flags().BoolVar(&renameExecute, "execute", false, "Perform the renames (default is a dry-run preview)")
	renameCmd.Flags().StringVar(&renameFormat, "format", "", "Author format ("+paper.FormatNames()+")")
	renameCmd.Flags().IntVar(&renameNumAuthors, "num-authors", 0, "Author count for n_surnames/n_full formats")
	renameCmd.Flags().BoolVar(&renameNoOCR, "no-ocr", false, "Disable the OCR fallback for scanned documents")
	renameCmd.Flags().IntVar(&renameWorkers, "workers", 0, "Parallel document workers")
	renameCmd.Flags().StringVar(&renameCSVPath, "output", "", "Write records to a CSV file")
	renameCmd.Flags().StringVar(&renameXLSXPath, "xlsx", "", "Write records to an XLSX workbook")
	renameCmd.Flags().BoolVar(&renameVerbose, "verbose", false, "Debug logging")
	rootCmd.AddCommand(renameCmd)
}

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Extract metadata and rename PDFs in a directory",
	Long: `Extract title, authors and year from each PDF in a directory and
propose citation-style filenames.

Without --execute this is a preview: nothing is renamed and collision
suffixes are not assigned.

Examples:
  pdfcite rename --dir ~/papers
  pdfcite rename --dir ~/papers --recursive --execute
  pdfcite rename --dir ~/papers --format n_surnames --num-authors 2
  pdfcite rename --dir scans --output report.csv --xlsx report.xlsx`,
	RunE: runRename,
}

// RenameSummary is the JSON envelope for a batch.
type RenameSummary struct {
	Directory string          `json:"directory"`
	DryRun    bool            `json:"dry_run"`
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	RunID     int64           `json:"run_id,omitempty"`
	Records   []*paper.Record `json:"records"`
}

func runRename(cmd *cobra.Command, args []string) error {
	setupLogging(renameVerbose)

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	applyDisabledBackends(cfg.DisabledBackends)

	tmpl, err := buildTemplate(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	proc := newProcessor(cfg, tmpl)
	start := time.Now()

	records, err := proc.ProcessDir(context.Background(), renameDir, renameRecursive)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	proc.Apply(records)

	summary := summarize(records, proc.DryRun)
	summary.RunID = saveHistory(cfg, start, records, proc.DryRun)

	if err := writeExports(records); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		printSummaryHuman(summary)
		return nil
	}
	return outputJSON(summary)
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// applyDisabledBackends maps config entries onto the per-backend
// environment switches checked at backend-list construction.
func applyDisabledBackends(names []string) {
	for _, name := range names {
		env := "PDFCITE_DISABLE_" + strings.ToUpper(strings.TrimSpace(name))
		os.Setenv(env, "1")
	}
}

func buildTemplate(cfg *config.GlobalConfig) (paper.Template, error) {
	format := cfg.DefaultFormat
	if renameFormat != "" {
		format = renameFormat
	}
	numAuthors := cfg.NumAuthors
	if renameNumAuthors > 0 {
		numAuthors = renameNumAuthors
	}
	return paper.NewTemplate(format, numAuthors)
}

func newProcessor(cfg *config.GlobalConfig, tmpl paper.Template) *pipeline.Processor {
	proc := pipeline.New(tmpl)
	proc.DryRun = !renameExecute
	proc.FallbackYear = cfg.FallbackYear
	proc.Builder = filename.Builder{MaxLength: cfg.MaxFilenameLength}

	resolver := year.NewResolver()
	resolver.CenturyPivot = cfg.CenturyPivot
	proc.Years = resolver

	proc.Workers = cfg.Workers
	if renameWorkers > 0 {
		proc.Workers = renameWorkers
	}

	if !renameNoOCR {
		proc.OCR = ocr.NewOrchestrator(ocr.NewRegistry(nil), nil)
	}
	return proc
}

func summarize(records []*paper.Record, dryRun bool) *RenameSummary {
	s := &RenameSummary{
		Directory: renameDir,
		DryRun:    dryRun,
		Total:     len(records),
		Records:   records,
	}
	for _, rec := range records {
		if rec.Status == paper.StatusSuccess {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// saveHistory is best-effort: a broken history database never fails the
// batch.
func saveHistory(cfg *config.GlobalConfig, start time.Time, records []*paper.Record, dryRun bool) int64 {
	if cfg.HistoryPath == "" {
		return 0
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0755); err != nil {
		slog.Warn("skipping run history", "error", err)
		return 0
	}
	db, err := storage.OpenDB(cfg.HistoryPath)
	if err != nil {
		slog.Warn("skipping run history", "error", err)
		return 0
	}
	defer db.Close()

	runID, err := db.SaveRun(renameDir, dryRun, start, records)
	if err != nil {
		slog.Warn("saving run history failed", "error", err)
		return 0
	}
	return runID
}

func writeExports(records []*paper.Record) error {
	if renameCSVPath != "" {
		f, err := os.Create(renameCSVPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", renameCSVPath, err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, records); err != nil {
			return err
		}
	}
	if renameXLSXPath != "" {
		if err := export.WriteXLSX(renameXLSXPath, records); err != nil {
			return err
		}
	}
	return nil
}

func printSummaryHuman(s *RenameSummary) {
	mode := "preview"
	if !s.DryRun {
		mode = "executed"
	}
	outputHuman("%s: %d documents, %d ok, %d failed (%s)\n\n", s.Directory, s.Total, s.Succeeded, s.Failed, mode)
	for _, rec := range s.Records {
		if rec.NewFilename != "" {
			outputHuman("  %s\n    -> %s\n", rec.SourcePath, rec.NewFilename)
		} else {
			outputHuman("  %s\n    !! failed\n", rec.SourcePath)
		}
		for _, e := range rec.Errors {
			outputHuman("       %s: %s\n", e.Kind, e.Message)
		}
	}
}

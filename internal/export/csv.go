// Package export writes finalized extraction records to CSV, XLSX and
// BibTeX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/pdfcite/internal/paper"
)

// csvHeader is the stable column order shared by the CSV and XLSX writers.
var csvHeader = []string{
	"source_path", "new_filename", "title", "authors", "year",
	"confidence", "used_ocr", "ocr_backend", "status", "errors",
}

// WriteCSV writes one row per record, in input order.
func WriteCSV(w io.Writer, records []*paper.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(recordRow(rec)); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", rec.SourcePath, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordRow(rec *paper.Record) []string {
	yearStr := ""
	if rec.Year != 0 {
		yearStr = strconv.Itoa(rec.Year)
	}
	return []string{
		rec.SourcePath,
		rec.NewFilename,
		rec.Title,
		authorNames(rec.Authors),
		yearStr,
		strconv.Itoa(rec.Confidence),
		strconv.FormatBool(rec.UsedOCR),
		rec.OCRBackend,
		rec.Status,
		errorSummary(rec.Errors),
	}
}

func authorNames(authors []paper.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Raw
	}
	return strings.Join(names, "; ")
}

func errorSummary(errs []paper.ErrorEntry) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = fmt.Sprintf("%s@%s: %s", e.Kind, e.Stage, e.Message)
	}
	return strings.Join(parts, "; ")
}

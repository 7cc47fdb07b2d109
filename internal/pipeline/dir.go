package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/matsen/pdfcite/internal/paper"
)

const defaultWorkers = 4

// ErrNoPDFs is the only batch-fatal condition besides an unreadable
// directory.
var ErrNoPDFs = errors.New("no pdf files found")

// ProcessDir enumerates PDFs under dir and processes them on a bounded
// worker pool. Records come back in input order, one per document.
func (p *Processor) ProcessDir(ctx context.Context, dir string, recursive bool) ([]*paper.Record, error) {
	paths, err := FindPDFs(dir, recursive)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPDFs, dir)
	}

	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)
	records := make([]*paper.Record, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				records[j.idx] = p.Process(ctx, j.path)
			}
		}()
	}

	for i, path := range paths {
		select {
		case jobs <- job{idx: i, path: path}:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	// Unprocessed slots only occur on cancellation, handled above.
	return records, nil
}

// FindPDFs lists *.pdf files under dir, sorted for deterministic batches.
func FindPDFs(dir string, recursive bool) ([]string, error) {
	var paths []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return err
				}
				slog.Warn("skipping unreadable entry", "path", path, "error", err)
				return nil
			}
			if !d.IsDir() && isPDF(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isPDF(e.Name()) {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Apply performs the renames for successful records. Under dry-run it is a
// no-op. Rename failures are recorded on the document and release the
// claimed name.
func (p *Processor) Apply(records []*paper.Record) {
	if p.DryRun {
		return
	}
	for _, rec := range records {
		if rec == nil || rec.Status != paper.StatusSuccess || rec.NewFilename == "" {
			continue
		}
		dir := filepath.Dir(rec.SourcePath)
		target := filepath.Join(dir, rec.NewFilename)
		if filepath.Clean(target) == filepath.Clean(rec.SourcePath) {
			continue // already named correctly
		}
		if err := os.Rename(rec.SourcePath, target); err != nil {
			rec.AddError(paper.StageRename, paper.KindRenameFailed, err.Error())
			rec.Status = paper.StatusError
			if p.Claimer != nil {
				p.Claimer.Release(dir, rec.NewFilename)
			}
			rec.NewFilename = ""
			continue
		}
		slog.Info("renamed", "from", rec.SourcePath, "to", target)
	}
}

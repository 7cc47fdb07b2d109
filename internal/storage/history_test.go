package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/pdfcite/internal/paper"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecords() []*paper.Record {
	return []*paper.Record{
		{
			SourcePath:  "/papers/a.pdf",
			NewFilename: "He et al. (2016) - Deep Residual Learning.pdf",
			Title:       "Deep Residual Learning",
			Authors:     []paper.Author{{Raw: "Kaiming He", Surname: "He", Given: "Kaiming"}},
			Year:        2016,
			Confidence:  100,
			Status:      paper.StatusSuccess,
		},
		{
			SourcePath: "/papers/b.pdf",
			Status:     paper.StatusError,
			Errors: []paper.ErrorEntry{
				{Stage: paper.StageOpen, Kind: paper.KindExtractionFailure, Message: "encrypted"},
			},
		},
	}
}

func TestSaveAndListRuns(t *testing.T) {
	db := openTestDB(t)

	started := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	runID, err := db.SaveRun("/papers", true, started, testRecords())
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("run id is zero")
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.Directory != "/papers" || !r.DryRun {
		t.Errorf("run = %+v", r)
	}
	if r.Total != 2 || r.Succeeded != 1 || r.Failed != 1 {
		t.Errorf("counts = %d/%d/%d", r.Total, r.Succeeded, r.Failed)
	}
	if !r.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", r.StartedAt, started)
	}
}

func TestListRuns_MostRecentFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := db.SaveRun("/papers", false, base.Add(time.Duration(i)*time.Hour), nil); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want limit 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs out of order: %v, %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestRecordsForRun(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.SaveRun("/papers", false, time.Now(), testRecords())
	if err != nil {
		t.Fatal(err)
	}

	records, err := db.RecordsForRun(runID)
	if err != nil {
		t.Fatalf("RecordsForRun() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Title != "Deep Residual Learning" || first.Year != 2016 {
		t.Errorf("first record = %+v", first)
	}
	if len(first.Authors) != 1 || first.Authors[0].Surname != "He" {
		t.Errorf("authors round-trip failed: %+v", first.Authors)
	}

	second := records[1]
	if second.Status != paper.StatusError || !second.HasError(paper.KindExtractionFailure) {
		t.Errorf("second record = %+v", second)
	}
}

func TestRecordsForRun_UnknownRun(t *testing.T) {
	db := openTestDB(t)
	records, err := db.RecordsForRun(999)
	if err != nil {
		t.Fatalf("RecordsForRun() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records for unknown run", len(records))
	}
}

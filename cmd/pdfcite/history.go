package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/pdfcite/internal/config"
	"github.com/matsen/pdfcite/internal/export"
	"github.com/matsen/pdfcite/internal/storage"
)

var (
	historyLimit  int
	historyRun    int64
	historyBibtex bool
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "Show the records of one run")
	historyCmd.Flags().BoolVar(&historyBibtex, "bibtex", false, "With --run: output the run's records as BibTeX")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past processing runs",
	Long: `Show past processing runs from the local history database.

Examples:
  pdfcite history
  pdfcite history --run 3
  pdfcite history --run 3 --bibtex > refs.bib`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if cfg.HistoryPath == "" {
		exitWithError(ExitConfigError, "no history path configured")
	}

	db, err := storage.OpenDB(cfg.HistoryPath)
	if err != nil {
		exitWithError(ExitError, "opening history: %v", err)
	}
	defer db.Close()

	if historyRun > 0 {
		return showRun(db, historyRun)
	}
	return listRuns(db)
}

func listRuns(db *storage.DB) error {
	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		exitWithError(ExitError, "listing runs: %v", err)
	}

	if humanOutput {
		for _, r := range runs {
			mode := "preview"
			if !r.DryRun {
				mode = "executed"
			}
			outputHuman("  #%-4d %s  %s  %d docs (%d ok, %d failed)  %s\n",
				r.ID, r.StartedAt.Format(time.DateTime), mode, r.Total, r.Succeeded, r.Failed, r.Directory)
		}
		return nil
	}
	return outputJSON(runs)
}

func showRun(db *storage.DB, runID int64) error {
	records, err := db.RecordsForRun(runID)
	if err != nil {
		exitWithError(ExitError, "loading run %d: %v", runID, err)
	}
	if len(records) == 0 {
		exitWithError(ExitDataError, "no records for run %d", runID)
	}

	if historyBibtex {
		fmt.Print(export.ToBibTeXList(records))
		return nil
	}
	if humanOutput {
		for _, rec := range records {
			outputHuman("  %s\n    -> %s [%s]\n", rec.SourcePath, rec.NewFilename, rec.Status)
		}
		return nil
	}
	return outputJSON(records)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/pdfcite/internal/config"
	"github.com/matsen/pdfcite/internal/ocr"
)

func init() {
	rootCmd.AddCommand(backendsCmd)
}

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List OCR backends and their availability",
	Long: `List the OCR backends in fallback priority order, with whether each
is installed and enabled.

A backend can be disabled via config (disabled_backends) or an
environment switch like PDFCITE_DISABLE_TESSERACT=1.`,
	RunE: runBackends,
}

// BackendStatus is one row of the backends listing.
type BackendStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

func runBackends(cmd *cobra.Command, args []string) error {
	if cfg, err := config.LoadGlobalConfig(); err == nil {
		applyDisabledBackends(cfg.DisabledBackends)
	}

	registry := ocr.NewRegistry(nil)
	var statuses []BackendStatus
	for _, b := range registry.All() {
		statuses = append(statuses, BackendStatus{Name: b.Name(), Available: b.Available()})
	}

	if humanOutput {
		for _, s := range statuses {
			mark := "unavailable"
			if s.Available {
				mark = "available"
			}
			outputHuman("  %-12s %s\n", s.Name, mark)
		}
		return nil
	}
	return outputJSON(statuses)
}

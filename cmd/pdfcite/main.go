// Package main provides the pdfcite CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	// Backend disable switches may live in a .env next to the papers.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdfcite",
	Short: "Rename academic PDFs to citation-style filenames",
	Long: `pdfcite extracts title, authors and publication year from academic
PDFs and renames them to "Author (Year) - Title.pdf".

Extraction reads the embedded text layer first and falls back to OCR for
scanned documents. Runs are previews by default; pass --execute to
rename. All commands output JSON by default for easy scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

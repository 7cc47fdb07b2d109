package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/pdfcite/internal/paper"
)

func init() {
	rootCmd.AddCommand(formatsCmd)
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List author formats for generated filenames",
	RunE:  runFormats,
}

// FormatInfo describes one author format.
type FormatInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func runFormats(cmd *cobra.Command, args []string) error {
	var infos []FormatInfo
	for _, f := range paper.Formats {
		infos = append(infos, FormatInfo{Name: string(f), Description: f.Describe()})
	}

	if humanOutput {
		for _, info := range infos {
			outputHuman("  %-14s %s\n", info.Name, info.Description)
		}
		return nil
	}
	return outputJSON(infos)
}

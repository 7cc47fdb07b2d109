package paper

import (
	"fmt"
	"strings"
)

// Format selects how author names are rendered in generated filenames.
type Format string

const (
	FirstSurname Format = "first_surname"
	FirstFull    Format = "first_full"
	AllSurnames  Format = "all_surnames"
	AllFull      Format = "all_full"
	NSurnames    Format = "n_surnames"
	NFull        Format = "n_full"
)

// Formats lists all valid formats in display order.
var Formats = []Format{FirstSurname, FirstFull, AllSurnames, AllFull, NSurnames, NFull}

// ParseFormat validates a format string from user input.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Formats {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid author format: %q (valid: %s)", s, FormatNames())
}

// FormatNames returns the valid format names joined for help text.
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Describe returns a human-readable description of a format.
func (f Format) Describe() string {
	switch f {
	case FirstSurname:
		return "First author surname only (e.g., Wang)"
	case FirstFull:
		return "First author full name (e.g., Weihao Wang)"
	case AllSurnames:
		return "All authors surnames (e.g., Wang, Zhang, You)"
	case AllFull:
		return "All authors full names (e.g., Weihao Wang, Rufeng Zhang)"
	case NSurnames:
		return "First N authors surnames"
	case NFull:
		return "First N authors full names"
	}
	return ""
}

// Template is the per-run rendering configuration. It is read-only after
// construction and shared by reference across all documents in a batch.
type Template struct {
	Format     Format `json:"format"`
	NumAuthors int    `json:"num_authors"`
}

// NewTemplate validates and builds a Template.
func NewTemplate(format string, numAuthors int) (Template, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return Template{}, err
	}
	if numAuthors < 1 {
		return Template{}, fmt.Errorf("num-authors must be >= 1, got %d", numAuthors)
	}
	return Template{Format: f, NumAuthors: numAuthors}, nil
}

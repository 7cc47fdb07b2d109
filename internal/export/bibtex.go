package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matsen/pdfcite/internal/paper"
)

// ToBibTeX renders one extraction as a BibTeX entry. Extraction yields no
// venue information, so entries are @misc; the citation key is derived from
// the first author's surname and the year.
func ToBibTeX(rec *paper.Record) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@misc{%s,\n", citationKey(rec)))
	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", formatAuthors(rec.Authors)))
	}
	if rec.Title != "" {
		b.WriteString(fmt.Sprintf("  title = {%s},\n", escapeLatex(rec.Title)))
	}
	if rec.Year != 0 {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", rec.Year))
	}
	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList renders multiple records, blank line separated.
func ToBibTeXList(records []*paper.Record) string {
	var entries []string
	for _, rec := range records {
		entries = append(entries, ToBibTeX(rec))
	}
	return strings.Join(entries, "\n")
}

var keyCleanRe = regexp.MustCompile(`[^a-zA-Z0-9\p{Han}]+`)

// citationKey builds "surname2023"-style keys; "untitled" when nothing is
// known.
func citationKey(rec *paper.Record) string {
	name := ""
	if len(rec.Authors) > 0 {
		name = rec.Authors[0].DisplaySurname()
	}
	name = keyCleanRe.ReplaceAllString(name, "")
	if name == "" {
		name = "untitled"
	}
	if rec.Year != 0 {
		return fmt.Sprintf("%s%d", strings.ToLower(name), rec.Year)
	}
	return strings.ToLower(name)
}

// formatAuthors renders authors in BibTeX style: "Last, First and Last,
// First". CJK names stay whole.
func formatAuthors(authors []paper.Author) string {
	var formatted []string
	for _, a := range authors {
		switch {
		case a.FullNameRequired || a.Surname == "":
			formatted = append(formatted, escapeLatex(a.Raw))
		case a.Given != "":
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(a.Surname), escapeLatex(a.Given)))
		default:
			formatted = append(formatted, escapeLatex(a.Surname))
		}
	}
	return strings.Join(formatted, " and ")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}

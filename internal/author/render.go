package author

import (
	"strings"

	"github.com/matsen/pdfcite/internal/paper"
)

// Render formats an author list according to the template. The *_surnames
// variants use surnames for Latin authors but fall back to the full name for
// CJK authors. The n_* variants cap the list at tmpl.NumAuthors and append
// an et-al marker localized to the dominant script; all_* variants never
// truncate. Returns "" for an empty list.
func Render(authors []paper.Author, tmpl paper.Template) string {
	if len(authors) == 0 {
		return ""
	}

	switch tmpl.Format {
	case paper.FirstSurname:
		return withEtAl(authors[0].DisplaySurname(), len(authors) > 1, authors)
	case paper.FirstFull:
		return withEtAl(authors[0].FullName(), len(authors) > 1, authors)
	case paper.AllSurnames:
		return joinNames(authors, paper.Author.DisplaySurname)
	case paper.AllFull:
		return joinNames(authors, paper.Author.FullName)
	case paper.NSurnames:
		capped, truncated := capList(authors, tmpl.NumAuthors)
		return withEtAl(joinNames(capped, paper.Author.DisplaySurname), truncated, authors)
	case paper.NFull:
		capped, truncated := capList(authors, tmpl.NumAuthors)
		return withEtAl(joinNames(capped, paper.Author.FullName), truncated, authors)
	}
	return authors[0].DisplaySurname()
}

func capList(authors []paper.Author, n int) ([]paper.Author, bool) {
	if len(authors) > n {
		return authors[:n], true
	}
	return authors, false
}

func joinNames(authors []paper.Author, name func(paper.Author) string) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = name(a)
	}
	return strings.Join(names, ", ")
}

// withEtAl appends the et-al marker when the rendered list omits authors.
// The marker follows the dominant script of the full list: 等 for CJK,
// "et al." otherwise.
func withEtAl(rendered string, truncated bool, all []paper.Author) string {
	if !truncated {
		return rendered
	}
	if dominantCJK(all) {
		return rendered + "等"
	}
	return rendered + " et al."
}

func dominantCJK(authors []paper.Author) bool {
	cjk := 0
	for _, a := range authors {
		if a.Script == paper.ScriptCJK || a.Script == paper.ScriptMixed {
			cjk++
		}
	}
	return cjk*2 > len(authors)
}

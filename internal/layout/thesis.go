package layout

import (
	"regexp"
	"strings"
)

// Chinese dissertation covers carry labeled fields instead of font-size
// structure. When a title label is present, its bound values override any
// font-size analysis.
var (
	thesisTitleRe  = regexp.MustCompile(`(?m)^.*?(?:论文题目|题\s*目)[：:\s]*(.+)$`)
	thesisAuthorRe = regexp.MustCompile(`(?m)^.*?(?:作者姓名|作\s*者)[：:\s]*(.+)$`)
)

// DetectThesis scans for labeled title/author fields. ok is false when no
// title label is found; font-size analysis should then proceed normally.
func DetectThesis(text string) (title, authorLine string, ok bool) {
	m := thesisTitleRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	title = strings.TrimSpace(m[1])
	if title == "" {
		return "", "", false
	}

	if am := thesisAuthorRe.FindStringSubmatch(text); am != nil {
		authorLine = strings.TrimSpace(am[1])
	}
	return title, authorLine, true
}

// Package author parses raw author lines into structured names and renders
// them for citation filenames.
package author

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matsen/pdfcite/internal/paper"
)

// footnoteMarkers are stripped before splitting: affiliation asterisks,
// daggers, superscript and circled numbers.
var footnoteMarkers = []rune{
	'*', '∗', '⁎', '✱', '＊',
	'†', '‡', '§', '¶', '∥',
	'¹', '²', '³', '⁴', '⁵', '⁶', '⁷', '⁸', '⁹', '⁰',
	'₁', '₂', '₃', '₄', '₅', '₆', '₇', '₈', '₉', '₀',
	'①', '②', '③', '④', '⑤', '⑥', '⑦', '⑧', '⑨',
	'♠', '♣', '♦', '♥', '★', '☆',
}

var (
	parentheticalRe = regexp.MustCompile(`[(（][^)）]*[)）]`)
	digitsRe        = regexp.MustCompile(`\d+`)
	segmentSplitRe  = regexp.MustCompile(`\s*(?:,|，|、|\n|&|\band\b)\s*`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// suffixTokens are generational suffixes excluded from surname determination.
var suffixTokens = map[string]string{
	"jr": "Jr.", "jr.": "Jr.",
	"sr": "Sr.", "sr.": "Sr.",
	"ii": "II", "iii": "III", "iv": "IV",
}

// stopWords are tokens that indicate a segment is not a name.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"abstract": true, "introduction": true, "university": true,
	"department": true, "institute": true,
}

// Parse splits a raw author line into structured authors. Parenthetical
// affiliation markers are removed before splitting so commas inside them do
// not produce spurious segments. An unsegmentable input yields nil.
func Parse(raw string) []paper.Author {
	cleaned := clean(raw)
	if cleaned == "" {
		return nil
	}

	var authors []paper.Author
	for _, segment := range segmentSplitRe.Split(cleaned, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		for _, a := range parseSegment(segment) {
			authors = append(authors, a)
		}
	}
	return authors
}

// clean strips footnote markers, affiliations in parentheses, and digits.
func clean(s string) string {
	s = parentheticalRe.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		for _, m := range footnoteMarkers {
			if r == m {
				return ' '
			}
		}
		return r
	}, s)
	s = digitsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// parseSegment turns one delimiter-free segment into zero or more authors.
// A segment is usually a single name, but unspaced CJK text may carry
// several names in a row.
func parseSegment(segment string) []paper.Author {
	script := Classify(segment)
	if script == paper.ScriptLatin {
		if a, ok := parseLatin(segment); ok {
			return []paper.Author{a}
		}
		return nil
	}
	return parseCJK(segment, script)
}

// Classify reports the dominant script of a segment. A segment mixing CJK
// and Latin letters is Mixed and treated as CJK for rendering.
func Classify(s string) paper.Script {
	var cjk, latin int
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Han, r):
			cjk++
		case unicode.IsLetter(r):
			latin++
		}
	}
	switch {
	case cjk == 0:
		return paper.ScriptLatin
	case latin >= 2:
		return paper.ScriptMixed
	default:
		return paper.ScriptCJK
	}
}

// parseLatin tokenizes a Latin-script name: last token is the surname,
// preceding tokens the given name, recognized suffixes set aside.
func parseLatin(segment string) (paper.Author, bool) {
	var tokens []string
	suffix := ""
	for _, word := range strings.Fields(segment) {
		if s, ok := suffixTokens[strings.ToLower(word)]; ok {
			suffix = s
			continue
		}
		if w, ok := nameWord(word); ok {
			tokens = append(tokens, w)
		}
	}
	if len(tokens) == 0 {
		return paper.Author{}, false
	}

	surname := tokens[len(tokens)-1]
	if stopWords[strings.ToLower(surname)] {
		return paper.Author{}, false
	}

	raw := strings.Join(tokens, " ")
	if suffix != "" {
		raw += " " + suffix
	}
	return paper.Author{
		Raw:     raw,
		Script:  paper.ScriptLatin,
		Surname: surname,
		Given:   strings.Join(tokens[:len(tokens)-1], " "),
		Suffix:  suffix,
	}, true
}

var (
	initialsRe = regexp.MustCompile(`^[A-Z]{1,4}$`)
	nameRe     = regexp.MustCompile(`^[A-Z\x{00C0}-\x{024F}][A-Za-z\x{00C0}-\x{024F}\-']+$`)
)

// nameWord validates a single token as part of a name. Initials like "T.C."
// are normalized to "TC"; all-lowercase tokens are rejected.
func nameWord(word string) (string, bool) {
	word = strings.TrimRight(word, ".")
	if word == "" {
		return "", false
	}
	if word == strings.ToLower(word) {
		return "", false
	}
	initials := strings.ReplaceAll(word, ".", "")
	if initialsRe.MatchString(initials) {
		return initials, true
	}
	if len([]rune(word)) < 2 {
		return "", false
	}
	if nameRe.MatchString(word) {
		return word, true
	}
	// Fallback: accept capitalized mostly-alphabetic tokens.
	runes := []rune(word)
	if unicode.IsUpper(runes[0]) {
		alpha := 0
		for _, r := range runes {
			if unicode.IsLetter(r) {
				alpha++
			}
		}
		if float64(alpha) >= float64(len(runes))*0.7 {
			return word, true
		}
	}
	return "", false
}

var cjkRunRe = regexp.MustCompile(`\p{Han}{2,4}`)

// parseCJK handles CJK and mixed segments. No surname/given split is
// performed; a single surname character is never meaningful on its own, so
// the full name is always required at render time.
func parseCJK(segment string, script paper.Script) []paper.Author {
	segment = spacesRe.ReplaceAllString(segment, " ")

	if script == paper.ScriptMixed {
		return []paper.Author{{
			Raw:              strings.TrimSpace(segment),
			Script:           paper.ScriptMixed,
			FullNameRequired: true,
		}}
	}

	// Whitespace-separated CJK names split cleanly; otherwise take runs of
	// 2-4 Han characters as individual names.
	var names []string
	for _, field := range strings.Fields(segment) {
		names = append(names, cjkRunRe.FindAllString(field, -1)...)
	}

	var authors []paper.Author
	for _, name := range names {
		runes := []rune(name)
		authors = append(authors, paper.Author{
			Raw:              name,
			Script:           paper.ScriptCJK,
			Surname:          string(runes[0]),
			FullNameRequired: true,
		})
	}
	return authors
}

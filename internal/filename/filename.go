// Package filename builds citation-style filenames from extracted paper
// metadata and resolves collisions in the destination directory.
package filename

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultMaxLength bounds the generated name, in runes.
	DefaultMaxLength = 200

	// Placeholders keep every template slot occupied when a component
	// could not be extracted.
	UnknownAuthors = "Unknown"
	UnknownYear    = "n.d."
	UnknownTitle   = "Untitled"
)

// invalidChars maps characters forbidden in filesystem names to visually
// similar full-width or Unicode substitutes. Substitutes are themselves
// valid, which makes Sanitize idempotent.
var invalidChars = strings.NewReplacer(
	"<", "＜",
	">", "＞",
	":", "：",
	`"`, "＂",
	"/", "⁄",
	`\`, "＼",
	"|", "｜",
	"?", "？",
	"*", "＊",
)

var spaceRe = regexp.MustCompile(`\s+`)

// Sanitize replaces filesystem-invalid characters with lookalike
// substitutes, collapses runs of whitespace, and trims. All other Unicode,
// CJK included, passes through untouched.
func Sanitize(name string) string {
	name = invalidChars.Replace(name)
	name = spaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Builder renders "{authors} ({year}) - {title}{ext}" names.
type Builder struct {
	MaxLength int // runes; DefaultMaxLength when zero
}

// Build assembles the citation filename from a rendered author string, a
// resolved year (0 when unknown), a title, and the original extension
// (".pdf"). Absent components become placeholders so the template shape is
// stable. When the name exceeds MaxLength the title is truncated first, on
// rune boundaries; authors and year are preserved.
func (b Builder) Build(authors string, year int, title, ext string) string {
	authors = Sanitize(authors)
	if authors == "" {
		authors = UnknownAuthors
	}
	yearStr := UnknownYear
	if year > 0 {
		yearStr = fmt.Sprintf("%d", year)
	}
	title = Sanitize(title)
	if title == "" {
		title = UnknownTitle
	}

	maxLen := b.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	prefix := fmt.Sprintf("%s (%s) - ", authors, yearStr)
	name := prefix + title + ext
	if runeLen(name) <= maxLen {
		return name
	}

	room := maxLen - runeLen(prefix) - runeLen(ext)
	if room > 0 {
		title = strings.TrimSpace(truncateRunes(title, room))
		if title == "" {
			title = UnknownTitle
		}
		name = prefix + title + ext
	}
	if runeLen(name) > maxLen {
		// Degenerate case: the prefix alone blows the budget.
		name = truncateRunes(name, maxLen-runeLen(ext)) + ext
	}
	return name
}

func runeLen(s string) int { return len([]rune(s)) }

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

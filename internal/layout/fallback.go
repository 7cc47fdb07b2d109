package layout

import (
	"regexp"
	"strings"
	"unicode"
)

// DetectLines is the fallback when no font metrics are available (plain OCR
// text). Lines are scored by how title-like they are: early position, decent
// length, low digit ratio, no affiliation words. The best-scoring line wins;
// the author line is searched in the lines immediately after it.
func DetectLines(text string) Result {
	lines := contentLines(text)
	if len(lines) < 2 {
		if len(lines) == 1 {
			return Result{Title: lines[0]}
		}
		return Result{}
	}

	title, titleIdx := bestTitleLine(lines)
	if title == "" {
		return Result{}
	}

	// Join an apparent continuation line into a wrapped title.
	if titleIdx+1 < len(lines) {
		next := lines[titleIdx+1]
		if isTitleContinuation(title, next) {
			title = title + " " + next
			titleIdx++
		}
	}

	return Result{Title: title, AuthorLine: authorLineAfter(lines, titleIdx)}
}

var fallbackNoisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+[-–]\d+$`),
	regexp.MustCompile(`^[A-Z]{3,}\s*$`),
	regexp.MustCompile(`\(\d{4}\)\s*\d+[-–—]\d+`),
	regexp.MustCompile(`^第\s*\d+\s*卷`),
	regexp.MustCompile(`^Vol\.\s*\d+`),
	regexp.MustCompile(`^No\.\s*\d+`),
	regexp.MustCompile(`^\d{4}\s*年\s*\d+\s*月`),
	regexp.MustCompile(`^[A-Z][a-z]+\.\s*\d{4}\s*$`),
	regexp.MustCompile(`开放科学`),
}

func contentLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) < 5 {
			continue
		}
		if isHeaderText(line) {
			continue
		}
		noisy := false
		for _, re := range fallbackNoisePatterns {
			if re.MatchString(line) {
				noisy = true
				break
			}
		}
		if !noisy {
			out = append(out, line)
		}
	}
	return out
}

var parenYearRe = regexp.MustCompile(`\(\d{4}\)`)

var affiliationWords = []string{
	"department", "university", "college", "school", "institute",
	"street", "avenue", "road", "laboratory", "faculty",
}

// bestTitleLine scores the first ten content lines and returns the winner.
func bestTitleLine(lines []string) (string, int) {
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}

	best := ""
	bestIdx := 0
	bestScore := -1 << 30
	for i := 0; i < limit; i++ {
		score := scoreTitleLine(lines[i], i)
		if score > bestScore {
			bestScore = score
			best = lines[i]
			bestIdx = i
		}
	}
	return best, bestIdx
}

func scoreTitleLine(line string, position int) int {
	runes := []rune(line)
	score := len(runes)
	score -= position * 10

	if idx := strings.IndexAny(line, ":："); idx >= 0 {
		rest := strings.TrimSpace(line[idx+1:])
		switch {
		case len([]rune(rest)) > 15:
			score -= 5 // subtitle, mild penalty
		case len(runes) < 40:
			score -= 50
		default:
			score -= 15
		}
	}

	digits := 0
	lower := 0
	cjk := 0
	for _, r := range runes {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLower(r):
			lower++
		case unicode.Is(unicode.Han, r):
			cjk++
		}
	}
	if float64(digits) > float64(len(runes))*0.3 {
		score -= 80
	}
	if len(runes) < 20 {
		score -= 30
	}
	if parenYearRe.MatchString(line) {
		score -= 40
	}
	lowerLine := strings.ToLower(line)
	for _, w := range affiliationWords {
		if strings.Contains(lowerLine, w) {
			score -= 100
			break
		}
	}
	if strings.ContainsAny(line, "*∗") && strings.Contains(line, ",") {
		score -= 60
	}
	if line == strings.ToUpper(line) && len(runes) > 5 && cjk == 0 {
		score -= 60
	}
	if float64(lower) > float64(len(runes))*0.5 && len(runes) > 30 {
		score += 20
	}
	if cjk > 5 && len(runes) > 15 {
		score += 15
	}
	return score
}

func isTitleContinuation(title, next string) bool {
	nextRunes := len([]rune(next))
	if nextRunes <= 5 || nextRunes >= len([]rune(title)) {
		return false
	}
	if looksLikeAuthorLine(next) {
		return false
	}
	lower := strings.ToLower(next)
	if strings.Contains(lower, "abstract") || strings.Contains(lower, "introduction") ||
		strings.Contains(next, "摘") {
		return false
	}
	if strings.ContainsAny(next, ":：") && nextRunes < 30 {
		return false
	}
	return true
}

var initialsNameRe = regexp.MustCompile(`\b[A-Z]\.\w?\.?\s*[A-Z]`)

// authorLineAfter scans up to five lines after the title for a name list.
func authorLineAfter(lines []string, titleIdx int) string {
	end := titleIdx + 6
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[titleIdx+1 : end] {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "abstract") || strings.Contains(lower, "introduction") ||
			strings.Contains(line, "摘") || strings.Contains(line, "关键词") {
			break
		}
		if isNonAuthor(line) {
			continue
		}
		if strings.ContainsAny(line, ",，、*∗") || initialsNameRe.MatchString(line) ||
			latinNameRe.MatchString(line) || cjkNameRe.MatchString(line) {
			return line
		}
	}
	return ""
}

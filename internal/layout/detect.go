package layout

import (
	"regexp"
	"sort"
	"strings"
)

const (
	// fontSizeTolerance groups blocks into the same font-size run.
	fontSizeTolerance = 1.0
	// titleGap is the maximum vertical gap between wrapped title lines.
	titleGap = 30.0
	// authorSearchBelow bounds how far below the title the author line may sit.
	authorSearchBelow = 150.0
)

// Result is the outcome of layout detection on one page.
type Result struct {
	Title      string
	AuthorLine string
	// Ambiguous is set when two font-size runs tied for maximum and the
	// topmost one was chosen. The tie-break is deterministic; the flag only
	// marks the result as low-confidence.
	Ambiguous bool
}

// headerPatterns match journal mastheads, running heads and other first-page
// furniture that must never be selected as title or authors.
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bconference\b`),
	regexp.MustCompile(`(?i)association for`),
	regexp.MustCompile(`(?i)\bcopyright\b`),
	regexp.MustCompile(`(?i)www\.`),
	regexp.MustCompile(`(?i)https?://`),
	regexp.MustCompile(`(?i)sciencedirect`),
	regexp.MustCompile(`(?i)elsevier`),
	regexp.MustCompile(`(?i)springer`),
	regexp.MustCompile(`(?i)journal\s+homepage`),
	regexp.MustCompile(`(?i)contents\s+lists?\s+available`),
	regexp.MustCompile(`(?i)check\s+for`),
	regexp.MustCompile(`(?i)^\s*updates?\s*$`),
	regexp.MustCompile(`(?i)article\s+info`),
	regexp.MustCompile(`(?i)keywords?:`),
	regexp.MustCompile(`(?i)^doi\s*:`),
	regexp.MustCompile(`文章编号`),
	regexp.MustCompile(`中图分类号`),
	regexp.MustCompile(`文献标志码`),
}

// nonAuthorMarkers disqualify a run from being the author line.
var nonAuthorMarkers = []string{
	"abstract", "introduction", "keyword", "department",
	"university", "college", "school", "institute", "laboratory",
	"email", "e-mail", "{", "@",
	"摘要", "关键词",
}

// Detect derives title and author line from first-page blocks. The title is
// the maximal-font-size contiguous run in the upper half of the page; the
// author line is the next distinct font-size run below it. Either field may
// come back empty when no qualifying block exists.
func Detect(blocks []TextBlock, pageHeight float64) Result {
	if len(blocks) == 0 {
		return Result{}
	}
	if pageHeight <= 0 {
		for _, b := range blocks {
			if bottom := b.Y + b.Height; bottom > pageHeight {
				pageHeight = bottom
			}
		}
	}

	content := filterContent(blocks, pageHeight)
	if len(content) == 0 {
		return Result{}
	}

	runs := buildRuns(content)
	upper := upperHalfRuns(runs, pageHeight)
	if len(upper) == 0 {
		upper = runs
	}

	titleRun, ambiguous := maxFontRun(upper)
	if titleRun == nil {
		return Result{}
	}

	res := Result{
		Title:     titleRun.text(),
		Ambiguous: ambiguous,
	}
	res.AuthorLine = authorLineBelow(runs, titleRun)
	return res
}

// filterContent drops masthead blocks, bare email addresses, and fragments.
func filterContent(blocks []TextBlock, pageHeight float64) []TextBlock {
	// Journal masthead elements near the page top define a header zone; any
	// block inside it is furniture, whatever its font size.
	headerZone := 0.0
	for _, b := range blocks {
		if b.Y < pageHeight/4 && isHeaderText(b.Text) {
			if bottom := b.Y + b.Height; bottom > headerZone {
				headerZone = bottom
			}
		}
	}

	var out []TextBlock
	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)
		if len([]rune(text)) < 5 {
			continue
		}
		if isHeaderText(text) {
			continue
		}
		if headerZone > 0 && b.Y <= headerZone {
			continue
		}
		if strings.Contains(text, "@") && !strings.Contains(text, " ") {
			continue
		}
		out = append(out, b)
	}
	return out
}

func isHeaderText(text string) bool {
	for _, re := range headerPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// run is a contiguous group of blocks sharing a font size.
type run struct {
	blocks   []TextBlock
	fontSize float64
}

func (r *run) top() float64    { return r.blocks[0].Y }
func (r *run) bottom() float64 { b := r.blocks[len(r.blocks)-1]; return b.Y + b.Height }

func (r *run) text() string {
	parts := make([]string, len(r.blocks))
	for i, b := range r.blocks {
		parts[i] = strings.TrimSpace(b.Text)
	}
	return strings.Join(parts, " ")
}

// buildRuns groups Y-sorted blocks into contiguous same-font-size runs,
// merging wrapped lines whose vertical gap is below titleGap.
func buildRuns(blocks []TextBlock) []*run {
	sorted := make([]TextBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	var runs []*run
	var current *run
	for _, b := range sorted {
		if current != nil &&
			abs(b.FontSize-current.fontSize) < fontSizeTolerance &&
			b.Y-current.bottom() < titleGap {
			current.blocks = append(current.blocks, b)
			continue
		}
		current = &run{blocks: []TextBlock{b}, fontSize: b.FontSize}
		runs = append(runs, current)
	}
	return runs
}

func upperHalfRuns(runs []*run, pageHeight float64) []*run {
	var out []*run
	for _, r := range runs {
		if r.top() < pageHeight/2 {
			out = append(out, r)
		}
	}
	return out
}

// maxFontRun picks the run with the largest font size. Ties go to the
// topmost run (smaller Y); that choice is firm, not heuristic, but flagged.
func maxFontRun(runs []*run) (*run, bool) {
	var best *run
	ambiguous := false
	for _, r := range runs {
		switch {
		case best == nil:
			best = r
		case r.fontSize > best.fontSize+fontSizeTolerance/2:
			best = r
			ambiguous = false
		case abs(r.fontSize-best.fontSize) <= fontSizeTolerance/2:
			ambiguous = true
			if r.top() < best.top() {
				best = r
			}
		}
	}
	return best, ambiguous
}

// authorLineBelow finds the next distinct font-size run under the title,
// skipping runs matching non-author markers.
func authorLineBelow(runs []*run, title *run) string {
	var candidates []*run
	for _, r := range runs {
		if r == title {
			continue
		}
		if r.top() >= title.bottom() && r.top()-title.bottom() < authorSearchBelow {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].top() < candidates[j].top() })

	for _, r := range candidates {
		text := r.text()
		if looksLikeAuthorLine(text) {
			return text
		}
		if isNonAuthor(text) {
			continue
		}
	}
	return ""
}

func isNonAuthor(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range nonAuthorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var latinNameRe = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+`)
var cjkNameRe = regexp.MustCompile(`^\p{Han}{2,4}([、，\s]\p{Han}{2,4})*`)

// looksLikeAuthorLine accepts runs with name-list shape: separators plus
// capitalized name pairs, footnote stars, or CJK name sequences.
func looksLikeAuthorLine(text string) bool {
	if isNonAuthor(text) {
		return false
	}
	if strings.ContainsAny(text, ",，、*∗") {
		return latinNameRe.MatchString(text) || cjkNameRe.MatchString(text) ||
			strings.ContainsAny(text, "、，")
	}
	return latinNameRe.MatchString(text) || cjkNameRe.MatchString(text)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Package year extracts a publication year from document text.
//
// Ten independent strategies each contribute zero or more candidates with a
// fixed confidence weight. Resolution is a single reduction: highest
// confidence wins, ties broken by strategy priority, then by earliest
// occurrence in the text.
package year

import (
	"regexp"
	"strconv"
	"time"
)

// Candidate is one possible year found in the text.
type Candidate struct {
	Year       int    `json:"year"`
	Confidence int    `json:"confidence"` // 0-100, intrinsic to the strategy
	Strategy   string `json:"strategy"`
	Offset     int    `json:"offset"` // byte offset of the match in the text
}

// Strategy is an independent, stateless year detector.
type Strategy struct {
	Name   string
	Detect func(r *Resolver, text string) []Candidate
}

// Resolver runs all strategies and selects a single year.
type Resolver struct {
	// CenturyPivot controls 2-digit year normalization: values <= pivot map
	// to 2000s, values above to 1900s. Common convention is 68.
	CenturyPivot int
	MinYear      int
	MaxYear      int

	strategies []Strategy
}

// NewResolver returns a Resolver with default bounds (1900 through next year)
// and the standard strategy list.
func NewResolver() *Resolver {
	return &Resolver{
		CenturyPivot: 68,
		MinYear:      1900,
		MaxYear:      time.Now().Year() + 1,
		strategies: []Strategy{
			{"conference", detectConference},
			{"ordinal_edition", detectOrdinalEdition},
			{"copyright", detectCopyright},
			{"publication_date", detectPublicationDate},
			{"chinese_year", detectChineseYear},
			{"arxiv", detectArXiv},
			{"doi", detectDOI},
			{"journal_volume", detectJournalVolume},
			{"date_pattern", detectDatePattern},
			{"frequency", detectFrequency},
		},
	}
}

// Resolve returns the best year candidate for the text.
// The boolean is false when no strategy produced a candidate.
func (r *Resolver) Resolve(text string) (Candidate, bool) {
	candidates := r.Candidates(text)
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	bestPriority := r.priority(best.Strategy)
	for _, c := range candidates[1:] {
		p := r.priority(c.Strategy)
		switch {
		case c.Confidence > best.Confidence:
		case c.Confidence == best.Confidence && p < bestPriority:
		case c.Confidence == best.Confidence && p == bestPriority && c.Offset < best.Offset:
		default:
			continue
		}
		best = c
		bestPriority = p
	}
	return best, true
}

// Candidates runs every strategy and returns all candidates found.
func (r *Resolver) Candidates(text string) []Candidate {
	if text == "" {
		return nil
	}
	var all []Candidate
	for _, s := range r.strategies {
		for _, c := range s.Detect(r, text) {
			if r.plausible(c.Year) {
				c.Strategy = s.Name
				all = append(all, c)
			}
		}
	}
	return all
}

func (r *Resolver) priority(name string) int {
	for i, s := range r.strategies {
		if s.Name == name {
			return i
		}
	}
	return len(r.strategies)
}

func (r *Resolver) plausible(year int) bool {
	return year >= r.MinYear && year <= r.MaxYear
}

// expandTwoDigit normalizes a 2-digit year using the century pivot.
func (r *Resolver) expandTwoDigit(yy int) int {
	if yy <= r.CenturyPivot {
		return 2000 + yy
	}
	return 1900 + yy
}

// conferenceNames lists common academic venue abbreviations, longest-match
// friendly ordering is not required since all are word-bounded.
var conferenceNames = []string{
	"AAAI", "IJCAI", "NeurIPS", "NIPS", "ICML", "ICLR", "CVPR", "ICCV", "ECCV",
	"ACL", "EMNLP", "NAACL", "COLING", "SIGIR", "WWW", "KDD", "ICDE", "VLDB",
	"SIGMOD", "PODS", "CIKM", "WSDM", "RecSys", "UAI", "AISTATS", "COLT",
	"ICRA", "IROS", "RSS", "CoRL", "MICCAI", "ISBI", "IPMI",
	"CHI", "UIST", "IUI", "CSCW", "UbiComp", "MobiCom", "MobiSys",
	"OSDI", "SOSP", "NSDI", "EuroSys", "ASPLOS", "ISCA", "MICRO", "HPCA",
	"CCS", "USENIX", "NDSS", "CRYPTO", "EUROCRYPT",
	"SIGGRAPH", "ICME", "ICASSP",
	"INTERSPEECH", "ICPR", "BMVC", "WACV", "ACCV", "ACMMM",
}

var confAlternation = func() string {
	alt := conferenceNames[0]
	for _, c := range conferenceNames[1:] {
		alt += "|" + c
	}
	return "(?:" + alt + ")"
}()

var (
	// CVPR'23, AAAI-23, NeurIPS 22
	confShortYearRe = regexp.MustCompile(`(?i)\b` + confAlternation + `[-\s'’]?(\d{2})\b`)
	// CVPR 2023, AAAI-2023
	confFullYearRe = regexp.MustCompile(`(?i)\b` + confAlternation + `[-\s]?(20\d{2})\b`)
	// 2023 CVPR
	yearConfRe = regexp.MustCompile(`(?i)\b(20\d{2})\s*` + confAlternation + `\b`)
)

// detectConference finds a known conference acronym adjacent to a year token.
func detectConference(r *Resolver, text string) []Candidate {
	var out []Candidate
	for _, m := range confFullYearRe.FindAllStringSubmatchIndex(text, -1) {
		y, _ := strconv.Atoi(text[m[2]:m[3]])
		out = append(out, Candidate{Year: y, Confidence: 100, Offset: m[0]})
	}
	for _, m := range yearConfRe.FindAllStringSubmatchIndex(text, -1) {
		y, _ := strconv.Atoi(text[m[2]:m[3]])
		out = append(out, Candidate{Year: y, Confidence: 100, Offset: m[0]})
	}
	for _, m := range confShortYearRe.FindAllStringSubmatchIndex(text, -1) {
		yy, _ := strconv.Atoi(text[m[2]:m[3]])
		out = append(out, Candidate{Year: r.expandTwoDigit(yy), Confidence: 100, Offset: m[0]})
	}
	return out
}

// ordinalEditions maps ordinal words to conference edition numbers.
var ordinalEditions = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14, "fifteenth": 15,
	"sixteenth": 16, "seventeenth": 17, "eighteenth": 18, "nineteenth": 19, "twentieth": 20,
	"twenty-first": 21, "twenty-second": 22, "twenty-third": 23, "twenty-fourth": 24, "twenty-fifth": 25,
	"twenty-sixth": 26, "twenty-seventh": 27, "twenty-eighth": 28, "twenty-ninth": 29, "thirtieth": 30,
	"thirty-first": 31, "thirty-second": 32, "thirty-third": 33, "thirty-fourth": 34, "thirty-fifth": 35,
	"thirty-sixth": 36, "thirty-seventh": 37, "thirty-eighth": 38, "thirty-ninth": 39, "fortieth": 40,
	"forty-first": 41, "forty-second": 42, "forty-third": 43, "forty-fourth": 44, "forty-fifth": 45,
}

var ordinalConfRe = regexp.MustCompile(`(?i)\b([a-z]+(?:-[a-z]+)?)\s+(` + confAlternation + `)\b`)

// EditionYear converts a conference edition number to a year. AAAI editions
// are anchored at AAAI-37 = 2023; other venues assume the edition tracks the
// last two digits of the year.
func (r *Resolver) EditionYear(edition int, conference string) int {
	if conference == "AAAI" || conference == "aaai" {
		return 1986 + edition
	}
	return r.expandTwoDigit(edition % 100)
}

// detectOrdinalEdition finds ordinal-word + conference phrases like
// "Thirty-Seventh AAAI".
func detectOrdinalEdition(r *Resolver, text string) []Candidate {
	var out []Candidate
	for _, m := range ordinalConfRe.FindAllStringSubmatchIndex(text, -1) {
		word := toLowerASCII(text[m[2]:m[3]])
		edition, ok := ordinalEditions[word]
		if !ok {
			continue
		}
		conf := text[m[4]:m[5]]
		out = append(out, Candidate{
			Year:       r.EditionYear(edition, normalizeConf(conf)),
			Confidence: 90,
			Offset:     m[0],
		})
	}
	return out
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func normalizeConf(s string) string {
	upper := toUpperASCII(s)
	for _, c := range conferenceNames {
		if toUpperASCII(c) == upper {
			return c
		}
	}
	return s
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

var copyrightRes = []*regexp.Regexp{
	regexp.MustCompile(`[Cc]opyright\s*[©®]?\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`©\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`\(c\)\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`[Cc]opyright\s+(?:by\s+)?(?:\w+\s+){0,4}((?:19|20)\d{2})`),
	// Chinese copyright notices
	regexp.MustCompile(`版权所有[©®]?\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`版权[©®]?\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`((?:19|20)\d{2})\s*版权`),
}

// detectCopyright finds copyright notices in English and Chinese.
func detectCopyright(r *Resolver, text string) []Candidate {
	return matchYearGroup(text, copyrightRes, 85)
}

var pubDateRes = []*regexp.Regexp{
	regexp.MustCompile(`[Pp]ublished:?\s*\w*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`[Aa]ccepted:?\s*\w*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`[Rr]eceived:?\s*\w*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`[Oo]nline:?\s*\w*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`[Pp]ublication\s+[Dd]ate:?\s*\w*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`[Aa]vailable\s+[Oo]nline:?\s*\w*\s*((?:19|20)\d{2})`),
	// Chinese labeled dates: 发表于, 收稿日期, 录用日期, ...
	regexp.MustCompile(`发表[于日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`出版[日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`接收[日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`录用[日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`收稿[日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`修回[日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`刊出[日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`网络出版[日期:：]*\s*((?:19|20)\d{2})`),
	regexp.MustCompile(`发布[日期:：]*\s*((?:19|20)\d{2})`),
}

// detectPublicationDate finds labeled publication/acceptance dates.
func detectPublicationDate(r *Resolver, text string) []Candidate {
	return matchYearGroup(text, pubDateRes, 80)
}

var (
	arabicCNYearRe  = regexp.MustCompile(`((?:19|20)\d{2})\s*年`)
	numeralCNYearRe = regexp.MustCompile(`([一二三四五六七八九零〇]{4})\s*年`)
)

// detectChineseYear finds Arabic or Chinese-numeral years followed by 年.
func detectChineseYear(r *Resolver, text string) []Candidate {
	out := matchYearGroup(text, []*regexp.Regexp{arabicCNYearRe}, 78)
	for _, m := range numeralCNYearRe.FindAllStringSubmatchIndex(text, -1) {
		if y, ok := ChineseNumeralYear(text[m[2]:m[3]]); ok {
			out = append(out, Candidate{Year: y, Confidence: 78, Offset: m[0]})
		}
	}
	return out
}

var arxivRe = regexp.MustCompile(`(?i)arXiv[:\s]+(\d{2})(\d{2})\.\d{4,5}`)

// detectArXiv decodes the year from an arXiv identifier's YYMM prefix.
func detectArXiv(r *Resolver, text string) []Candidate {
	var out []Candidate
	for _, m := range arxivRe.FindAllStringSubmatchIndex(text, -1) {
		yy, _ := strconv.Atoi(text[m[2]:m[3]])
		month, _ := strconv.Atoi(text[m[4]:m[5]])
		if month < 1 || month > 12 {
			continue
		}
		out = append(out, Candidate{Year: r.expandTwoDigit(yy), Confidence: 75, Offset: m[0]})
	}
	return out
}

var doiYearRe = regexp.MustCompile(`10\.\d{4,9}/[\w.-]*\.((?:19|20)\d{2})\.`)

// detectDOI finds DOIs embedding a 4-digit year segment.
func detectDOI(r *Resolver, text string) []Candidate {
	return matchYearGroup(text, []*regexp.Regexp{doiYearRe}, 75)
}

var journalRes = []*regexp.Regexp{
	regexp.MustCompile(`[Vv]ol(?:ume)?\.?\s*\d+[^\n]*?((?:19|20)\d{2})`),
	regexp.MustCompile(`\(\s*((?:19|20)\d{2})\s*\)`),
	regexp.MustCompile(`第\s*\d+\s*卷[^\n]*?((?:19|20)\d{2})`),
	regexp.MustCompile(`第\s*\d+\s*期[^\n]*?((?:19|20)\d{2})`),
}

// detectJournalVolume finds volume/issue markers co-occurring with a year.
func detectJournalVolume(r *Resolver, text string) []Candidate {
	return matchYearGroup(text, journalRes, 70)
}

const monthsEN = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`

var (
	monthYearRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + monthsEN + `\.?\s+((?:19|20)\d{2})`),
		regexp.MustCompile(`(?i)((?:19|20)\d{2})\s*` + monthsEN),
		regexp.MustCompile(`(?i)\d{1,2}\s+` + monthsEN + `\s+((?:19|20)\d{2})`),
		regexp.MustCompile(`(?i)` + monthsEN + `\s+\d{1,2},?\s+((?:19|20)\d{2})`),
	}
	numericDateRes = []*regexp.Regexp{
		regexp.MustCompile(`((?:19|20)\d{2})\s*年\s*\d{1,2}\s*月`),
		regexp.MustCompile(`((?:19|20)\d{2})[年\-/]\d{1,2}[月\-/]`),
	}
)

// detectDatePattern finds generic month+year dates. Numeric year/month
// patterns are slightly more specific than a bare month name, so they carry
// a higher weight.
func detectDatePattern(r *Resolver, text string) []Candidate {
	out := matchYearGroup(text, monthYearRes, 60)
	out = append(out, matchYearGroup(text, numericDateRes, 65)...)
	return out
}

var anyYearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// detectFrequency is the last-resort strategy: the most frequent plausible
// year anywhere in the text, confidence scaled by occurrence count and
// capped at 50.
func detectFrequency(r *Resolver, text string) []Candidate {
	counts := make(map[int]int)
	firstSeen := make(map[int]int)
	for _, m := range anyYearRe.FindAllStringSubmatchIndex(text, -1) {
		y, _ := strconv.Atoi(text[m[2]:m[3]])
		if !r.plausible(y) {
			continue
		}
		if _, ok := firstSeen[y]; !ok {
			firstSeen[y] = m[0]
		}
		counts[y]++
	}
	var out []Candidate
	for y, n := range counts {
		conf := 20 + n*5
		if conf > 50 {
			conf = 50
		}
		out = append(out, Candidate{Year: y, Confidence: conf, Offset: firstSeen[y]})
	}
	return out
}

// matchYearGroup collects candidates from regexes whose first capture group
// is a 4-digit year.
func matchYearGroup(text string, res []*regexp.Regexp, confidence int) []Candidate {
	var out []Candidate
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if m[2] < 0 {
				continue
			}
			y, err := strconv.Atoi(text[m[2]:m[3]])
			if err != nil {
				continue
			}
			out = append(out, Candidate{Year: y, Confidence: confidence, Offset: m[0]})
		}
	}
	return out
}

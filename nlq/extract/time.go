package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tessella/opsq/nlq/types"
)

// timeNow is a variable so tests can pin the clock.
var timeNow = time.Now

var (
	// absoluteRangePattern matches "2024-01-01 ~ 2024-01-31" and the 到/至
	// connective forms. Tried before the single-date pattern so a range is
	// never consumed as its first date.
	absoluteRangePattern = regexp.MustCompile(
		`([0-9]{4})[-/]([0-9]{1,2})[-/]([0-9]{1,2})\s*(?:~|到|至)\s*([0-9]{4})[-/]([0-9]{1,2})[-/]([0-9]{1,2})`)

	// absoluteDatePattern matches a single calendar date.
	absoluteDatePattern = regexp.MustCompile(`([0-9]{4})[-/]([0-9]{1,2})[-/]([0-9]{1,2})`)

	// weekNumberPattern matches explicit calendar-week forms: 第23週, 第23周,
	// "week 23".
	weekNumberPattern = regexp.MustCompile(`第([0-9]{1,2})[週周]|week\s+([0-9]{1,2})`)

	// weekCodePattern matches the compact W-code week form (W23). This is
	// the known lexical collision with warehouse codes: the warehouse
	// extractor runs earlier and claims the span when a warehouse context
	// word co-occurs, in which case this pass skips it.
	weekCodePattern = regexp.MustCompile(`\bW([0-9]{2})\b`)
)

// weekContextWords gate the compact W-code form: without an explicit week
// word in the utterance, a bare W-code is not treated as a calendar week.
var weekContextWords = []string{"週", "周", "week"}

// hasWeekWord reports whether the utterance carries an explicit week word.
// The warehouse extractor consults it too: a coded token backed only by a
// week word belongs to the calendar-week pass, not the location pass.
func hasWeekWord(in *Input) bool {
	for _, w := range weekContextWords {
		if strings.Contains(in.lower, w) {
			return true
		}
	}
	return false
}

// TimeExtractor recognizes time expressions and normalizes them into the
// encoded forms of types.TimeValue: five relative windows, absolute dates,
// and absolute ranges (calendar weeks lower to ranges).
type TimeExtractor struct {
	keywords keywordTable
	fuzzy    []fuzzyRule
}

// NewTimeExtractor builds the extractor with its merged keyword table.
func NewTimeExtractor() *TimeExtractor {
	groups := []categoryGroup{
		{
			// General fiscal vocabulary. 年度 alone reads as the current
			// fiscal year.
			priority: 1,
			keywords: map[string]string{
				"年度": string(types.WindowThisYear),
			},
		},
		{
			priority: 2,
			keywords: map[string]string{
				"上月":          string(types.WindowLastMonth),
				"上個月":         string(types.WindowLastMonth),
				"前月":          string(types.WindowLastMonth),
				"last month":  string(types.WindowLastMonth),
				"本月":          string(types.WindowThisMonth),
				"這個月":         string(types.WindowThisMonth),
				"當月":          string(types.WindowThisMonth),
				"this month":  string(types.WindowThisMonth),
				"去年":          string(types.WindowLastYear),
				"上年度":         string(types.WindowLastYear),
				"last year":   string(types.WindowLastYear),
				"今年":          string(types.WindowThisYear),
				"本年度":         string(types.WindowThisYear),
				"this year":   string(types.WindowThisYear),
				"最近7天":        string(types.WindowLast7Days),
				"最近七天":        string(types.WindowLast7Days),
				"過去7天":        string(types.WindowLast7Days),
				"近一週":         string(types.WindowLast7Days),
				"最近一週":        string(types.WindowLast7Days),
				"last 7 days": string(types.WindowLast7Days),
				"past 7 days": string(types.WindowLast7Days),
			},
		},
	}

	timeSuggestions := []string{"last 7 days", "last 30 days", "last 90 days"}

	return &TimeExtractor{
		keywords: buildKeywordTable(groups),
		fuzzy: []fuzzyRule{
			{term: "最近", prompt: "請問「最近」是指哪段時間?", suggestions: timeSuggestions},
			{term: "近期", prompt: "請問「近期」是指哪段時間?", suggestions: timeSuggestions},
			{term: "之前", prompt: "請問是指哪段時間之前?", suggestions: timeSuggestions},
			{term: "recently", prompt: "Which period does \"recently\" mean?", suggestions: timeSuggestions},
			{term: "a while ago", prompt: "Which period do you mean?", suggestions: timeSuggestions},
		},
	}
}

// Kind implements Extractor.
func (e *TimeExtractor) Kind() types.FieldKind {
	return types.FieldTime
}

// Extract tries relative-window keywords first (longest keyword wins), then
// the coded patterns: absolute range, absolute date, calendar week.
func (e *TimeExtractor) Extract(in *Input) *types.ExtractionMatch {
	if entry, span, ok := e.keywords.match(in); ok {
		in.Claim(span, types.FieldTime)
		return &types.ExtractionMatch{
			Kind:       types.FieldTime,
			Value:      entry.code,
			Raw:        in.slice(span),
			Span:       span,
			Confidence: confidenceKeyword,
		}
	}

	if m := e.extractRange(in); m != nil {
		return m
	}
	if m := e.extractDate(in); m != nil {
		return m
	}
	return e.extractWeek(in)
}

func (e *TimeExtractor) extractRange(in *Input) *types.ExtractionMatch {
	loc := absoluteRangePattern.FindStringSubmatchIndex(in.Text)
	if loc == nil {
		return nil
	}
	span := types.Span{Start: loc[0], End: loc[1]}
	if in.Claimed(span) {
		return nil
	}

	groups := absoluteRangePattern.FindStringSubmatch(in.Text)
	start, err := canonicalDate(groups[1], groups[2], groups[3])
	if err != nil {
		return nil
	}
	end, err := canonicalDate(groups[4], groups[5], groups[6])
	if err != nil {
		return nil
	}

	tv := types.TimeValue{Kind: types.TimeRange, Start: start, End: end}
	in.Claim(span, types.FieldTime)
	return &types.ExtractionMatch{
		Kind:       types.FieldTime,
		Value:      tv.Encode(),
		Raw:        in.slice(span),
		Span:       span,
		Confidence: confidenceCode,
	}
}

func (e *TimeExtractor) extractDate(in *Input) *types.ExtractionMatch {
	loc := absoluteDatePattern.FindStringSubmatchIndex(in.Text)
	if loc == nil {
		return nil
	}
	span := types.Span{Start: loc[0], End: loc[1]}
	if in.Claimed(span) {
		return nil
	}

	groups := absoluteDatePattern.FindStringSubmatch(in.Text)
	date, err := canonicalDate(groups[1], groups[2], groups[3])
	if err != nil {
		return nil
	}

	tv := types.TimeValue{Kind: types.TimeAbsolute, Date: date}
	in.Claim(span, types.FieldTime)
	return &types.ExtractionMatch{
		Kind:       types.FieldTime,
		Value:      tv.Encode(),
		Raw:        in.slice(span),
		Span:       span,
		Confidence: confidenceCode,
	}
}

// extractWeek lowers an explicit calendar-week reference to an absolute
// range over that ISO week of the current year.
func (e *TimeExtractor) extractWeek(in *Input) *types.ExtractionMatch {
	span, week, ok := e.findWeekReference(in)
	if !ok {
		return nil
	}

	start, end := isoWeekRange(timeNow().Year(), week)
	tv := types.TimeValue{
		Kind:  types.TimeRange,
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}
	in.Claim(span, types.FieldTime)
	return &types.ExtractionMatch{
		Kind:       types.FieldTime,
		Value:      tv.Encode(),
		Raw:        in.slice(span),
		Span:       span,
		Confidence: confidenceCode,
	}
}

func (e *TimeExtractor) findWeekReference(in *Input) (types.Span, int, bool) {
	if loc := weekNumberPattern.FindStringSubmatchIndex(in.lower); loc != nil {
		span := types.Span{Start: loc[0], End: loc[1]}
		if !in.Claimed(span) {
			groups := weekNumberPattern.FindStringSubmatch(in.lower)
			digits := groups[1]
			if digits == "" {
				digits = groups[2]
			}
			if week, err := strconv.Atoi(digits); err == nil && week >= 1 && week <= 53 {
				return span, week, true
			}
		}
	}

	// Compact W-code form only counts as a week when a week word appears
	// and the span was not claimed as a warehouse location.
	if !hasWeekWord(in) {
		return types.Span{}, 0, false
	}
	loc := weekCodePattern.FindStringSubmatchIndex(in.upper)
	if loc == nil {
		return types.Span{}, 0, false
	}
	span := types.Span{Start: loc[0], End: loc[1]}
	if in.Claimed(span) {
		return types.Span{}, 0, false
	}
	week, err := strconv.Atoi(in.upper[loc[2]:loc[3]])
	if err != nil || week < 1 || week > 53 {
		return types.Span{}, 0, false
	}
	return span, week, true
}

// CheckFuzzy implements Extractor.
func (e *TimeExtractor) CheckFuzzy(in *Input) *types.ClarificationRequest {
	return checkFuzzyRules(in, e.keywords, types.FieldTime, e.fuzzy)
}

// ExtractWithClarification implements Extractor.
func (e *TimeExtractor) ExtractWithClarification(in *Input) (*types.ExtractionMatch, *types.ClarificationRequest) {
	if req := e.CheckFuzzy(in); req != nil {
		return nil, req
	}
	return e.Extract(in), nil
}

// canonicalDate zero-pads and validates a year/month/day triple.
func canonicalDate(year, month, day string) (string, error) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	date := fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", err
	}
	return date, nil
}

// isoWeekRange returns the Monday and Sunday of the given ISO week.
func isoWeekRange(year, week int) (time.Time, time.Time) {
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	weekday := (int(jan4.Weekday()) + 6) % 7 // Monday = 0
	week1Monday := jan4.AddDate(0, 0, -weekday)
	start := week1Monday.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6)
}

package extract

import (
	"regexp"
	"strings"

	"github.com/tessella/opsq/nlq/types"
)

// warehouseCodePattern matches coded locations: one or two letters followed
// by two digits (W01, WH03). Checked against the upper-cased view.
var warehouseCodePattern = regexp.MustCompile(`\b[A-Z]{1,2}[0-9]{2}\b`)

// warehouseContextWords signal that a coded token really is a location. A
// code co-occurring with one of these claims its span, excluding it from the
// time extractor's calendar-week pass.
var warehouseContextWords = []string{"倉庫", "倉", "庫房", "warehouse", "storage"}

// WarehouseExtractor recognizes warehouse locations, by name or by code.
type WarehouseExtractor struct {
	keywords keywordTable
	fuzzy    []fuzzyRule
}

// NewWarehouseExtractor builds the extractor with its merged keyword table.
// The zone group (priority 1) carries loose area words; the named group
// (priority 2) carries full warehouse names and overwrites any keyword the
// zone group also claims.
func NewWarehouseExtractor() *WarehouseExtractor {
	groups := []categoryGroup{
		{
			priority: 1,
			keywords: map[string]string{
				"主倉": "W01",
				"總倉": "W01",
			},
		},
		{
			priority: 2,
			keywords: map[string]string{
				"主倉庫":                 "W01",
				"原料倉":                 "W02",
				"成品倉":                 "W03",
				"包材倉":                 "W04",
				"退貨倉":                 "W05",
				"main warehouse":      "W01",
				"raw material warehouse": "W02",
				"finished goods warehouse": "W03",
				"packaging warehouse": "W04",
				"returns warehouse":   "W05",
			},
		},
	}

	return &WarehouseExtractor{
		keywords: buildKeywordTable(groups),
		fuzzy: []fuzzyRule{
			{
				term:        "那個倉",
				prompt:      "請問是哪一個倉庫?",
				suggestions: []string{"主倉庫 (W01)", "原料倉 (W02)", "成品倉 (W03)", "包材倉 (W04)"},
			},
			{
				term:        "some warehouse",
				prompt:      "Which warehouse do you mean?",
				suggestions: []string{"W01", "W02", "W03", "W04"},
			},
		},
	}
}

// Kind implements Extractor.
func (e *WarehouseExtractor) Kind() types.FieldKind {
	return types.FieldWarehouse
}

// Extract tries named warehouses first (longest keyword wins), then falls
// back to the coded-pattern pass at lower confidence. A code backed by a
// warehouse context word claims its span.
func (e *WarehouseExtractor) Extract(in *Input) *types.ExtractionMatch {
	if entry, span, ok := e.keywords.match(in); ok {
		in.Claim(span, types.FieldWarehouse)
		return &types.ExtractionMatch{
			Kind:       types.FieldWarehouse,
			Value:      entry.code,
			Raw:        in.slice(span),
			Span:       span,
			Confidence: confidenceKeyword,
		}
	}

	span, ok := e.findCode(in)
	if !ok {
		return nil
	}

	code := in.upper[span.Start:span.End]
	if e.hasContextWord(in) {
		in.Claim(span, types.FieldWarehouse)
		return &types.ExtractionMatch{
			Kind:       types.FieldWarehouse,
			Value:      code,
			Raw:        in.slice(span),
			Span:       span,
			Confidence: confidenceCode,
		}
	}

	// A week word with no warehouse word flips the reading: the code is a
	// calendar week (W23 那週) and belongs to the time pass, not here.
	if hasWeekWord(in) {
		return nil
	}

	// Bare code with no supporting context: still a valid outcome, but the
	// span is left unclaimed and confidence drops.
	return &types.ExtractionMatch{
		Kind:       types.FieldWarehouse,
		Value:      code,
		Raw:        in.slice(span),
		Span:       span,
		Confidence: confidenceBareCode,
	}
}

// findCode locates the first coded-location candidate that is neither
// claimed nor part of a longer coded token (RM05 inside RM05-008 is a
// material number, not a location).
func (e *WarehouseExtractor) findCode(in *Input) (types.Span, bool) {
	for _, loc := range warehouseCodePattern.FindAllStringIndex(in.upper, -1) {
		span := types.Span{Start: loc[0], End: loc[1]}
		if in.Claimed(span) {
			continue
		}
		if span.End < len(in.upper) && in.upper[span.End] == '-' {
			continue
		}
		if span.Start > 0 && in.upper[span.Start-1] == '-' {
			continue
		}
		return span, true
	}
	return types.Span{}, false
}

func (e *WarehouseExtractor) hasContextWord(in *Input) bool {
	for _, w := range warehouseContextWords {
		if strings.Contains(in.lower, w) {
			return true
		}
	}
	return false
}

// CheckFuzzy implements Extractor.
func (e *WarehouseExtractor) CheckFuzzy(in *Input) *types.ClarificationRequest {
	return checkFuzzyRules(in, e.keywords, types.FieldWarehouse, e.fuzzy)
}

// ExtractWithClarification implements Extractor.
func (e *WarehouseExtractor) ExtractWithClarification(in *Input) (*types.ExtractionMatch, *types.ClarificationRequest) {
	if req := e.CheckFuzzy(in); req != nil {
		return nil, req
	}
	return e.Extract(in), nil
}

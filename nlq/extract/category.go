package extract

import (
	"github.com/tessella/opsq/nlq/types"
)

// CategoryExtractor recognizes material categories by keyword.
type CategoryExtractor struct {
	keywords keywordTable
	fuzzy    []fuzzyRule
}

// NewCategoryExtractor builds the extractor with its merged keyword table.
// The broad group (priority 1) maps loose trade words; the catalog group
// (priority 2) carries the official category vocabulary and overwrites any
// keyword the broad group also claims.
func NewCategoryExtractor() *CategoryExtractor {
	groups := []categoryGroup{
		{
			priority: 1,
			keywords: map[string]string{
				"材料":       "RM",
				"物料":       "RM",
				"半成品":      "SF",
				"耗材":       "CS",
				"material": "RM",
			},
		},
		{
			priority: 2,
			keywords: map[string]string{
				"原料":             "RM",
				"原材料":            "RM",
				"成品":             "FG",
				"製成品":            "FG",
				"包材":             "PK",
				"包裝材料":           "PK",
				"raw material":   "RM",
				"finished goods": "FG",
				"packaging":      "PK",
				"consumables":    "CS",
			},
		},
	}

	return &CategoryExtractor{
		keywords: buildKeywordTable(groups),
		fuzzy: []fuzzyRule{
			{
				term:        "那種料",
				prompt:      "請問是哪一類物料?",
				suggestions: []string{"原料 (RM)", "成品 (FG)", "半成品 (SF)", "包材 (PK)"},
			},
		},
	}
}

// Kind implements Extractor.
func (e *CategoryExtractor) Kind() types.FieldKind {
	return types.FieldCategory
}

// Extract returns the longest unclaimed category keyword match, or nil.
func (e *CategoryExtractor) Extract(in *Input) *types.ExtractionMatch {
	entry, span, ok := e.keywords.match(in)
	if !ok {
		return nil
	}
	in.Claim(span, types.FieldCategory)
	return &types.ExtractionMatch{
		Kind:       types.FieldCategory,
		Value:      entry.code,
		Raw:        in.slice(span),
		Span:       span,
		Confidence: confidenceKeyword,
	}
}

// CheckFuzzy implements Extractor.
func (e *CategoryExtractor) CheckFuzzy(in *Input) *types.ClarificationRequest {
	return checkFuzzyRules(in, e.keywords, types.FieldCategory, e.fuzzy)
}

// ExtractWithClarification implements Extractor.
func (e *CategoryExtractor) ExtractWithClarification(in *Input) (*types.ExtractionMatch, *types.ClarificationRequest) {
	if req := e.CheckFuzzy(in); req != nil {
		return nil, req
	}
	return e.Extract(in), nil
}

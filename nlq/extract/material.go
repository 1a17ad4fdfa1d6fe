package extract

import (
	"regexp"

	"github.com/tessella/opsq/nlq/types"
)

// materialIDPattern matches coded material numbers: two letters, two digits,
// a dash, three digits (RM05-008). Checked against the upper-cased view.
var materialIDPattern = regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}-[0-9]{3}\b`)

// MaterialExtractor recognizes individual materials: well-known item names
// by keyword, and coded material numbers through the coded-pattern pass.
type MaterialExtractor struct {
	keywords keywordTable
	fuzzy    []fuzzyRule
}

// NewMaterialExtractor builds the extractor. The keyword table carries
// common item aliases from the item master; the coded pattern carries the
// rest.
func NewMaterialExtractor() *MaterialExtractor {
	groups := []categoryGroup{
		{
			priority: 1,
			keywords: map[string]string{
				"冷軋鋼捲": "RM01-001",
				"熱軋鋼捲": "RM01-002",
				"銅線":   "RM02-001",
				"標準棧板": "PK01-001",
			},
		},
	}

	return &MaterialExtractor{
		keywords: buildKeywordTable(groups),
		fuzzy: []fuzzyRule{
			{
				term:        "那個料號",
				prompt:      "請問是哪一個料號?",
				suggestions: nil,
			},
		},
	}
}

// Kind implements Extractor.
func (e *MaterialExtractor) Kind() types.FieldKind {
	return types.FieldMaterialID
}

// Extract tries item-name keywords first, then the coded material-number
// pass. Claimed spans are skipped in both passes.
func (e *MaterialExtractor) Extract(in *Input) *types.ExtractionMatch {
	if entry, span, ok := e.keywords.match(in); ok {
		in.Claim(span, types.FieldMaterialID)
		return &types.ExtractionMatch{
			Kind:       types.FieldMaterialID,
			Value:      entry.code,
			Raw:        in.slice(span),
			Span:       span,
			Confidence: confidenceKeyword,
		}
	}

	for _, loc := range materialIDPattern.FindAllStringIndex(in.upper, -1) {
		span := types.Span{Start: loc[0], End: loc[1]}
		if in.Claimed(span) {
			continue
		}
		in.Claim(span, types.FieldMaterialID)
		return &types.ExtractionMatch{
			Kind:       types.FieldMaterialID,
			Value:      in.upper[span.Start:span.End],
			Raw:        in.slice(span),
			Span:       span,
			Confidence: confidenceCode,
		}
	}
	return nil
}

// CheckFuzzy implements Extractor.
func (e *MaterialExtractor) CheckFuzzy(in *Input) *types.ClarificationRequest {
	return checkFuzzyRules(in, e.keywords, types.FieldMaterialID, e.fuzzy)
}

// ExtractWithClarification implements Extractor.
func (e *MaterialExtractor) ExtractWithClarification(in *Input) (*types.ExtractionMatch, *types.ClarificationRequest) {
	if req := e.CheckFuzzy(in); req != nil {
		return nil, req
	}
	return e.Extract(in), nil
}

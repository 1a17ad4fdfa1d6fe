// Package extract implements the entity extractors of the resolution
// pipeline. Each extractor is an independent rule engine recognizing one
// entity class in free text: time expressions, warehouse locations, and
// material categories.
//
// Extractors share an Input, which carries the normalized text plus the set
// of claimed spans. A span claimed by an earlier-run extractor is excluded
// from consideration by later extractors in the same resolution pass.
package extract

import (
	"sort"
	"strings"

	"github.com/tessella/opsq/nlq/types"
)

// Extractor recognizes one entity class in free text.
//
// Extraction never fails for unmatched input; a nil match is a valid
// outcome, distinct from an ambiguity (which surfaces as a clarification).
type Extractor interface {
	// Kind returns the primary field kind this extractor produces.
	Kind() types.FieldKind

	// Extract returns a match for the input, or nil when nothing matches.
	Extract(in *Input) *types.ExtractionMatch

	// CheckFuzzy returns a clarification request when the input contains an
	// expression too vague to guess from, or nil otherwise.
	CheckFuzzy(in *Input) *types.ClarificationRequest

	// ExtractWithClarification runs the fuzzy check first; a hit aborts
	// extraction and returns the clarification instead of a guess.
	ExtractWithClarification(in *Input) (*types.ExtractionMatch, *types.ClarificationRequest)
}

// Input is the shared per-resolution view of one user utterance. The claim
// set is mutated as extractors run; everything else is immutable.
//
// ASCII-only case folding preserves byte offsets, so spans computed against
// the lower or upper views are valid spans into Text.
type Input struct {
	// Text is the normalized utterance (half-width, original case).
	Text string

	// Original is the utterance as received.
	Original string

	lower string // keyword matching view (ASCII lower-cased)
	upper string // coded-pattern view (ASCII upper-cased)

	claims []claim
}

type claim struct {
	span types.Span
	kind types.FieldKind
}

// NewInput normalizes text and returns a fresh input with no claims.
func NewInput(text string) *Input {
	normalized := Normalize(text)
	return &Input{
		Text:     normalized,
		Original: text,
		lower:    foldLower(normalized),
		upper:    foldASCII(normalized),
	}
}

// slice returns the normalized text covered by a span.
func (in *Input) slice(span types.Span) string {
	return in.Text[span.Start:span.End]
}

// Claim binds a span to an extractor's field kind, excluding it from
// consideration by extractors that run later in the same pass.
func (in *Input) Claim(span types.Span, kind types.FieldKind) {
	in.claims = append(in.claims, claim{span: span, kind: kind})
}

// Claimed reports whether any claimed span overlaps the given span.
func (in *Input) Claimed(span types.Span) bool {
	for _, c := range in.claims {
		if c.span.Overlaps(span) {
			return true
		}
	}
	return false
}

// ClaimedBy returns the field kind that claimed an overlapping span.
func (in *Input) ClaimedBy(span types.Span) (types.FieldKind, bool) {
	for _, c := range in.claims {
		if c.span.Overlaps(span) {
			return c.kind, true
		}
	}
	return "", false
}

// keywordEntry is one merged keyword -> code binding.
type keywordEntry struct {
	keyword  string
	code     string
	priority int
}

// categoryGroup is a declared group of keywords sharing one priority tier.
// Groups are merged in ascending priority order, so a later, more specific
// group overwrites a keyword claimed by an earlier, more general one.
type categoryGroup struct {
	priority int
	keywords map[string]string // keyword -> code
}

// keywordTable is the precomputed, immutable dispatch table of an extractor.
// Entries are ordered by descending keyword length (ties broken
// lexicographically) so a short generic keyword never pre-empts a longer,
// more specific one.
type keywordTable struct {
	entries []keywordEntry
}

func buildKeywordTable(groups []categoryGroup) keywordTable {
	ordered := make([]categoryGroup, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].priority < ordered[j].priority
	})

	merged := make(map[string]keywordEntry)
	for _, g := range ordered {
		for kw, code := range g.keywords {
			merged[kw] = keywordEntry{keyword: kw, code: code, priority: g.priority}
		}
	}

	entries := make([]keywordEntry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].keyword) != len(entries[j].keyword) {
			return len(entries[i].keyword) > len(entries[j].keyword)
		}
		return entries[i].keyword < entries[j].keyword
	})

	return keywordTable{entries: entries}
}

// match finds the first (longest) keyword whose occurrence in the text is
// not already claimed. Returns the entry and the matched span.
func (kt keywordTable) match(in *Input) (keywordEntry, types.Span, bool) {
	for _, e := range kt.entries {
		from := 0
		for {
			idx := strings.Index(in.lower[from:], e.keyword)
			if idx < 0 {
				break
			}
			start := from + idx
			span := types.Span{Start: start, End: start + len(e.keyword)}
			if !in.Claimed(span) {
				return e, span, true
			}
			from = span.End
		}
	}
	return keywordEntry{}, types.Span{}, false
}

// containsKeywordCovering reports whether some table keyword longer than the
// fuzzy term occurs in the text and covers the given span. Used so that a
// vague expression embedded in a precise keyword ("最近" inside "最近7天")
// does not trigger a clarification.
func (kt keywordTable) containsKeywordCovering(in *Input, span types.Span) bool {
	for _, e := range kt.entries {
		if len(e.keyword) <= span.End-span.Start {
			continue
		}
		from := 0
		for {
			idx := strings.Index(in.lower[from:], e.keyword)
			if idx < 0 {
				break
			}
			start := from + idx
			kwSpan := types.Span{Start: start, End: start + len(e.keyword)}
			if kwSpan.Start <= span.Start && span.End <= kwSpan.End {
				return true
			}
			from = kwSpan.End
		}
	}
	return false
}

// fuzzyRule pairs a vague expression with the clarification it produces.
type fuzzyRule struct {
	term        string
	prompt      string
	suggestions []string
}

// checkFuzzyRules returns a clarification for the first vague expression
// present in the input and not covered by a precise keyword.
func checkFuzzyRules(in *Input, kt keywordTable, kind types.FieldKind, rules []fuzzyRule) *types.ClarificationRequest {
	for _, r := range rules {
		idx := strings.Index(in.lower, r.term)
		if idx < 0 {
			continue
		}
		span := types.Span{Start: idx, End: idx + len(r.term)}
		if kt.containsKeywordCovering(in, span) {
			continue
		}
		return &types.ClarificationRequest{
			Field:       kind,
			Prompt:      r.prompt,
			Suggestions: r.suggestions,
		}
	}
	return nil
}

const (
	// confidenceKeyword is assigned to literal keyword matches.
	confidenceKeyword = 0.95
	// confidenceCode is assigned to coded-pattern matches backed by a
	// co-occurring domain keyword.
	confidenceCode = 0.85
	// confidenceBareCode is assigned to coded-pattern matches with no
	// supporting context in the utterance.
	confidenceBareCode = 0.6
)

// Package resolve turns one user utterance plus prior-turn context into a
// SemanticAnalysis: intent, extracted fields, and any clarification issues
// that block compilation this turn.
package resolve

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tessella/opsq/logger"
	"github.com/tessella/opsq/nlq/catalog"
	"github.com/tessella/opsq/nlq/extract"
	"github.com/tessella/opsq/nlq/intent"
	"github.com/tessella/opsq/nlq/types"
)

// Resolver is a pure, re-entrant function of (text, context). It holds no
// session state; multi-turn memory lives with the caller.
type Resolver struct {
	classifier *intent.Classifier
	catalog    *catalog.Catalog
	extractors []extract.Extractor
}

// New builds a resolver over a catalog. Extractor order is fixed: warehouse
// runs first so its span claims shield location codes from the week-number
// reading, then material, category, and time.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{
		classifier: intent.NewClassifier(),
		catalog:    cat,
		extractors: []extract.Extractor{
			extract.NewWarehouseExtractor(),
			extract.NewMaterialExtractor(),
			extract.NewCategoryExtractor(),
			extract.NewTimeExtractor(),
		},
	}
}

// Analyze resolves one utterance. priorContext carries answers from earlier
// clarification turns; its fields are treated as pre-satisfied, though a
// fresh extraction for the same field wins over the remembered value.
func (r *Resolver) Analyze(text string, priorContext map[string]string) *types.SemanticAnalysis {
	classification := r.classifier.Classify(text)

	in := extract.NewInput(text)
	fields := make(map[string]string)
	var clarifications []types.ClarificationRequest
	confidence := classification.Confidence

	for _, ex := range r.extractors {
		match, clarification := ex.ExtractWithClarification(in)
		if clarification != nil {
			clarifications = append(clarifications, *clarification)
			continue
		}
		if match != nil {
			fields[string(match.Kind)] = match.Value
			if match.Confidence < confidence {
				confidence = match.Confidence
			}
		}
	}

	for field, value := range priorContext {
		if _, present := fields[field]; !present {
			fields[field] = value
		}
	}

	// A remembered answer settles the ambiguity a fuzzy expression raised.
	clarifications = dropSatisfied(clarifications, fields)

	snap := r.catalog.Snapshot()
	if rule, ok := snap.Rule(classification.Intent); ok {
		clarifications = append(clarifications, r.checkRule(rule, fields, clarifications)...)
	}

	analysis := &types.SemanticAnalysis{
		TurnID:             uuid.New().String(),
		Intent:             classification.Intent,
		Complexity:         classification.Complexity,
		Fields:             fields,
		Confidence:         confidence,
		Clarifications:     clarifications,
		NeedsClarification: len(clarifications) > 0,
	}

	logger.Logger.Debugw("analysis resolved",
		logger.FieldTurnID, analysis.TurnID,
		logger.FieldIntent, analysis.Intent,
		logger.FieldCount, len(fields),
		"needs_clarification", analysis.NeedsClarification,
	)
	return analysis
}

// checkRule returns the clarifications needed to satisfy a validation rule,
// skipping fields an extractor has already raised an issue for.
func (r *Resolver) checkRule(rule *types.ValidationRule, fields map[string]string, raised []types.ClarificationRequest) []types.ClarificationRequest {
	var out []types.ClarificationRequest

	for _, field := range rule.Required {
		if _, ok := fields[field]; ok {
			continue
		}
		if covered(raised, field) {
			continue
		}
		out = append(out, r.synthesize(rule, field))
	}

	for _, group := range rule.AtLeastOneOf {
		if groupSatisfied(group, fields) || groupCovered(group, raised) {
			continue
		}
		out = append(out, r.synthesize(rule, group[0]))
	}
	return out
}

// synthesize builds a clarification for a missing field: the rule's declared
// prompt when present, a generic one otherwise.
func (r *Resolver) synthesize(rule *types.ValidationRule, field string) types.ClarificationRequest {
	prompt, ok := rule.Prompts[field]
	if !ok {
		prompt = fmt.Sprintf("請提供 %s 條件", field)
	}
	return types.ClarificationRequest{
		Field:       types.FieldKind(field),
		Prompt:      prompt,
		Suggestions: rule.Suggestions[field],
	}
}

func dropSatisfied(clarifications []types.ClarificationRequest, fields map[string]string) []types.ClarificationRequest {
	kept := clarifications[:0]
	for _, c := range clarifications {
		if _, ok := fields[string(c.Field)]; !ok {
			kept = append(kept, c)
		}
	}
	return kept
}

func covered(clarifications []types.ClarificationRequest, field string) bool {
	for _, c := range clarifications {
		if string(c.Field) == field {
			return true
		}
	}
	return false
}

func groupSatisfied(group []string, fields map[string]string) bool {
	for _, field := range group {
		if _, ok := fields[field]; ok {
			return true
		}
	}
	return false
}

func groupCovered(group []string, clarifications []types.ClarificationRequest) bool {
	for _, field := range group {
		if covered(clarifications, field) {
			return true
		}
	}
	return false
}

// Package intent classifies utterances into query intents and complexity
// tiers. Classification is keyword-driven: intent keyword sets are evaluated
// in a fixed priority order and the first set intersecting the input wins,
// defaulting to the stock query.
package intent

import (
	"regexp"
	"strings"

	"github.com/tessella/opsq/nlq/extract"
	"github.com/tessella/opsq/nlq/types"
)

// intentRule is one keyword set in the priority chain.
type intentRule struct {
	intent   types.Intent
	keywords []string
}

// intentRules is evaluated top to bottom. More specific intents come first:
// an order-generation question usually also mentions stock, so the generic
// sets must not shadow the specific ones.
var intentRules = []intentRule{
	{types.IntentOrderGeneration, []string{
		"建議訂單", "補貨建議", "訂購建議", "該訂多少", "要訂多少", "下單", "補貨",
		"reorder", "generate order", "order suggestion",
	}},
	{types.IntentShortageAnalysis, []string{
		"缺料", "缺貨", "短缺", "不足", "低於安全庫存",
		"shortage", "stockout", "below safety stock",
	}},
	{types.IntentSalesQuery, []string{
		"銷貨", "銷售", "出貨", "賣出", "賣了",
		"sales", "sold", "shipment", "shipped",
	}},
	{types.IntentPurchaseQuery, []string{
		"進貨", "採購", "購入", "買了",
		"purchase", "procurement", "bought", "received",
	}},
	{types.IntentStockQuery, []string{
		"庫存", "存量", "盤點", "還有多少",
		"stock", "inventory", "on hand",
	}},
}

// analyticalKeywords flag questions needing multi-step planning rather than
// a single compiled query.
var analyticalKeywords = []string{
	"比較", "排名", "排行", "趨勢", "分析走勢", "abc分類", "abc classification",
	"compare", "rank", "ranking", "trend",
}

// enumerationPattern spots counted lists ("前5種", "3 items") which signal a
// multi-entity question.
var enumerationPattern = regexp.MustCompile(`[0-9]+\s*(?:種|項|款|items?|kinds?)`)

// conjunctionPattern spots "X 和 Y" / "X and Y" style multi-entity phrasing.
var conjunctionPattern = regexp.MustCompile(`(?:和|與|跟|以及|\band\b)`)

const (
	confidenceKeywordHit = 0.9
	confidenceFallback   = 0.5
)

// Classifier maps utterances to an intent tag plus a complexity tier.
// Stateless and safe for concurrent use.
type Classifier struct{}

// NewClassifier returns a ready classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify evaluates the intent keyword sets in priority order and flags
// complexity independently.
func (c *Classifier) Classify(text string) types.Classification {
	folded := strings.ToLower(extract.Normalize(text))

	result := types.Classification{
		Intent:     types.IntentStockQuery,
		Complexity: types.ComplexitySimple,
		Confidence: confidenceFallback,
	}

	for _, rule := range intentRules {
		if containsAny(folded, rule.keywords) {
			result.Intent = rule.intent
			result.Confidence = confidenceKeywordHit
			break
		}
	}

	if c.isComplex(folded) {
		result.Complexity = types.ComplexityComplex
	}
	return result
}

// isComplex flags analytical keywords and multi-entity patterns.
func (c *Classifier) isComplex(folded string) bool {
	if containsAny(folded, analyticalKeywords) {
		return true
	}
	if enumerationPattern.MatchString(folded) {
		return true
	}
	// A conjunction only signals multiple entities when the utterance
	// names more than one coded material.
	if conjunctionPattern.MatchString(folded) && countMaterialIDs(folded) > 1 {
		return true
	}
	// 、-separated enumeration of two or more coded materials.
	return countMaterialIDs(folded) > 1 && strings.Contains(folded, "、")
}

var materialIDPattern = regexp.MustCompile(`(?i)\b[a-z]{2}[0-9]{2}-[0-9]{3}\b`)

func countMaterialIDs(folded string) int {
	return len(materialIDPattern.FindAllString(folded, -1))
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessella/opsq/nlq/types"
)

func TestClassifyIntents(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		text   string
		intent types.Intent
	}{
		{"查詢 W01 倉庫的庫存", types.IntentStockQuery},
		{"RM05-008 上月進貨多少", types.IntentPurchaseQuery},
		{"上個月賣了多少成品", types.IntentSalesQuery},
		{"哪些料件缺貨", types.IntentShortageAnalysis},
		{"幫我產生補貨建議", types.IntentOrderGeneration},
		{"how much stock is on hand", types.IntentStockQuery},
		{"what did we purchase last month", types.IntentPurchaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, confidenceKeywordHit, got.Confidence)
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	c := NewClassifier()

	// Mentions both stock and reorder vocabulary; the more specific
	// order-generation set wins.
	got := c.Classify("庫存不夠了，幫我產生補貨建議")
	assert.Equal(t, types.IntentOrderGeneration, got.Intent)

	// Shortage beats stock.
	got = c.Classify("庫存短缺的料件有哪些")
	assert.Equal(t, types.IntentShortageAnalysis, got.Intent)
}

func TestClassifyDefaultFallback(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("W01 的狀況如何")
	assert.Equal(t, types.IntentStockQuery, got.Intent)
	assert.Equal(t, confidenceFallback, got.Confidence)
}

func TestClassifyComplexity(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		text       string
		complexity types.Complexity
	}{
		{"查詢 W01 倉庫的庫存", types.ComplexitySimple},
		{"比較 W01 和 W02 的庫存", types.ComplexityComplex},
		{"銷售排名前5種的成品", types.ComplexityComplex},
		{"庫存趨勢如何", types.ComplexityComplex},
		{"RM05-008 和 RM05-009 的庫存", types.ComplexityComplex},
		{"ABC分類分析", types.ComplexityComplex},
		{"RM05-008 的庫存", types.ComplexitySimple},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.complexity, got.Complexity)
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := NewClassifier()

	a := c.Classify("RM05-008 上月進貨多少")
	b := c.Classify("RM05-008 上月進貨多少")
	assert.Equal(t, a, b)
}

package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/opsq/nlq/catalog"
	"github.com/tessella/opsq/nlq/types"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	snap, err := catalog.LoadDefault()
	require.NoError(t, err)
	return New(catalog.New(snap))
}

func TestAnalyzeCompleteQuestion(t *testing.T) {
	r := newTestResolver(t)

	analysis := r.Analyze("查詢 W01 倉庫的庫存", nil)

	assert.Equal(t, types.IntentStockQuery, analysis.Intent)
	assert.Equal(t, types.ComplexitySimple, analysis.Complexity)
	assert.False(t, analysis.NeedsClarification)
	assert.Empty(t, analysis.Clarifications)

	warehouse, ok := analysis.Field(types.FieldWarehouse)
	require.True(t, ok)
	assert.Equal(t, "W01", warehouse)
	assert.NotEmpty(t, analysis.TurnID)
}

func TestAnalyzeMissingGroupAsksForFirstField(t *testing.T) {
	r := newTestResolver(t)

	analysis := r.Analyze("查詢庫存", nil)

	require.True(t, analysis.NeedsClarification)
	require.Len(t, analysis.Clarifications, 1)
	c := analysis.Clarifications[0]
	assert.Equal(t, types.FieldWarehouse, c.Field)
	assert.Equal(t, "請問要查詢哪個倉庫?", c.Prompt)
	assert.Contains(t, c.Suggestions, "W01")
}

func TestAnalyzeMissingRequiredField(t *testing.T) {
	r := newTestResolver(t)

	analysis := r.Analyze("上月進貨多少", nil)

	assert.Equal(t, types.IntentPurchaseQuery, analysis.Intent)
	require.True(t, analysis.NeedsClarification)
	require.Len(t, analysis.Clarifications, 1)
	assert.Equal(t, types.FieldMaterialID, analysis.Clarifications[0].Field)
	assert.Equal(t, "請問要查詢哪個料號的進貨?", analysis.Clarifications[0].Prompt)

	window, ok := analysis.Field(types.FieldTime)
	require.True(t, ok)
	assert.Equal(t, "last_month", window)
}

func TestAnalyzeContextPreSatisfies(t *testing.T) {
	r := newTestResolver(t)

	analysis := r.Analyze("上月進貨多少", map[string]string{
		"material_id": "RM05-008",
	})

	assert.False(t, analysis.NeedsClarification)
	material, ok := analysis.Field(types.FieldMaterialID)
	require.True(t, ok)
	assert.Equal(t, "RM05-008", material)
}

func TestAnalyzeFreshExtractionBeatsContext(t *testing.T) {
	r := newTestResolver(t)

	analysis := r.Analyze("查詢 W02 倉庫的庫存", map[string]string{
		"warehouse": "W01",
	})

	warehouse, _ := analysis.Field(types.FieldWarehouse)
	assert.Equal(t, "W02", warehouse)
}

func TestAnalyzeWeekCodeBindsOnce(t *testing.T) {
	r := newTestResolver(t)

	// W23 next to a week word is a calendar week only; it must not also
	// surface as a warehouse filter.
	analysis := r.Analyze("W23 那週的銷貨", nil)

	assert.Equal(t, types.IntentSalesQuery, analysis.Intent)
	assert.False(t, analysis.NeedsClarification)

	window, ok := analysis.Field(types.FieldTime)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(window, "range:"), "time %q", window)

	_, ok = analysis.Field(types.FieldWarehouse)
	assert.False(t, ok)
}

func TestAnalyzeFuzzyClarificationVerbatim(t *testing.T) {
	r := newTestResolver(t)

	analysis := r.Analyze("最近的銷貨", nil)

	assert.Equal(t, types.IntentSalesQuery, analysis.Intent)
	require.True(t, analysis.NeedsClarification)

	// The vague-time issue also covers the at-least-one-of group, so no
	// second prompt is synthesized.
	require.Len(t, analysis.Clarifications, 1)
	c := analysis.Clarifications[0]
	assert.Equal(t, types.FieldTime, c.Field)
	assert.Contains(t, c.Suggestions, "last 7 days")
}

func TestAnalyzeContextSettlesFuzzyIssue(t *testing.T) {
	r := newTestResolver(t)

	analysis := r.Analyze("最近的銷貨", map[string]string{
		"time": "last_7_days",
	})

	assert.False(t, analysis.NeedsClarification)
	window, _ := analysis.Field(types.FieldTime)
	assert.Equal(t, "last_7_days", window)
}

func TestAnalyzeIntentsWithoutRequirements(t *testing.T) {
	r := newTestResolver(t)

	for _, text := range []string{"哪些料件缺貨", "幫我產生補貨建議"} {
		analysis := r.Analyze(text, nil)
		assert.False(t, analysis.NeedsClarification, "text %q", text)
	}
}

func TestAnalyzeConfidenceIsFloor(t *testing.T) {
	r := newTestResolver(t)

	// Coded warehouse match (0.85) drags confidence below the keyword
	// classification hit (0.9).
	analysis := r.Analyze("查詢 W01 倉庫的庫存", nil)
	assert.InDelta(t, 0.85, analysis.Confidence, 1e-9)
}

func TestAnalyzeTurnIDsUnique(t *testing.T) {
	r := newTestResolver(t)

	a := r.Analyze("查詢 W01 倉庫的庫存", nil)
	b := r.Analyze("查詢 W01 倉庫的庫存", nil)
	assert.NotEqual(t, a.TurnID, b.TurnID)

	// Everything but the correlation handle is a pure function of the
	// inputs.
	a.TurnID, b.TurnID = "", ""
	assert.Equal(t, a, b)
}

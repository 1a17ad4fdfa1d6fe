package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/opsq/nlq/types"
)

func TestNormalizeFullWidth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ｗ０１倉庫", "W01倉庫"},
		{"  查詢 W01  ", "查詢 W01"},
		{"ＲＭ０５－００８", "RM05-008"},
		{"查詢庫存", "查詢庫存"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestKeywordTablePriorityDeterminism(t *testing.T) {
	// The same keyword declared in two groups must resolve to the
	// higher-priority group's code, regardless of declaration order.
	groups := []categoryGroup{
		{priority: 2, keywords: map[string]string{"鋼材": "SPECIFIC"}},
		{priority: 1, keywords: map[string]string{"鋼材": "GENERIC", "金屬": "GENERIC"}},
	}
	table := buildKeywordTable(groups)

	in := NewInput("查詢鋼材庫存")
	entry, _, ok := table.match(in)
	require.True(t, ok)
	assert.Equal(t, "SPECIFIC", entry.code)
	assert.Equal(t, 2, entry.priority)
}

func TestKeywordTableLongestFirst(t *testing.T) {
	// A short generic keyword must never pre-empt a longer specific one.
	groups := []categoryGroup{
		{priority: 1, keywords: map[string]string{
			"材料":   "GENERIC",
			"包裝材料": "SPECIFIC",
		}},
	}
	table := buildKeywordTable(groups)

	in := NewInput("查包裝材料的庫存")
	entry, span, ok := table.match(in)
	require.True(t, ok)
	assert.Equal(t, "SPECIFIC", entry.code)
	assert.Equal(t, "包裝材料", in.slice(span))
}

func TestWarehouseExtractNamed(t *testing.T) {
	e := NewWarehouseExtractor()

	tests := []struct {
		text string
		code string
	}{
		{"查詢原料倉的庫存", "W02"},
		{"成品倉還有多少貨", "W03"},
		{"主倉庫的安全庫存", "W01"},
		{"check the raw material warehouse", "W02"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m := e.Extract(NewInput(tt.text))
			require.NotNil(t, m)
			assert.Equal(t, types.FieldWarehouse, m.Kind)
			assert.Equal(t, tt.code, m.Value)
			assert.Equal(t, confidenceKeyword, m.Confidence)
		})
	}
}

func TestWarehouseExtractCode(t *testing.T) {
	e := NewWarehouseExtractor()

	// Code with a warehouse context word: matched and claimed.
	in := NewInput("查詢 W01 倉庫的庫存")
	m := e.Extract(in)
	require.NotNil(t, m)
	assert.Equal(t, "W01", m.Value)
	assert.Equal(t, confidenceCode, m.Confidence)
	assert.True(t, in.Claimed(m.Span))

	// Bare code: matched at lower confidence, span left unclaimed.
	in = NewInput("W05 還有多少量")
	m = e.Extract(in)
	require.NotNil(t, m)
	assert.Equal(t, "W05", m.Value)
	assert.Equal(t, confidenceBareCode, m.Confidence)
	assert.False(t, in.Claimed(m.Span))
}

func TestWarehouseIgnoresMaterialNumbers(t *testing.T) {
	e := NewWarehouseExtractor()

	// RM05 inside RM05-008 is a material number, not a location code.
	m := e.Extract(NewInput("RM05-008 上月進貨多少"))
	assert.Nil(t, m)
}

func TestWarehouseNoMatchIsSilent(t *testing.T) {
	e := NewWarehouseExtractor()

	m, req := e.ExtractWithClarification(NewInput("昨天賣了多少"))
	assert.Nil(t, m)
	assert.Nil(t, req)
}

func TestMaterialExtract(t *testing.T) {
	e := NewMaterialExtractor()

	tests := []struct {
		text       string
		value      string
		confidence float64
	}{
		{"RM05-008 上月進貨多少", "RM05-008", confidenceCode},
		{"ＲＭ０５－００８的庫存", "RM05-008", confidenceCode},
		{"冷軋鋼捲還有多少", "RM01-001", confidenceKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m := e.Extract(NewInput(tt.text))
			require.NotNil(t, m)
			assert.Equal(t, types.FieldMaterialID, m.Kind)
			assert.Equal(t, tt.value, m.Value)
			assert.Equal(t, tt.confidence, m.Confidence)
		})
	}
}

func TestCategoryExtract(t *testing.T) {
	e := NewCategoryExtractor()

	tests := []struct {
		text string
		code string
	}{
		{"查原料的庫存", "RM"},
		{"成品還剩多少", "FG"},
		{"包裝材料的進貨", "PK"},
		{"半成品盤點", "SF"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m := e.Extract(NewInput(tt.text))
			require.NotNil(t, m)
			assert.Equal(t, types.FieldCategory, m.Kind)
			assert.Equal(t, tt.code, m.Value)
		})
	}
}

func TestCategoryAndMaterialCoexist(t *testing.T) {
	in := NewInput("查原料 RM05-008 的庫存")

	material := NewMaterialExtractor().Extract(in)
	require.NotNil(t, material)
	assert.Equal(t, "RM05-008", material.Value)

	category := NewCategoryExtractor().Extract(in)
	require.NotNil(t, category)
	assert.Equal(t, "RM", category.Value)
}

func TestTimeExtractRelativeWindows(t *testing.T) {
	e := NewTimeExtractor()

	tests := []struct {
		text  string
		value string
	}{
		{"上月進貨多少", "last_month"},
		{"上個月的銷貨", "last_month"},
		{"本月的出貨量", "this_month"},
		{"去年的採購金額", "last_year"},
		{"今年的營收", "this_year"},
		{"最近7天的出貨", "last_7_days"},
		{"最近一週的進貨", "last_7_days"},
		{"sales for last month", "last_month"},
		{"shipments in the last 7 days", "last_7_days"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m := e.Extract(NewInput(tt.text))
			require.NotNil(t, m)
			assert.Equal(t, types.FieldTime, m.Kind)
			assert.Equal(t, tt.value, m.Value)
		})
	}
}

func TestTimeExtractAbsolute(t *testing.T) {
	e := NewTimeExtractor()

	m := e.Extract(NewInput("2024-03-15 的進貨"))
	require.NotNil(t, m)
	assert.Equal(t, "date:2024-03-15", m.Value)

	m = e.Extract(NewInput("2024/3/5 出了什麼貨"))
	require.NotNil(t, m)
	assert.Equal(t, "date:2024-03-05", m.Value)

	m = e.Extract(NewInput("2024-01-01到2024-01-31的銷貨"))
	require.NotNil(t, m)
	assert.Equal(t, "range:2024-01-01..2024-01-31", m.Value)
}

func TestTimeExtractRejectsBadDate(t *testing.T) {
	e := NewTimeExtractor()
	assert.Nil(t, e.Extract(NewInput("2024-13-45 的進貨")))
}

func TestTimeExtractWeek(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) }
	defer func() { timeNow = restore }()

	e := NewTimeExtractor()

	m := e.Extract(NewInput("第3週的進貨"))
	require.NotNil(t, m)
	// Week 3 of 2024: Monday 2024-01-15 through Sunday 2024-01-21.
	assert.Equal(t, "range:2024-01-15..2024-01-21", m.Value)

	m = e.Extract(NewInput("W23 那週的出貨"))
	require.NotNil(t, m)
	assert.Equal(t, "range:2024-06-03..2024-06-09", m.Value)
}

func TestTimeWeekCodeNeedsWeekContext(t *testing.T) {
	e := NewTimeExtractor()

	// A bare W-code with no week word is not a calendar week.
	assert.Nil(t, e.Extract(NewInput("W23 的庫存")))
}

func TestClaimExclusivity(t *testing.T) {
	// The warehouse extractor runs first and claims W01 because a
	// warehouse context word co-occurs; the time extractor must then skip
	// it even though a week word is present.
	in := NewInput("W01 倉庫那週的資料")

	wm := NewWarehouseExtractor().Extract(in)
	require.NotNil(t, wm)
	assert.Equal(t, "W01", wm.Value)
	assert.True(t, in.Claimed(wm.Span))

	tm := NewTimeExtractor().Extract(in)
	assert.Nil(t, tm)
}

func TestBareCodeYieldsToWeekReading(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) }
	defer func() { timeNow = restore }()

	// A week word with no warehouse word makes W23 a calendar week; the
	// warehouse pass must not also claim it as a bare location code.
	in := NewInput("W23 那週的銷貨")

	wm := NewWarehouseExtractor().Extract(in)
	assert.Nil(t, wm)

	tm := NewTimeExtractor().Extract(in)
	require.NotNil(t, tm)
	assert.Equal(t, "range:2024-06-03..2024-06-09", tm.Value)

	// With both words present, the warehouse word wins the token.
	in = NewInput("W01 倉庫那週的出貨")
	wm = NewWarehouseExtractor().Extract(in)
	require.NotNil(t, wm)
	assert.Equal(t, "W01", wm.Value)
}

func TestTimeFuzzyClarification(t *testing.T) {
	e := NewTimeExtractor()

	m, req := e.ExtractWithClarification(NewInput("最近進貨多少"))
	assert.Nil(t, m)
	require.NotNil(t, req)
	assert.Equal(t, types.FieldTime, req.Field)
	assert.Equal(t, []string{"last 7 days", "last 30 days", "last 90 days"}, req.Suggestions)
}

func TestTimeFuzzySkippedWhenPrecise(t *testing.T) {
	e := NewTimeExtractor()

	// 最近7天 embeds the vague 最近 but is itself precise.
	m, req := e.ExtractWithClarification(NewInput("最近7天進貨多少"))
	assert.Nil(t, req)
	require.NotNil(t, m)
	assert.Equal(t, "last_7_days", m.Value)
}

func TestExtractIdempotent(t *testing.T) {
	e := NewTimeExtractor()

	a := e.Extract(NewInput("上月進貨多少"))
	b := e.Extract(NewInput("上月進貨多少"))
	assert.Equal(t, a, b)
}

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tessella/opsq/nlq/types"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		field  types.FieldKind
		answer string
		want   string
	}{
		{types.FieldWarehouse, "W01", "W01"},
		{types.FieldWarehouse, "主倉庫", "W01"},
		{types.FieldWarehouse, "原料倉", "W02"},
		{types.FieldMaterialID, "RM05-008", "RM05-008"},
		{types.FieldCategory, "原料 (RM)", "RM"},
		{types.FieldCategory, "成品", "FG"},
		{types.FieldTime, "上個月", "last_month"},
		{types.FieldTime, "2024-06-10", "date:2024-06-10"},
		// Unparseable answers pass through normalized.
		{types.FieldWarehouse, "ｍｙｓｔｅｒｙ", "mystery"},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAnswer(tt.field, tt.answer))
		})
	}
}

func TestNormalizeAnswerLastNDays(t *testing.T) {
	today := time.Now()
	want := "range:" + today.AddDate(0, 0, -30).Format("2006-01-02") + ".." + today.Format("2006-01-02")

	assert.Equal(t, want, normalizeAnswer(types.FieldTime, "last 30 days"))
	assert.Equal(t, want, normalizeAnswer(types.FieldTime, "最近30天"))
}

package nlq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/nlq/catalog"
	"github.com/tessella/opsq/nlq/types"
)

type fakeBackend struct {
	query string
	args  []any
	rows  *types.ResultSet
	err   error
}

func (b *fakeBackend) Execute(_ context.Context, query string, args []any) (*types.ResultSet, error) {
	b.query = query
	b.args = args
	if b.err != nil {
		return nil, b.err
	}
	return b.rows, nil
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	snap, err := catalog.LoadDefault()
	require.NoError(t, err)
	return NewOrchestrator(catalog.New(snap))
}

func TestResolveAndCompileClarificationTurn(t *testing.T) {
	o := newTestOrchestrator(t)

	result, err := o.ResolveAndCompile(context.Background(), "查詢庫存", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusClarification, result.Status)
	assert.Nil(t, result.Query)
	assert.Empty(t, result.SQL)
	require.NotEmpty(t, result.Analysis.Clarifications)
	assert.Equal(t, types.FieldWarehouse, result.Analysis.Clarifications[0].Field)
}

func TestResolveAndCompileCompiledTurn(t *testing.T) {
	o := newTestOrchestrator(t)

	result, err := o.ResolveAndCompile(context.Background(), "查詢 W01 倉庫的庫存", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompiled, result.Status)
	require.NotNil(t, result.Query)
	assert.Contains(t, result.SQL, "FROM inv_stock AS stock")
	assert.Equal(t, []any{"W01"}, result.Args)
	assert.Nil(t, result.Rows)
	assert.Equal(t, result.Analysis.TurnID, result.TurnID)
}

func TestResolveAndCompileClarificationRoundTrip(t *testing.T) {
	o := newTestOrchestrator(t)
	ctx := context.Background()

	first, err := o.ResolveAndCompile(ctx, "上月進貨多少", nil)
	require.NoError(t, err)
	require.Equal(t, StatusClarification, first.Status)

	// The caller merges the answer into context and re-invokes.
	second, err := o.ResolveAndCompile(ctx, "上月進貨多少", map[string]string{
		"material_id": "RM05-008",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompiled, second.Status)
	assert.Contains(t, second.SQL, "purchases.material_id = ?")
	assert.Contains(t, second.SQL, "date('now','start of month','-1 month')")
	assert.NotEqual(t, first.TurnID, second.TurnID)
}

func TestResolveAndCompileExecutesWithBackend(t *testing.T) {
	backend := &fakeBackend{
		rows: &types.ResultSet{
			Columns: []string{"material_id", "name", "warehouse", "quantity", "safety_stock"},
			Rows:    [][]any{{"RM05-008", "冷軋鋼捲", "W01", int64(120), int64(80)}},
		},
	}
	o := newTestOrchestrator(t).WithBackend(backend)

	result, err := o.ResolveAndCompile(context.Background(), "查詢 W01 倉庫的庫存", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusCompiled, result.Status)
	assert.Equal(t, result.SQL, backend.query)
	assert.Equal(t, []any{"W01"}, backend.args)
	assert.Equal(t, 1, result.Rows.Len())
}

func TestResolveAndCompileBackendFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("table is locked")}
	o := newTestOrchestrator(t).WithBackend(backend)

	result, err := o.ResolveAndCompile(context.Background(), "查詢 W01 倉庫的庫存", nil)
	require.Error(t, err)
	assert.Equal(t, StatusError, result.Status)
	assert.ErrorContains(t, result.Err, "table is locked")
}

func TestResolveAndCompileCancelledContext(t *testing.T) {
	o := newTestOrchestrator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.ResolveAndCompile(ctx, "查詢 W01 倉庫的庫存", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

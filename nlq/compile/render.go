package compile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/nlq/types"
)

// RenderSQLite emits a compiled query as SQLite SQL plus positional
// arguments. Tables are emitted as `locator AS canonical`, so the canonical
// prefixes of output columns and predicates stay valid in the rendered SQL.
//
// Date columns are stored as ISO-8601 text, which SQLite's date() builtins
// also produce, so window predicates reduce to lexicographic comparisons.
func RenderSQLite(q *types.CompiledQuery) (string, []any, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(q.Select, ", "))
	sb.WriteString("\nFROM ")
	sb.WriteString(renderTable(q.From))

	for _, join := range q.Joins {
		fmt.Fprintf(&sb, "\nJOIN %s ON %s.%s = %s.%s",
			renderTable(join.Table), join.Left, join.On, join.Table.Name, join.On)
	}

	sb.WriteString("\nWHERE ")
	for i, pred := range q.Where {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		clause, predArgs, err := renderPredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(clause)
		args = append(args, predArgs...)
	}

	if len(q.GroupBy) > 0 {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(strings.Join(q.GroupBy, ", "))
	}
	if q.OrderBy != nil {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(q.OrderBy.Column)
		if q.OrderBy.Desc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
	if q.Limit > 0 {
		sb.WriteString("\nLIMIT ")
		sb.WriteString(strconv.Itoa(q.Limit))
	}

	return sb.String(), args, nil
}

func renderTable(ref types.TableRef) string {
	if ref.Locator == ref.Name {
		return ref.Name
	}
	return ref.Locator + " AS " + ref.Name
}

func renderPredicate(pred types.Predicate) (string, []any, error) {
	switch pred.Shape {
	case types.ShapeEquality:
		return pred.Column + " = ?", []any{pred.Args[0]}, nil
	case types.ShapeLike:
		return pred.Column + " LIKE ?", []any{pred.Args[0]}, nil
	case types.ShapeBetween:
		return pred.Column + " BETWEEN ? AND ?", []any{pred.Args[0], pred.Args[1]}, nil
	case types.ShapeWindow:
		clause, err := windowClause(pred.Column, pred.Window)
		return clause, nil, err
	case types.ShapeRaw:
		return pred.Raw, nil, nil
	}
	return "", nil, errors.Wrapf(errors.ErrInvalidRequest, "unknown predicate shape %q", pred.Shape)
}

// windowClause lowers a relative window into date() arithmetic against the
// current date.
func windowClause(column string, window types.TimeWindow) (string, error) {
	switch window {
	case types.WindowLastMonth:
		return fmt.Sprintf(
			"%s >= date('now','start of month','-1 month') AND %s < date('now','start of month')",
			column, column), nil
	case types.WindowThisMonth:
		return fmt.Sprintf(
			"%s >= date('now','start of month') AND %s < date('now','start of month','+1 month')",
			column, column), nil
	case types.WindowLastYear:
		return fmt.Sprintf(
			"%s >= date('now','start of year','-1 year') AND %s < date('now','start of year')",
			column, column), nil
	case types.WindowThisYear:
		return fmt.Sprintf(
			"%s >= date('now','start of year') AND %s < date('now','start of year','+1 year')",
			column, column), nil
	case types.WindowLast7Days:
		return fmt.Sprintf("%s >= date('now','-7 days')", column), nil
	}
	return "", errors.Wrapf(errors.ErrInvalidRequest, "unknown time window %q", window)
}

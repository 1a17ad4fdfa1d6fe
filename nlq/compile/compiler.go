// Package compile turns a fully-satisfied SemanticAnalysis into a
// backend-agnostic CompiledQuery, and renders compiled queries into SQLite
// SQL with positional arguments.
package compile

import (
	"strings"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/logger"
	"github.com/tessella/opsq/nlq/catalog"
	"github.com/tessella/opsq/nlq/types"
)

// Compiler builds queries from intent templates. Field-to-column binding is
// data-driven through the template, never hard-coded per caller.
type Compiler struct {
	catalog *catalog.Catalog
}

// New builds a compiler over a catalog.
func New(cat *catalog.Catalog) *Compiler {
	return &Compiler{catalog: cat}
}

// Compile lowers an analysis through its intent template. Fields outside the
// template's declared set are ignored, so stray context keys never leak into
// predicates. An unknown intent or an unmapped concept is a hard error,
// never a malformed query.
func (c *Compiler) Compile(analysis *types.SemanticAnalysis) (*types.CompiledQuery, error) {
	if analysis.NeedsClarification {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "analysis has unresolved clarifications")
	}

	snap := c.catalog.Snapshot()
	tmpl, ok := snap.Template(analysis.Intent)
	if !ok {
		return nil, errors.WithDetailf(
			errors.Wrapf(errors.ErrUnknownIntent, "no template for intent %q", analysis.Intent),
			"declared intents: %v", snap.Intents())
	}

	primary, ok := snap.Table(tmpl.Table)
	if !ok {
		return nil, errors.Wrapf(errors.ErrMalformedSchema, "primary table %q vanished", tmpl.Table)
	}

	query := &types.CompiledQuery{
		Intent:  analysis.Intent,
		Select:  tmpl.Output,
		From:    types.TableRef{Name: primary.Name, Locator: primary.Locator},
		GroupBy: tmpl.GroupBy,
		OrderBy: tmpl.OrderBy,
		Limit:   tmpl.Limit,
	}

	for _, join := range tmpl.Joins {
		table, ok := snap.Table(join)
		if !ok {
			return nil, errors.Wrapf(errors.ErrMalformedSchema, "join table %q vanished", join)
		}
		rel, ok := snap.Relationship(tmpl.Table, join)
		if !ok {
			return nil, errors.Wrapf(errors.ErrMalformedSchema,
				"no relationship between %s and %s", tmpl.Table, join)
		}
		query.Joins = append(query.Joins, types.CompiledJoin{
			Table: types.TableRef{Name: table.Name, Locator: table.Locator},
			Left:  tmpl.Table,
			On:    rel.On,
		})
	}

	// Template declaration order keeps compilation deterministic.
	for _, field := range tmpl.AllFields() {
		value, present := analysis.Fields[field]
		if !present {
			continue
		}
		pred, err := c.lowerField(snap, tmpl, field, value)
		if err != nil {
			return nil, err
		}
		query.Where = append(query.Where, *pred)
	}

	if tmpl.Extra != "" {
		query.Where = append(query.Where, types.Predicate{Shape: types.ShapeRaw, Raw: tmpl.Extra})
	}

	// Zero predicates lowers to an always-true condition so emitted queries
	// stay structurally uniform.
	if len(query.Where) == 0 {
		query.Where = []types.Predicate{{Shape: types.ShapeRaw, Raw: "1=1"}}
	}

	logger.Logger.Debugw("query compiled",
		logger.FieldTurnID, analysis.TurnID,
		logger.FieldIntent, analysis.Intent,
		logger.FieldCount, len(query.Where),
	)
	return query, nil
}

// lowerField resolves one field to a column and operator, then lowers its
// value into a predicate.
func (c *Compiler) lowerField(snap *catalog.Snapshot, tmpl *types.IntentTemplate, field, value string) (*types.Predicate, error) {
	column, bound := tmpl.Bindings[field]
	concept, mapped := snap.Concept(field)
	if !bound {
		if !mapped {
			return nil, errors.WithDetailf(
				errors.Wrapf(errors.ErrUnresolvableConcept,
					"field %q of intent %s has no binding or concept mapping", field, tmpl.Intent),
				"value was %q", value)
		}
		column = concept.Column
	}
	column = qualify(tmpl.Table, column)

	operator := "="
	if mapped {
		operator = concept.Operator
	}

	switch operator {
	case "time":
		return lowerTime(column, value)
	case "like":
		return &types.Predicate{
			Column: column,
			Shape:  types.ShapeLike,
			Args:   []string{"%" + value + "%"},
		}, nil
	default:
		return &types.Predicate{
			Column: column,
			Shape:  types.ShapeEquality,
			Args:   []string{value},
		}, nil
	}
}

// lowerTime maps the three time-value families onto their predicate shapes:
// equality for a single date, BETWEEN for a range, and a named window for
// relative expressions.
func lowerTime(column, value string) (*types.Predicate, error) {
	tv, err := types.ParseTimeValue(value)
	if err != nil {
		return nil, err
	}
	switch tv.Kind {
	case types.TimeAbsolute:
		return &types.Predicate{
			Column: column,
			Shape:  types.ShapeEquality,
			Args:   []string{tv.Date},
		}, nil
	case types.TimeRange:
		return &types.Predicate{
			Column: column,
			Shape:  types.ShapeBetween,
			Args:   []string{tv.Start, tv.End},
		}, nil
	default:
		return &types.Predicate{
			Column: column,
			Shape:  types.ShapeWindow,
			Window: tv.Window,
		}, nil
	}
}

func qualify(table, column string) string {
	if strings.Contains(column, ".") {
		return column
	}
	return table + "." + column
}

package catalog

import (
	"regexp"
	"strings"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/nlq/types"
)

// columnRefPattern finds table.column references inside output expressions,
// predicates, and ordering clauses.
var columnRefPattern = regexp.MustCompile(`\b([a-z_][a-z0-9_]*)\.([a-z_][a-z0-9_]*)\b`)

// bareColumnPattern matches an output entry that is a plain column name.
var bareColumnPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// validateSnapshot enforces catalog consistency. Every violation is a
// MalformedSchema error carrying enough detail to locate the authoring bug.
//
// The required-field binding checks are what let the compiler promise that
// a validated analysis never fails with an unresolvable concept: every
// field a template can carry is proven resolvable here, at load time.
func validateSnapshot(snap *Snapshot) error {
	for i := range snap.Relationships {
		if err := validateRelationship(snap, &snap.Relationships[i]); err != nil {
			return err
		}
	}

	for _, intent := range snap.Intents() {
		tmpl := snap.Templates[intent]
		if err := validateTemplate(snap, tmpl); err != nil {
			return err
		}
		if rule, ok := snap.Rules[intent]; ok {
			if err := validateRule(snap, tmpl, rule); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRelationship(snap *Snapshot, rel *types.Relationship) error {
	for _, name := range []string{rel.From, rel.To} {
		table, ok := snap.Table(name)
		if !ok {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"relationship %s->%s references undeclared table %q", rel.From, rel.To, name)
		}
		if !table.HasColumn(rel.On) {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"relationship %s->%s joins on %q, not a column of %s", rel.From, rel.To, rel.On, name)
		}
	}
	return nil
}

func validateTemplate(snap *Snapshot, tmpl *types.IntentTemplate) error {
	if _, ok := snap.Table(tmpl.Table); !ok {
		return errors.Wrapf(errors.ErrMalformedSchema,
			"intent %s: primary table %q not declared", tmpl.Intent, tmpl.Table)
	}

	reachable := map[string]bool{tmpl.Table: true}
	for _, join := range tmpl.Joins {
		if _, ok := snap.Table(join); !ok {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"intent %s: join table %q not declared", tmpl.Intent, join)
		}
		if _, ok := snap.Relationship(tmpl.Table, join); !ok {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"intent %s: no declared relationship between %s and %s", tmpl.Intent, tmpl.Table, join)
		}
		reachable[join] = true
	}

	for _, expr := range tmpl.Output {
		if err := validateExpr(snap, tmpl, reachable, expr, "output"); err != nil {
			return err
		}
	}
	for _, expr := range tmpl.GroupBy {
		if err := validateExpr(snap, tmpl, reachable, expr, "group_by"); err != nil {
			return err
		}
	}
	if tmpl.OrderBy != nil {
		if err := validateExpr(snap, tmpl, reachable, tmpl.OrderBy.Column, "order_by"); err != nil {
			return err
		}
	}
	if tmpl.Extra != "" {
		if err := validateExpr(snap, tmpl, reachable, tmpl.Extra, "extra_predicate"); err != nil {
			return err
		}
	}

	for field, column := range tmpl.Bindings {
		if err := validateExpr(snap, tmpl, reachable, column, "binding "+field); err != nil {
			return err
		}
	}

	// Every field the template can carry must be resolvable to a column,
	// either through a binding or through a concept mapping.
	for _, field := range tmpl.AllFields() {
		if err := validateFieldResolvable(snap, tmpl, reachable, field); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(snap *Snapshot, tmpl *types.IntentTemplate, rule *types.ValidationRule) error {
	reachable := map[string]bool{tmpl.Table: true}
	for _, join := range tmpl.Joins {
		reachable[join] = true
	}

	for _, field := range rule.Required {
		if err := validateFieldResolvable(snap, tmpl, reachable, field); err != nil {
			return err
		}
	}
	for _, group := range rule.AtLeastOneOf {
		if len(group) == 0 {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"intent %s: empty at_least_one_of group", tmpl.Intent)
		}
		for _, field := range group {
			if err := validateFieldResolvable(snap, tmpl, reachable, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateFieldResolvable proves a template field binds to a real column on
// a reachable table.
func validateFieldResolvable(snap *Snapshot, tmpl *types.IntentTemplate, reachable map[string]bool, field string) error {
	column, ok := tmpl.Bindings[field]
	if !ok {
		concept, found := snap.Concept(field)
		if !found {
			return errors.WithDetailf(
				errors.Wrapf(errors.ErrMalformedSchema,
					"intent %s: field %q has no binding and no concept mapping", tmpl.Intent, field),
				"declared concepts: %s", strings.Join(snap.conceptNames, ", "))
		}
		column = concept.Column
	}
	return validateExpr(snap, tmpl, reachable, column, "field "+field)
}

// validateExpr checks that every table.column token in an expression names
// a reachable table and declared column, and that a bare column expression
// exists on the primary table.
func validateExpr(snap *Snapshot, tmpl *types.IntentTemplate, reachable map[string]bool, expr, where string) error {
	refs := columnRefPattern.FindAllStringSubmatch(expr, -1)
	if len(refs) == 0 && bareColumnPattern.MatchString(expr) {
		primary := snap.Tables[tmpl.Table]
		if !primary.HasColumn(expr) {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"intent %s %s: column %q not on primary table %s", tmpl.Intent, where, expr, tmpl.Table)
		}
		return nil
	}

	for _, ref := range refs {
		tableName, column := ref[1], ref[2]
		if !reachable[tableName] {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"intent %s %s: table %q not reachable from %s via declared joins",
				tmpl.Intent, where, tableName, tmpl.Table)
		}
		if !snap.Tables[tableName].HasColumn(column) {
			return errors.Wrapf(errors.ErrMalformedSchema,
				"intent %s %s: column %q not declared on table %s", tmpl.Intent, where, column, tableName)
		}
	}
	return nil
}

package types

// TableDefinition declares a logical table and its physical locator.
type TableDefinition struct {
	Name    string   `yaml:"name" json:"name"`       // canonical name used in templates
	Locator string   `yaml:"locator" json:"locator"` // physical table the renderer emits
	Columns []string `yaml:"columns" json:"columns"`
}

// HasColumn reports whether the table declares the given column.
func (t *TableDefinition) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Relationship declares a join edge between two tables on a shared column.
type Relationship struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
	On   string `yaml:"on" json:"on"`
}

// ConceptMapping ties a natural-language concept to a physical column and
// comparison operator. Schema-declared, immutable.
type ConceptMapping struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Column   string   `yaml:"column" json:"column"`
	Operator string   `yaml:"operator" json:"operator"` // "=", "like", "time"
}

// OrderBy describes result ordering for a template.
type OrderBy struct {
	Column string `yaml:"column" json:"column"`
	Desc   bool   `yaml:"desc" json:"desc"`
}

// IntentTemplate is the declarative description of the query shape for one
// intent: tables, joins, fields, output columns, grouping, and ordering.
type IntentTemplate struct {
	Intent   Intent            `yaml:"-" json:"intent"`
	Table    string            `yaml:"table" json:"table"`
	Joins    []string          `yaml:"joins" json:"joins,omitempty"`
	Required []string          `yaml:"required" json:"required,omitempty"`
	Optional []string          `yaml:"optional" json:"optional,omitempty"`
	Output   []string          `yaml:"output" json:"output"`
	GroupBy  []string          `yaml:"group_by" json:"group_by,omitempty"`
	OrderBy  *OrderBy          `yaml:"order_by" json:"order_by,omitempty"`
	Extra    string            `yaml:"extra_predicate" json:"extra_predicate,omitempty"`
	Bindings map[string]string `yaml:"bindings" json:"bindings,omitempty"` // field -> column override
	Limit    int               `yaml:"limit" json:"limit,omitempty"`
}

// AllFields returns required plus optional field names in declaration order.
func (t *IntentTemplate) AllFields() []string {
	fields := make([]string, 0, len(t.Required)+len(t.Optional))
	fields = append(fields, t.Required...)
	fields = append(fields, t.Optional...)
	return fields
}

// ValidationRule declares which fields an intent needs before compilation,
// and the prompts used when they are missing.
type ValidationRule struct {
	Intent       Intent              `yaml:"-" json:"intent"`
	Required     []string            `yaml:"required" json:"required,omitempty"`
	AtLeastOneOf [][]string          `yaml:"at_least_one_of" json:"at_least_one_of,omitempty"`
	Prompts      map[string]string   `yaml:"prompts" json:"prompts,omitempty"`
	Suggestions  map[string][]string `yaml:"suggestions" json:"suggestions,omitempty"`
}

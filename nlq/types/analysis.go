// Package types defines the domain entities shared across the query
// resolution pipeline: extraction matches, clarification requests, semantic
// analyses, catalog declarations, and compiled queries.
package types

// FieldKind identifies the entity class a field value belongs to.
type FieldKind string

const (
	FieldWarehouse  FieldKind = "warehouse"
	FieldMaterialID FieldKind = "material_id"
	FieldCategory   FieldKind = "category"
	FieldTime       FieldKind = "time"
)

// Span marks a byte range in the normalized input text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share any bytes.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// ExtractionMatch is a single entity recognized in the input text.
// Immutable once created.
type ExtractionMatch struct {
	Kind       FieldKind `json:"kind"`
	Value      string    `json:"value"` // normalized value, e.g. "W01", "last_month"
	Raw        string    `json:"raw"`   // matched source text
	Span       Span      `json:"span"`
	Confidence float64   `json:"confidence"`
}

// ClarificationRequest is produced instead of a guess when the input is
// ambiguous or a required field is missing.
type ClarificationRequest struct {
	Field       FieldKind `json:"field"`
	Prompt      string    `json:"prompt"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// Intent is the enumerated category of a question, selecting a query template.
type Intent string

const (
	IntentStockQuery       Intent = "stock_query"
	IntentPurchaseQuery    Intent = "purchase_query"
	IntentSalesQuery       Intent = "sales_query"
	IntentShortageAnalysis Intent = "shortage_analysis"
	IntentOrderGeneration  Intent = "order_generation"
)

// Complexity tiers a question by how much planning it needs. COMPLEX signals
// that multi-step planning outside this pipeline is required instead of a
// single compiled query.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

// Classification is the intent classifier's verdict for one input.
type Classification struct {
	Intent     Intent     `json:"intent"`
	Complexity Complexity `json:"complexity"`
	Confidence float64    `json:"confidence"`
}

// SemanticAnalysis is the resolver's full interpretation of one input turn.
// Constructed once per resolution call and never mutated afterwards. The
// semantic fields are a deterministic function of (text, context); TurnID is
// a per-call correlation handle for logs and is fresh on every call.
type SemanticAnalysis struct {
	TurnID             string                 `json:"turn_id"`
	Intent             Intent                 `json:"intent"`
	Complexity         Complexity             `json:"complexity"`
	Fields             map[string]string      `json:"fields"`
	Confidence         float64                `json:"confidence"`
	Clarifications     []ClarificationRequest `json:"clarifications,omitempty"`
	NeedsClarification bool                   `json:"needs_clarification"`
}

// Field returns the value for a field kind, with presence.
func (sa *SemanticAnalysis) Field(kind FieldKind) (string, bool) {
	v, ok := sa.Fields[string(kind)]
	return v, ok
}

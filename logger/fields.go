package logger

// Standard field names for consistent structured logging across opsq.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldTurnID = "turn_id"

	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldQuery     = "query"
	FieldIntent    = "intent"
	FieldField     = "field"
	FieldState     = "state"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount = "count"

	// Catalog
	FieldCatalogPath    = "catalog_path"
	FieldSchemaVersion  = "schema_version"
	FieldCatalogVersion = "catalog_revision"
)

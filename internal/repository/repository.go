// Package repository handles all interactions with the database.
//
// It holds the data access object for the animals collection: the five
// store operations and the input checks that guard them. Everything that
// reaches the driver has been validated here first.
package repository

// Document is one animal record: field name to value.
//
// name, type and age are required; anything else (outcome_type, breed, ...)
// is stored as given.
type Document map[string]any

// Query selects documents by field equality. Keys must not start with "$".
type Query map[string]any

// GroupSummary is one row of the per-type analytics report.
//
// Type holds whatever the documents store under "type": a string for
// everything written through this package, nil for documents without a type,
// and any other BSON value for data written by other clients.
type GroupSummary struct {
	Type       any     `bson:"_id" json:"type"`
	Count      int64   `bson:"total_animals" json:"total_animals"`
	AverageAge float64 `bson:"average_age" json:"average_age"`
	Outcomes   []any   `bson:"outcomes" json:"outcomes"`
}

// Field names the store operations rely on.
const (
	FieldName        = "name"
	FieldType        = "type"
	FieldAge         = "age"
	FieldOutcomeType = "outcome_type"
)

var requiredFields = []string{FieldName, FieldType, FieldAge}

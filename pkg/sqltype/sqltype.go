package sqltype

import "reflect"

// Kind identifies a column-type variant. It is the discriminant stored in the
// map form produced by ToMap and consumed by FromMap.
type Kind string

const (
	KindBoolean  Kind = "boolean"
	KindDate     Kind = "date"
	KindDatetime Kind = "datetime"
	KindDouble   Kind = "double"
	KindFloat    Kind = "float"
	KindInteger  Kind = "integer"
	KindInterval Kind = "interval"
	KindDecimal  Kind = "decimal"
	KindString   Kind = "string"
	KindTime     Kind = "time"
	KindJSON     Kind = "json"
	KindArray    Kind = "array"
)

// Type is one variant of the closed set of PostgreSQL column types.
//
// Construction goes through the New* functions, which validate parameters and
// return pgdata.ErrSchema-wrapped errors on violation. Values reconstructed
// by FromMap bypass validation (stored definitions are trusted).
type Type interface {
	// ToSQL renders the DDL type fragment, e.g. "NUMERIC(10, 2)".
	// Deterministic and side-effect free.
	ToSQL() string

	// IsRealType reports whether the column holds storage the caller supplies
	// values for. Auto-incrementing integers are generated server-side and
	// report false, so INSERT templates skip them.
	IsRealType() bool

	// GoType returns the Go value type this column decodes to, or nil for
	// JSON, which has no single native mapping.
	GoType() reflect.Type

	// Equal reports structural equality: same variant and identical fields.
	Equal(other Type) bool

	// Kind returns the variant discriminant.
	Kind() Kind

	// ToMap converts the value to a tagged map holding all fields plus the
	// "kind" discriminant, suitable for FromMap reconstruction.
	ToMap() map[string]any

	// sealed restricts implementations to this package.
	sealed()
}

// mapKindKey is the reserved discriminant key in the map form.
const mapKindKey = "kind"

package sqltype

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// Boolean is the BOOLEAN column type.
type Boolean struct{}

// NewBoolean returns a Boolean column type.
func NewBoolean() Boolean { return Boolean{} }

func (Boolean) ToSQL() string         { return "BOOLEAN" }
func (Boolean) IsRealType() bool      { return true }
func (Boolean) GoType() reflect.Type  { return reflect.TypeOf(false) }
func (Boolean) Kind() Kind            { return KindBoolean }
func (Boolean) Equal(other Type) bool { _, ok := other.(Boolean); return ok }
func (Boolean) ToMap() map[string]any { return map[string]any{mapKindKey: string(KindBoolean)} }
func (Boolean) sealed()               {}

// Date is the DATE column type.
type Date struct{}

// NewDate returns a Date column type.
func NewDate() Date { return Date{} }

func (Date) ToSQL() string         { return "DATE" }
func (Date) IsRealType() bool      { return true }
func (Date) GoType() reflect.Type  { return reflect.TypeOf(time.Time{}) }
func (Date) Kind() Kind            { return KindDate }
func (Date) Equal(other Type) bool { _, ok := other.(Date); return ok }
func (Date) ToMap() map[string]any { return map[string]any{mapKindKey: string(KindDate)} }
func (Date) sealed()               {}

// Datetime is the TIMESTAMP column type, with or without time zone.
type Datetime struct {
	Timezone bool
}

// NewDatetime returns a Datetime column type. When timezone is true the
// column is TIMESTAMP WITH TIME ZONE.
func NewDatetime(timezone bool) Datetime { return Datetime{Timezone: timezone} }

func (d Datetime) ToSQL() string {
	if d.Timezone {
		return "TIMESTAMP WITH TIME ZONE"
	}
	return "TIMESTAMP"
}

func (Datetime) IsRealType() bool     { return true }
func (Datetime) GoType() reflect.Type { return reflect.TypeOf(time.Time{}) }
func (Datetime) Kind() Kind           { return KindDatetime }

func (d Datetime) Equal(other Type) bool {
	o, ok := other.(Datetime)
	return ok && o == d
}

func (d Datetime) ToMap() map[string]any {
	return map[string]any{mapKindKey: string(KindDatetime), "timezone": d.Timezone}
}

func (Datetime) sealed() {}

// Double is the REAL column type.
type Double struct{}

// NewDouble returns a Double column type.
func NewDouble() Double { return Double{} }

func (Double) ToSQL() string         { return "REAL" }
func (Double) IsRealType() bool      { return true }
func (Double) GoType() reflect.Type  { return reflect.TypeOf(float64(0)) }
func (Double) Kind() Kind            { return KindDouble }
func (Double) Equal(other Type) bool { _, ok := other.(Double); return ok }
func (Double) ToMap() map[string]any { return map[string]any{mapKindKey: string(KindDouble)} }
func (Double) sealed()               {}

// Float is the FLOAT column type.
type Float struct{}

// NewFloat returns a Float column type.
func NewFloat() Float { return Float{} }

func (Float) ToSQL() string         { return "FLOAT" }
func (Float) IsRealType() bool      { return true }
func (Float) GoType() reflect.Type  { return reflect.TypeOf(float64(0)) }
func (Float) Kind() Kind            { return KindFloat }
func (Float) Equal(other Type) bool { _, ok := other.(Float); return ok }
func (Float) ToMap() map[string]any { return map[string]any{mapKindKey: string(KindFloat)} }
func (Float) sealed()               {}

// Integer is the INTEGER column type family, including the SERIAL variants.
type Integer struct {
	Big           bool
	Small         bool
	AutoIncrement bool
}

// IntegerOption configures an Integer column type.
type IntegerOption func(*Integer)

// Big widens the column to BIGINT (or BIGSERIAL with AutoIncrement).
func Big() IntegerOption { return func(i *Integer) { i.Big = true } }

// Small narrows the column to SMALLINT (or SMALLSERIAL with AutoIncrement).
func Small() IntegerOption { return func(i *Integer) { i.Small = true } }

// AutoIncrement makes the column a server-generated SERIAL variant.
func AutoIncrement() IntegerOption { return func(i *Integer) { i.AutoIncrement = true } }

// NewInteger returns an Integer column type. Big and Small are mutually
// exclusive.
func NewInteger(opts ...IntegerOption) (Integer, error) {
	var i Integer
	for _, opt := range opts {
		opt(&i)
	}

	if i.Big && i.Small {
		return Integer{}, fmt.Errorf("integer column type cannot be both big and small: %w", pgdata.ErrSchema)
	}

	return i, nil
}

func (i Integer) ToSQL() string {
	if i.AutoIncrement {
		switch {
		case i.Big:
			return "BIGSERIAL"
		case i.Small:
			return "SMALLSERIAL"
		default:
			return "SERIAL"
		}
	}
	switch {
	case i.Big:
		return "BIGINT"
	case i.Small:
		return "SMALLINT"
	default:
		return "INTEGER"
	}
}

// IsRealType reports false for auto-incrementing columns: their values come
// from a server-side sequence, not from the caller.
func (i Integer) IsRealType() bool { return !i.AutoIncrement }

func (Integer) GoType() reflect.Type { return reflect.TypeOf(int64(0)) }
func (Integer) Kind() Kind           { return KindInteger }

func (i Integer) Equal(other Type) bool {
	o, ok := other.(Integer)
	return ok && o == i
}

func (i Integer) ToMap() map[string]any {
	return map[string]any{
		mapKindKey:       string(KindInteger),
		"big":            i.Big,
		"small":          i.Small,
		"auto_increment": i.AutoIncrement,
	}
}

func (Integer) sealed() {}

// Interval is the INTERVAL column type with an optional field restriction.
type Interval struct {
	// Field is the interval field specifier, normalized to upper case.
	// Empty means unrestricted.
	Field string
}

// intervalFields is the set of field specifiers PostgreSQL accepts in an
// INTERVAL declaration.
var intervalFields = map[string]struct{}{
	"YEAR":             {},
	"MONTH":            {},
	"DAY":              {},
	"HOUR":             {},
	"MINUTE":           {},
	"SECOND":           {},
	"YEAR TO MONTH":    {},
	"DAY TO HOUR":      {},
	"DAY TO MINUTE":    {},
	"DAY TO SECOND":    {},
	"HOUR TO MINUTE":   {},
	"HOUR TO SECOND":   {},
	"MINUTE TO SECOND": {},
}

// NewInterval returns an Interval column type. field is matched
// case-insensitively against the recognized specifiers; empty means no
// restriction.
func NewInterval(field string) (Interval, error) {
	if field == "" {
		return Interval{}, nil
	}

	normalized := strings.ToUpper(field)
	if _, ok := intervalFields[normalized]; !ok {
		return Interval{}, fmt.Errorf("invalid interval field %q: %w", field, pgdata.ErrSchema)
	}

	return Interval{Field: normalized}, nil
}

func (i Interval) ToSQL() string {
	if i.Field != "" {
		return "INTERVAL " + i.Field
	}
	return "INTERVAL"
}

func (Interval) IsRealType() bool     { return true }
func (Interval) GoType() reflect.Type { return reflect.TypeOf(time.Duration(0)) }
func (Interval) Kind() Kind           { return KindInterval }

func (i Interval) Equal(other Type) bool {
	o, ok := other.(Interval)
	return ok && o == i
}

func (i Interval) ToMap() map[string]any {
	return map[string]any{mapKindKey: string(KindInterval), "field": i.Field}
}

func (Interval) sealed() {}

// Decimal is the NUMERIC column type with optional precision and scale.
type Decimal struct {
	// Precision is the total digit count, nil when unspecified.
	Precision *int

	// Scale is the fractional digit count, meaningful only with Precision.
	Scale int
}

// DecimalOption configures a Decimal column type.
type DecimalOption func(*Decimal)

// Precision sets the total digit count. Must be within [0, 1000].
func Precision(p int) DecimalOption {
	return func(d *Decimal) { d.Precision = &p }
}

// Scale sets the fractional digit count. Defaults to 0 when Precision is set.
func Scale(s int) DecimalOption {
	return func(d *Decimal) { d.Scale = s }
}

// NewDecimal returns a Decimal column type.
func NewDecimal(opts ...DecimalOption) (Decimal, error) {
	var d Decimal
	for _, opt := range opts {
		opt(&d)
	}

	if d.Precision != nil {
		if *d.Precision < 0 || *d.Precision > 1000 {
			return Decimal{}, fmt.Errorf("precision must be between 0 and 1000, got %d: %w", *d.Precision, pgdata.ErrSchema)
		}
	}

	return d, nil
}

func (d Decimal) ToSQL() string {
	if d.Precision != nil {
		return fmt.Sprintf("NUMERIC(%d, %d)", *d.Precision, d.Scale)
	}
	return "NUMERIC"
}

func (Decimal) IsRealType() bool     { return true }
func (Decimal) GoType() reflect.Type { return reflect.TypeOf(pgtype.Numeric{}) }
func (Decimal) Kind() Kind           { return KindDecimal }

func (d Decimal) Equal(other Type) bool {
	o, ok := other.(Decimal)
	if !ok || o.Scale != d.Scale {
		return false
	}
	if (d.Precision == nil) != (o.Precision == nil) {
		return false
	}
	return d.Precision == nil || *d.Precision == *o.Precision
}

func (d Decimal) ToMap() map[string]any {
	m := map[string]any{mapKindKey: string(KindDecimal), "scale": d.Scale}
	if d.Precision != nil {
		m["precision"] = *d.Precision
	} else {
		m["precision"] = nil
	}
	return m
}

func (Decimal) sealed() {}

// String is the TEXT column type.
type String struct{}

// NewString returns a String column type.
func NewString() String { return String{} }

func (String) ToSQL() string         { return "TEXT" }
func (String) IsRealType() bool      { return true }
func (String) GoType() reflect.Type  { return reflect.TypeOf("") }
func (String) Kind() Kind            { return KindString }
func (String) Equal(other Type) bool { _, ok := other.(String); return ok }
func (String) ToMap() map[string]any { return map[string]any{mapKindKey: string(KindString)} }
func (String) sealed()               {}

// Time is the TIME column type, with or without time zone.
type Time struct {
	Timezone bool
}

// NewTime returns a Time column type. When timezone is true the column is
// TIME WITH TIME ZONE.
func NewTime(timezone bool) Time { return Time{Timezone: timezone} }

func (t Time) ToSQL() string {
	if t.Timezone {
		return "TIME WITH TIME ZONE"
	}
	return "TIME"
}

func (Time) IsRealType() bool     { return true }
func (Time) GoType() reflect.Type { return reflect.TypeOf(time.Time{}) }
func (Time) Kind() Kind           { return KindTime }

func (t Time) Equal(other Type) bool {
	o, ok := other.(Time)
	return ok && o == t
}

func (t Time) ToMap() map[string]any {
	return map[string]any{mapKindKey: string(KindTime), "timezone": t.Timezone}
}

func (Time) sealed() {}

// JSON is the JSONB column type. It has no single native Go mapping; values
// pass through the connection's JSON codecs as structured data.
type JSON struct{}

// NewJSON returns a JSON column type.
func NewJSON() JSON { return JSON{} }

func (JSON) ToSQL() string         { return "JSONB" }
func (JSON) IsRealType() bool      { return true }
func (JSON) GoType() reflect.Type  { return nil }
func (JSON) Kind() Kind            { return KindJSON }
func (JSON) Equal(other Type) bool { _, ok := other.(JSON); return ok }
func (JSON) ToMap() map[string]any { return map[string]any{mapKindKey: string(KindJSON)} }
func (JSON) sealed()               {}

// Array is an array column over an inner column type, with an optional size.
type Array struct {
	// Inner is the element type. Always a valid Type for constructed values.
	Inner Type

	// Size is the declared array length; 0 means unsized.
	Size int
}

// NewArray returns an Array column type over inner. size 0 declares an
// unsized array.
func NewArray(inner Type, size int) (Array, error) {
	if inner == nil {
		return Array{}, fmt.Errorf("array inner type must be a valid column type: %w", pgdata.ErrSchema)
	}

	return Array{Inner: inner, Size: size}, nil
}

func (a Array) ToSQL() string {
	if a.Size > 0 {
		return fmt.Sprintf("%s[%d]", a.Inner.ToSQL(), a.Size)
	}
	return a.Inner.ToSQL() + "[]"
}

func (Array) IsRealType() bool { return true }

func (a Array) GoType() reflect.Type {
	inner := a.Inner.GoType()
	if inner == nil {
		return nil
	}
	return reflect.SliceOf(inner)
}

func (Array) Kind() Kind { return KindArray }

func (a Array) Equal(other Type) bool {
	o, ok := other.(Array)
	return ok && o.Size == a.Size && a.Inner.Equal(o.Inner)
}

func (a Array) ToMap() map[string]any {
	return map[string]any{
		mapKindKey: string(KindArray),
		"inner":    a.Inner.ToMap(),
		"size":     a.Size,
	}
}

func (Array) sealed() {}

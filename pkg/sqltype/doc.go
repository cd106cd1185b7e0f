// Package sqltype models PostgreSQL column types as a closed set of variants.
//
// Each variant renders its DDL type fragment via ToSQL, validates its own
// construction parameters (returning pgdata.ErrSchema on violation), reports
// the Go value type it decodes to, supports structural equality, and
// round-trips through a tagged map for persisting schema definitions
// independent of live code.
//
// The set is sealed: only the types defined here implement Type. Schema
// generation code composes them, e.g.
//
//	id, _ := sqltype.NewInteger(sqltype.Big(), sqltype.AutoIncrement())
//	id.ToSQL() // "BIGSERIAL"
package sqltype

package sqltype

import "fmt"

// FromMap reconstructs a Type from its tagged map form, as produced by ToMap.
// Reconstruction trusts the stored fields and performs no invariant
// validation; only an unrecognized discriminant or a structurally unusable
// map is an error.
//
// Numeric fields tolerate the widened types produced by JSON decoding
// (float64) alongside native ints.
func FromMap(data map[string]any) (Type, error) {
	kind, ok := data[mapKindKey].(string)
	if !ok {
		return nil, fmt.Errorf("missing %q discriminant in type map", mapKindKey)
	}

	switch Kind(kind) {
	case KindBoolean:
		return Boolean{}, nil
	case KindDate:
		return Date{}, nil
	case KindDatetime:
		return Datetime{Timezone: mapBool(data["timezone"])}, nil
	case KindDouble:
		return Double{}, nil
	case KindFloat:
		return Float{}, nil
	case KindInteger:
		return Integer{
			Big:           mapBool(data["big"]),
			Small:         mapBool(data["small"]),
			AutoIncrement: mapBool(data["auto_increment"]),
		}, nil
	case KindInterval:
		return Interval{Field: mapString(data["field"])}, nil
	case KindDecimal:
		d := Decimal{Scale: mapInt(data["scale"])}
		if p, ok := mapOptionalInt(data["precision"]); ok {
			d.Precision = &p
		}
		return d, nil
	case KindString:
		return String{}, nil
	case KindTime:
		return Time{Timezone: mapBool(data["timezone"])}, nil
	case KindJSON:
		return JSON{}, nil
	case KindArray:
		innerMap, ok := data["inner"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("array type map has no inner type")
		}
		inner, err := FromMap(innerMap)
		if err != nil {
			return nil, err
		}
		return Array{Inner: inner, Size: mapInt(data["size"])}, nil
	}

	return nil, fmt.Errorf("unknown column type kind %q", kind)
}

func mapBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func mapString(v any) string {
	s, _ := v.(string)
	return s
}

func mapInt(v any) int {
	n, _ := mapOptionalInt(v)
	return n
}

func mapOptionalInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

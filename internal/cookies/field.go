package cookies

import (
	"fmt"
	"strings"
)

// Field selects which record fields participate in matching.
type Field int

const (
	// FieldAll matches name, value or domain.
	FieldAll Field = iota
	// FieldName matches the cookie name only.
	FieldName
	// FieldValue matches the cookie value only.
	FieldValue
)

// Fields lists every Field in display order.
var Fields = []Field{FieldAll, FieldName, FieldValue}

// ParseField parses "all", "name" or "value" (case-insensitive).
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FieldAll, nil
	case "name":
		return FieldName, nil
	case "value":
		return FieldValue, nil
	}
	return FieldAll, fmt.Errorf("unknown filter field %q (want all, name or value)", s)
}

// String implements fmt.Stringer and pflag.Value.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldValue:
		return "value"
	default:
		return "all"
	}
}

// Set implements pflag.Value.
func (f *Field) Set(s string) error {
	parsed, err := ParseField(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Field) Type() string {
	return "field"
}

// Next returns the field that follows f, wrapping around.
func (f Field) Next() Field {
	return Fields[(int(f)+1)%len(Fields)]
}

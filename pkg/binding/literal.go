package binding

import (
	"fmt"
	"strconv"
	"strings"

	"loom/pkg/style"
	"loom/pkg/types"
)

// ParseLiteral converts an unbound attribute value to a value of type t.
func ParseLiteral(t *types.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch t.Kind {
	case types.String, types.Object:
		return s, nil
	case types.Bool:
		return strconv.ParseBool(s)
	case types.Int:
		return strconv.Atoi(s)
	case types.Float:
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "f"), 32)
		return float32(f), err
	case types.Double:
		return strconv.ParseFloat(s, 64)
	case types.Color:
		return style.ParseColor(s)
	case types.Measurement:
		return style.ParseMeasurement(s)
	case types.FixedLength:
		return style.ParseFixedLength(s)
	case types.OffsetMeasurement:
		return style.ParseOffsetMeasurement(s)
	case types.Enum:
		if v, ok := t.EnumValue(s); ok {
			return v, nil
		}
		return nil, fmt.Errorf("%q is not a member of %s", s, t)
	}
	return nil, fmt.Errorf("cannot write a literal of type %s; use a {binding}", t)
}

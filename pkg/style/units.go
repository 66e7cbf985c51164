package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit tags how a numeric style value resolves to pixels. Not every value
// type accepts every unit; see the parse functions.
type Unit uint8

const (
	UnitUnset Unit = iota
	UnitPixel
	UnitPercent
	UnitContent
	UnitParentSize
	UnitParentContentArea
	UnitViewportWidth
	UnitViewportHeight
	UnitEm
	UnitAnchorWidth
	UnitAnchorHeight
)

var unitNames = [...]string{"unset", "px", "%", "content", "psz", "pca", "vw", "vh", "em", "aw", "ah"}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("unit(%d)", u)
}

// Measurement sizes a box. Percent and the parent units are fractions (0.5 is half).
type Measurement struct {
	Value float32
	Unit  Unit
}

func Px(v float32) Measurement { return Measurement{v, UnitPixel} }
func Percent(v float32) Measurement { return Measurement{v, UnitPercent} }
func ContentSize(v float32) Measurement { return Measurement{v, UnitContent} }

func (m Measurement) IsContentBased() bool {
	return m.Unit == UnitContent
}

func (m Measurement) String() string {
	return formatValue(m.Value, m.Unit)
}

// FixedLength is used for spacing, gaps and pivots.
type FixedLength struct {
	Value float32
	Unit  Unit
}

func FixedPx(v float32) FixedLength { return FixedLength{v, UnitPixel} }

func (f FixedLength) String() string {
	return formatValue(f.Value, f.Unit)
}

// OffsetMeasurement positions a box relative to an alignment origin or its
// own layout position.
type OffsetMeasurement struct {
	Value float32
	Unit  Unit
}

func OffsetPx(v float32) OffsetMeasurement { return OffsetMeasurement{v, UnitPixel} }

func (o OffsetMeasurement) String() string {
	return formatValue(o.Value, o.Unit)
}

func formatValue(v float32, u Unit) string {
	switch u {
	case UnitUnset:
		return "unset"
	case UnitPercent:
		return strconv.FormatFloat(float64(v*100), 'f', -1, 32) + "%"
	case UnitContent:
		return "content(" + strconv.FormatFloat(float64(v*100), 'f', -1, 32) + ")"
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32) + u.String()
}

// parseNumberUnit splits "100px", "50%", "2em" or "content(80)".
func parseNumberUnit(val string) (float32, Unit, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, UnitUnset, fmt.Errorf("empty value")
	}
	if strings.HasPrefix(val, "content(") && strings.HasSuffix(val, ")") {
		n, err := strconv.ParseFloat(strings.TrimSpace(val[len("content("):len(val)-1]), 32)
		if err != nil {
			return 0, UnitUnset, fmt.Errorf("invalid content size %q", val)
		}
		return float32(n) / 100, UnitContent, nil
	}
	if val == "content" {
		return 1, UnitContent, nil
	}
	end := len(val)
	for end > 0 && !isNumberByte(val[end-1]) {
		end--
	}
	num, suffix := val[:end], strings.ToLower(val[end:])
	n, err := strconv.ParseFloat(num, 32)
	if err != nil {
		return 0, UnitUnset, fmt.Errorf("invalid number %q", val)
	}
	v := float32(n)
	switch suffix {
	case "", "px", "f":
		return v, UnitPixel, nil
	case "%":
		return v / 100, UnitPercent, nil
	case "psz":
		return v, UnitParentSize, nil
	case "pca":
		return v, UnitParentContentArea, nil
	case "vw":
		return v, UnitViewportWidth, nil
	case "vh":
		return v, UnitViewportHeight, nil
	case "em":
		return v, UnitEm, nil
	case "aw":
		return v, UnitAnchorWidth, nil
	case "ah":
		return v, UnitAnchorHeight, nil
	}
	return 0, UnitUnset, fmt.Errorf("unknown unit %q in %q", suffix, val)
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}

func ParseMeasurement(val string) (Measurement, error) {
	v, u, err := parseNumberUnit(val)
	if err != nil {
		return Measurement{}, err
	}
	switch u {
	case UnitAnchorWidth, UnitAnchorHeight:
		return Measurement{}, fmt.Errorf("unit %s is not valid for a size", u)
	}
	return Measurement{v, u}, nil
}

func ParseFixedLength(val string) (FixedLength, error) {
	v, u, err := parseNumberUnit(val)
	if err != nil {
		return FixedLength{}, err
	}
	switch u {
	case UnitPixel, UnitPercent, UnitViewportWidth, UnitViewportHeight, UnitEm:
		return FixedLength{v, u}, nil
	}
	return FixedLength{}, fmt.Errorf("unit %s is not valid for a fixed length", u)
}

func ParseOffsetMeasurement(val string) (OffsetMeasurement, error) {
	v, u, err := parseNumberUnit(val)
	if err != nil {
		return OffsetMeasurement{}, err
	}
	switch u {
	case UnitContent, UnitParentSize:
		return OffsetMeasurement{}, fmt.Errorf("unit %s is not valid for an offset", u)
	}
	return OffsetMeasurement{v, u}, nil
}

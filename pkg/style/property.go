package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type PropertyID uint8

const (
	LayoutTypeProperty PropertyID = iota
	LayoutBehaviorProperty
	PreferredWidth
	PreferredHeight
	MinWidth
	MaxWidth
	MinHeight
	MaxHeight
	LayoutFitHorizontal
	LayoutFitVertical

	MarginTop
	MarginRight
	MarginBottom
	MarginLeft
	PaddingTop
	PaddingRight
	PaddingBottom
	PaddingLeft
	BorderTop
	BorderRight
	BorderBottom
	BorderLeft

	FlexLayoutDirection
	FlexLayoutWrap
	FlexLayoutMainAxisAlignment
	FlexLayoutCrossAxisAlignment
	FlexItemGrow
	FlexItemShrink
	FlexItemOrder
	FlexItemSelfAlignment

	GridLayoutColumnCount
	GridLayoutColumnGap
	GridLayoutRowGap

	AlignmentTargetX
	AlignmentTargetY
	AlignmentOriginX
	AlignmentOriginY
	AlignmentOffsetX
	AlignmentOffsetY
	AlignmentDirectionX
	AlignmentDirectionY
	AlignmentBoundaryX
	AlignmentBoundaryY

	AnchorTargetProperty
	AnchorTop
	AnchorRight
	AnchorBottom
	AnchorLeft

	TransformPositionX
	TransformPositionY
	TransformScaleX
	TransformScaleY
	TransformRotation
	TransformPivotX
	TransformPivotY

	ClipBehaviorProperty
	OverflowX
	OverflowY
	ClipBoundsProperty

	VisibilityProperty
	PointerEventsProperty
	TextFontSize
	ZIndex
	Layer
	BackgroundColor
	BorderColor
	TextColor

	propertyCount
)

// NumProperties is the number of defined style properties.
const NumProperties = int(propertyCount)

type propertyInfo struct {
	name  string
	parse func(string) (any, error)
	def   any
	apply func(c *Computed, v any)
}

var unsetLength = FixedLength{0, UnitPixel}
var unsetOffset = OffsetMeasurement{0, UnitUnset}

var properties = [propertyCount]propertyInfo{
	LayoutTypeProperty:     {"LayoutType", enumParser[LayoutType](layoutTypeNames), LayoutFlex, func(c *Computed, v any) { c.LayoutType = v.(LayoutType) }},
	LayoutBehaviorProperty: {"LayoutBehavior", enumParser[LayoutBehavior](layoutBehaviorNames), BehaviorNormal, func(c *Computed, v any) { c.LayoutBehavior = v.(LayoutBehavior) }},
	PreferredWidth:         {"PreferredWidth", measurementValue, ContentSize(1), func(c *Computed, v any) { c.PreferredWidth = v.(Measurement) }},
	PreferredHeight:        {"PreferredHeight", measurementValue, ContentSize(1), func(c *Computed, v any) { c.PreferredHeight = v.(Measurement) }},
	MinWidth:               {"MinWidth", measurementValue, Px(0), func(c *Computed, v any) { c.MinWidth = v.(Measurement) }},
	MaxWidth:               {"MaxWidth", measurementValue, Px(math.MaxFloat32), func(c *Computed, v any) { c.MaxWidth = v.(Measurement) }},
	MinHeight:              {"MinHeight", measurementValue, Px(0), func(c *Computed, v any) { c.MinHeight = v.(Measurement) }},
	MaxHeight:              {"MaxHeight", measurementValue, Px(math.MaxFloat32), func(c *Computed, v any) { c.MaxHeight = v.(Measurement) }},
	LayoutFitHorizontal:    {"LayoutFitHorizontal", enumParser[Fit](fitNames), FitUnset, func(c *Computed, v any) { c.FitHorizontal = v.(Fit) }},
	LayoutFitVertical:      {"LayoutFitVertical", enumParser[Fit](fitNames), FitUnset, func(c *Computed, v any) { c.FitVertical = v.(Fit) }},

	MarginTop:     {"MarginTop", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Margin.Top = v.(FixedLength) }},
	MarginRight:   {"MarginRight", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Margin.Right = v.(FixedLength) }},
	MarginBottom:  {"MarginBottom", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Margin.Bottom = v.(FixedLength) }},
	MarginLeft:    {"MarginLeft", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Margin.Left = v.(FixedLength) }},
	PaddingTop:    {"PaddingTop", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Padding.Top = v.(FixedLength) }},
	PaddingRight:  {"PaddingRight", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Padding.Right = v.(FixedLength) }},
	PaddingBottom: {"PaddingBottom", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Padding.Bottom = v.(FixedLength) }},
	PaddingLeft:   {"PaddingLeft", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Padding.Left = v.(FixedLength) }},
	BorderTop:     {"BorderTop", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Border.Top = v.(FixedLength) }},
	BorderRight:   {"BorderRight", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Border.Right = v.(FixedLength) }},
	BorderBottom:  {"BorderBottom", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Border.Bottom = v.(FixedLength) }},
	BorderLeft:    {"BorderLeft", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.Border.Left = v.(FixedLength) }},

	FlexLayoutDirection:          {"FlexLayoutDirection", enumParser[FlexDirection](flexDirectionNames), FlexColumn, func(c *Computed, v any) { c.FlexDirection = v.(FlexDirection) }},
	FlexLayoutWrap:               {"FlexLayoutWrap", enumParser[FlexWrap](flexWrapNames), NoWrap, func(c *Computed, v any) { c.FlexWrap = v.(FlexWrap) }},
	FlexLayoutMainAxisAlignment:  {"FlexLayoutMainAxisAlignment", enumParser[MainAxisAlignment](mainAxisNames), MainAxisStart, func(c *Computed, v any) { c.MainAxisAlignment = v.(MainAxisAlignment) }},
	FlexLayoutCrossAxisAlignment: {"FlexLayoutCrossAxisAlignment", enumParser[CrossAxisAlignment](crossAxisNames), CrossAxisStart, func(c *Computed, v any) { c.CrossAxisAlignment = v.(CrossAxisAlignment) }},
	FlexItemGrow:                 {"FlexItemGrow", intValue, 0, func(c *Computed, v any) { c.FlexGrow = v.(int) }},
	FlexItemShrink:               {"FlexItemShrink", intValue, 0, func(c *Computed, v any) { c.FlexShrink = v.(int) }},
	FlexItemOrder:                {"FlexItemOrder", intValue, 0, func(c *Computed, v any) { c.FlexOrder = v.(int) }},
	FlexItemSelfAlignment:        {"FlexItemSelfAlignment", enumParser[CrossAxisAlignment](crossAxisNames), CrossAxisUnset, func(c *Computed, v any) { c.FlexSelfAlignment = v.(CrossAxisAlignment) }},

	GridLayoutColumnCount: {"GridLayoutColumnCount", intValue, 1, func(c *Computed, v any) { c.GridColumnCount = v.(int) }},
	GridLayoutColumnGap:   {"GridLayoutColumnGap", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.GridColumnGap = v.(FixedLength) }},
	GridLayoutRowGap:      {"GridLayoutRowGap", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.GridRowGap = v.(FixedLength) }},

	AlignmentTargetX:    {"AlignmentTargetX", enumParser[AlignmentTarget](alignmentTargetNames), AlignUnset, func(c *Computed, v any) { c.AlignmentTargetX = v.(AlignmentTarget) }},
	AlignmentTargetY:    {"AlignmentTargetY", enumParser[AlignmentTarget](alignmentTargetNames), AlignUnset, func(c *Computed, v any) { c.AlignmentTargetY = v.(AlignmentTarget) }},
	AlignmentOriginX:    {"AlignmentOriginX", offsetValue, unsetOffset, func(c *Computed, v any) { c.AlignmentOriginX = v.(OffsetMeasurement) }},
	AlignmentOriginY:    {"AlignmentOriginY", offsetValue, unsetOffset, func(c *Computed, v any) { c.AlignmentOriginY = v.(OffsetMeasurement) }},
	AlignmentOffsetX:    {"AlignmentOffsetX", offsetValue, unsetOffset, func(c *Computed, v any) { c.AlignmentOffsetX = v.(OffsetMeasurement) }},
	AlignmentOffsetY:    {"AlignmentOffsetY", offsetValue, unsetOffset, func(c *Computed, v any) { c.AlignmentOffsetY = v.(OffsetMeasurement) }},
	AlignmentDirectionX: {"AlignmentDirectionX", enumParser[AlignmentDirection](alignmentDirectionNames), DirectionStart, func(c *Computed, v any) { c.AlignmentDirectionX = v.(AlignmentDirection) }},
	AlignmentDirectionY: {"AlignmentDirectionY", enumParser[AlignmentDirection](alignmentDirectionNames), DirectionStart, func(c *Computed, v any) { c.AlignmentDirectionY = v.(AlignmentDirection) }},
	AlignmentBoundaryX:  {"AlignmentBoundaryX", enumParser[AlignmentBoundary](alignmentBoundaryNames), BoundaryUnset, func(c *Computed, v any) { c.AlignmentBoundaryX = v.(AlignmentBoundary) }},
	AlignmentBoundaryY:  {"AlignmentBoundaryY", enumParser[AlignmentBoundary](alignmentBoundaryNames), BoundaryUnset, func(c *Computed, v any) { c.AlignmentBoundaryY = v.(AlignmentBoundary) }},

	AnchorTargetProperty: {"AnchorTarget", enumParser[AnchorTarget](anchorTargetNames), AnchorParent, func(c *Computed, v any) { c.AnchorTarget = v.(AnchorTarget) }},
	AnchorTop:            {"AnchorTop", anchorValue, FixedLength{}, func(c *Computed, v any) { c.AnchorTop = v.(FixedLength) }},
	AnchorRight:          {"AnchorRight", anchorValue, FixedLength{}, func(c *Computed, v any) { c.AnchorRight = v.(FixedLength) }},
	AnchorBottom:         {"AnchorBottom", anchorValue, FixedLength{}, func(c *Computed, v any) { c.AnchorBottom = v.(FixedLength) }},
	AnchorLeft:           {"AnchorLeft", anchorValue, FixedLength{}, func(c *Computed, v any) { c.AnchorLeft = v.(FixedLength) }},

	TransformPositionX: {"TransformPositionX", offsetValue, unsetOffset, func(c *Computed, v any) { c.TransformPositionX = v.(OffsetMeasurement) }},
	TransformPositionY: {"TransformPositionY", offsetValue, unsetOffset, func(c *Computed, v any) { c.TransformPositionY = v.(OffsetMeasurement) }},
	TransformScaleX:    {"TransformScaleX", floatValue, float32(1), func(c *Computed, v any) { c.TransformScaleX = v.(float32) }},
	TransformScaleY:    {"TransformScaleY", floatValue, float32(1), func(c *Computed, v any) { c.TransformScaleY = v.(float32) }},
	TransformRotation:  {"TransformRotation", floatValue, float32(0), func(c *Computed, v any) { c.TransformRotation = v.(float32) }},
	TransformPivotX:    {"TransformPivotX", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.TransformPivotX = v.(FixedLength) }},
	TransformPivotY:    {"TransformPivotY", fixedLengthValue, unsetLength, func(c *Computed, v any) { c.TransformPivotY = v.(FixedLength) }},

	ClipBehaviorProperty: {"ClipBehavior", enumParser[ClipBehavior](clipBehaviorNames), ClipNormal, func(c *Computed, v any) { c.ClipBehavior = v.(ClipBehavior) }},
	OverflowX:            {"OverflowX", enumParser[Overflow](overflowNames), OverflowVisible, func(c *Computed, v any) { c.OverflowX = v.(Overflow) }},
	OverflowY:            {"OverflowY", enumParser[Overflow](overflowNames), OverflowVisible, func(c *Computed, v any) { c.OverflowY = v.(Overflow) }},
	ClipBoundsProperty:   {"ClipBounds", enumParser[ClipBounds](clipBoundsNames), ClipBorderBox, func(c *Computed, v any) { c.ClipBounds = v.(ClipBounds) }},

	VisibilityProperty:    {"Visibility", enumParser[Visibility](visibilityNames), Visible, func(c *Computed, v any) { c.Visibility = v.(Visibility) }},
	PointerEventsProperty: {"PointerEvents", enumParser[PointerEvents](pointerEventsNames), PointerEventsNormal, func(c *Computed, v any) { c.PointerEvents = v.(PointerEvents) }},
	TextFontSize:          {"TextFontSize", fixedLengthValue, FixedPx(18), func(c *Computed, v any) { c.FontSize = v.(FixedLength) }},
	ZIndex:                {"ZIndex", intValue, 0, func(c *Computed, v any) { c.ZIndex = v.(int) }},
	Layer:                 {"Layer", intValue, 0, func(c *Computed, v any) { c.Layer = v.(int) }},
	BackgroundColor:       {"BackgroundColor", colorValue, Transparent, func(c *Computed, v any) { c.BackgroundColor = v.(Color) }},
	BorderColor:           {"BorderColor", colorValue, Transparent, func(c *Computed, v any) { c.BorderColor = v.(Color) }},
	TextColor:             {"TextColor", colorValue, Color{0, 0, 0, 255}, func(c *Computed, v any) { c.TextColor = v.(Color) }},
}

var propertyByName = func() map[string]PropertyID {
	m := make(map[string]PropertyID, propertyCount)
	for i := range properties {
		m[strings.ToLower(properties[i].name)] = PropertyID(i)
	}
	return m
}()

func (p PropertyID) String() string {
	if p < propertyCount {
		return properties[p].name
	}
	return fmt.Sprintf("property(%d)", p)
}

// Default is the value a property takes when no style group sets it.
func (p PropertyID) Default() any {
	return properties[p].def
}

// LookupProperty finds a property by name, ignoring case.
func LookupProperty(name string) (PropertyID, bool) {
	id, ok := propertyByName[strings.ToLower(name)]
	return id, ok
}

// ParseValue parses the textual value of a single property.
func ParseValue(p PropertyID, val string) (any, error) {
	return properties[p].parse(strings.TrimSpace(val))
}

func enumParser[T ~uint8](names []string) func(string) (any, error) {
	return func(s string) (any, error) {
		for i, n := range names {
			if strings.EqualFold(n, s) {
				return T(i), nil
			}
		}
		return nil, fmt.Errorf("expected one of %s, got %q", strings.Join(names, ", "), s)
	}
}

func measurementValue(s string) (any, error) { return ParseMeasurement(s) }
func fixedLengthValue(s string) (any, error) { return ParseFixedLength(s) }
func offsetValue(s string) (any, error) { return ParseOffsetMeasurement(s) }
func colorValue(s string) (any, error) { return ParseColor(s) }

// anchorValue accepts "unset" so an inherited anchor can be cleared.
func anchorValue(s string) (any, error) {
	if strings.EqualFold(s, "unset") {
		return FixedLength{}, nil
	}
	return ParseFixedLength(s)
}

func intValue(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("expected an integer, got %q", s)
	}
	return n, nil
}

func floatValue(s string) (any, error) {
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "f"), 32)
	if err != nil {
		return nil, fmt.Errorf("expected a number, got %q", s)
	}
	return float32(n), nil
}

// shorthands expand into several longhand properties, following the
// one/two/three/four value box convention.
var shorthands = map[string][]PropertyID{
	"margin":            {MarginTop, MarginRight, MarginBottom, MarginLeft},
	"padding":           {PaddingTop, PaddingRight, PaddingBottom, PaddingLeft},
	"border":            {BorderTop, BorderRight, BorderBottom, BorderLeft},
	"preferredsize":     {PreferredWidth, PreferredHeight},
	"transformposition": {TransformPositionX, TransformPositionY},
	"transformscale":    {TransformScaleX, TransformScaleY},
	"transformpivot":    {TransformPivotX, TransformPivotY},
	"alignmenttarget":   {AlignmentTargetX, AlignmentTargetY},
	"alignmentoffset":   {AlignmentOffsetX, AlignmentOffsetY},
	"alignmentboundary": {AlignmentBoundaryX, AlignmentBoundaryY},
	"layoutfit":         {LayoutFitHorizontal, LayoutFitVertical},
}

// expandShorthand returns the longhand assignments for name, or ok=false
// when name is not a shorthand.
func expandShorthand(name, val string) (ids []PropertyID, vals []string, ok bool) {
	ids, ok = shorthands[strings.ToLower(name)]
	if !ok {
		return nil, nil, false
	}
	parts := splitValueList(val)
	if len(ids) == 2 {
		switch len(parts) {
		case 1:
			return ids, []string{parts[0], parts[0]}, true
		case 2:
			return ids, parts, true
		}
		return ids, nil, true
	}
	switch len(parts) {
	case 1:
		return ids, []string{parts[0], parts[0], parts[0], parts[0]}, true
	case 2:
		return ids, []string{parts[0], parts[1], parts[0], parts[1]}, true
	case 3:
		return ids, []string{parts[0], parts[1], parts[2], parts[1]}, true
	case 4:
		return ids, parts, true
	}
	return ids, nil, true
}

// splitValueList splits on whitespace and commas outside parentheses.
func splitValueList(val string) []string {
	var parts []string
	depth, start := 0, -1
	for i := 0; i < len(val); i++ {
		c := val[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case (c == ' ' || c == '\t' || c == ',') && depth == 0:
			if start >= 0 {
				parts = append(parts, val[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, val[start:])
	}
	return parts
}

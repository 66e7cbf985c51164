package style

// BoxEdge holds one length per side of a box.
type BoxEdge struct {
	Top    FixedLength
	Right  FixedLength
	Bottom FixedLength
	Left   FixedLength
}

// Computed is the flat snapshot of every resolved property for one element.
// Layout and rendering read it; only the cascade writes it.
type Computed struct {
	LayoutType      LayoutType
	LayoutBehavior  LayoutBehavior
	PreferredWidth  Measurement
	PreferredHeight Measurement
	MinWidth        Measurement
	MaxWidth        Measurement
	MinHeight       Measurement
	MaxHeight       Measurement
	FitHorizontal   Fit
	FitVertical     Fit

	Margin  BoxEdge
	Padding BoxEdge
	Border  BoxEdge

	FlexDirection      FlexDirection
	FlexWrap           FlexWrap
	MainAxisAlignment  MainAxisAlignment
	CrossAxisAlignment CrossAxisAlignment
	FlexGrow           int
	FlexShrink         int
	FlexOrder          int
	FlexSelfAlignment  CrossAxisAlignment

	GridColumnCount int
	GridColumnGap   FixedLength
	GridRowGap      FixedLength

	AlignmentTargetX    AlignmentTarget
	AlignmentTargetY    AlignmentTarget
	AlignmentOriginX    OffsetMeasurement
	AlignmentOriginY    OffsetMeasurement
	AlignmentOffsetX    OffsetMeasurement
	AlignmentOffsetY    OffsetMeasurement
	AlignmentDirectionX AlignmentDirection
	AlignmentDirectionY AlignmentDirection
	AlignmentBoundaryX  AlignmentBoundary
	AlignmentBoundaryY  AlignmentBoundary

	AnchorTarget AnchorTarget
	AnchorTop    FixedLength
	AnchorRight  FixedLength
	AnchorBottom FixedLength
	AnchorLeft   FixedLength

	TransformPositionX OffsetMeasurement
	TransformPositionY OffsetMeasurement
	TransformScaleX    float32
	TransformScaleY    float32
	TransformRotation  float32
	TransformPivotX    FixedLength
	TransformPivotY    FixedLength

	ClipBehavior ClipBehavior
	OverflowX    Overflow
	OverflowY    Overflow
	ClipBounds   ClipBounds

	Visibility      Visibility
	PointerEvents   PointerEvents
	FontSize        FixedLength
	ZIndex          int
	Layer           int
	BackgroundColor Color
	BorderColor     Color
	TextColor       Color
}

// DefaultComputed returns a snapshot with every property at its default.
func DefaultComputed() Computed {
	var c Computed
	for i := range properties {
		properties[i].apply(&c, properties[i].def)
	}
	return c
}

// Set assigns a single property. v must have the property's value type.
func (c *Computed) Set(p PropertyID, v any) {
	properties[p].apply(c, v)
}

// IsClipper reports whether the element clips its descendants.
func (c *Computed) IsClipper() bool {
	return c.OverflowX == OverflowHidden || c.OverflowY == OverflowHidden
}

func (c *Computed) RequiresAlignmentHorizontal() bool {
	return c.AlignmentTargetX != AlignUnset
}

func (c *Computed) RequiresAlignmentVertical() bool {
	return c.AlignmentTargetY != AlignUnset
}

func (c *Computed) HasTransform() bool {
	return c.TransformRotation != 0 || c.TransformScaleX != 1 || c.TransformScaleY != 1 ||
		c.TransformPositionX.Unit != UnitUnset || c.TransformPositionY.Unit != UnitUnset
}

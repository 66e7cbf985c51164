package style

type LayoutType uint8

const (
	LayoutFlex LayoutType = iota
	LayoutGrid
	LayoutNormal
)

var layoutTypeNames = []string{"Flex", "Grid", "Normal"}

func (t LayoutType) String() string { return layoutTypeNames[t] }

// LayoutBehavior decides whether a box takes part in its parent's layout.
type LayoutBehavior uint8

const (
	BehaviorNormal LayoutBehavior = iota
	BehaviorIgnored
	BehaviorTranscludeChildren
)

var layoutBehaviorNames = []string{"Normal", "Ignored", "TranscludeChildren"}

func (b LayoutBehavior) String() string { return layoutBehaviorNames[b] }

type Fit uint8

const (
	FitUnset Fit = iota
	FitNone
	FitContent
	FitParent
)

var fitNames = []string{"Unset", "None", "Content", "Parent"}

func (f Fit) String() string { return fitNames[f] }

// FlexDirection follows the framework convention: a Column lays its items
// out along the horizontal axis, a Row along the vertical axis.
type FlexDirection uint8

const (
	FlexColumn FlexDirection = iota
	FlexRow
)

var flexDirectionNames = []string{"Column", "Row"}

type FlexWrap uint8

const (
	NoWrap FlexWrap = iota
	Wrap
)

var flexWrapNames = []string{"NoWrap", "Wrap"}

type MainAxisAlignment uint8

const (
	MainAxisStart MainAxisAlignment = iota
	MainAxisEnd
	MainAxisCenter
	MainAxisSpaceBetween
	MainAxisSpaceAround
)

var mainAxisNames = []string{"Start", "End", "Center", "SpaceBetween", "SpaceAround"}

type CrossAxisAlignment uint8

const (
	CrossAxisUnset CrossAxisAlignment = iota
	CrossAxisStart
	CrossAxisEnd
	CrossAxisCenter
	CrossAxisStretch
)

var crossAxisNames = []string{"Unset", "Start", "End", "Center", "Stretch"}

// AlignmentTarget is the origin an aligned box is positioned against.
type AlignmentTarget uint8

const (
	AlignUnset AlignmentTarget = iota
	AlignParent
	AlignParentContentArea
	AlignViewport
	AlignScreen
	AlignMouse
)

var alignmentTargetNames = []string{"Unset", "Parent", "ParentContentArea", "Viewport", "Screen", "Mouse"}

type AlignmentDirection uint8

const (
	DirectionStart AlignmentDirection = iota
	DirectionEnd
)

var alignmentDirectionNames = []string{"Start", "End"}

type AlignmentBoundary uint8

const (
	BoundaryUnset AlignmentBoundary = iota
	BoundaryView
	BoundaryClipper
	BoundaryScreen
	BoundaryParent
	BoundaryParentContentArea
)

var alignmentBoundaryNames = []string{"Unset", "View", "Clipper", "Screen", "Parent", "ParentContentArea"}

type AnchorTarget uint8

const (
	AnchorParent AnchorTarget = iota
	AnchorParentContentArea
	AnchorViewport
	AnchorScreen
)

var anchorTargetNames = []string{"Parent", "ParentContentArea", "Viewport", "Screen"}

type ClipBehavior uint8

const (
	ClipNormal ClipBehavior = iota
	ClipNever
	ClipView
	ClipScreen
)

var clipBehaviorNames = []string{"Normal", "Never", "View", "Screen"}

type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
)

var overflowNames = []string{"Visible", "Hidden"}

type ClipBounds uint8

const (
	ClipBorderBox ClipBounds = iota
	ClipContentBox
)

var clipBoundsNames = []string{"BorderBox", "ContentBox"}

type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
)

var visibilityNames = []string{"Visible", "Hidden"}

type PointerEvents uint8

const (
	PointerEventsNormal PointerEvents = iota
	PointerEventsNone
)

var pointerEventsNames = []string{"Normal", "None"}

// Package layout sizes and positions the element tree. The Runner owns one
// Box per enabled element, keyed by element ID, and produces a Result per
// element each frame: sizes, positions, world matrix, oriented bounds and
// clipping state.
package layout

import (
	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/style"
)

// BoxID indexes the runner's box arena. IDs are reused after an element is
// destroyed.
type BoxID int32

const noBox BoxID = -1

// Kind selects the algorithm a box uses to place its children.
type Kind uint8

const (
	KindNormal Kind = iota
	KindFlex
	KindGrid
	KindRoot
	KindTranscludeChildren
)

var kindNames = []string{"Normal", "Flex", "Grid", "Root", "TranscludeChildren"}

func (k Kind) String() string { return kindNames[k] }

type Flags uint16

const (
	RequireLayoutHorizontal Flags = 1 << iota
	RequireLayoutVertical
	RequiresMatrixUpdate
	RequireAlignmentHorizontal
	RequireAlignmentVertical
	Clipper
	Ignored
	GatherChildren
	TranscludedChildren
	ContentSizedWidth
	ContentSizedHeight

	contentWidthValid
	contentHeightValid
)

const requireLayout = RequireLayoutHorizontal | RequireLayoutVertical

// Axis names the direction a pass works along.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// Box is the layout state of one element. Positions are local to the layout
// parent's border box; sizes are border-box sizes.
type Box struct {
	Kind    Kind
	Flags   Flags
	Element *element.Element

	Parent      BoxID
	FirstChild  BoxID
	NextSibling BoxID
	ChildCount  int

	style     *style.Computed
	behavior  style.LayoutBehavior
	traversal int
	emSize    float32

	x, y                    float32
	width, height           float32
	allocWidth, allocHeight float32

	paddingBorderLeft, paddingBorderRight float32
	paddingBorderTop, paddingBorderBottom float32
	marginLeft, marginRight               float32
	marginTop, marginBottom               float32
	contentWidthCache, contentHeightCache float32
	alignedX, alignedY                    float32
	screenDistanceX, screenDistanceY      float32

	// top, right, bottom, left
	padding geom.Vector4
	border  geom.Vector4

	clipper *ClipData // clipper this box is tested against
	clip    *ClipData // clipper this box owns, if any

	flex flexData
}

// Size is the final border-box size.
func (b *Box) Size() (float32, float32) { return b.width, b.height }

// Position is the layout position before alignment and transforms.
func (b *Box) Position() (float32, float32) { return b.x, b.y }

func (b *Box) Style() *style.Computed { return b.style }

// EmSize is the resolved font size in pixels.
func (b *Box) EmSize() float32 { return b.emSize }

// ContentArea is the size left after padding and border.
func (b *Box) ContentArea() (float32, float32) {
	return max(0, b.width-b.paddingBorderLeft-b.paddingBorderRight),
		max(0, b.height-b.paddingBorderTop-b.paddingBorderBottom)
}

func (b *Box) ignored() bool { return b.Flags&Ignored != 0 }

func (b *Box) reset(el *element.Element) {
	flex := b.flex
	*b = Box{
		Element:     el,
		Parent:      noBox,
		FirstChild:  noBox,
		NextSibling: noBox,
		Flags:       requireLayout | GatherChildren,
		emSize:      18,
	}
	b.flex.items = flex.items[:0]
	b.flex.lines = flex.lines[:0]
}

func kindOf(c *style.Computed) Kind {
	if c.LayoutBehavior == style.BehaviorTranscludeChildren {
		return KindTranscludeChildren
	}
	switch c.LayoutType {
	case style.LayoutFlex:
		return KindFlex
	case style.LayoutGrid:
		return KindGrid
	}
	return KindNormal
}

// layoutSize is one axis of a box's size constraints.
type layoutSize struct {
	min, max, preferred    float32
	marginStart, marginEnd float32
}

func (s layoutSize) clamped() float32 {
	return max(s.min, min(s.preferred, s.max))
}

func (s layoutSize) outer() float32 {
	return s.clamped() + s.marginStart + s.marginEnd
}

package layout

import (
	"slices"

	"loom/pkg/element"
	"loom/pkg/geom"
	"loom/pkg/style"
)

// Runner lays out one view: the root element and every enabled descendant.
// It is driven from the application's update loop and is not safe for
// concurrent use.
type Runner struct {
	tree     *element.Tree
	root     *element.Element
	measurer TextMeasurer

	boxes   []Box
	results []Result
	visited []int
	free    []BoxID
	ids     map[element.ID]BoxID

	viewport  geom.Rect
	screen    geom.Size
	screenSet bool
	mouse     geom.Vector2
	pass      int
	frame     int

	order     []BoxID
	queryable []BoxID
	drawOrder []BoxID

	screenClip *ClipData
	viewClip   *ClipData
	clippers   []*ClipData
	clipStack  []*ClipData
	clipPool   []*ClipData
	unclipped  []BoxID
	poly       []geom.Vector2
}

// NewRunner creates a runner for the view rooted at root. measurer may be nil,
// in which case text measures as empty.
func NewRunner(tree *element.Tree, root *element.Element, measurer TextMeasurer) *Runner {
	r := &Runner{
		tree:       tree,
		root:       root,
		measurer:   measurer,
		ids:        make(map[element.ID]BoxID),
		screenClip: &ClipData{box: noBox},
		viewClip:   &ClipData{box: noBox},
	}
	r.viewClip.parent = r.screenClip
	tree.OnDestroy(r.release)
	return r
}

func (r *Runner) Root() *element.Element { return r.root }

func (r *Runner) Viewport() geom.Rect { return r.viewport }

// Frame is the frame number of the latest run.
func (r *Runner) Frame() int { return r.frame }

// SetScreenSize sets the application surface. Until it is called the screen
// is taken to end where the viewport does.
func (r *Runner) SetScreenSize(w, h float32) {
	r.screen = geom.Size{Width: w, Height: h}
	r.screenSet = true
}

func (r *Runner) SetMousePosition(p geom.Vector2) { r.mouse = p }

func (r *Runner) SetMeasurer(m TextMeasurer) {
	r.measurer = m
	r.markAll()
}

// Result returns the element's layout result from the latest run, or nil when
// the element was not laid out (disabled, detached or never run).
func (r *Runner) Result(el *element.Element) *Result {
	id, ok := r.ids[el.ID]
	if !ok || r.visited[id] != r.pass {
		return nil
	}
	return &r.results[id]
}

// Box returns the element's layout box, or nil.
func (r *Runner) Box(el *element.Element) *Box {
	id, ok := r.ids[el.ID]
	if !ok || r.visited[id] != r.pass {
		return nil
	}
	return &r.boxes[id]
}

// Len is the number of boxes laid out by the latest run.
func (r *Runner) Len() int { return len(r.order) }

// StyleChanged tells the runner a computed property of el changed.
func (r *Runner) StyleChanged(el *element.Element, p style.PropertyID) {
	id, ok := r.ids[el.ID]
	if !ok {
		return
	}
	switch {
	case p == style.TextFontSize:
		r.markSubtree(id)
	case p <= style.GridLayoutRowGap:
		r.markDirty(id, requireLayout)
	case p >= style.AnchorTargetProperty && p <= style.AnchorLeft:
		r.markDirty(id, requireLayout)
	case p >= style.TransformPositionX && p <= style.TransformPivotY:
		r.boxes[id].Flags |= RequiresMatrixUpdate
	}
}

// TextChanged tells the runner the text content of el changed, so its
// measured size is stale.
func (r *Runner) TextChanged(el *element.Element) {
	if id, ok := r.ids[el.ID]; ok {
		r.markDirty(id, requireLayout)
	}
}

// RunLayout runs every pass: sync with the element tree, horizontal then
// vertical sizing, alignment and matrices, then clipping and culling.
func (r *Runner) RunLayout(viewport geom.Rect, frame int) {
	r.frame = frame
	if viewport != r.viewport {
		r.viewport = viewport
		r.markAll()
	}
	if !r.screenSet {
		r.screen = geom.Size{Width: viewport.Right(), Height: viewport.Bottom()}
	}
	r.pass++
	r.sync()
	if len(r.order) == 0 {
		return
	}
	root := &r.boxes[r.order[0]]
	root.x, root.y = 0, 0
	if root.width != viewport.Width || root.height != viewport.Height {
		root.width, root.height = viewport.Width, viewport.Height
		root.Flags |= requireLayout
	}
	root.allocWidth, root.allocHeight = viewport.Width, viewport.Height
	r.resolveSpacing(r.order[0])
	r.layoutPass(AxisHorizontal)
	r.layoutPass(AxisVertical)
	r.alignPass()
	r.clipPass()
}

func (r *Runner) layoutPass(axis Axis) {
	flag := RequireLayoutHorizontal
	if axis == AxisVertical {
		flag = RequireLayoutVertical
	}
	for _, id := range r.order {
		b := &r.boxes[id]
		if b.Flags&flag == 0 {
			continue
		}
		b.Flags &^= flag
		switch b.Kind {
		case KindTranscludeChildren:
			continue
		case KindFlex:
			r.flexLayout(id, axis)
		case KindGrid:
			r.gridLayout(id, axis)
		default:
			r.stackLayout(id, axis)
		}
		r.ignoredLayout(id, axis)
	}
}

// sync brings boxes in line with the element tree: creates boxes for new
// elements, rebuilds child lists that changed, refreshes style derived
// flags and assigns clippers.
func (r *Runner) sync() {
	r.tree.DrainChildChanges(func(el *element.Element) {
		if id, ok := r.ids[el.ID]; ok {
			r.markGather(id)
		}
	})
	r.order = r.order[:0]
	r.unclipped = r.unclipped[:0]
	r.clipPool = append(r.clipPool, r.clippers...)
	r.clippers = r.clippers[:0]
	r.screenClip.members = r.screenClip.members[:0]
	r.viewClip.members = r.viewClip.members[:0]
	r.clipStack = append(r.clipStack[:0], r.viewClip)
	if r.root.Destroyed() || !r.root.SelfEnabled() {
		return
	}
	r.syncElement(r.root, noBox)
	for _, id := range r.order {
		if r.boxes[id].Flags&GatherChildren != 0 {
			r.gather(id)
		}
	}
}

func (r *Runner) syncElement(el *element.Element, layoutParent BoxID) {
	id, created := r.ensureBox(el)
	r.visited[id] = r.pass
	b := &r.boxes[id]
	c := el.Style.Computed()
	b.style = c
	kind := kindOf(c)
	if el == r.root {
		kind = KindRoot
	}
	if created || kind != b.Kind || c.LayoutBehavior != b.behavior {
		b.Kind = kind
		b.behavior = c.LayoutBehavior
		b.Flags |= requireLayout | GatherChildren
		if layoutParent != noBox {
			r.markGather(layoutParent)
			b = &r.boxes[id]
		}
	}
	b.Flags &^= Ignored | Clipper | ContentSizedWidth | ContentSizedHeight |
		RequireAlignmentHorizontal | RequireAlignmentVertical
	if c.LayoutBehavior == style.BehaviorIgnored && kind != KindRoot {
		b.Flags |= Ignored
	}
	if c.PreferredWidth.IsContentBased() || c.FitHorizontal == style.FitContent {
		b.Flags |= ContentSizedWidth
	}
	if c.PreferredHeight.IsContentBased() || c.FitVertical == style.FitContent {
		b.Flags |= ContentSizedHeight
	}
	if kind == KindRoot {
		b.Flags &^= ContentSizedWidth | ContentSizedHeight
	}
	if c.RequiresAlignmentHorizontal() {
		b.Flags |= RequireAlignmentHorizontal
	}
	if c.RequiresAlignmentVertical() {
		b.Flags |= RequireAlignmentVertical
	}
	b.traversal = len(r.order)
	r.order = append(r.order, id)

	b.clipper = r.assignClipper(c.ClipBehavior, id)
	b.clip = nil
	pushed := false
	if c.IsClipper() && kind != KindTranscludeChildren {
		cd := r.newClip(id)
		cd.parent = r.clipParent(c.ClipBehavior)
		b.clip = cd
		b.Flags |= Clipper
		r.clipStack = append(r.clipStack, cd)
		pushed = true
	}

	childParent := id
	if kind == KindTranscludeChildren && layoutParent != noBox {
		childParent = layoutParent
	}
	for _, ch := range el.Children {
		if ch.SelfEnabled() {
			r.syncElement(ch, childParent)
		}
	}
	if pushed {
		r.clipStack = r.clipStack[:len(r.clipStack)-1]
	}
}

func (r *Runner) ensureBox(el *element.Element) (BoxID, bool) {
	if id, ok := r.ids[el.ID]; ok {
		return id, false
	}
	var id BoxID
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		id = BoxID(len(r.boxes))
		r.boxes = append(r.boxes, Box{})
		r.results = append(r.results, Result{})
		r.visited = append(r.visited, 0)
	}
	r.boxes[id].reset(el)
	r.results[id] = Result{}
	r.ids[el.ID] = id
	return id, true
}

// release frees the box of a destroyed element. The parent's child list
// is rebuilt on the next sync because destroying detaches first.
func (r *Runner) release(el *element.Element) {
	id, ok := r.ids[el.ID]
	if !ok {
		return
	}
	delete(r.ids, el.ID)
	r.boxes[id].reset(nil)
	r.boxes[id].Flags = 0
	r.visited[id] = 0
	r.free = append(r.free, id)
}

// markGather queues a child list rebuild. Transcluded boxes forward the
// request to the box their children are laid out in.
func (r *Runner) markGather(id BoxID) {
	for {
		b := &r.boxes[id]
		if b.Kind != KindTranscludeChildren || b.Element == nil || b.Element.Parent == nil {
			break
		}
		pid, ok := r.ids[b.Element.Parent.ID]
		if !ok {
			break
		}
		id = pid
	}
	r.boxes[id].Flags |= GatherChildren
}

func (r *Runner) gather(id BoxID) {
	b := &r.boxes[id]
	b.Flags &^= GatherChildren | TranscludedChildren
	b.FirstChild = noBox
	b.ChildCount = 0
	last := noBox
	if b.Kind != KindTranscludeChildren {
		r.gatherInto(id, b.Element, &last)
	}
	r.markDirty(id, requireLayout)
}

func (r *Runner) gatherInto(parent BoxID, el *element.Element, last *BoxID) {
	for _, ch := range el.Children {
		if !ch.SelfEnabled() {
			continue
		}
		cid, ok := r.ids[ch.ID]
		if !ok {
			continue
		}
		cb := &r.boxes[cid]
		cb.Parent = parent
		cb.NextSibling = noBox
		if cb.Kind == KindTranscludeChildren {
			cb.FirstChild = noBox
			cb.Flags &^= GatherChildren
			cb.width, cb.height = 0, 0
			r.boxes[parent].Flags |= TranscludedChildren
			r.gatherInto(parent, ch, last)
			continue
		}
		if *last == noBox {
			r.boxes[parent].FirstChild = cid
		} else {
			r.boxes[*last].NextSibling = cid
		}
		*last = cid
		r.boxes[parent].ChildCount++
	}
}

// markDirty flags a box for layout and walks up through content-sized
// ancestors, whose size may depend on it.
func (r *Runner) markDirty(id BoxID, f Flags) {
	b := &r.boxes[id]
	b.Flags |= f
	b.Flags &^= contentWidthValid | contentHeightValid
	for p := b.Parent; p != noBox; {
		pb := &r.boxes[p]
		pb.Flags |= requireLayout
		pb.Flags &^= contentWidthValid | contentHeightValid
		if pb.Flags&(ContentSizedWidth|ContentSizedHeight) == 0 {
			break
		}
		p = pb.Parent
	}
}

// widthChanged invalidates content heights up the tree, since text and
// wrapped children get taller as they get narrower.
func (r *Runner) widthChanged(id BoxID) {
	for p := r.boxes[id].Parent; p != noBox; {
		pb := &r.boxes[p]
		pb.Flags |= RequireLayoutVertical
		pb.Flags &^= contentHeightValid
		if pb.Flags&ContentSizedHeight == 0 {
			break
		}
		p = pb.Parent
	}
}

func (r *Runner) markSubtree(id BoxID) {
	r.markDirty(id, requireLayout)
	for c := r.boxes[id].FirstChild; c != noBox; c = r.boxes[c].NextSibling {
		r.markSubtree(c)
	}
}

func (r *Runner) markAll() {
	for i := range r.boxes {
		if r.boxes[i].Element != nil {
			r.boxes[i].Flags |= requireLayout
			r.boxes[i].Flags &^= contentWidthValid | contentHeightValid
		}
	}
}

// RenderOrder appends the non-culled elements in paint order: by layer, then
// z-index, then tree order.
func (r *Runner) RenderOrder(out []*element.Element) []*element.Element {
	for _, id := range r.drawOrder {
		if !r.results[id].Culled {
			out = append(out, r.boxes[id].Element)
		}
	}
	return out
}

func (r *Runner) paintCompare(a, b BoxID) int {
	ra, rb := &r.results[a], &r.results[b]
	if ra.Layer != rb.Layer {
		return ra.Layer - rb.Layer
	}
	if ra.ZIndex != rb.ZIndex {
		return ra.ZIndex - rb.ZIndex
	}
	return r.boxes[a].traversal - r.boxes[b].traversal
}

func (r *Runner) sortDrawOrder() {
	r.drawOrder = append(r.drawOrder[:0], r.order...)
	slices.SortFunc(r.drawOrder, r.paintCompare)
}

func (r *Runner) sortByPaint(els []*element.Element) {
	slices.SortFunc(els, func(a, b *element.Element) int {
		return r.paintCompare(r.ids[a.ID], r.ids[b.ID])
	})
}

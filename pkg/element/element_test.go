package element

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tags(es []*Element) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Tag
	}
	return out
}

func TestTreeStructure(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root", nil, nil)
	a := tree.Create("a", nil, nil)
	b := tree.Create("b", nil, nil)
	c := tree.Create("c", nil, nil)
	tree.AppendChild(root, a)
	tree.AppendChild(root, c)
	tree.InsertChild(root, b, 1)

	if diff := cmp.Diff([]string{"a", "b", "c"}, tags(root.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	tree.MoveChild(root, c, 0)
	if diff := cmp.Diff([]string{"c", "a", "b"}, tags(root.Children)); diff != "" {
		t.Errorf("after move (-want +got):\n%s", diff)
	}
	tree.MoveChild(root, c, 2)
	if diff := cmp.Diff([]string{"a", "b", "c"}, tags(root.Children)); diff != "" {
		t.Errorf("after move back (-want +got):\n%s", diff)
	}
	if b.Index() != 1 || b.Depth() != 1 {
		t.Errorf("unexpected index %d depth %d", b.Index(), b.Depth())
	}
}

func TestDestroyReleasesSubtree(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root", nil, nil)
	a := tree.Create("a", nil, nil)
	a1 := tree.Create("a1", nil, nil)
	tree.AppendChild(root, a)
	tree.AppendChild(a, a1)

	var destroyed []string
	tree.OnDestroy(func(e *Element) { destroyed = append(destroyed, e.Tag) })
	tree.Destroy(a)

	if diff := cmp.Diff([]string{"a1", "a"}, destroyed); diff != "" {
		t.Errorf("destroy order (-want +got):\n%s", diff)
	}
	if len(root.Children) != 0 || !a.Destroyed() || !a1.Destroyed() {
		t.Error("expected a and a1 destroyed and detached")
	}
	if tree.Len() != 1 {
		t.Errorf("expected 1 live element, got %d", tree.Len())
	}
	if _, ok := tree.Get(a1.ID); ok {
		t.Error("destroyed element still registered")
	}
}

func TestChildChangeQueueDeduplicates(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root", nil, nil)
	for i := 0; i < 3; i++ {
		tree.AppendChild(root, tree.Create("x", nil, nil))
	}
	var got []ID
	tree.DrainChildChanges(func(e *Element) { got = append(got, e.ID) })
	if diff := cmp.Diff([]ID{root.ID}, got); diff != "" {
		t.Errorf("drain mismatch (-want +got):\n%s", diff)
	}
	got = nil
	tree.DrainChildChanges(func(e *Element) { got = append(got, e.ID) })
	if len(got) != 0 {
		t.Errorf("expected empty queue, got %v", got)
	}
}

func TestEnabledInheritsFromAncestors(t *testing.T) {
	tree := NewTree()
	root := tree.Create("root", nil, nil)
	child := tree.Create("child", nil, nil)
	tree.AppendChild(root, child)

	var flips int
	tree.OnEnableChanged(func(*Element, bool) { flips++ })
	tree.SetEnabled(root, false)
	tree.SetEnabled(root, false)
	if child.Enabled() || !child.SelfEnabled() {
		t.Error("expected child disabled through its parent")
	}
	tree.SetEnabled(root, true)
	if !child.Enabled() || flips != 2 {
		t.Errorf("expected enabled child and 2 flips, got %d", flips)
	}
}

func TestAttributesInvalidateStyle(t *testing.T) {
	tree := NewTree()
	e := tree.Create("x", nil, nil)
	e.Style.Compute()
	e.SetAttribute("kind", "primary")
	if !e.Style.IsDirty() {
		t.Error("expected style to be dirty after attribute change")
	}
	if v, ok := e.Attribute("kind"); !ok || v != "primary" {
		t.Errorf("unexpected attribute %q %v", v, ok)
	}
	e.RemoveAttribute("kind")
	if _, ok := e.Attribute("kind"); ok {
		t.Error("expected attribute removed")
	}
}

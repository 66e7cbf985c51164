package app

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"loom/pkg/geom"
)

// cellsTemplate lays out three 100x100 cells in a row inside a logging
// group. The middle cell only listens in the capture phase.
const cellsTemplate = `<Template type="Page">
    <Group x-id="root"
        onMouseDown="{Log(evt, 'down:root')}" onMouseUp="{Log(evt, 'up:root')}"
        onMouseEnter="{Log(evt, 'enter:root')}" onMouseExit="{Log(evt, 'exit:root')}"
        onMouseMove="{Log(evt, 'move:root')}" onMouseHover="{Log(evt, 'hover:root')}">
        <Group style.PreferredWidth="100px" style.PreferredHeight="100px"
            onMouseDown="{Log(evt, 'down:child0')}" onMouseUp="{Log(evt, 'up:child0')}"
            onMouseEnter="{Log(evt, 'enter:child0')}" onMouseExit="{Log(evt, 'exit:child0')}"
            onMouseMove="{Log(evt, 'move:child0')}" onMouseHover="{Log(evt, 'hover:child0')}"/>
        <Group style.PreferredWidth="100px" style.PreferredHeight="100px"
            onMouseDown.capture="{Log(evt, 'down:child1')}" onMouseUp.capture="{Log(evt, 'up:child1')}"
            onMouseEnter.capture="{Log(evt, 'enter:child1')}" onMouseMove="{Log(evt, 'move:child1')}"/>
        <Group style.PreferredWidth="100px" style.PreferredHeight="100px"
            onMouseDown="{Log(evt, 'down:child2')}" onMouseUp="{Log(evt, 'up:child2')}"
            onMouseEnter="{Log(evt, 'enter:child2')}" onMouseExit="{Log(evt, 'exit:child2')}"/>
    </Group>
</Template>`

var outside = geom.Vector2{X: 700, Y: 500}

func newCells(t *testing.T) *fixture {
	f := newFixture(t, map[string]string{"Cells.xml": cellsTemplate})
	f.mount("Cells")
	return f
}

// calls returns the logged handler calls of one kind, e.g. "down".
func (f *fixture) calls(kind string) []string {
	var out []string
	for _, c := range f.data.Calls {
		if strings.HasPrefix(c, kind+":") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fixture) expectCalls(kind string, want ...string) {
	f.t.Helper()
	if diff := cmp.Diff(want, f.calls(kind), cmpopts.EquateEmpty()); diff != "" {
		f.t.Errorf("%s calls (-want +got):\n%s", kind, diff)
	}
}

func TestMouseDownPropagation(t *testing.T) {
	for _, tc := range []struct {
		name string
		at   geom.Vector2
		stop bool
		want []string
	}{
		{"bubbles to ancestors", geom.Vector2{X: 20, Y: 10}, false, []string{"down:child0", "down:root"}},
		{"stop at target", geom.Vector2{X: 20, Y: 10}, true, []string{"down:child0"}},
		{"bubble then capture", geom.Vector2{X: 120, Y: 10}, false, []string{"down:root", "down:child1"}},
		{"stop in bubble skips capture", geom.Vector2{X: 120, Y: 10}, true, []string{"down:root"}},
		{"last cell", geom.Vector2{X: 220, Y: 10}, false, []string{"down:child2", "down:root"}},
		{"out of bounds", outside, false, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newCells(t)
			f.data.Stop = tc.stop
			f.app.MouseDown(tc.at, 0)
			f.expectCalls("down", tc.want...)
		})
	}
}

func TestMouseUpPropagation(t *testing.T) {
	for _, tc := range []struct {
		name string
		at   geom.Vector2
		stop bool
		want []string
	}{
		{"bubbles to ancestors", geom.Vector2{X: 220, Y: 10}, false, []string{"up:child2", "up:root"}},
		{"stop at target", geom.Vector2{X: 220, Y: 10}, true, []string{"up:child2"}},
		{"stop in bubble skips capture", geom.Vector2{X: 120, Y: 10}, true, []string{"up:root"}},
		{"out of bounds", outside, false, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newCells(t)
			f.data.Stop = tc.stop
			f.app.MouseUp(tc.at, 0)
			f.expectCalls("up", tc.want...)
		})
	}
}

func TestMouseEnter(t *testing.T) {
	f := newCells(t)
	f.app.MouseMove(geom.Vector2{X: 20, Y: 10})
	f.expectCalls("enter", "enter:child0", "enter:root")

	f.app.MouseMove(geom.Vector2{X: 20, Y: 10})
	f.app.MouseMove(geom.Vector2{X: 40, Y: 10})
	f.expectCalls("enter", "enter:child0", "enter:root")

	f.app.MouseMove(geom.Vector2{X: 240, Y: 10})
	f.expectCalls("enter", "enter:child0", "enter:root", "enter:child2")

	f.app.MouseMove(geom.Vector2{X: 20, Y: 10})
	f.expectCalls("enter", "enter:child0", "enter:root", "enter:child2", "enter:child0")
}

func TestMouseExit(t *testing.T) {
	f := newCells(t)
	f.app.MouseMove(geom.Vector2{X: 20, Y: 10})
	f.expectCalls("exit")

	f.app.MouseMove(geom.Vector2{X: 120, Y: 10})
	f.expectCalls("exit", "exit:child0")

	f.app.MouseMove(geom.Vector2{X: 20, Y: 10})
	f.app.MouseMove(geom.Vector2{X: 120, Y: 10})
	f.expectCalls("exit", "exit:child0", "exit:child0")

	f.app.MouseMove(outside)
	f.expectCalls("exit", "exit:child0", "exit:child0", "exit:root")
}

func TestMouseMoveAndHover(t *testing.T) {
	f := newCells(t)
	f.app.MouseMove(geom.Vector2{X: 20, Y: 10})
	f.expectCalls("move", "move:child0", "move:root")
	f.expectCalls("hover")

	f.app.MouseMove(geom.Vector2{X: 21, Y: 10})
	f.expectCalls("move", "move:child0", "move:root", "move:child0", "move:root")

	f.app.MouseMove(geom.Vector2{X: 21, Y: 10})
	f.expectCalls("move", "move:child0", "move:root", "move:child0", "move:root")
	f.expectCalls("hover", "hover:child0", "hover:root")

	f.app.MouseMove(geom.Vector2{X: 22, Y: 10})
	f.expectCalls("hover", "hover:child0", "hover:root")

	f.data.Stop = true
	f.app.MouseMove(geom.Vector2{X: 120, Y: 10})
	f.expectCalls("move", "move:child0", "move:root", "move:child0", "move:root", "move:child0", "move:root", "move:child1")
}

func TestStopPropagationFromExpression(t *testing.T) {
	f := newFixture(t, map[string]string{"Stop.xml": `<Template type="Page">
    <Group onMouseDown="{Log(evt, 'down:outer')}" style.PreferredWidth="100px" style.PreferredHeight="100px">
        <Group onMouseDown="{evt.StopPropagation()}"
            style.PreferredWidth="50px" style.PreferredHeight="50px"/>
    </Group>
</Template>`})
	f.mount("Stop")
	f.app.MouseDown(geom.Vector2{X: 10, Y: 10}, 0)
	f.expectCalls("down")

	f.app.MouseDown(geom.Vector2{X: 10, Y: 60}, 0)
	f.expectCalls("down", "down:outer")
}

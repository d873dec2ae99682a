// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package drag

import "testing"

func TestController_MovesByPointerDelta(t *testing.T) {
	tests := []struct {
		name     string
		start    Point
		from, to Point
	}{
		{"right and down", Point{10, 5}, Point{12, 5}, Point{30, 9}},
		{"left and up", Point{40, 20}, Point{45, 20}, Point{41, 12}},
		{"no movement", Point{3, 3}, Point{4, 3}, Point{4, 3}},
		{"off screen", Point{2, 2}, Point{3, 2}, Point{-20, -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.start)
			if !c.Press(tt.from, true) {
				t.Fatal("Press on handle did not start a drag")
			}
			c.Move(tt.to)
			c.Release()

			want := tt.start.Add(tt.to.Sub(tt.from))
			if c.Position() != want {
				t.Errorf("Position = %+v, want %+v", c.Position(), want)
			}
			if c.State() != Idle {
				t.Errorf("State = %s after release", c.State())
			}
		})
	}
}

func TestController_IntermediateMovesDoNotAccumulate(t *testing.T) {
	c := NewController(Point{10, 10})
	c.Press(Point{15, 10}, true)
	for _, p := range []Point{{16, 11}, {30, 2}, {0, 0}, {20, 14}} {
		c.Move(p)
	}
	c.Release()

	if want := (Point{15, 14}); c.Position() != want {
		t.Errorf("Position = %+v, want %+v", c.Position(), want)
	}
}

func TestController_PressOffHandleIgnored(t *testing.T) {
	c := NewController(Point{5, 5})
	if c.Press(Point{6, 8}, false) {
		t.Fatal("press off the handle started a drag")
	}
	if c.Move(Point{50, 50}) {
		t.Error("Move while idle changed the position")
	}
	if c.Position() != (Point{5, 5}) {
		t.Errorf("Position = %+v", c.Position())
	}
}

func TestController_DisabledIgnoresPressAndDropsDrag(t *testing.T) {
	c := NewController(Point{5, 5})
	c.Press(Point{5, 5}, true)
	c.SetDisabled(true)

	if c.Dragging() {
		t.Fatal("disabling should drop the active drag")
	}
	if c.Press(Point{5, 5}, true) {
		t.Error("press started a drag while disabled")
	}
	c.Move(Point{9, 9})
	if c.Position() != (Point{5, 5}) {
		t.Errorf("Position moved while disabled: %+v", c.Position())
	}

	c.SetDisabled(false)
	if !c.Press(Point{5, 5}, true) {
		t.Error("press should work again once re-enabled")
	}
}

func TestController_ReleaseWhileIdle(t *testing.T) {
	c := NewController(Point{1, 1})
	c.Release()
	if c.State() != Idle || c.Position() != (Point{1, 1}) {
		t.Error("Release while idle changed state")
	}
}

package ui2d

import "testing"

func TestInputEdges(t *testing.T) {
	in := &InputState{}

	in.MouseX, in.MouseY = 10, 20
	in.MouseLeftDown = true
	in.Update()
	if !in.MouseLeftPressed || in.MouseLeftReleased {
		t.Errorf("expected press edge, got pressed=%v released=%v", in.MouseLeftPressed, in.MouseLeftReleased)
	}
	if in.MouseDeltaX != 10 || in.MouseDeltaY != 20 {
		t.Errorf("expected delta (10,20), got (%v,%v)", in.MouseDeltaX, in.MouseDeltaY)
	}
	in.EndFrame()

	in.MouseX = 15
	in.Update()
	if in.MouseLeftPressed {
		t.Error("expected no press edge while held")
	}
	if in.MouseDeltaX != 5 || in.MouseDeltaY != 0 {
		t.Errorf("expected delta (5,0), got (%v,%v)", in.MouseDeltaX, in.MouseDeltaY)
	}
	in.EndFrame()

	in.MouseLeftDown = false
	in.Update()
	if !in.MouseLeftReleased {
		t.Error("expected release edge")
	}
}

func TestEndFrameClearsPerFrameState(t *testing.T) {
	in := &InputState{ScrollY: 3, consumed: true}
	in.EndFrame()
	if in.ScrollY != 0 || in.consumed {
		t.Errorf("expected per-frame state cleared, got scroll=%v consumed=%v", in.ScrollY, in.consumed)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 20, H: 5}

	tests := []struct {
		x, y float32
		want bool
	}{
		{10, 10, true},
		{29.9, 14.9, true},
		{30, 10, false},
		{10, 15, false},
		{9, 12, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

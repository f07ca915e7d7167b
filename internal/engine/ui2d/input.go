package ui2d

// InputState is the mouse state widgets read. The owner writes the raw
// fields each frame; Update derives the rest.
type InputState struct {
	MouseX, MouseY           float32
	MouseDeltaX, MouseDeltaY float32

	MouseLeftDown bool
	// Edges since the previous Update.
	MouseLeftPressed  bool
	MouseLeftReleased bool

	// ScrollY accumulates wheel notches until the frame ends or a list box
	// takes them.
	ScrollY float32

	consumed bool

	prevDown bool
	prevX    float32
	prevY    float32
}

// Update derives deltas and button edges from the raw fields.
func (i *InputState) Update() {
	i.MouseDeltaX, i.MouseDeltaY = i.MouseX-i.prevX, i.MouseY-i.prevY
	i.MouseLeftPressed = i.MouseLeftDown && !i.prevDown
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevDown
	i.prevDown, i.prevX, i.prevY = i.MouseLeftDown, i.MouseX, i.MouseY
}

// EndFrame drops wheel input and the claimed click.
func (i *InputState) EndFrame() {
	i.ScrollY = 0
	i.consumed = false
}

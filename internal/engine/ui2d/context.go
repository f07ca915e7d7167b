package ui2d

import "fmt"

// painter receives the geometry widgets emit. Renderer is the GL
// implementation.
type painter interface {
	Fill(r Rect, c Color)
	Outline(r Rect, t float32, c Color)
	Text(x, y float32, s string, scale float32, c Color)
	Measure(s string, scale float32) (float32, float32)
}

// window is the state kept for a window across frames.
type window struct {
	id       string
	bounds   Rect
	dragging bool
}

// listBox keeps the scroll offset of a list across frames.
type listBox struct {
	bounds   Rect
	scroll   float32
	contentH float32
	top      float32
}

// inner is the region rows are laid out in.
func (l *listBox) inner(pad float32) Rect {
	return Rect{l.bounds.X + pad, l.bounds.Y + pad, l.bounds.W - 2*pad, l.bounds.H - 2*pad}
}

// maxScroll is how far the content can move before its end is visible.
func (l *listBox) maxScroll(pad float32) float32 {
	if over := l.contentH - l.inner(pad).H; over > 0 {
		return over
	}
	return 0
}

// Context lays out widgets frame by frame. Windows and list boxes keep their
// position and scroll between frames keyed by id; everything else is
// rebuilt on every call.
type Context struct {
	Theme Theme

	gl    *Renderer
	paint painter
	input InputState

	windows map[string]*window
	lists   map[string]*listBox
	frame   []Rect

	win    *window
	list   *listBox
	active string

	// Layout cursor inside the current window.
	x, y, rowH float32
}

// NewContext creates a UI context with its GL renderer. Requires a current
// GL context.
func NewContext(width, height int) (*Context, error) {
	r, err := New(width, height)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	c := newContext(r)
	c.gl = r
	return c, nil
}

func newContext(p painter) *Context {
	return &Context{
		Theme:   DefaultTheme,
		paint:   p,
		windows: make(map[string]*window),
		lists:   make(map[string]*listBox),
	}
}

// Close releases the renderer.
func (c *Context) Close() {
	if c.gl != nil {
		c.gl.Close()
	}
}

// Resize updates the screen size.
func (c *Context) Resize(width, height int) {
	if c.gl != nil {
		c.gl.Resize(width, height)
	}
}

// Input returns the state the caller feeds mouse events into before Begin.
func (c *Context) Input() *InputState {
	return &c.input
}

// Begin starts a frame.
func (c *Context) Begin() {
	c.input.Update()
	c.frame = c.frame[:0]
	if c.gl != nil {
		c.gl.Begin()
	}
}

// End draws the frame and clears per-frame input.
func (c *Context) End() {
	if c.gl != nil {
		c.gl.End()
	}
	c.input.EndFrame()
}

// MouseOverUI reports whether the mouse is over a window drawn this frame.
func (c *Context) MouseOverUI() bool {
	for _, r := range c.frame {
		if r.Contains(c.input.MouseX, c.input.MouseY) {
			return true
		}
	}
	return false
}

// press handles a clickable area. A press is claimed by the first widget
// under the mouse; later widgets in the same frame see it as consumed.
func (c *Context) press(id string, r Rect) (hovered, pressed bool) {
	hovered = r.Contains(c.input.MouseX, c.input.MouseY)
	if hovered && c.input.MouseLeftPressed && !c.input.consumed {
		c.input.consumed = true
		c.active = id
		pressed = true
	}
	if c.active == id && c.input.MouseLeftReleased {
		c.active = ""
	}
	return hovered, pressed
}

// content is the area inside the current window's padding.
func (c *Context) content() Rect {
	b, pad := c.win.bounds, c.Theme.Padding
	return Rect{b.X + pad, b.Y + c.Theme.TitleH + pad, b.W - 2*pad, b.H - c.Theme.TitleH - 2*pad}
}

// BeginWindow starts a window placed at (x, y) the first time id is seen.
// Dragging the title bar moves it; the moved position is kept. Size follows
// the arguments on every frame.
func (c *Context) BeginWindow(id string, x, y, w, h float32, title string) {
	win, ok := c.windows[id]
	if !ok {
		win = &window{id: id, bounds: Rect{x, y, w, h}}
		c.windows[id] = win
	}
	win.bounds.W, win.bounds.H = w, h
	c.win = win

	bar := Rect{win.bounds.X, win.bounds.Y, w, c.Theme.TitleH}
	if _, pressed := c.press(id+"#title", bar); pressed {
		win.dragging = true
	}
	if win.dragging {
		if c.input.MouseLeftDown {
			win.bounds.X += c.input.MouseDeltaX
			win.bounds.Y += c.input.MouseDeltaY
		} else {
			win.dragging = false
		}
	}
	b := win.bounds
	c.frame = append(c.frame, b)

	t := c.Theme
	c.paint.Fill(b, t.Panel)
	c.paint.Outline(b, 1, t.Border)
	c.paint.Fill(Rect{b.X + 1, b.Y + 1, b.W - 2, t.TitleH - 1}, t.TitleBar)
	_, th := c.paint.Measure(title, t.TextScale)
	c.paint.Text(b.X+t.Padding, b.Y+(t.TitleH-th)/2, title, t.TextScale, t.Text)

	inner := c.content()
	c.x, c.y, c.rowH = inner.X, inner.Y, 0
}

// EndWindow closes the current window.
func (c *Context) EndWindow() {
	c.win = nil
	c.list = nil
}

// Row moves the cursor below the previous row and sets the height of the
// next one.
func (c *Context) Row(height float32) {
	if c.win == nil {
		return
	}
	c.newline()
	c.rowH = height
}

func (c *Context) newline() {
	if c.rowH > 0 {
		c.y += c.rowH + c.Theme.Spacing
	}
	c.x = c.content().X
	c.rowH = 0
}

// Label draws text in the default color.
func (c *Context) Label(text string) {
	c.LabelColored(text, c.Theme.Text)
}

// LabelColored draws text at the cursor and advances it.
func (c *Context) LabelColored(text string, color Color) {
	if c.win == nil {
		return
	}
	w, _ := c.paint.Measure(text, c.Theme.TextScale)
	c.paint.Text(c.x, c.y, text, c.Theme.TextScale, color)
	c.x += w + c.Theme.Spacing
}

// Button draws a button and reports whether it was pressed this frame.
// A zero width fills the rest of the row.
func (c *Context) Button(id string, width float32, label string) bool {
	if c.win == nil {
		return false
	}
	t := c.Theme
	h := c.rowH
	if h == 0 {
		h = t.ItemH
	}
	if width == 0 {
		inner := c.content()
		width = inner.X + inner.W - c.x
	}
	r := Rect{c.x, c.y, width, h}
	key := c.win.id + "/" + id
	hovered, pressed := c.press(key, r)

	fill := t.Button
	switch {
	case c.active == key:
		fill = t.ButtonActive
	case hovered:
		fill = t.ButtonHover
	}
	c.paint.Fill(r, fill)
	c.paint.Outline(r, 1, t.Border)
	tw, th := c.paint.Measure(label, t.TextScale)
	c.paint.Text(r.X+(r.W-tw)/2, r.Y+(r.H-th)/2, label, t.TextScale, t.Text)

	c.x += width + t.Spacing
	return pressed
}

// Separator ends the current row with a horizontal rule.
func (c *Context) Separator() {
	if c.win == nil {
		return
	}
	c.newline()
	inner := c.content()
	c.paint.Fill(Rect{inner.X, c.y, inner.W, 1}, c.Theme.Border)
	c.y += 1 + 2*c.Theme.Spacing
}

// BeginListBox starts a scrollable list on its own row. Wheel input over the
// list scrolls it by whole items. A zero width fills the window.
func (c *Context) BeginListBox(id string, width, height float32) {
	if c.win == nil {
		return
	}
	c.newline()
	t := c.Theme
	inner := c.content()
	if width == 0 {
		width = inner.W
	}

	key := c.win.id + "/" + id
	l, ok := c.lists[key]
	if !ok {
		l = &listBox{}
		c.lists[key] = l
	}
	l.bounds = Rect{inner.X, c.y, width, height}
	if c.input.ScrollY != 0 && l.bounds.Contains(c.input.MouseX, c.input.MouseY) {
		l.scroll -= c.input.ScrollY * t.ItemH
		c.input.ScrollY = 0
	}
	if l.scroll > l.maxScroll(t.Spacing) {
		l.scroll = l.maxScroll(t.Spacing)
	}
	if l.scroll < 0 {
		l.scroll = 0
	}

	c.paint.Fill(l.bounds, t.Well)
	c.paint.Outline(l.bounds, 1, t.Border)

	l.top = l.inner(t.Spacing).Y - l.scroll
	c.list = l
	c.x, c.y = l.inner(t.Spacing).X, l.top
}

// EndListBox closes the list and moves the cursor below it.
func (c *Context) EndListBox() {
	if c.list == nil {
		return
	}
	l := c.list
	l.contentH = c.y - l.top
	c.list = nil
	c.x = c.content().X
	c.y = l.bounds.Y + l.bounds.H + c.Theme.Spacing
	c.rowH = 0
}

// Selectable draws a full-width item and reports whether it was pressed.
// Inside a list box, items not wholly inside the visible region are neither
// drawn nor clickable.
func (c *Context) Selectable(id, label string, selected bool) bool {
	if c.win == nil {
		return false
	}
	t := c.Theme
	area := c.content()
	if c.list != nil {
		area = c.list.inner(t.Spacing)
	}
	r := Rect{area.X, c.y, area.W, t.ItemH}
	c.y += t.ItemH
	if r.Y < area.Y || r.Y+r.H > area.Y+area.H {
		return false
	}

	key := c.win.id + "/" + id
	hovered, pressed := c.press(key, r)
	switch {
	case selected:
		c.paint.Fill(r, t.Highlight.WithAlpha(0.5))
	case c.active == key:
		c.paint.Fill(r, t.ButtonActive)
	case hovered:
		c.paint.Fill(r, t.ButtonHover)
	}
	_, th := c.paint.Measure(label, t.TextScale)
	c.paint.Text(r.X+t.Spacing, r.Y+(r.H-th)/2, label, t.TextScale, t.Text)
	return pressed
}

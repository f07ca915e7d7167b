package ui2d

// batch accumulates triangles for one draw call. Solid vertices are
// x, y, z, r, g, b, a; glyph vertices insert u, v after z.
type batch struct {
	stride int
	data   []float32
}

func newBatch(stride int) *batch {
	return &batch{stride: stride, data: make([]float32, 0, 1024*stride)}
}

func (b *batch) reset() { b.data = b.data[:0] }

// vertices is the number of complete vertices queued.
func (b *batch) vertices() int32 { return int32(len(b.data) / b.stride) }

// rect queues a solid quad as two triangles.
func (b *batch) rect(r Rect, c Color) {
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	for _, p := range [6][2]float32{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y0}, {x1, y1}, {x0, y1}} {
		b.data = append(b.data, p[0], p[1], 0, c.R, c.G, c.B, c.A)
	}
}

// glyph queues a textured quad covering r with atlas coordinates uv.
func (b *batch) glyph(r Rect, uv [4]float32, c Color) {
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.W, r.Y+r.H
	u0, v0, u1, v1 := uv[0], uv[1], uv[2], uv[3]
	for _, p := range [6][4]float32{
		{x0, y0, u0, v0}, {x1, y0, u1, v0}, {x1, y1, u1, v1},
		{x0, y0, u0, v0}, {x1, y1, u1, v1}, {x0, y1, u0, v1},
	} {
		b.data = append(b.data, p[0], p[1], 0, p[2], p[3], c.R, c.G, c.B, c.A)
	}
}

// outline queues four thin quads along the inside of r.
func (b *batch) outline(r Rect, t float32, c Color) {
	b.rect(Rect{r.X, r.Y, r.W, t}, c)
	b.rect(Rect{r.X, r.Y + r.H - t, r.W, t}, c)
	b.rect(Rect{r.X, r.Y + t, t, r.H - 2*t}, c)
	b.rect(Rect{r.X + r.W - t, r.Y + t, t, r.H - 2*t}, c)
}

// text queues one glyph per rune of s starting at (x, y). A newline returns
// to x on the next line.
func (b *batch) text(a *Atlas, x, y float32, s string, scale float32, c Color) {
	w := float32(a.GlyphW) * scale
	h := float32(a.GlyphH) * scale
	cx := x
	for _, r := range s {
		if r == '\n' {
			cx = x
			y += h
			continue
		}
		u0, v0, u1, v1 := a.UV(r)
		b.glyph(Rect{cx, y, w, h}, [4]float32{u0, v0, u1, v1}, c)
		cx += w
	}
}

// Rect is an axis-aligned screen rectangle with a top-left origin.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

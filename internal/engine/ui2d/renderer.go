// Package ui2d is an immediate-mode 2D UI drawn with OpenGL on top of the
// 3D viewport.
package ui2d

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skinswap/internal/engine/shader"
)

const overlayVertex = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;
uniform mat4 uProjection;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vColor = aColor;
}
`

const overlayFragment = `
#version 410 core
in vec4 vColor;
out vec4 FragColor;
void main() {
	FragColor = vColor;
}
`

const glyphVertex = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;
layout (location = 2) in vec4 aColor;
uniform mat4 uProjection;
out vec2 vTexCoord;
out vec4 vColor;
void main() {
	gl_Position = uProjection * vec4(aPos, 1.0);
	vTexCoord = aTexCoord;
	vColor = aColor;
}
`

const glyphFragment = `
#version 410 core
uniform sampler2D uTexture;
in vec2 vTexCoord;
in vec4 vColor;
out vec4 FragColor;
void main() {
	FragColor = vec4(vColor.rgb, vColor.a * texture(uTexture, vTexCoord).r);
}
`

// pass is one program with its streaming vertex buffer.
type pass struct {
	program uint32
	vao     uint32
	vbo     uint32
	proj    int32
	batch   *batch
}

// newPass compiles the program and lays out attributes of the given float
// widths, in location order.
func newPass(vs, fs string, widths ...int32) (*pass, error) {
	program, err := shader.CompileProgram(vs, fs)
	if err != nil {
		return nil, err
	}
	var stride int32
	for _, w := range widths {
		stride += w
	}
	p := &pass{
		program: program,
		proj:    shader.GetUniform(program, "uProjection"),
		batch:   newBatch(int(stride)),
	}

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	var offset int32
	for loc, w := range widths {
		gl.VertexAttribPointerWithOffset(uint32(loc), w, gl.FLOAT, false, stride*4, uintptr(offset*4))
		gl.EnableVertexAttribArray(uint32(loc))
		offset += w
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return p, nil
}

func (p *pass) flush(proj *mgl32.Mat4) {
	n := p.batch.vertices()
	if n == 0 {
		return
	}
	gl.UseProgram(p.program)
	gl.UniformMatrix4fv(p.proj, 1, false, &proj[0])
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(p.batch.data)*4, gl.Ptr(p.batch.data), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, n)
}

func (p *pass) release() {
	if p == nil {
		return
	}
	gl.DeleteVertexArrays(1, &p.vao)
	gl.DeleteBuffers(1, &p.vbo)
	gl.DeleteProgram(p.program)
}

// Renderer batches overlay quads and glyphs and draws them in two calls
// per frame, solids first.
type Renderer struct {
	width, height int

	solid  *pass
	glyphs *pass
	font   *Font
}

// New creates the overlay renderer. Requires a current GL context.
func New(width, height int) (*Renderer, error) {
	r := &Renderer{width: width, height: height}

	var err error
	if r.solid, err = newPass(overlayVertex, overlayFragment, 3, 4); err != nil {
		return nil, fmt.Errorf("overlay program: %w", err)
	}
	if r.glyphs, err = newPass(glyphVertex, glyphFragment, 3, 2, 4); err != nil {
		r.solid.release()
		return nil, fmt.Errorf("glyph program: %w", err)
	}
	r.font = NewFont()
	return r, nil
}

// Resize updates the projection extent.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
}

// Begin discards last frame's geometry.
func (r *Renderer) Begin() {
	r.solid.batch.reset()
	r.glyphs.batch.reset()
}

// End draws the queued geometry over the current framebuffer and restores
// the blend, depth and cull switches it touched.
func (r *Renderer) End() {
	restore := saveCaps(gl.BLEND, gl.DEPTH_TEST, gl.CULL_FACE)
	defer restore()

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	proj := mgl32.Ortho(0, float32(r.width), float32(r.height), 0, -1, 1)
	r.solid.flush(&proj)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.font.TextureID())
	gl.UseProgram(r.glyphs.program)
	gl.Uniform1i(shader.GetUniform(r.glyphs.program, "uTexture"), 0)
	r.glyphs.flush(&proj)

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)
}

// saveCaps records the enabled state of caps and returns a func putting
// them back.
func saveCaps(caps ...uint32) func() {
	was := make([]bool, len(caps))
	for i, c := range caps {
		was[i] = gl.IsEnabled(c)
	}
	return func() {
		for i, c := range caps {
			if was[i] {
				gl.Enable(c)
			} else {
				gl.Disable(c)
			}
		}
	}
}

// Close releases programs, buffers and the font texture.
func (r *Renderer) Close() {
	r.solid.release()
	r.glyphs.release()
	if r.font != nil {
		r.font.Close()
	}
}

// Fill queues a solid rectangle.
func (r *Renderer) Fill(rect Rect, c Color) { r.solid.batch.rect(rect, c) }

// Outline queues a border of thickness t inside rect.
func (r *Renderer) Outline(rect Rect, t float32, c Color) { r.solid.batch.outline(rect, t, c) }

// Text queues s with its top-left corner at (x, y).
func (r *Renderer) Text(x, y float32, s string, scale float32, c Color) {
	r.glyphs.batch.text(r.font.atlas, x, y, s, scale, c)
}

// Measure returns the pixel extent of s.
func (r *Renderer) Measure(s string, scale float32) (float32, float32) {
	return r.font.atlas.Measure(s, scale)
}

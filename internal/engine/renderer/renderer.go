// Package renderer draws skinned characters with OpenGL.
package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/engine/lighting"
	"github.com/Faultbox/skinswap/internal/engine/scene"
	"github.com/Faultbox/skinswap/internal/engine/shader"
	"github.com/Faultbox/skinswap/internal/logger"
)

// ErrTooManyBones is returned when a renderer binds more bones than the
// shader palette holds.
var ErrTooManyBones = errors.New("bone palette overflow")

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	Sun    lighting.Sun
}

// Renderer handles all OpenGL rendering. It implements scene.Backend.
type Renderer struct {
	config Config
	log    *zap.Logger

	program  uint32
	uniforms struct {
		model, view, projection int32
		bones, skinned          int32
		texture, hasTexture     int32
		color, lightDir         int32
	}

	palette []mgl32.Mat4
	// warned holds renderers already reported for palette overflow.
	warned map[*scene.SkinnedRenderer]bool
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		config:  cfg,
		log:     logger.OrNamed(log, "renderer"),
		palette: make([]mgl32.Mat4, 0, shader.MaxBones),
		warned:  make(map[*scene.SkinnedRenderer]bool),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.program, err = shader.CompileProgram(shader.SkinnedVertex, shader.SkinnedFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to create skinned program: %w", err)
	}
	u := &r.uniforms
	u.model = shader.GetUniform(r.program, "uModel")
	u.view = shader.GetUniform(r.program, "uView")
	u.projection = shader.GetUniform(r.program, "uProjection")
	u.bones = shader.GetUniform(r.program, "uBones")
	u.skinned = shader.GetUniform(r.program, "uSkinned")
	u.texture = shader.GetUniform(r.program, "uTexture")
	u.hasTexture = shader.GetUniform(r.program, "uHasTexture")
	u.color = shader.GetUniform(r.program, "uColor")
	u.lightDir = shader.GetUniform(r.program, "uLightDir")

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources. Uploaded meshes and textures are
// owned by their scene nodes.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// DrawScene draws every visible skinned renderer under root.
func (r *Renderer) DrawScene(root *scene.Node, view, projection mgl32.Mat4) {
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uniforms.view, 1, false, &view[0])
	gl.UniformMatrix4fv(r.uniforms.projection, 1, false, &projection[0])
	light := r.config.Sun.Direction()
	gl.Uniform3f(r.uniforms.lightDir, light.X(), light.Y(), light.Z())
	gl.Uniform1i(r.uniforms.texture, 0)

	root.Walk(func(n *scene.Node) bool {
		if !n.Active {
			return false
		}
		if sr := n.Renderer; sr != nil && sr.Visible() {
			r.draw(sr)
		}
		return true
	})
}

func (r *Renderer) draw(sr *scene.SkinnedRenderer) {
	buf, ok := sr.GPU.(*meshBuffers)
	if !ok || buf.released || buf.count == 0 {
		return
	}

	skinned := !sr.Mesh.Static && len(sr.Bones) > 0
	if skinned {
		if len(sr.Bones) > shader.MaxBones {
			if !r.warned[sr] {
				r.warned[sr] = true
				r.log.Warn("skipping renderer",
					zap.String("node", sr.Node.Name),
					zap.Error(fmt.Errorf("%w: %d bones, limit %d", ErrTooManyBones, len(sr.Bones), shader.MaxBones)),
				)
			}
			return
		}
		r.palette = sr.BoneMatrices(r.palette)
		gl.UniformMatrix4fv(r.uniforms.bones, int32(len(r.palette)), false, &r.palette[0][0])
		gl.Uniform1i(r.uniforms.skinned, 1)
	} else {
		model := sr.Node.WorldMatrix()
		gl.UniformMatrix4fv(r.uniforms.model, 1, false, &model[0])
		gl.Uniform1i(r.uniforms.skinned, 0)
	}

	color := [4]float32{1, 1, 1, 1}
	var tex *textureHandle
	if m := sr.Material; m != nil {
		color = m.Color
		if m.Texture != nil {
			tex, _ = m.Texture.GPU.(*textureHandle)
		}
	}
	gl.Uniform4f(r.uniforms.color, color[0], color[1], color[2], color[3])
	if tex != nil && !tex.released {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.id)
		gl.Uniform1i(r.uniforms.hasTexture, 1)
	} else {
		gl.Uniform1i(r.uniforms.hasTexture, 0)
	}

	gl.BindVertexArray(buf.vao)
	gl.DrawElements(gl.TRIANGLES, buf.count, gl.UNSIGNED_INT, nil)
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

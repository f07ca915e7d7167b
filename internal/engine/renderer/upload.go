package renderer

import (
	"errors"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/engine/scene"
)

// Upload errors.
var (
	ErrEmptyMesh    = errors.New("mesh has no triangles")
	ErrEmptyTexture = errors.New("texture has no pixels")
)

// floatsPerVertex: position 3, normal 3, uv 2, bone indices 4, weights 4.
const floatsPerVertex = 16

// meshBuffers is an uploaded mesh.
type meshBuffers struct {
	vao, vbo, ebo uint32
	count         int32
	released      bool
}

// Release deletes the GL objects.
func (m *meshBuffers) Release() {
	if m.released {
		return
	}
	m.released = true
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}

// textureHandle is an uploaded texture.
type textureHandle struct {
	id       uint32
	released bool
}

// Release deletes the GL texture.
func (t *textureHandle) Release() {
	if t.released {
		return
	}
	t.released = true
	gl.DeleteTextures(1, &t.id)
}

// interleave packs mesh attributes in the layout the skinned program
// expects. Missing normals, UVs or weights are zero.
func interleave(mesh *model.SkinnedMesh) []float32 {
	out := make([]float32, len(mesh.Positions)*floatsPerVertex)
	for i, p := range mesh.Positions {
		v := out[i*floatsPerVertex : (i+1)*floatsPerVertex]
		copy(v[0:3], p[:])
		if i < len(mesh.Normals) {
			copy(v[3:6], mesh.Normals[i][:])
		}
		if i < len(mesh.UVs) {
			copy(v[6:8], mesh.UVs[i][:])
		}
		if i < len(mesh.Weights) {
			w := mesh.Weights[i]
			for k := 0; k < model.MaxInfluences; k++ {
				v[8+k] = float32(w.Indices[k])
				v[12+k] = w.Weights[k]
			}
		}
	}
	return out
}

// UploadMesh creates vertex and index buffers for mesh.
func (r *Renderer) UploadMesh(mesh *model.SkinnedMesh) (scene.Resource, error) {
	if len(mesh.Indices) == 0 || len(mesh.Positions) == 0 {
		return nil, ErrEmptyMesh
	}
	vertices := interleave(mesh)

	buf := &meshBuffers{count: int32(len(mesh.Indices))}
	gl.GenVertexArrays(1, &buf.vao)
	gl.BindVertexArray(buf.vao)

	gl.GenBuffers(1, &buf.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &buf.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	attribs := []struct {
		size, offset int32
	}{
		{3, 0},  // position
		{3, 3},  // normal
		{2, 6},  // uv
		{4, 8},  // bone indices
		{4, 12}, // weights
	}
	for loc, a := range attribs {
		gl.VertexAttribPointerWithOffset(uint32(loc), a.size, gl.FLOAT, false, stride, uintptr(a.offset*4))
		gl.EnableVertexAttribArray(uint32(loc))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	r.log.Debug("uploaded mesh",
		zap.String("mesh", mesh.Name),
		zap.Int("vertices", len(mesh.Positions)),
		zap.Int("triangles", len(mesh.Indices)/3),
	)
	return buf, nil
}

// UploadTexture creates a mipmapped RGBA texture from img.
func (r *Renderer) UploadTexture(img *image.NRGBA) (scene.Resource, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyTexture
	}

	tex := &textureHandle{}
	gl.GenTextures(1, &tex.id)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return tex, nil
}

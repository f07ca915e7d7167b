package model

import (
	"errors"
	"fmt"
)

// Mesh validation errors.
var (
	ErrAttributeLength = errors.New("vertex attribute length mismatch")
	ErrIndexRange      = errors.New("triangle index out of range")
	ErrWeightCount     = errors.New("bone weight count does not match vertex count")
	ErrBoneRange       = errors.New("bone index out of range")
)

// IsSkinned reports whether the mesh carries bone data.
func (m *RawMesh) IsSkinned() bool {
	return len(m.BoneNames) > 0
}

// VertexCount returns the number of vertices.
func (m *RawMesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *RawMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks the structural invariants of the mesh.
func (m *RawMesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return fmt.Errorf("%s: %d normals for %d vertices: %w", m.Name, len(m.Normals), n, ErrAttributeLength)
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return fmt.Errorf("%s: %d uvs for %d vertices: %w", m.Name, len(m.UVs), n, ErrAttributeLength)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%s: %d indices is not a triangle list: %w", m.Name, len(m.Indices), ErrAttributeLength)
	}
	for _, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%s: index %d >= %d: %w", m.Name, idx, n, ErrIndexRange)
		}
	}
	if !m.IsSkinned() {
		return nil
	}
	if len(m.Weights) != n {
		return fmt.Errorf("%s: %d weights for %d vertices: %w", m.Name, len(m.Weights), n, ErrWeightCount)
	}
	bones := int32(len(m.BoneNames))
	for v, bw := range m.Weights {
		for s := 0; s < MaxInfluences; s++ {
			if bw.Weights[s] == 0 {
				continue
			}
			if bw.Indices[s] < 0 || bw.Indices[s] >= bones {
				return fmt.Errorf("%s: vertex %d slot %d bone %d of %d: %w", m.Name, v, s, bw.Indices[s], bones, ErrBoneRange)
			}
		}
	}
	return nil
}

// Finalize converts the mesh into a SkinnedMesh without touching bone
// indices. Use it for meshes whose bone list already is the renderer's.
func (m *RawMesh) Finalize() *SkinnedMesh {
	sm := &SkinnedMesh{
		Name:      m.Name,
		Positions: m.Positions,
		Normals:   m.Normals,
		UVs:       m.UVs,
		Indices:   m.Indices,
		Static:    !m.IsSkinned(),
		Bounds:    ComputeBounds(m.Positions),
	}
	if !sm.Static {
		sm.Weights = m.Weights
	}
	return sm
}

// ComputeBounds returns the bounding box of the given points.
// An empty input yields a zero box.
func ComputeBounds(points [][3]float32) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		updateBounds(&b, p)
	}
	return b
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Package model holds the mesh records that flow from the importer, through
// the bone remapper, to the renderer.
package model

import "github.com/go-gl/mathgl/mgl32"

// MaxInfluences is the number of bone slots per vertex.
const MaxInfluences = 4

// BoneWeight holds up to four (bone, weight) pairs for one vertex.
// A slot whose weight is zero carries no influence and is free.
type BoneWeight struct {
	Indices [MaxInfluences]int32
	Weights [MaxInfluences]float32
}

// Add stores the contribution in the first free slot. Slots are never
// re-sorted by weight. It returns false when all slots are taken and the
// contribution was dropped.
func (w *BoneWeight) Add(bone int32, weight float32) bool {
	for i := range w.Weights {
		if w.Weights[i] == 0 {
			w.Indices[i] = bone
			w.Weights[i] = weight
			return true
		}
	}
	return false
}

// Count returns the number of occupied slots.
func (w BoneWeight) Count() int {
	n := 0
	for _, wt := range w.Weights {
		if wt != 0 {
			n++
		}
	}
	return n
}

// RawMesh is one mesh entry extracted from a source asset. Bone indices in
// Weights address BoneNames. It is not modified after import.
type RawMesh struct {
	Name          string
	Positions     [][3]float32
	Normals       [][3]float32 // empty or len(Positions)
	UVs           [][2]float32 // empty or len(Positions)
	Indices       []uint32     // triangle list
	Weights       []BoneWeight // len(Positions) when skinned
	BindPoses     []mgl32.Mat4 // one per source bone
	BoneNames     []string
	MaterialIndex int
}

// SkinnedMesh is a finalized mesh ready for the renderer. When Static is
// false, Weights index the bone array of the renderer it is bound to.
type SkinnedMesh struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
	Weights   []BoneWeight
	Static    bool
	Bounds    Bounds
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	updateBounds(&b, o.Min)
	updateBounds(&b, o.Max)
	return b
}

package model

import (
	"errors"
	"testing"
)

func TestBoneWeightAdd_FirstFreeSlot(t *testing.T) {
	var bw BoneWeight
	contributions := []struct {
		bone   int32
		weight float32
	}{
		{3, 0.1}, {1, 0.6}, {7, 0.2}, {2, 0.1},
	}
	for _, c := range contributions {
		if !bw.Add(c.bone, c.weight) {
			t.Fatalf("slot unexpectedly full adding bone %d", c.bone)
		}
	}

	// Slots keep insertion order, not weight order
	wantIdx := [4]int32{3, 1, 7, 2}
	wantW := [4]float32{0.1, 0.6, 0.2, 0.1}
	if bw.Indices != wantIdx {
		t.Errorf("indices = %v, want %v", bw.Indices, wantIdx)
	}
	if bw.Weights != wantW {
		t.Errorf("weights = %v, want %v", bw.Weights, wantW)
	}

	if bw.Add(9, 0.5) {
		t.Error("fifth contribution should be dropped")
	}
	if bw.Indices != wantIdx || bw.Weights != wantW {
		t.Error("dropped contribution must not alter existing slots")
	}
	if bw.Count() != 4 {
		t.Errorf("Count() = %d, want 4", bw.Count())
	}
}

func TestBoneWeightAdd_ZeroWeightKeepsSlotFree(t *testing.T) {
	var bw BoneWeight
	bw.Add(5, 0)
	bw.Add(6, 1)

	if bw.Indices[0] != 6 || bw.Weights[0] != 1 {
		t.Errorf("expected slot 0 to be reused, got %v/%v", bw.Indices, bw.Weights)
	}
	if bw.Count() != 1 {
		t.Errorf("Count() = %d, want 1", bw.Count())
	}
}

func TestRawMeshValidate(t *testing.T) {
	base := func() *RawMesh {
		return &RawMesh{
			Name:      "body",
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			Indices:   []uint32{0, 1, 2},
			Weights: []BoneWeight{
				{Indices: [4]int32{0}, Weights: [4]float32{1}},
				{Indices: [4]int32{1}, Weights: [4]float32{1}},
				{Indices: [4]int32{0, 1}, Weights: [4]float32{0.5, 0.5}},
			},
			BoneNames: []string{"Hips", "Spine"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(m *RawMesh)
		wantErr error
	}{
		{"valid", func(m *RawMesh) {}, nil},
		{"unskinned", func(m *RawMesh) { m.BoneNames = nil; m.Weights = nil }, nil},
		{"normal count", func(m *RawMesh) { m.Normals = m.Normals[:2] }, ErrAttributeLength},
		{"uv count", func(m *RawMesh) { m.UVs = [][2]float32{{0, 0}} }, ErrAttributeLength},
		{"partial triangle", func(m *RawMesh) { m.Indices = []uint32{0, 1} }, ErrAttributeLength},
		{"index range", func(m *RawMesh) { m.Indices = []uint32{0, 1, 3} }, ErrIndexRange},
		{"weight count", func(m *RawMesh) { m.Weights = m.Weights[:1] }, ErrWeightCount},
		{"bone range", func(m *RawMesh) { m.Weights[1].Indices[0] = 2 }, ErrBoneRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFinalize(t *testing.T) {
	raw := &RawMesh{
		Name:      "static",
		Positions: [][3]float32{{-1, 0, 2}, {3, 4, -5}},
		Indices:   nil,
	}
	sm := raw.Finalize()
	if !sm.Static {
		t.Error("mesh without bones should finalize as static")
	}
	if sm.Weights != nil {
		t.Error("static mesh must not carry weights")
	}
	want := Bounds{Min: [3]float32{-1, 0, -5}, Max: [3]float32{3, 4, 2}}
	if sm.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", sm.Bounds, want)
	}
	if c := sm.Bounds.Center(); c != [3]float32{1, 2, -1.5} {
		t.Errorf("center = %v", c)
	}
}

func TestComputeBoundsEmpty(t *testing.T) {
	if b := ComputeBounds(nil); b != (Bounds{}) {
		t.Errorf("expected zero bounds, got %+v", b)
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{Min: [3]float32{0, 0, 0}, Max: [3]float32{1, 1, 1}}
	b := Bounds{Min: [3]float32{-2, 0.5, 0}, Max: [3]float32{0, 3, 0.5}}

	got := a.Union(b)
	want := Bounds{Min: [3]float32{-2, 0, 0}, Max: [3]float32{1, 3, 1}}
	if got != want {
		t.Errorf("union = %+v, want %+v", got, want)
	}
	if a.Union(a) != a {
		t.Error("union with itself should be unchanged")
	}
}

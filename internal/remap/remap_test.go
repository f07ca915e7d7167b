package remap

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/skinswap/internal/armature"
	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/engine/scene"
)

// snapshotOf builds a valid snapshot whose bone order is names.
func snapshotOf(names ...string) *armature.Snapshot {
	nodes := make([]*scene.Node, len(names))
	for i, n := range names {
		nodes[i] = scene.NewNode(n)
	}
	r := scene.Attach(scene.NewNode("Body"), &model.SkinnedMesh{})
	r.Bones = nodes
	return &armature.Snapshot{
		BoneNames: names,
		BoneNodes: nodes,
		Renderer:  r,
	}
}

func skinnedMesh(bones []string, weights []model.BoneWeight) *model.RawMesh {
	positions := make([][3]float32, len(weights))
	for i := range positions {
		positions[i] = [3]float32{float32(i), 0, 0}
	}
	return &model.RawMesh{
		Name:      "Body",
		Positions: positions,
		Weights:   weights,
		BoneNames: bones,
	}
}

func TestMatchBone(t *testing.T) {
	host := []string{"Hips", "Spine", "Spine1", "LeftHand"}

	tests := []struct {
		source string
		want   int
		ok     bool
	}{
		{"Hips", 0, true},
		{"hips", 0, true},
		{"HIPS", 0, true},
		{"mixamorig:Hips", 0, true},
		{"spine1", 2, true},
		{"Bip01_Spine", 1, true},
		{"Hand", 3, true},
		{"Tail", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, ok := MatchBone(tt.source, host)
			if got != tt.want || ok != tt.ok {
				t.Errorf("MatchBone(%q) = %d, %v; want %d, %v", tt.source, got, ok, tt.want, tt.ok)
			}
			again, _ := MatchBone(tt.source, host)
			if again != got {
				t.Errorf("MatchBone(%q) not idempotent: %d then %d", tt.source, got, again)
			}
		})
	}
}

func TestMatchBonePrecedence(t *testing.T) {
	// The exact match later in the list wins over an earlier substring.
	host := []string{"LeftArm", "Arm"}
	if got, _ := MatchBone("arm", host); got != 1 {
		t.Errorf("expected exact match at 1, got %d", got)
	}
	// Host-in-source beats source-in-host.
	host = []string{"UpperLegTwist", "Leg"}
	if got, _ := MatchBone("UpperLeg", host); got != 1 {
		t.Errorf("expected host-in-source match at 1, got %d", got)
	}
	// Empty host names are never matched.
	if got, ok := MatchBone("Neck", []string{"", "Neck"}); got != 1 || !ok {
		t.Errorf("expected Neck at 1, got %d %v", got, ok)
	}
}

func TestBuildTable(t *testing.T) {
	table, unmapped := BuildTable(
		[]string{"Hips", "Tail", "Spine", "Tail", "Wing"},
		[]string{"Hips", "Spine", "Head"},
	)
	if want := (Table{0, 0, 1, 0, 0}); !reflect.DeepEqual(table, want) {
		t.Errorf("table = %v, want %v", table, want)
	}
	if want := []string{"Tail", "Tail", "Wing"}; !reflect.DeepEqual(unmapped, want) {
		t.Errorf("unmapped = %v, want %v", unmapped, want)
	}
}

func TestRemapCountsFallbacksPerBone(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(0, zap.New(core))

	bones := []string{"Tail", "Tail", "Ear"}
	weights := []model.BoneWeight{
		{Indices: [4]int32{0, 1, 2}, Weights: [4]float32{0.5, 0.25, 0.25}},
	}
	res, err := r.Remap(skinnedMesh(bones, weights), snapshotOf("Hips", "Spine"))
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	if res.Fallbacks != 3 {
		t.Errorf("expected 3 fallbacks, got %d", res.Fallbacks)
	}

	if n := logs.FilterMessageSnippet("using root").Len(); n != 2 {
		t.Errorf("expected one report per distinct name, got %d", n)
	}
	totals := logs.FilterMessage("bone fallbacks").All()
	if len(totals) != 1 || totals[0].ContextMap()["count"] != int64(3) {
		t.Errorf("expected one total of 3, got %+v", totals)
	}
}

func TestTableLookupOutOfRange(t *testing.T) {
	table := Table{2, 1}
	if table.Lookup(5) != 0 || table.Lookup(-1) != 0 {
		t.Error("expected out-of-range source indices to resolve to the root")
	}
	if table.Lookup(0) != 2 {
		t.Error("expected in-range lookup")
	}
}

func TestRemapEndToEnd(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := New(0, zap.New(core))

	raw := skinnedMesh(
		[]string{"mixamorig:Hips", "mixamorig:Spine"},
		[]model.BoneWeight{
			{Indices: [4]int32{0, 1}, Weights: [4]float32{0.6, 0.4}},
			{Indices: [4]int32{1}, Weights: [4]float32{1}},
		},
	)

	res, err := r.Remap(raw, snapshotOf("Hips", "Spine", "Head"))
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	if want := (Table{0, 1}); !reflect.DeepEqual(res.Table, want) {
		t.Errorf("table = %v, want %v", res.Table, want)
	}
	if res.Fallbacks != 0 {
		t.Errorf("expected 0 fallbacks, got %d", res.Fallbacks)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no fallback reports, got %d", logs.Len())
	}
	if res.Mesh.Static {
		t.Error("expected a skinned mesh")
	}
	if res.Mesh.Weights[1].Indices[0] != 1 {
		t.Errorf("expected Spine to stay at index 1, got %v", res.Mesh.Weights[1])
	}
}

func TestRemapPreservesWeights(t *testing.T) {
	weights := []model.BoneWeight{
		{Indices: [4]int32{0, 1, 2}, Weights: [4]float32{0.3333333, 0.3333333, 0.3333333}},
		{Indices: [4]int32{2}, Weights: [4]float32{0.7}},
	}
	raw := skinnedMesh([]string{"Head", "Tail", "Hips"}, weights)

	res, err := New(0, zap.NewNop()).Remap(raw, snapshotOf("Hips", "Spine", "Head"))
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	for v := range weights {
		if res.Mesh.Weights[v].Weights != weights[v].Weights {
			t.Errorf("vertex %d weights changed: %v -> %v", v, weights[v].Weights, res.Mesh.Weights[v].Weights)
		}
	}
	if got := res.Mesh.Weights[0].Indices; got != [4]int32{2, 0, 0, 0} {
		t.Errorf("vertex 0 indices = %v", got)
	}
	if raw.Weights[0].Indices != [4]int32{0, 1, 2, 0} {
		t.Error("expected the raw mesh to stay untouched")
	}
}

func TestRemapAllUnmapped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(0, zap.New(core))

	bones := []string{"a1", "b2", "c3", "d4", "e5", "f6", "g7"}
	var weights []model.BoneWeight
	for i := range bones {
		weights = append(weights, model.BoneWeight{Indices: [4]int32{int32(i)}, Weights: [4]float32{1}})
	}
	host := []string{"Hips", "Spine", "Head"}

	res, err := r.Remap(skinnedMesh(bones, weights), snapshotOf(host...))
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	if res.Fallbacks != len(bones) {
		t.Errorf("expected %d fallbacks, got %d", len(bones), res.Fallbacks)
	}
	for v, w := range res.Mesh.Weights {
		for k, idx := range w.Indices {
			if idx != 0 {
				t.Errorf("vertex %d slot %d = %d, want 0", v, k, idx)
			}
		}
	}
	for _, idx := range res.Table {
		if idx < 0 || int(idx) >= len(host) {
			t.Errorf("table entry %d out of range", idx)
		}
	}

	perBone := logs.FilterMessageSnippet("using root").Len()
	if perBone != DefaultMaxReported {
		t.Errorf("expected %d individual reports, got %d", DefaultMaxReported, perBone)
	}
	totals := logs.FilterMessage("bone fallbacks").All()
	if len(totals) != 1 {
		t.Fatalf("expected one total report, got %d", len(totals))
	}
	if got := totals[0].ContextMap()["count"]; got != int64(len(bones)) {
		t.Errorf("reported total %v, want %d", got, len(bones))
	}
}

func TestRemapStaticPassThrough(t *testing.T) {
	raw := &model.RawMesh{
		Name:      "Prop",
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2},
	}

	// The snapshot is irrelevant for static meshes, even an invalid one.
	res, err := New(0, zap.NewNop()).Remap(raw, nil)
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	if !res.Mesh.Static || res.Mesh.Weights != nil || res.Table != nil {
		t.Errorf("expected a static mesh without weights, got %+v", res)
	}
	if !reflect.DeepEqual(res.Mesh.Positions, raw.Positions) ||
		!reflect.DeepEqual(res.Mesh.Indices, raw.Indices) ||
		!reflect.DeepEqual(res.Mesh.Normals, raw.Normals) {
		t.Error("expected vertex and triangle data to pass through")
	}
}

func TestRemapErrors(t *testing.T) {
	r := New(0, zap.NewNop())

	raw := skinnedMesh([]string{"Hips"}, []model.BoneWeight{{Weights: [4]float32{1}}})
	if _, err := r.Remap(raw, &armature.Snapshot{}); !errors.Is(err, armature.ErrNoHostSkeleton) {
		t.Errorf("expected ErrNoHostSkeleton, got %v", err)
	}

	broken := skinnedMesh([]string{"Hips"}, []model.BoneWeight{{Weights: [4]float32{1}}})
	broken.Weights = nil
	if _, err := r.Remap(broken, snapshotOf("Hips")); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh, got %v", err)
	}

	if _, err := r.Remap(nil, snapshotOf("Hips")); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh for nil, got %v", err)
	}
}

func TestRemapperMaxReported(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := New(2, zap.New(core))

	bones := []string{"x", "y", "z"}
	weights := []model.BoneWeight{{Weights: [4]float32{1}}}
	if _, err := r.Remap(skinnedMesh(bones, weights), snapshotOf("Hips")); err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	for _, e := range logs.All() {
		if strings.Contains(e.Message, "using root") && e.ContextMap()["bone"] == "z" {
			t.Error("expected the third fallback to be reported only in the total")
		}
	}
	if logs.Len() != 3 {
		t.Errorf("expected 2 individual reports plus a total, got %d", logs.Len())
	}
}

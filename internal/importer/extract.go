package importer

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/engine/model"
)

// weightSets lists the joint/weight attribute pairs read per vertex.
var weightSets = [][2]string{
	{gltf.JOINTS_0, gltf.WEIGHTS_0},
	{"JOINTS_1", "WEIGHTS_1"},
}

// skinData is the per-skin information shared by every mesh bound to it.
type skinData struct {
	index     uint32
	joints    []uint32
	names     []string
	bindPoses []mgl32.Mat4
}

// BoneName normalises a source bone name: a namespace prefix such as
// "mixamorig:" is stripped down to the final segment.
func BoneName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (imp *Importer) readSkin(doc *gltf.Document, index uint32) (*skinData, error) {
	if int(index) >= len(doc.Skins) || doc.Skins[index] == nil {
		return nil, fmt.Errorf("skin index %d out of range", index)
	}
	skin := doc.Skins[index]

	sd := &skinData{
		index:     index,
		joints:    skin.Joints,
		names:     make([]string, len(skin.Joints)),
		bindPoses: make([]mgl32.Mat4, len(skin.Joints)),
	}
	for i, j := range skin.Joints {
		if int(j) >= len(doc.Nodes) || doc.Nodes[j] == nil {
			return nil, fmt.Errorf("joint %d references missing node %d", i, j)
		}
		name := BoneName(doc.Nodes[j].Name)
		if name == "" {
			name = fmt.Sprintf("bone_%d", i)
		}
		sd.names[i] = name
		sd.bindPoses[i] = mgl32.Ident4()
	}

	if skin.InverseBindMatrices != nil {
		mats, err := readMatrices(doc, *skin.InverseBindMatrices)
		if err != nil {
			return nil, fmt.Errorf("inverse bind matrices: %w", err)
		}
		for i := range sd.bindPoses {
			if i < len(mats) {
				sd.bindPoses[i] = imp.convertMatrix(mats[i])
			}
		}
	}
	return sd, nil
}

func readMatrices(doc *gltf.Document, accessor uint32) ([]mgl32.Mat4, error) {
	if int(accessor) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessor)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[accessor], nil)
	if err != nil {
		return nil, err
	}
	cols, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d holds %T, want float mat4", accessor, data)
	}
	out := make([]mgl32.Mat4, len(cols))
	for i, m := range cols {
		// glTF matrices are column-major like mgl32
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				out[i][c*4+r] = m[c][r]
			}
		}
	}
	return out, nil
}

func (imp *Importer) extractPrimitive(doc *gltf.Document, prim *gltf.Primitive, skin *skinData) (*model.RawMesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, accessor(doc, posIdx), nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	n := len(positions)

	raw := &model.RawMesh{Positions: make([][3]float32, n)}
	for i, p := range positions {
		raw.Positions[i] = imp.convertPoint(p)
	}
	if prim.Material != nil {
		raw.MaterialIndex = int(*prim.Material)
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, accessor(doc, idx), nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		if len(normals) == n {
			raw.Normals = make([][3]float32, n)
			for i, v := range normals {
				raw.Normals[i] = imp.convertDirection(v)
			}
		} else {
			imp.log.Debug("ignoring normals with mismatched count",
				zap.Int("normals", len(normals)), zap.Int("vertices", n))
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, accessor(doc, idx), nil)
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
		if len(uvs) == n {
			raw.UVs = uvs
		}
	}

	indices, err := readIndices(doc, prim, n)
	if err != nil {
		return nil, err
	}
	raw.Indices = imp.triangles(prim.Mode, indices, n)

	if skin != nil {
		raw.BoneNames = skin.names
		raw.BindPoses = skin.bindPoses
		raw.Weights = make([]model.BoneWeight, n)
		if err := imp.readWeights(doc, prim, raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func accessor(doc *gltf.Document, idx uint32) *gltf.Accessor {
	if int(idx) >= len(doc.Accessors) {
		panic(fmt.Sprintf("accessor %d out of range", idx))
	}
	return doc.Accessors[idx]
}

func readIndices(doc *gltf.Document, prim *gltf.Primitive, vertexCount int) ([]uint32, error) {
	if prim.Indices == nil {
		seq := make([]uint32, vertexCount)
		for i := range seq {
			seq[i] = uint32(i)
		}
		return seq, nil
	}
	indices, err := modeler.ReadIndices(doc, accessor(doc, *prim.Indices), nil)
	if err != nil {
		return nil, fmt.Errorf("indices: %w", err)
	}
	return indices, nil
}

// triangles keeps complete, in-range triangles of a triangle-list
// primitive. Every other topology contributes no faces.
func (imp *Importer) triangles(mode gltf.PrimitiveMode, indices []uint32, vertexCount int) []uint32 {
	if mode != gltf.PrimitiveTriangles {
		imp.log.Debug("dropping non-triangle primitive faces", zap.Int("mode", int(mode)))
		return nil
	}
	out := make([]uint32, 0, len(indices)-len(indices)%3)
	dropped := 0
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= vertexCount || int(b) >= vertexCount || int(c) >= vertexCount {
			dropped++
			continue
		}
		if imp.opts.ConvertHandedness {
			b, c = c, b
		}
		out = append(out, a, b, c)
	}
	if dropped > 0 || len(indices)%3 != 0 {
		imp.log.Debug("dropped invalid faces",
			zap.Int("faces", dropped), zap.Int("trailingIndices", len(indices)%3))
	}
	return out
}

func (imp *Importer) readWeights(doc *gltf.Document, prim *gltf.Primitive, raw *model.RawMesh) error {
	bones := len(raw.BoneNames)
	capped, invalid := 0, 0

	for _, set := range weightSets {
		jIdx, okJ := prim.Attributes[set[0]]
		wIdx, okW := prim.Attributes[set[1]]
		if !okJ || !okW {
			continue
		}
		joints, err := modeler.ReadJoints(doc, accessor(doc, jIdx), nil)
		if err != nil {
			return fmt.Errorf("%s: %w", set[0], err)
		}
		weights, err := modeler.ReadWeights(doc, accessor(doc, wIdx), nil)
		if err != nil {
			return fmt.Errorf("%s: %w", set[1], err)
		}

		for v := range raw.Weights {
			if v >= len(joints) || v >= len(weights) {
				break
			}
			for k := 0; k < 4; k++ {
				w := weights[v][k]
				if w == 0 {
					continue
				}
				j := int(joints[v][k])
				if j >= bones {
					invalid++
					continue
				}
				if !raw.Weights[v].Add(int32(j), w) {
					capped++
				}
			}
		}
	}

	if capped > 0 || invalid > 0 {
		imp.log.Debug("dropped bone weight contributions",
			zap.Int("overInfluenceCap", capped),
			zap.Int("unknownJoint", invalid),
		)
	}
	return nil
}

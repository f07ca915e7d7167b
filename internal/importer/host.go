package importer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/engine/scene"
)

// LoadHost builds a character hierarchy from the asset at path. Skinned
// mesh nodes get a SkinnedRenderer bound to their skin's joint nodes.
func (imp *Importer) LoadHost(path, name string) (*scene.Node, error) {
	doc, err := imp.open(path)
	if err != nil {
		return nil, err
	}
	root, err := imp.BuildHost(doc, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	imp.log.Info("loaded host",
		zap.String("path", path),
		zap.Int("renderers", len(root.Renderers())),
	)
	return root, nil
}

// BuildHost converts every node of doc into a scene node parented under a
// new root called name.
func (imp *Importer) BuildHost(doc *gltf.Document, name string) (root *scene.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			root = nil
			err = fmt.Errorf("%w: malformed document: %v", ErrImportFailure, r)
		}
	}()
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrImportFailure)
	}

	root = scene.NewNode(name)
	nodes := make([]*scene.Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n == nil {
			continue
		}
		nodes[i] = scene.NewNode(n.Name)
		nodes[i].Local = imp.convertTransform(n)
	}

	hasParent := make([]bool, len(nodes))
	for i, n := range doc.Nodes {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			if int(c) >= len(nodes) || nodes[c] == nil || hasParent[c] {
				continue
			}
			hasParent[c] = true
			nodes[i].AddChild(nodes[c])
		}
	}
	for i, n := range nodes {
		if n != nil && !hasParent[i] {
			root.AddChild(n)
		}
	}

	skins := make(map[uint32]*skinData)
	for i, n := range doc.Nodes {
		if n == nil || n.Mesh == nil {
			continue
		}
		if err := imp.attachMesh(doc, n, nodes[i], nodes, skins); err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrImportFailure, i, err)
		}
	}
	return root, nil
}

func (imp *Importer) attachMesh(doc *gltf.Document, src *gltf.Node, dst *scene.Node, nodes []*scene.Node, skins map[uint32]*skinData) error {
	if int(*src.Mesh) >= len(doc.Meshes) || doc.Meshes[*src.Mesh] == nil {
		return fmt.Errorf("mesh %d out of range", *src.Mesh)
	}
	mesh := doc.Meshes[*src.Mesh]

	var skin *skinData
	if src.Skin != nil {
		if skin = skins[*src.Skin]; skin == nil {
			var err error
			if skin, err = imp.readSkin(doc, *src.Skin); err != nil {
				return err
			}
			skins[*src.Skin] = skin
		}
	}

	for pi, prim := range mesh.Primitives {
		if prim == nil {
			continue
		}
		raw, err := imp.extractPrimitive(doc, prim, skin)
		if err != nil {
			return fmt.Errorf("primitive %d: %w", pi, err)
		}
		raw.Name = primitiveName(mesh.Name, int(*src.Mesh), pi, len(mesh.Primitives))

		// A node holds one renderer; further primitives hang off children.
		target := dst
		if dst.Renderer != nil {
			target = scene.NewNode(raw.Name)
			dst.AddChild(target)
		}
		r := scene.Attach(target, raw.Finalize())
		r.Material = scene.NewMaterial(materialName(doc, raw))
		if skin != nil {
			bindSkin(r, skin, nodes)
		}
	}
	return nil
}

func bindSkin(r *scene.SkinnedRenderer, skin *skinData, nodes []*scene.Node) {
	r.Bones = make([]*scene.Node, len(skin.joints))
	isJoint := make(map[*scene.Node]bool, len(skin.joints))
	for i, j := range skin.joints {
		r.Bones[i] = nodes[j]
		isJoint[nodes[j]] = true
	}
	r.BindPoses = append([]mgl32.Mat4(nil), skin.bindPoses...)
	for _, b := range r.Bones {
		if b != nil && !isJoint[b.Parent()] {
			r.RootBone = b
			break
		}
	}
}

func materialName(doc *gltf.Document, raw *model.RawMesh) string {
	if raw.MaterialIndex < len(doc.Materials) && doc.Materials[raw.MaterialIndex] != nil {
		if n := doc.Materials[raw.MaterialIndex].Name; n != "" {
			return n
		}
	}
	return raw.Name
}

// convertTransform reads a node's local TRS, decomposing an explicit
// matrix when one is set.
func (imp *Importer) convertTransform(n *gltf.Node) scene.Transform {
	t := scene.IdentityTransform()

	if m := mgl32.Mat4(n.Matrix); m != mgl32.Ident4() && m != (mgl32.Mat4{}) {
		t = decompose(m)
	} else {
		t.Position = mgl32.Vec3(n.Translation)
		t.Rotation = mgl32.Quat{W: n.Rotation[3], V: mgl32.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]}}
		if n.Rotation == ([4]float32{}) {
			t.Rotation = mgl32.QuatIdent()
		}
		// Documents built in memory leave Scale zeroed.
		if n.Scale != ([3]float32{}) {
			t.Scale = mgl32.Vec3(n.Scale)
		}
	}

	t.Position = mgl32.Vec3(imp.convertPoint(t.Position))
	t.Rotation = imp.convertRotation(t.Rotation)
	return t
}

func decompose(m mgl32.Mat4) scene.Transform {
	t := scene.IdentityTransform()
	t.Position = m.Col(3).Vec3()

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	t.Scale = mgl32.Vec3{sx, sy, sz}
	if sx < 1e-6 || sy < 1e-6 || sz < 1e-6 {
		return t
	}

	rot := mgl32.Mat3FromCols(
		m.Col(0).Vec3().Mul(1/sx),
		m.Col(1).Vec3().Mul(1/sy),
		m.Col(2).Vec3().Mul(1/sz),
	)
	t.Rotation = mgl32.Mat4ToQuat(rot.Mat4())
	return t
}

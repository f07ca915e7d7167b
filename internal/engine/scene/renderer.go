package scene

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skinswap/internal/engine/model"
)

// Resource is a backend-side allocation such as a vertex buffer or texture.
type Resource interface {
	Release()
}

// Backend uploads CPU-side data to the renderer.
type Backend interface {
	UploadMesh(mesh *model.SkinnedMesh) (Resource, error)
	UploadTexture(img *image.NRGBA) (Resource, error)
}

// Texture is a decoded image plus its optional GPU copy.
type Texture struct {
	Name  string
	Image *image.NRGBA
	GPU   Resource
}

// Release frees the GPU copy.
func (t *Texture) Release() {
	if t.GPU != nil {
		t.GPU.Release()
		t.GPU = nil
	}
}

// Material holds surface parameters shared by one or more renderers.
type Material struct {
	Name    string
	Color   [4]float32
	Texture *Texture

	// owned is set on clones. ownsTexture is set by SetTexture; an inherited
	// texture belongs to the material it came from.
	owned       bool
	ownsTexture bool
	released    bool
}

// NewMaterial returns a white, untextured material.
func NewMaterial(name string) *Material {
	return &Material{Name: name, Color: [4]float32{1, 1, 1, 1}}
}

// Clone returns an owned copy of m. The clone shows m's texture until
// SetTexture replaces it, and never releases the inherited one.
func (m *Material) Clone() *Material {
	return &Material{
		Name:    m.Name + " (Instance)",
		Color:   m.Color,
		Texture: m.Texture,
		owned:   true,
	}
}

// SetTexture replaces the texture with one the material releases itself.
func (m *Material) SetTexture(t *Texture) {
	m.Texture = t
	m.ownsTexture = t != nil
}

// OwnedTexture returns the texture set through SetTexture, or nil when the
// current texture is inherited or absent.
func (m *Material) OwnedTexture() *Texture {
	if !m.ownsTexture {
		return nil
	}
	return m.Texture
}

// Owned reports whether the material was created by Clone.
func (m *Material) Owned() bool {
	return m.owned
}

// Released reports whether an owned material has been released.
func (m *Material) Released() bool {
	return m.released
}

// Release frees the owned texture of an owned material exactly once.
func (m *Material) Release() {
	if !m.owned || m.released {
		return
	}
	m.released = true
	if t := m.OwnedTexture(); t != nil {
		t.Release()
	}
}

// SkinnedRenderer draws a mesh deformed by a bone array.
type SkinnedRenderer struct {
	Node      *Node
	Mesh      *model.SkinnedMesh
	Bones     []*Node
	RootBone  *Node
	BindPoses []mgl32.Mat4
	Material  *Material
	Enabled   bool

	// GPU is the uploaded mesh; released with the node.
	GPU Resource
}

// Attach creates an enabled renderer on node.
func Attach(node *Node, mesh *model.SkinnedMesh) *SkinnedRenderer {
	r := &SkinnedRenderer{Node: node, Mesh: mesh, Enabled: true}
	node.Renderer = r
	return r
}

// BoneNames returns the names of the bound bones in order.
func (r *SkinnedRenderer) BoneNames() []string {
	names := make([]string, len(r.Bones))
	for i, b := range r.Bones {
		if b != nil {
			names[i] = b.Name
		}
	}
	return names
}

// Visible reports whether the renderer would be drawn this frame.
func (r *SkinnedRenderer) Visible() bool {
	return r.Enabled && r.Mesh != nil && r.Node != nil && !r.Node.destroyed && r.Node.ActiveInHierarchy()
}

// BoneMatrices fills dst with bone.World * bindPose per bone and returns it.
// Missing bones or bind poses contribute identity.
func (r *SkinnedRenderer) BoneMatrices(dst []mgl32.Mat4) []mgl32.Mat4 {
	dst = dst[:0]
	for i, b := range r.Bones {
		m := mgl32.Ident4()
		if b != nil {
			m = b.WorldMatrix()
		}
		if i < len(r.BindPoses) {
			m = m.Mul4(r.BindPoses[i])
		}
		dst = append(dst, m)
	}
	return dst
}

func (r *SkinnedRenderer) release() {
	if r.GPU != nil {
		r.GPU.Release()
		r.GPU = nil
	}
	if r.Material != nil {
		r.Material.Release()
	}
}

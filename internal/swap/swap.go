// Package swap manages the substituted model on a host character.
package swap

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/armature"
	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/engine/scene"
	"github.com/Faultbox/skinswap/internal/importer"
	"github.com/Faultbox/skinswap/internal/logger"
	"github.com/Faultbox/skinswap/internal/registry"
	"github.com/Faultbox/skinswap/internal/remap"
)

// Controller errors.
var (
	ErrUnknownModel = errors.New("unknown model")
	ErrBusy         = errors.New("apply already in progress")
	ErrNoCharacter  = errors.New("no character attached")
	// ErrPartialMesh marks a mesh that was skipped while the rest of its
	// model was applied.
	ErrPartialMesh = errors.New("mesh skipped")
)

// State is the controller's substitution state.
type State int

const (
	StateDefault State = iota
	StateCustomActive
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateCustomActive:
		return "custom"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MeshImporter reads an asset into raw meshes.
type MeshImporter interface {
	Import(path string) ([]*model.RawMesh, error)
}

// TextureLoader decodes a texture file.
type TextureLoader interface {
	Load(path string) (*image.NRGBA, error)
}

// Models resolves model names.
type Models interface {
	Get(name string) (registry.Model, bool)
}

// Options wires a Controller to its collaborators. Textures and Backend
// are optional.
type Options struct {
	Models   Models
	Importer MeshImporter
	Remapper *remap.Remapper
	Textures TextureLoader
	Backend  scene.Backend
	Log      *zap.Logger
}

// Substitution is the live replacement geometry of one character.
type Substitution struct {
	Model     registry.Model
	Root      *scene.Node
	Parts     []*scene.SkinnedRenderer
	Material  *scene.Material
	Skipped   []string
	Fallbacks int
}

// Stats counts substitutions over the controller's lifetime.
type Stats struct {
	Constructed int
	Destroyed   int
}

// Alive returns how many substitutions exist right now.
func (s Stats) Alive() int {
	return s.Constructed - s.Destroyed
}

// Controller owns at most one Substitution for the character it is
// attached to. It is not safe for concurrent use; callers drive it from
// the frame loop.
type Controller struct {
	opts Options
	log  *zap.Logger

	root   *scene.Node
	state  State
	active *Substitution
	// hidden holds the host renderers this controller disabled.
	hidden []*scene.SkinnedRenderer
	busy   bool
	stats  Stats
}

// New creates a detached controller.
func New(opts Options) *Controller {
	if opts.Remapper == nil {
		opts.Remapper = remap.New(0, opts.Log)
	}
	return &Controller{opts: opts, log: logger.OrNamed(opts.Log, "swap")}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Active returns the live substitution, or nil.
func (c *Controller) Active() *Substitution {
	return c.active
}

// Current returns the name of the applied model.
func (c *Controller) Current() string {
	if c.active != nil {
		return c.active.Model.Name
	}
	return registry.DefaultModelName
}

// Stats returns construction counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// Root returns the attached character root.
func (c *Controller) Root() *scene.Node {
	return c.root
}

// Attach binds the controller to a freshly spawned character and applies
// selected when it names a custom model.
func (c *Controller) Attach(root *scene.Node, selected string) error {
	if c.root != nil {
		c.Detach()
	}
	c.root = root
	if selected == "" || strings.EqualFold(selected, registry.DefaultModelName) {
		return nil
	}
	return c.Apply(selected)
}

// Detach destroys any substitution, shows the renderers it hid and forgets
// the character. Attach calls it before binding a root again.
func (c *Controller) Detach() {
	c.destroyActive()
	c.showOriginals()
	c.root = nil
	c.state = StateDefault
}

// Apply switches the character to the named model. Every fallible step
// runs before the current state is touched, so on error the previous
// model stays active.
func (c *Controller) Apply(name string) (err error) {
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	defer func() { c.busy = false }()

	defer func() {
		if err != nil {
			c.log.Error("apply failed", zap.String("model", name), zap.Error(err))
		}
	}()

	if strings.EqualFold(name, registry.DefaultModelName) {
		c.Revert()
		return nil
	}
	m, ok := c.opts.Models.Get(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownModel)
	}
	if !m.Custom {
		c.Revert()
		return nil
	}
	// A despawned character is destroyed without a Detach.
	if c.root == nil || c.root.Destroyed() {
		return ErrNoCharacter
	}

	p, err := c.prepare(m)
	if err != nil {
		return err
	}
	c.install(p)
	return nil
}

// Revert destroys the substitution and shows the host's renderers again.
func (c *Controller) Revert() {
	if c.state == StateDefault && c.active == nil && len(c.hidden) == 0 {
		return
	}
	name := c.Current()
	c.destroyActive()
	c.showOriginals()
	c.state = StateDefault
	c.log.Info("reverted to default model", zap.String("from", name))
}

// prepared is a fully built but not yet installed substitution.
type prepared struct {
	model     registry.Model
	snap      *armature.Snapshot
	meshes    []*model.SkinnedMesh
	gpu       []scene.Resource
	material  *scene.Material
	skipped   []string
	fallbacks int
}

func (p *prepared) release() {
	for _, r := range p.gpu {
		if r != nil {
			r.Release()
		}
	}
	p.gpu = nil
	if p.material != nil {
		p.material.Release()
	}
}

func (c *Controller) prepare(m registry.Model) (p *prepared, err error) {
	defer func() {
		if r := recover(); r != nil {
			if p != nil {
				p.release()
			}
			p = nil
			err = fmt.Errorf("%s: building substitution: %v", m.Name, r)
		}
	}()

	raws, err := c.opts.Importer.Import(m.SourcePath)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("%s: %w: no meshes", m.Name, importer.ErrImportFailure)
	}

	snap, err := armature.Map(c.root, c.log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}

	p = &prepared{model: m, snap: snap}
	for _, raw := range raws {
		res, err := c.opts.Remapper.Remap(raw, snap)
		if err != nil {
			c.log.Warn("skipping mesh",
				zap.String("model", m.Name),
				zap.Error(fmt.Errorf("%w: %s: %v", ErrPartialMesh, raw.Name, err)),
			)
			p.skipped = append(p.skipped, raw.Name)
			continue
		}
		p.meshes = append(p.meshes, res.Mesh)
		p.fallbacks += res.Fallbacks
	}
	if len(p.meshes) == 0 {
		return nil, fmt.Errorf("%s: %w: all %d meshes failed to remap", m.Name, importer.ErrImportFailure, len(raws))
	}

	p.material = c.material(snap, m)

	if err := c.upload(p); err != nil {
		p.release()
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}
	return p, nil
}

// material clones the host material once for all parts. The clone keeps
// the host texture unless the model's own texture loads.
func (c *Controller) material(snap *armature.Snapshot, m registry.Model) *scene.Material {
	base := snap.Renderer.Material
	if base == nil {
		base = scene.NewMaterial(m.Name)
	}
	mat := base.Clone()

	if m.TexturePath == "" || c.opts.Textures == nil {
		return mat
	}
	img, err := c.opts.Textures.Load(m.TexturePath)
	if err != nil {
		c.log.Warn("texture not loaded, keeping the host texture",
			zap.String("model", m.Name),
			zap.Error(err),
		)
		return mat
	}
	mat.SetTexture(&scene.Texture{Name: m.TexturePath, Image: img})
	return mat
}

func (c *Controller) upload(p *prepared) error {
	if c.opts.Backend == nil {
		return nil
	}
	for _, mesh := range p.meshes {
		res, err := c.opts.Backend.UploadMesh(mesh)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", mesh.Name, err)
		}
		p.gpu = append(p.gpu, res)
	}
	if tex := p.material.OwnedTexture(); tex != nil {
		res, err := c.opts.Backend.UploadTexture(tex.Image)
		if err != nil {
			return fmt.Errorf("uploading texture: %w", err)
		}
		tex.GPU = res
	}
	return nil
}

// install swaps p in. It cannot fail.
func (c *Controller) install(p *prepared) {
	c.destroyActive()
	c.hideOriginals()

	root := scene.NewNode("Substitution_" + p.model.Name)
	root.Tag = scene.TagSubstitution
	root.SetParent(p.snap.AttachPoint(c.root))

	sub := &Substitution{
		Model:     p.model,
		Root:      root,
		Material:  p.material,
		Skipped:   p.skipped,
		Fallbacks: p.fallbacks,
	}
	for i, mesh := range p.meshes {
		part := scene.NewNode(mesh.Name)
		root.AddChild(part)
		r := scene.Attach(part, mesh)
		r.Bones = p.snap.BoneNodes
		r.RootBone = p.snap.RootBone
		r.BindPoses = p.snap.BindPoses
		r.Material = p.material
		if i < len(p.gpu) {
			r.GPU = p.gpu[i]
		}
		sub.Parts = append(sub.Parts, r)
	}

	c.active = sub
	c.state = StateCustomActive
	c.stats.Constructed++

	c.log.Info("applied model",
		zap.String("model", p.model.Name),
		zap.Int("parts", len(sub.Parts)),
		zap.Int("skipped", len(sub.Skipped)),
		zap.Int("fallbacks", sub.Fallbacks),
		zap.String("attach", root.Parent().Name),
	)
}

// hideOriginals disables the character's own enabled renderers and
// remembers them for Revert.
func (c *Controller) hideOriginals() {
	c.root.Walk(func(n *scene.Node) bool {
		if n.Tag == scene.TagSubstitution {
			return false
		}
		if r := n.Renderer; r != nil && r.Enabled {
			r.Enabled = false
			c.hidden = append(c.hidden, r)
		}
		return true
	})
}

// showOriginals re-enables exactly the renderers hideOriginals disabled.
func (c *Controller) showOriginals() {
	for _, r := range c.hidden {
		r.Enabled = true
	}
	c.hidden = nil
}

func (c *Controller) destroyActive() {
	if c.active == nil {
		return
	}
	c.active.Root.Destroy()
	c.active = nil
	c.stats.Destroyed++
}

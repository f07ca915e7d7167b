// Package armature indexes a host character's bone hierarchy.
package armature

import (
	"errors"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/engine/scene"
	"github.com/Faultbox/skinswap/internal/logger"
)

// ErrNoHostSkeleton is returned when no skinned renderer exists under the
// character root, so there is no bone ordering to retarget onto.
var ErrNoHostSkeleton = errors.New("no host skeleton")

// Snapshot is a point-in-time view of a host skeleton.
type Snapshot struct {
	// Bones maps lower-cased node names to nodes. Later nodes in walk
	// order replace earlier ones with the same name.
	Bones map[string]*scene.Node

	// BoneNames is the host renderer's bone order. Remapped meshes index
	// into this list.
	BoneNames []string
	BoneNodes []*scene.Node
	RootBone  *scene.Node
	BindPoses []mgl32.Mat4

	// Renderer is the skinned renderer the ordering was taken from.
	Renderer *scene.SkinnedRenderer
}

// Valid reports whether the snapshot has a bone ordering.
func (s *Snapshot) Valid() bool {
	return s != nil && s.Renderer != nil
}

// Lookup finds a node by name, ignoring case.
func (s *Snapshot) Lookup(name string) (*scene.Node, bool) {
	if s == nil {
		return nil, false
	}
	n, ok := s.Bones[strings.ToLower(name)]
	return n, ok
}

// AttachPoint returns the node substituted geometry should hang from: the
// root bone's parent, or root when that cannot be resolved.
func (s *Snapshot) AttachPoint(root *scene.Node) *scene.Node {
	if s != nil && s.RootBone != nil && s.RootBone.Parent() != nil {
		return s.RootBone.Parent()
	}
	return root
}

// Map walks the hierarchy under root and captures its skin-bone ordering.
// Subtrees tagged as substitutions are skipped. When no skinned renderer is
// found it returns an empty snapshot together with ErrNoHostSkeleton.
func Map(root *scene.Node, log *zap.Logger) (*Snapshot, error) {
	log = logger.OrNamed(log, "armature")
	snap := &Snapshot{Bones: make(map[string]*scene.Node)}
	if root == nil {
		log.Warn("no character root to map")
		return snap, ErrNoHostSkeleton
	}

	root.Walk(func(n *scene.Node) bool {
		if n.Tag == scene.TagSubstitution {
			return false
		}
		snap.Bones[strings.ToLower(n.Name)] = n
		if snap.Renderer == nil && n.Renderer != nil && len(n.Renderer.Bones) > 0 {
			snap.capture(n.Renderer)
		}
		return true
	})

	if !snap.Valid() {
		log.Warn("no skinned renderer under character root",
			zap.String("root", root.Name),
			zap.Int("nodes", len(snap.Bones)),
		)
		return snap, ErrNoHostSkeleton
	}

	log.Debug("mapped armature",
		zap.String("root", root.Name),
		zap.Int("nodes", len(snap.Bones)),
		zap.Int("bones", len(snap.BoneNames)),
	)
	return snap, nil
}

func (s *Snapshot) capture(r *scene.SkinnedRenderer) {
	s.Renderer = r
	s.BoneNodes = r.Bones
	s.BoneNames = r.BoneNames()
	s.RootBone = r.RootBone
	s.BindPoses = r.BindPoses
}

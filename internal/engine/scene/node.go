// Package scene provides the transform hierarchy and skinned renderer
// components a character is built from.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TagSubstitution marks the root of a substituted model so hierarchy scans
// can tell it apart from the host's own nodes.
const TagSubstitution = "skinswap.substitution"

// Transform is a local translation/rotation/scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	m = m.Mul4(t.Rotation.Normalize().Mat4())
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Node is one transform in a hierarchy. A node may carry a skinned renderer.
type Node struct {
	Name   string
	Tag    string
	Active bool
	Local  Transform

	Renderer *SkinnedRenderer

	parent    *Node
	children  []*Node
	destroyed bool
}

// NewNode creates an active node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:   name,
		Active: true,
		Local:  IdentityTransform(),
	}
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Destroyed reports whether Destroy was called on this node or an ancestor.
func (n *Node) Destroyed() bool {
	return n.destroyed
}

// AddChild attaches child under n, detaching it from any previous parent.
// The child keeps its local transform.
func (n *Node) AddChild(child *Node) {
	child.SetParent(n)
}

// SetParent moves n under parent. A nil parent detaches n.
// Attempts to create a cycle are ignored.
func (n *Node) SetParent(parent *Node) {
	if parent == n {
		return
	}
	// Only a node with children can have parent among its descendants.
	if len(n.children) > 0 {
		for p := parent; p != nil; p = p.parent {
			if p == n {
				return
			}
		}
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Walk visits n and its descendants depth-first in pre-order using an
// explicit stack. Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(node) {
			continue
		}
		// Push in reverse so the first child is visited first
		for i := len(node.children) - 1; i >= 0; i-- {
			stack = append(stack, node.children[i])
		}
	}
}

// Find returns the first descendant (or n itself) with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Renderers returns every skinned renderer in the subtree, in walk order,
// whether enabled or not.
func (n *Node) Renderers() []*SkinnedRenderer {
	var out []*SkinnedRenderer
	n.Walk(func(c *Node) bool {
		if c.Renderer != nil {
			out = append(out, c.Renderer)
		}
		return true
	})
	return out
}

// ActiveInHierarchy reports whether n and all its ancestors are active.
func (n *Node) ActiveInHierarchy() bool {
	for p := n; p != nil; p = p.parent {
		if !p.Active {
			return false
		}
	}
	return true
}

// WorldMatrix returns the node's local-to-world matrix.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.Local.Matrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.Local.Matrix().Mul4(m)
	}
	return m
}

// Destroy detaches n from its parent and releases every resource held by
// renderers in its subtree. Calling it twice is a no-op.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	if n.parent != nil {
		n.parent.removeChild(n)
		n.parent = nil
	}
	n.Walk(func(c *Node) bool {
		c.destroyed = true
		if c.Renderer != nil {
			c.Renderer.release()
		}
		return true
	})
}

// Package remap rewrites source bone indices into a host skeleton's
// index space by matching bone names.
package remap

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/armature"
	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/logger"
)

// DefaultMaxReported is how many unmapped bones are logged one by one
// per mesh before only the total is reported.
const DefaultMaxReported = 5

// ErrInvalidMesh is returned for raw meshes that break their own
// invariants, such as weight records out of step with positions.
var ErrInvalidMesh = errors.New("invalid mesh")

// Table maps a source bone index to a host bone index.
type Table []int32

// Lookup returns the host index for a source index. Indices outside the
// table resolve to the root bone.
func (t Table) Lookup(source int32) int32 {
	if source < 0 || int(source) >= len(t) {
		return 0
	}
	return t[source]
}

// MatchBone finds the host bone for a source bone name. The host list is
// scanned three times, first match wins: case-insensitive equality, host
// name contained in the source name, source name contained in the host
// name. Empty names never match.
func MatchBone(source string, host []string) (int, bool) {
	src := strings.ToLower(source)
	if src == "" {
		return 0, false
	}
	lowered := make([]string, len(host))
	for i, h := range host {
		lowered[i] = strings.ToLower(h)
	}
	return match(src, lowered)
}

func match(src string, host []string) (int, bool) {
	for i, h := range host {
		if h != "" && h == src {
			return i, true
		}
	}
	for i, h := range host {
		if h != "" && strings.Contains(src, h) {
			return i, true
		}
	}
	for i, h := range host {
		if h != "" && strings.Contains(h, src) {
			return i, true
		}
	}
	return 0, false
}

// BuildTable matches every source bone against the host list. Unmatched
// bones map to index 0 and are listed in unmapped once per source index,
// so two source bones sharing a name appear twice.
func BuildTable(source, host []string) (table Table, unmapped []string) {
	lowered := make([]string, len(host))
	for i, h := range host {
		lowered[i] = strings.ToLower(h)
	}

	table = make(Table, len(source))
	for i, name := range source {
		idx, ok := 0, false
		if name != "" {
			idx, ok = match(strings.ToLower(name), lowered)
		}
		table[i] = int32(idx)
		if !ok {
			unmapped = append(unmapped, name)
		}
	}
	return table, unmapped
}

// Result is the outcome of remapping one mesh.
type Result struct {
	Mesh *model.SkinnedMesh
	// Table is nil for static meshes.
	Table Table
	// Fallbacks counts source bone indices that fell back to the root.
	Fallbacks int
	// Unmapped holds one name per fallen-back index.
	Unmapped []string
}

// Remapper binds raw meshes onto a host skeleton.
type Remapper struct {
	// MaxReported caps per-bone fallback warnings for a single mesh.
	MaxReported int

	log *zap.Logger
}

// New creates a remapper. A non-positive maxReported uses the default.
func New(maxReported int, log *zap.Logger) *Remapper {
	if maxReported <= 0 {
		maxReported = DefaultMaxReported
	}
	return &Remapper{MaxReported: maxReported, log: logger.OrNamed(log, "remap")}
}

// Remap returns raw bound to the host skeleton captured in snap. Weight
// values are copied unchanged; only bone indices are rewritten. Unskinned
// meshes pass through as static meshes without consulting snap.
func (r *Remapper) Remap(raw *model.RawMesh, snap *armature.Snapshot) (*Result, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	}
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMesh, raw.Name, err)
	}
	if !raw.IsSkinned() {
		return &Result{Mesh: raw.Finalize()}, nil
	}
	if !snap.Valid() || len(snap.BoneNames) == 0 {
		return nil, fmt.Errorf("%s: %w", raw.Name, armature.ErrNoHostSkeleton)
	}

	table, unmapped := BuildTable(raw.BoneNames, snap.BoneNames)
	r.report(raw.Name, unmapped)

	weights := make([]model.BoneWeight, len(raw.Weights))
	for v, w := range raw.Weights {
		out := model.BoneWeight{Weights: w.Weights}
		for k := range w.Indices {
			// free slots stay on the root
			if w.Weights[k] != 0 {
				out.Indices[k] = table.Lookup(w.Indices[k])
			}
		}
		weights[v] = out
	}

	mesh := raw.Finalize()
	mesh.Weights = weights

	return &Result{
		Mesh:      mesh,
		Table:     table,
		Fallbacks: len(unmapped),
		Unmapped:  unmapped,
	}, nil
}

func (r *Remapper) report(mesh string, unmapped []string) {
	if len(unmapped) == 0 {
		return
	}
	seen := make(map[string]bool, len(unmapped))
	reported := 0
	for _, name := range unmapped {
		if reported >= r.MaxReported {
			break
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		reported++
		r.log.Warn("bone not found on host, using root",
			zap.String("mesh", mesh),
			zap.String("bone", name),
		)
	}
	r.log.Warn("bone fallbacks",
		zap.String("mesh", mesh),
		zap.Int("count", len(unmapped)),
	)
}

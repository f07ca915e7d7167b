package game

import (
	"fmt"

	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/engine/scene"
)

// uploadHost uploads every host mesh and material texture and returns the
// combined bounds of the host's meshes. On error the uploads made so far
// are released.
func uploadHost(host *scene.Node, backend scene.Backend) (model.Bounds, error) {
	var (
		bounds model.Bounds
		first  = true
		done   []*scene.SkinnedRenderer
	)
	for _, r := range host.Renderers() {
		if r.Mesh == nil {
			continue
		}
		gpu, err := backend.UploadMesh(r.Mesh)
		if err != nil {
			for _, d := range done {
				d.GPU.Release()
				d.GPU = nil
			}
			return model.Bounds{}, fmt.Errorf("mesh %s: %w", r.Mesh.Name, err)
		}
		r.GPU = gpu
		done = append(done, r)

		if m := r.Material; m != nil && m.Texture != nil && m.Texture.GPU == nil && m.Texture.Image != nil {
			if tex, err := backend.UploadTexture(m.Texture.Image); err == nil {
				m.Texture.GPU = tex
			}
		}

		if first {
			bounds, first = r.Mesh.Bounds, false
		} else {
			bounds = bounds.Union(r.Mesh.Bounds)
		}
	}
	return bounds, nil
}

// Package importer extracts raw mesh records from glTF 2.0 assets.
package importer

import (
	"errors"
	"fmt"
	"os"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/logger"
)

// Import errors.
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrImportFailure = errors.New("import failed")
)

// Options controls coordinate conversion during import.
type Options struct {
	// Scale multiplies positions and bind-pose translations.
	Scale float32
	// ConvertHandedness mirrors X to go from glTF's right-handed Y-up
	// space to the engine's left-handed Y-up space.
	ConvertHandedness bool
}

// DefaultOptions returns unit scale with handedness conversion.
func DefaultOptions() Options {
	return Options{Scale: 1, ConvertHandedness: true}
}

// Importer reads glTF/GLB files.
type Importer struct {
	opts Options
	log  *zap.Logger
}

// New creates an importer. A nil logger uses the global one.
func New(opts Options, log *zap.Logger) *Importer {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	return &Importer{opts: opts, log: logger.OrNamed(log, "importer")}
}

// Import reads the asset at path and returns one RawMesh per mesh
// primitive, in document order.
func (imp *Importer) Import(path string) ([]*model.RawMesh, error) {
	doc, err := imp.open(path)
	if err != nil {
		return nil, err
	}
	meshes, err := imp.ImportDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	imp.log.Info("imported asset",
		zap.String("path", path),
		zap.Int("meshes", len(meshes)),
	)
	return meshes, nil
}

// ImportDocument extracts meshes from an already parsed document.
func (imp *Importer) ImportDocument(doc *gltf.Document) (meshes []*model.RawMesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			meshes = nil
			err = fmt.Errorf("%w: malformed document: %v", ErrImportFailure, r)
		}
	}()

	if doc == nil || len(doc.Meshes) == 0 {
		return nil, fmt.Errorf("%w: document has no meshes", ErrImportFailure)
	}

	skinOf := meshSkins(doc)
	skins := make(map[uint32]*skinData)

	for mi, mesh := range doc.Meshes {
		if mesh == nil {
			continue
		}
		var skin *skinData
		if si, ok := skinOf[uint32(mi)]; ok {
			if skin = skins[si]; skin == nil {
				skin, err = imp.readSkin(doc, si)
				if err != nil {
					return nil, fmt.Errorf("%w: skin %d: %v", ErrImportFailure, si, err)
				}
				skins[si] = skin
			}
		}

		for pi, prim := range mesh.Primitives {
			if prim == nil {
				continue
			}
			raw, err := imp.extractPrimitive(doc, prim, skin)
			if err != nil {
				return nil, fmt.Errorf("%w: mesh %d primitive %d: %v", ErrImportFailure, mi, pi, err)
			}
			raw.Name = primitiveName(mesh.Name, mi, pi, len(mesh.Primitives))
			meshes = append(meshes, raw)
		}
	}

	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: document has no mesh primitives", ErrImportFailure)
	}
	return meshes, nil
}

// open resolves and parses the file, mapping failures onto import errors.
func (imp *Importer) open(path string) (doc *gltf.Document, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrAssetNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrImportFailure, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, ErrAssetNotFound)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%s: %w: parser panic: %v", path, ErrImportFailure, r)
		}
	}()

	doc, err = gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrImportFailure, err)
	}
	return doc, nil
}

// meshSkins maps each mesh index to the skin of the first node that
// instantiates it with one.
func meshSkins(doc *gltf.Document) map[uint32]uint32 {
	out := make(map[uint32]uint32)
	for _, node := range doc.Nodes {
		if node == nil || node.Mesh == nil || node.Skin == nil {
			continue
		}
		if _, seen := out[*node.Mesh]; !seen {
			out[*node.Mesh] = *node.Skin
		}
	}
	return out
}

func primitiveName(meshName string, meshIdx, primIdx, primCount int) string {
	name := meshName
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIdx)
	}
	if primCount > 1 {
		name = fmt.Sprintf("%s_prim%d", name, primIdx)
	}
	return name
}

// Package registry discovers substitutable models on disk.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/skinswap/internal/engine/texture"
	"github.com/Faultbox/skinswap/internal/logger"
)

// DefaultModelName is the built-in entry that restores the host's own mesh.
const DefaultModelName = "Default"

// preferredTextures are texture base names tried in order before any other
// image in a model directory. The mesh's own base name follows them.
var preferredTextures = []string{"texture", "diffuse", "albedo", "color", "main"}

const previewName = "preview"

// exampleDir is created with a README when the models directory is missing.
const exampleDir = "ExampleModel"

const exampleReadme = `Place one glTF model and its textures in a folder like this one.

Required:
- a .glb or .gltf file, skinned or static

Optional:
- texture.png, diffuse.png, albedo.png, color.png or main.png
  (any other PNG, JPEG, TGA, BMP, TIFF or WebP is used when none of these exist)
- preview.png or preview.jpg, kept as the model's thumbnail

The folder name is the model name shown in the picker.
"Default" is reserved for the character's own mesh.
`

// Model is one selectable entry.
type Model struct {
	Name        string
	Custom      bool
	SourcePath  string
	TexturePath string // empty when the model has no texture
	PreviewPath string
}

// Registry lists the models found under a directory, one subdirectory per
// model.
type Registry struct {
	dir string
	log *zap.Logger

	mu     sync.RWMutex
	models []Model
}

// New creates a registry for dir. Call Scan to populate it.
func New(dir string, log *zap.Logger) *Registry {
	return &Registry{
		dir:    dir,
		log:    logger.OrNamed(log, "registry"),
		models: []Model{defaultModel()},
	}
}

func defaultModel() Model {
	return Model{Name: DefaultModelName}
}

// Dir returns the scanned directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Scan rereads the models directory. A missing directory is created with an
// example folder explaining the layout, and only the default entry is listed.
func (r *Registry) Scan() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.set(nil)
			return r.bootstrap()
		}
		return err
	}

	var custom []Model
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, ok := r.scanModel(filepath.Join(r.dir, e.Name()), e.Name())
		if !ok {
			continue
		}
		custom = append(custom, m)
	}
	sort.Slice(custom, func(i, j int) bool {
		return strings.ToLower(custom[i].Name) < strings.ToLower(custom[j].Name)
	})

	r.set(custom)
	r.log.Info("scanned models", zap.String("dir", r.dir), zap.Int("count", len(custom)))
	return nil
}

// bootstrap creates the models directory and the example README. An
// existing README is left untouched.
func (r *Registry) bootstrap() error {
	example := filepath.Join(r.dir, exampleDir)
	if err := os.MkdirAll(example, 0755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}
	readme := filepath.Join(example, "README.txt")
	f, err := os.OpenFile(readme, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create example readme: %w", err)
	}
	_, err = f.WriteString(exampleReadme)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write example readme: %w", err)
	}
	r.log.Info("created models directory", zap.String("dir", r.dir), zap.String("example", example))
	return nil
}

func (r *Registry) set(custom []Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = append([]Model{defaultModel()}, custom...)
}

// scanModel inspects one model directory.
func (r *Registry) scanModel(dir, name string) (Model, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.log.Warn("skipping unreadable model directory", zap.String("dir", dir), zap.Error(err))
		return Model{}, false
	}
	if strings.EqualFold(name, DefaultModelName) {
		r.log.Warn("skipping model named like the built-in default", zap.String("dir", dir))
		return Model{}, false
	}

	var meshes, images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch {
		case isMeshFile(e.Name()):
			meshes = append(meshes, e.Name())
		case texture.IsImageFile(e.Name()):
			images = append(images, e.Name())
		}
	}
	// os.ReadDir already sorts by file name
	if len(meshes) == 0 {
		r.log.Debug("no mesh file in model directory", zap.String("dir", dir))
		return Model{}, false
	}
	if len(meshes) > 1 {
		r.log.Warn("multiple mesh files, using the first",
			zap.String("model", name),
			zap.String("using", meshes[0]),
			zap.Strings("ignored", meshes[1:]),
		)
	}

	m := Model{
		Name:       name,
		Custom:     true,
		SourcePath: filepath.Join(dir, meshes[0]),
	}
	if tex := pickTexture(images, baseName(meshes[0])); tex != "" {
		m.TexturePath = filepath.Join(dir, tex)
	}
	for _, img := range images {
		if strings.EqualFold(baseName(img), previewName) {
			m.PreviewPath = filepath.Join(dir, img)
			break
		}
	}
	return m, true
}

// pickTexture chooses the texture among images: the first preferred base
// name present, then the first image not named preview.
func pickTexture(images []string, meshBase string) string {
	preferred := append(append([]string(nil), preferredTextures...), meshBase)
	for _, want := range preferred {
		for _, img := range images {
			if strings.EqualFold(baseName(img), want) {
				return img
			}
		}
	}
	for _, img := range images {
		if !strings.EqualFold(baseName(img), previewName) {
			return img
		}
	}
	return ""
}

func isMeshFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".glb", ".gltf":
		return true
	}
	return false
}

func baseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// List returns the default entry followed by custom models sorted by name.
func (r *Registry) List() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Model(nil), r.models...)
}

// Get finds a model by name, ignoring case.
func (r *Registry) Get(name string) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.models {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Model{}, false
}

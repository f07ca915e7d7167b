package game

import (
	"errors"
	"image"
	"testing"

	"github.com/Faultbox/skinswap/internal/engine/model"
	"github.com/Faultbox/skinswap/internal/engine/scene"
)

type fakeResource struct{ released int }

func (f *fakeResource) Release() { f.released++ }

type fakeBackend struct {
	failOn   string
	meshes   []*fakeResource
	textures int
}

func (b *fakeBackend) UploadMesh(mesh *model.SkinnedMesh) (scene.Resource, error) {
	if mesh.Name == b.failOn {
		return nil, errors.New("out of memory")
	}
	r := &fakeResource{}
	b.meshes = append(b.meshes, r)
	return r, nil
}

func (b *fakeBackend) UploadTexture(*image.NRGBA) (scene.Resource, error) {
	b.textures++
	return &fakeResource{}, nil
}

func hostWith(meshes ...*model.SkinnedMesh) *scene.Node {
	root := scene.NewNode("Character")
	for _, m := range meshes {
		n := scene.NewNode(m.Name)
		n.SetParent(root)
		scene.Attach(n, m)
	}
	return root
}

func TestUploadHost(t *testing.T) {
	body := &model.SkinnedMesh{Name: "body", Bounds: model.Bounds{Max: [3]float32{1, 2, 1}}}
	hat := &model.SkinnedMesh{Name: "hat", Bounds: model.Bounds{Min: [3]float32{0, 2, 0}, Max: [3]float32{1, 3, 1}}}
	host := hostWith(body, hat)

	mat := scene.NewMaterial("skin")
	mat.Texture = &scene.Texture{Name: "skin", Image: image.NewNRGBA(image.Rect(0, 0, 2, 2))}
	host.Renderers()[0].Material = mat

	backend := &fakeBackend{}
	bounds, err := uploadHost(host, backend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range host.Renderers() {
		if r.GPU == nil {
			t.Errorf("renderer %s not uploaded", r.Node.Name)
		}
	}
	if backend.textures != 1 || mat.Texture.GPU == nil {
		t.Errorf("expected texture uploaded once, got %d", backend.textures)
	}
	want := model.Bounds{Max: [3]float32{1, 3, 1}}
	if bounds != want {
		t.Errorf("bounds = %+v, want %+v", bounds, want)
	}
}

func TestUploadHostReleasesOnFailure(t *testing.T) {
	host := hostWith(
		&model.SkinnedMesh{Name: "body"},
		&model.SkinnedMesh{Name: "cape"},
	)
	backend := &fakeBackend{failOn: "cape"}

	if _, err := uploadHost(host, backend); err == nil {
		t.Fatal("expected error")
	}
	if len(backend.meshes) != 1 || backend.meshes[0].released != 1 {
		t.Errorf("expected the uploaded mesh released once, got %+v", backend.meshes)
	}
	for _, r := range host.Renderers() {
		if r.GPU != nil {
			t.Errorf("renderer %s still holds a GPU resource", r.Node.Name)
		}
	}
}

func TestUploadHostEmpty(t *testing.T) {
	bounds, err := uploadHost(scene.NewNode("Character"), &fakeBackend{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bounds != (model.Bounds{}) {
		t.Errorf("expected zero bounds, got %+v", bounds)
	}
}

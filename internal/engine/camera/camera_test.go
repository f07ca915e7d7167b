package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/skinswap/internal/engine/model"
)

func TestPositionDistance(t *testing.T) {
	c := NewOrbitCamera()
	c.Yaw = 1.1
	c.Pitch = 0.4

	got := c.Position().Sub(c.Center).Len()
	if !mgl32.FloatEqualThreshold(got, c.Distance, 1e-4) {
		t.Errorf("camera is %f from center, want %f", got, c.Distance)
	}
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("pitch = %f, want %f", c.Pitch, c.MaxPitch)
	}
	c.HandleDrag(0, -1e6)
	if c.Pitch != c.MinPitch {
		t.Errorf("pitch = %f, want %f", c.Pitch, c.MinPitch)
	}
}

func TestHandleZoomClamps(t *testing.T) {
	c := NewOrbitCamera()
	for i := 0; i < 200; i++ {
		c.HandleZoom(1)
	}
	if c.Distance != c.MinDistance {
		t.Errorf("distance = %f, want %f", c.Distance, c.MinDistance)
	}
	for i := 0; i < 200; i++ {
		c.HandleZoom(-1)
	}
	if c.Distance != c.MaxDistance {
		t.Errorf("distance = %f, want %f", c.Distance, c.MaxDistance)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(model.Bounds{Min: [3]float32{-0.5, 0, -0.5}, Max: [3]float32{0.5, 2, 0.5}})

	if !c.Center.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
		t.Errorf("center = %v", c.Center)
	}
	if c.Distance <= 1 {
		t.Errorf("expected the camera to back off, distance %f", c.Distance)
	}

	before := c.Distance
	c.FitToBounds(model.Bounds{})
	if c.Distance != before {
		t.Error("expected an empty box to keep the distance")
	}
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	c := NewOrbitCamera()
	p := mgl32.TransformCoordinate(c.Center, c.ViewMatrix())

	if !mgl32.FloatEqualThreshold(p.X(), 0, 1e-4) || !mgl32.FloatEqualThreshold(p.Y(), 0, 1e-4) {
		t.Errorf("center projects to %v, want on the view axis", p)
	}
	if p.Z() >= 0 {
		t.Errorf("expected the center in front of the camera, z=%f", p.Z())
	}
}

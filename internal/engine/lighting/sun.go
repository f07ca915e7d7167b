// Package lighting provides the directional key light for the viewer.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light given by angles in degrees.
type Sun struct {
	Longitude float32 // rotation around Y
	Latitude  float32 // elevation above the horizon
}

// DefaultSun lights characters from the front-left and above.
func DefaultSun() Sun {
	return Sun{Longitude: 35, Latitude: 50}
}

// Direction returns the normalized vector pointing towards the sun.
func (s Sun) Direction() mgl32.Vec3 {
	lon := float64(mgl32.DegToRad(s.Longitude))
	lat := float64(mgl32.DegToRad(s.Latitude))

	return mgl32.Vec3{
		float32(math.Cos(lat) * math.Sin(lon)),
		float32(math.Sin(lat)),
		float32(math.Cos(lat) * math.Cos(lon)),
	}
}

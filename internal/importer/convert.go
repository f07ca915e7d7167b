package importer

import "github.com/go-gl/mathgl/mgl32"

// mirrorX converts between right- and left-handed spaces sharing Y-up.
var mirrorX = mgl32.Scale3D(-1, 1, 1)

func (imp *Importer) convertPoint(p [3]float32) [3]float32 {
	s := imp.opts.Scale
	if imp.opts.ConvertHandedness {
		return [3]float32{-p[0] * s, p[1] * s, p[2] * s}
	}
	return [3]float32{p[0] * s, p[1] * s, p[2] * s}
}

func (imp *Importer) convertDirection(d [3]float32) [3]float32 {
	if imp.opts.ConvertHandedness {
		return [3]float32{-d[0], d[1], d[2]}
	}
	return d
}

// convertMatrix applies scale to the translation and conjugates by the
// X mirror, so that M' maps converted points the way M mapped originals.
func (imp *Importer) convertMatrix(m mgl32.Mat4) mgl32.Mat4 {
	s := imp.opts.Scale
	m[12] *= s
	m[13] *= s
	m[14] *= s
	if imp.opts.ConvertHandedness {
		m = mirrorX.Mul4(m).Mul4(mirrorX)
	}
	return m
}

// convertRotation mirrors a rotation quaternion across the YZ plane.
func (imp *Importer) convertRotation(q mgl32.Quat) mgl32.Quat {
	if imp.opts.ConvertHandedness {
		return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.V.X(), -q.V.Y(), -q.V.Z()}}
	}
	return q
}

package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

const epsilon = 1e-9

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

// Normalize returns the unit vector of v, or zero when v has no length.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// MoveTowards steps current toward target by at most maxDelta without
// overshooting.
func MoveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	delta := target.Sub(current)
	dist := delta.Len()
	if dist <= maxDelta || dist < epsilon {
		return target
	}
	return current.Add(delta.Mul(maxDelta / dist))
}

// LookRotation returns the rotation whose forward (+Z) axis points along dir
// with Y kept up. ok is false for a zero direction.
func LookRotation(dir mgl64.Vec3) (mgl64.Quat, bool) {
	d := Normalize(dir)
	if d.Len() == 0 {
		return mgl64.QuatIdent(), false
	}
	// Straight up or down has no horizontal heading to keep.
	if math.Abs(d.Dot(Up)) > 1-1e-6 {
		return mgl64.QuatBetweenVectors(Forward, d), true
	}
	right := Normalize(Up.Cross(d))
	up := d.Cross(right)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(right, up, d).Mat4()).Normalize(), true
}

// Slerp interpolates along the shortest arc, clamping t to [0, 1].
func Slerp(from, to mgl64.Quat, t float64) mgl64.Quat {
	t = Clamp01(t)
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, t).Normalize()
}

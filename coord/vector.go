// Package coord provides Vector3D algebra and the frame conversions the
// rest of the core needs: J2000 ecliptic<->equatorial obliquity rotation,
// and (for sgp4traj's ground-station pass planning only) a GMST-based
// topocentric horizon conversion. Positions and velocities elsewhere in the
// module are plain [3]float64 triples in meters/meters-per-second at the
// public boundary; Vector3D is the value type callers actually hold.
package coord

import "math"

// Vector3D is an ordered triple of 64-bit floats. Values are immutable by
// contract at the API boundary: every method returns a new Vector3D rather
// than mutating the receiver.
type Vector3D struct {
	X, Y, Z float64
}

// Zero is the origin vector.
var Zero = Vector3D{}

// New constructs a Vector3D from components.
func New(x, y, z float64) Vector3D { return Vector3D{X: x, Y: y, Z: z} }

// FromArray constructs a Vector3D from a [3]float64 triple.
func FromArray(a [3]float64) Vector3D { return Vector3D{X: a[0], Y: a[1], Z: a[2]} }

// Array returns the vector as a [3]float64 triple.
func (v Vector3D) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Add returns v + other.
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return Vector3D{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v scaled by s.
func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the scalar (dot) product of v and other.
func (v Vector3D) Dot(other Vector3D) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product v x other.
func (v Vector3D) Cross(other Vector3D) Vector3D {
	return Vector3D{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vector3D) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Distance returns the Euclidean distance between v and other.
func (v Vector3D) Distance(other Vector3D) float64 {
	return v.Sub(other).Norm()
}

// IsFinite reports whether all three components are finite (not NaN or Inf),
// the precondition the integrators rely on before accepting a step (spec §7:
// NumericalFailure on any non-finite state component).
func (v Vector3D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

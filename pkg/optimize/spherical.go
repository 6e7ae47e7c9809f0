package optimize

import (
	"math"

	"github.com/golang/geo/r3"
)

// SphericalPoint caches a direction both as angles and as a unit vector,
// together with the trig values needed by the reflection.
type SphericalPoint struct {
	Zenith  float64
	Azimuth float64
	Vec     r3.Vector
	SinZen  float64
	CosZen  float64
	SinAz   float64
	CosAz   float64
}

// FromAngles fills the cartesian components from azimuth and zenith.
func FromAngles(azimuth, zenith float64) SphericalPoint {
	s := SphericalPoint{Zenith: zenith, Azimuth: azimuth}
	s.SinZen, s.CosZen = math.Sincos(zenith)
	s.SinAz, s.CosAz = math.Sincos(azimuth)
	s.Vec = r3.Vector{
		X: s.SinZen * s.CosAz,
		Y: s.SinZen * s.SinAz,
		Z: s.CosZen,
	}
	return s
}

// FromCartesian normalizes v and derives the angles from it. A zero vector
// maps to the pole (zenith 0, azimuth 0).
func FromCartesian(v r3.Vector) SphericalPoint {
	radius := v.Norm()
	if radius == 0 || math.IsNaN(radius) {
		return SphericalPoint{
			Vec:    r3.Vector{X: 0, Y: 0, Z: 1},
			CosZen: 1,
			CosAz:  1,
		}
	}
	u := v.Mul(1 / radius)
	s := SphericalPoint{Vec: u}
	s.Azimuth = math.Mod(math.Atan2(u.Y, u.X)+2*math.Pi, 2*math.Pi)
	s.CosZen = math.Max(-1, math.Min(1, u.Z))
	s.Zenith = math.Acos(s.CosZen)
	s.SinZen = math.Sin(s.Zenith)
	s.SinAz, s.CosAz = math.Sincos(s.Azimuth)
	return s
}

// Reflect rotates p by pi around the axis of c, so that the result lies
// symmetrically opposite to p with respect to c on the unit sphere.
// Applying it twice with the same c gives back p.
func Reflect(p, c SphericalPoint) SphericalPoint {
	x, y, z := p.Vec.X, p.Vec.Y, p.Vec.Z
	ca, sa := c.CosAz, c.SinAz
	cz, sz := c.CosZen, c.SinZen

	nx := 2*ca*cz*sz*z + x*(ca*(-ca*cz*cz+ca*sz*sz)-sa*sa) + y*(ca*sa+sa*(-ca*cz*cz+ca*sz*sz))
	ny := 2*cz*sa*sz*z + x*(ca*sa+ca*(-cz*cz*sa+sa*sz*sz)) + y*(-ca*ca+sa*(-cz*cz*sa+sa*sz*sz))
	nz := 2*ca*cz*sz*x + 2*cz*sa*sz*y + z*(cz*cz-sz*sz)

	return FromCartesian(r3.Vector{X: nx, Y: ny, Z: nz})
}

// Centroid averages the unit vectors of points and projects the mean back
// onto the sphere. Angles are never averaged directly.
func Centroid(points []SphericalPoint) SphericalPoint {
	var sum r3.Vector
	for _, p := range points {
		sum = sum.Add(p.Vec)
	}
	if len(points) > 0 {
		sum = sum.Mul(1 / float64(len(points)))
	}
	return FromCartesian(sum)
}

// WeightedSum adds the unit vectors of points scaled by weights. The
// direction of the result is returned together with its length.
func WeightedSum(points []SphericalPoint, weights []float64) (SphericalPoint, float64) {
	var sum r3.Vector
	for i, p := range points {
		sum = sum.Add(p.Vec.Mul(weights[i]))
	}
	return FromCartesian(sum), sum.Norm()
}

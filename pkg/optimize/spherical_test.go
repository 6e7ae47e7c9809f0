package optimize

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		az := rng.Float64() * 2 * math.Pi
		zen := 1e-3 + rng.Float64()*(math.Pi-2e-3)

		s := FromCartesian(FromAngles(az, zen).Vec)
		assert.InDelta(t, zen, s.Zenith, 1e-9)
		// azimuth close to 2pi may come back as a value close to 0
		dAz := math.Mod(math.Abs(az-s.Azimuth), 2*math.Pi)
		assert.InDelta(t, 0, math.Min(dAz, 2*math.Pi-dAz), 1e-9)
	}
}

func TestFromCartesianNormalizes(t *testing.T) {
	s := FromCartesian(r3.Vector{X: 0, Y: 3, Z: 0})
	assert.InDelta(t, 1, s.Vec.Norm(), 1e-12)
	assert.InDelta(t, math.Pi/2, s.Zenith, 1e-12)
	assert.InDelta(t, math.Pi/2, s.Azimuth, 1e-12)
	assert.InDelta(t, 1, s.SinAz, 1e-12)
	assert.InDelta(t, 0, s.CosZen, 1e-12)
}

func TestFromCartesianZeroIsPole(t *testing.T) {
	s := FromCartesian(r3.Vector{})
	assert.Equal(t, 0.0, s.Zenith)
	assert.Equal(t, 0.0, s.Azimuth)
	assert.Equal(t, r3.Vector{X: 0, Y: 0, Z: 1}, s.Vec)
}

func TestAzimuthWrapsIntoRange(t *testing.T) {
	s := FromCartesian(r3.Vector{X: 1, Y: -1, Z: 0})
	assert.InDelta(t, 7*math.Pi/4, s.Azimuth, 1e-12)
	assert.GreaterOrEqual(t, s.Azimuth, 0.0)
	assert.Less(t, s.Azimuth, 2*math.Pi)
}

func TestCentroidUnitNorm(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		points := make([]SphericalPoint, 2+rng.Intn(8))
		for j := range points {
			points[j] = FromAngles(rng.Float64()*2*math.Pi, rng.Float64()*math.Pi)
		}
		c := Centroid(points)
		assert.InDelta(t, 1, c.Vec.Norm(), 1e-12)
	}
}

func TestCentroidAcrossAzimuthWrap(t *testing.T) {
	// a naive angle average would give pi here
	points := []SphericalPoint{
		FromAngles(0.1, math.Pi/2),
		FromAngles(2*math.Pi-0.1, math.Pi/2),
	}
	c := Centroid(points)
	dAz := math.Min(c.Azimuth, 2*math.Pi-c.Azimuth)
	assert.InDelta(t, 0, dAz, 1e-12)
	assert.InDelta(t, math.Pi/2, c.Zenith, 1e-12)
}

func TestCentroidOfOppositeDirectionsIsPole(t *testing.T) {
	points := []SphericalPoint{
		FromAngles(0, math.Pi/2),
		FromAngles(math.Pi, math.Pi/2),
	}
	c := Centroid(points)
	// opposite vectors cancel up to rounding; the result is either exactly
	// the pole or some unit vector, never NaN
	assert.False(t, math.IsNaN(c.Zenith))
	assert.InDelta(t, 1, c.Vec.Norm(), 1e-12)
}

func TestReflectIsInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		p := FromAngles(rng.Float64()*2*math.Pi, rng.Float64()*math.Pi)
		c := FromAngles(rng.Float64()*2*math.Pi, rng.Float64()*math.Pi)

		back := Reflect(Reflect(p, c), c)
		assert.InDelta(t, p.Vec.X, back.Vec.X, 1e-9)
		assert.InDelta(t, p.Vec.Y, back.Vec.Y, 1e-9)
		assert.InDelta(t, p.Vec.Z, back.Vec.Z, 1e-9)
	}
}

func TestReflectIsSymmetricAroundCentroid(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		p := FromAngles(rng.Float64()*2*math.Pi, rng.Float64()*math.Pi)
		c := FromAngles(rng.Float64()*2*math.Pi, rng.Float64()*math.Pi)
		q := Reflect(p, c)

		require.InDelta(t, 1, q.Vec.Norm(), 1e-12)
		// same opening angle to the centroid, and p + q is parallel to c
		assert.InDelta(t, p.Vec.Dot(c.Vec), q.Vec.Dot(c.Vec), 1e-9)
		assert.InDelta(t, 0, p.Vec.Add(q.Vec).Cross(c.Vec).Norm(), 1e-9)
	}
}

func TestReflectThroughItself(t *testing.T) {
	p := FromAngles(1.2, 0.7)
	q := Reflect(p, p)
	assert.InDelta(t, p.Zenith, q.Zenith, 1e-9)
	assert.InDelta(t, p.Azimuth, q.Azimuth, 1e-9)
}

func TestWeightedSum(t *testing.T) {
	up := FromAngles(0, 0)
	side := FromAngles(0, math.Pi/2)

	dir, length := WeightedSum([]SphericalPoint{up, side}, []float64{1, 1})
	assert.InDelta(t, math.Sqrt2, length, 1e-12)
	assert.InDelta(t, math.Pi/4, dir.Zenith, 1e-12)

	dir, _ = WeightedSum([]SphericalPoint{up, side}, []float64{0, 5})
	assert.InDelta(t, math.Pi/2, dir.Zenith, 1e-12)
}

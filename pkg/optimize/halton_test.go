package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestHaltonStaysInUnitCube(t *testing.T) {
	points := haltonPoints(2000, 10, 7)
	rows, cols := points.Dims()
	require.Equal(t, 2000, rows)
	require.Equal(t, 10, cols)
	for i := 0; i < rows; i++ {
		for _, v := range points.RawRowView(i) {
			require.GreaterOrEqual(t, v, 0.0)
			require.Less(t, v, 1.0)
		}
	}
}

func TestHaltonSeeded(t *testing.T) {
	a := haltonPoints(50, 3, 11)
	b := haltonPoints(50, 3, 11)
	c := haltonPoints(50, 3, 12)
	assert.True(t, mat.Equal(a, b))
	assert.False(t, mat.Equal(a, c))
}

func TestHaltonCoversEachAxis(t *testing.T) {
	// a low-discrepancy set puts one point in every 1/N stratum of the
	// first (base 2) axis when N is a power of two
	const N = 64
	points := haltonPoints(N, 2, 3)
	seen := make([]bool, N)
	for i := 0; i < N; i++ {
		seen[int(points.At(i, 0)*N)] = true
	}
	for k, ok := range seen {
		assert.True(t, ok, "empty stratum %d", k)
	}
}

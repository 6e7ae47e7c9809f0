package optimize

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// haltonPoints returns N Owen-scrambled Halton points of the n-dimensional
// unit hypercube, one per row. The scrambling is fixed by seed.
func haltonPoints(N, n int, seed uint64) *mat.Dense {
	src := rand.NewSource(seed)
	batch := mat.NewDense(N, n, nil)
	samplemv.Halton{
		Kind: samplemv.Owen,
		Q:    distmv.NewUnitUniform(n, src),
		Src:  src,
	}.Sample(batch)
	return batch
}

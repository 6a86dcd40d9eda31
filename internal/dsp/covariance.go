package dsp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingularCovariance is returned when the spatial covariance cannot be
	// inverted reliably, typically because there are fewer independent
	// snapshots than antennas.
	ErrSingularCovariance = errors.New("dsp: singular covariance")

	// ErrAntennaMismatch is returned when a snapshot's antenna count does not
	// match the steering table.
	ErrAntennaMismatch = errors.New("dsp: antenna count mismatch")
)

// DefaultMaxCondition is the largest 1-norm condition number accepted when
// inverting a covariance matrix.
const DefaultMaxCondition = 1e12

// Covariance returns the spatial covariance Rxx = X·Xᴴ / samples of an
// antennas × samples snapshot.
func Covariance(x *mat.CDense) *mat.CDense {
	n, samples := x.Dims()
	rxx := mat.NewCDense(n, n, nil)
	cblas128.Gemm(blas.NoTrans, blas.ConjTrans,
		complex(1/float64(samples), 0), x.RawCMatrix(), x.RawCMatrix(),
		0, rxx.RawCMatrix())
	return rxx
}

// Invert returns the inverse of a square complex matrix.
//
// The inverse is computed on the real 2n×2n embedding [[A, -B], [B, A]] of
// A + iB, whose inverse has the same block form for (A + iB)⁻¹. Matrices whose
// condition number exceeds maxCond are rejected with ErrSingularCovariance.
func Invert(m *mat.CDense, maxCond float64) (*mat.CDense, error) {
	n, c := m.Dims()
	if n != c {
		return nil, fmt.Errorf("%w: %d×%d matrix is not square", ErrAntennaMismatch, n, c)
	}

	emb := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			emb.Set(i, j, real(v))
			emb.Set(i, j+n, -imag(v))
			emb.Set(i+n, j, imag(v))
			emb.Set(i+n, j+n, real(v))
		}
	}

	if cond := mat.Cond(emb, 1); math.IsNaN(cond) || cond > maxCond {
		return nil, fmt.Errorf("%w: condition number %.3g", ErrSingularCovariance, cond)
	}

	var inv mat.Dense
	if err := inv.Inverse(emb); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %v", ErrSingularCovariance, err)
		}
		return nil, err
	}

	out := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, complex(inv.At(i, j), inv.At(i+n, j)))
		}
	}
	return out, nil
}

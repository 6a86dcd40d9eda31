package dsp

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// Bartlett projects an antennas × samples snapshot onto the conjugate
// steering vectors, returning an angles × samples matrix.
func Bartlett(t *SteeringTable, x *mat.CDense) (*mat.CDense, error) {
	ants, samples := x.Dims()
	if ants != t.Antennas() {
		return nil, fmt.Errorf("%w: snapshot has %d antennas, steering table %d", ErrAntennaMismatch, ants, t.Antennas())
	}
	y := mat.NewCDense(t.Angles(), samples, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, t.conj.RawCMatrix(), x.RawCMatrix(), 0, y.RawCMatrix())
	return y, nil
}

// CaponOptions tunes the MVDR estimator.
type CaponOptions struct {
	// MaxCondition bounds the covariance condition number; zero means
	// DefaultMaxCondition.
	MaxCondition float64
}

func (o CaponOptions) maxCondition() float64 {
	if o.MaxCondition <= 0 {
		return DefaultMaxCondition
	}
	return o.MaxCondition
}

// CaponResult is the MVDR output for one snapshot.
type CaponResult struct {
	// Spectrum[k] = 1 / (aₖᴴ·Rxx⁻¹·aₖ), the estimated power at angle k.
	Spectrum []complex128
	// Weights row k is Rxx⁻¹·aₖ / (aₖᴴ·Rxx⁻¹·aₖ).
	Weights *mat.CDense
}

// Capon runs the Capon (minimum variance distortionless response)
// beamformer on an antennas × snapshots matrix.
func Capon(t *SteeringTable, x *mat.CDense, opts CaponOptions) (*CaponResult, error) {
	ants, _ := x.Dims()
	if ants != t.Antennas() {
		return nil, fmt.Errorf("%w: snapshot has %d antennas, steering table %d", ErrAntennaMismatch, ants, t.Antennas())
	}

	inv, err := Invert(Covariance(x), opts.maxCondition())
	if err != nil {
		return nil, err
	}

	nAng := t.Angles()
	// first = Rxx⁻¹·Sᵀ, antennas × angles.
	first := mat.NewCDense(ants, nAng, nil)
	cblas128.Gemm(blas.NoTrans, blas.Trans, 1, inv.RawCMatrix(), t.vectors.RawCMatrix(), 0, first.RawCMatrix())

	res := &CaponResult{
		Spectrum: make([]complex128, nAng),
		Weights:  mat.NewCDense(nAng, ants, nil),
	}
	for k := 0; k < nAng; k++ {
		var den complex128
		for j := 0; j < ants; j++ {
			den += t.conj.At(k, j) * first.At(j, k)
		}
		p := 1 / den
		res.Spectrum[k] = p
		for j := 0; j < ants; j++ {
			res.Weights.Set(k, j, first.At(j, k)*p)
		}
	}
	return res, nil
}

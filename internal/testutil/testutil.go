// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/banshee-data/radarize/internal/radar"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertComplexNear fails the test if |got - want| > tol.
func AssertComplexNear(t *testing.T, got, want complex128, tol float64) {
	t.Helper()
	if d := cmplx.Abs(got - want); d > tol || math.IsNaN(d) {
		t.Errorf("got %v, want %v (|diff| %.3g > %.3g)", got, want, d, tol)
	}
}

// AssertFloatNear fails the test if |got - want| > tol.
func AssertFloatNear(t *testing.T, got, want, tol float64) {
	t.Helper()
	if d := math.Abs(got - want); d > tol || math.IsNaN(d) {
		t.Errorf("got %g, want %g (|diff| %.3g > %.3g)", got, want, d, tol)
	}
}

// Target describes one synthetic point reflector.
type Target struct {
	RangeBin   int     // range FFT bin
	DopplerBin int     // doppler FFT bin before centring
	AngleDeg   float64 // azimuth
}

// TargetFrame builds a raw interleaved-ADC frame containing a single point
// target seen by a half-wavelength array of the enabled receivers, with a
// single transmitter and unit calibration. Noise is complex Gaussian with
// the given standard deviation per component; amplitude scales the target.
func TargetFrame(platform string, chirps int, rx []int, samples int, tgt Target, amplitude, noise float64, seed int64) *radar.Frame {
	rng := rand.New(rand.NewSource(seed))
	nRx := 0
	for _, on := range rx {
		if on != 0 {
			nRx++
		}
	}

	sinTheta := math.Sin(tgt.AngleDeg * math.Pi / 180)
	cube := make([]complex128, chirps*nRx*samples)
	i := 0
	for c := 0; c < chirps; c++ {
		dop := cmplx.Exp(complex(0, 2*math.Pi*float64(tgt.DopplerBin*c)/float64(chirps)))
		for a := 0; a < nRx; a++ {
			sv := cmplx.Exp(complex(0, -math.Pi*float64(a)*sinTheta))
			for s := 0; s < samples; s++ {
				rg := cmplx.Exp(complex(0, 2*math.Pi*float64(tgt.RangeBin*s)/float64(samples)))
				cube[i] = complex(amplitude, 0)*dop*sv*rg + complex(noise*rng.NormFloat64(), noise*rng.NormFloat64())
				i++
			}
		}
	}

	bias := make([]float64, 2*len(rx))
	for k := 0; k < len(bias); k += 2 {
		bias[k] = 1
	}
	return &radar.Frame{
		Platform:     platform,
		ADCOutputFmt: 1,
		RxPhaseBias:  bias,
		Shape:        [3]int{chirps, nRx, samples},
		Rx:           rx,
		Tx:           []int{1},
		Data:         InterleaveADC(cube),
	}
}

// InterleaveADC encodes complex samples in the sensor's raw word order:
// each pair z0, z1 becomes [imag z0, imag z1, real z0, real z1].
func InterleaveADC(samples []complex128) []float64 {
	out := make([]float64, 2*len(samples))
	for k := 0; 2*k+1 < len(samples); k++ {
		z0, z1 := samples[2*k], samples[2*k+1]
		out[4*k] = imag(z0)
		out[4*k+1] = imag(z1)
		out[4*k+2] = real(z0)
		out[4*k+3] = real(z1)
	}
	return out
}

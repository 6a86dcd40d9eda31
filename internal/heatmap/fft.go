package heatmap

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/banshee-data/radarize/internal/radar"
)

// The FFTs run in double precision and the results are narrowed back to the
// single-precision cube. The rounding is deliberate and happens only in
// narrow.

func widen(dst []complex128, src []complex64) {
	for i, v := range src {
		dst[i] = complex128(v)
	}
}

func narrow(dst []complex64, src []complex128) {
	for i, v := range src {
		dst[i] = complex64(v)
	}
}

// fftShift moves the zero-frequency bin to the centre, matching numpy's
// fftshift: out[(i + n/2) mod n] = in[i].
func fftShift(dst, src []complex128) {
	n := len(src)
	h := n / 2
	for i, v := range src {
		dst[(i+h)%n] = v
	}
}

// rangeFFT transforms every (chirp, antenna) row along the sample axis.
func rangeFFT(cube *radar.Cube) *radar.Cube {
	out := radar.NewCube(cube.Chirps, cube.Antennas, cube.Samples)
	fft := fourier.NewCmplxFFT(cube.Samples)
	seq := make([]complex128, cube.Samples)
	coeff := make([]complex128, cube.Samples)
	for c := 0; c < cube.Chirps; c++ {
		for a := 0; a < cube.Antennas; a++ {
			widen(seq, cube.Row(c, a))
			coeff = fft.Coefficients(coeff, seq)
			narrow(out.Row(c, a), coeff)
		}
	}
	return out
}

// dopplerFFT transforms every (antenna, sample) column along the chirp axis
// and centres zero doppler.
func dopplerFFT(cube *radar.Cube) *radar.Cube {
	n := cube.Chirps
	out := radar.NewCube(cube.Chirps, cube.Antennas, cube.Samples)
	fft := fourier.NewCmplxFFT(n)
	seq := make([]complex128, n)
	coeff := make([]complex128, n)
	shifted := make([]complex128, n)
	col := make([]complex64, n)
	for a := 0; a < cube.Antennas; a++ {
		for s := 0; s < cube.Samples; s++ {
			for c := 0; c < n; c++ {
				seq[c] = complex128(cube.At(c, a, s))
			}
			coeff = fft.Coefficients(coeff, seq)
			fftShift(shifted, coeff)
			narrow(col, shifted)
			for c := 0; c < n; c++ {
				out.Set(c, a, s, col[c])
			}
		}
	}
	return out
}

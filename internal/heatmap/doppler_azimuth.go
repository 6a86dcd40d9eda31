package heatmap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/radarize/internal/dsp"
	"github.com/banshee-data/radarize/internal/radar"
)

// DopplerAzimuthOptions configures DopplerAzimuth.
type DopplerAzimuthOptions struct {
	AngleRange       float64 // degrees, default 90
	AngleResolution  float64 // degrees, default 1
	RangeInitialBin  int     // first range bin kept
	RangeSubsampling int     // stride between kept range bins, default 2
}

// DefaultDopplerAzimuthOptions returns the defaults used for model input.
func DefaultDopplerAzimuthOptions() DopplerAzimuthOptions {
	return DopplerAzimuthOptions{
		AngleRange:       90,
		AngleResolution:  1,
		RangeInitialBin:  0,
		RangeSubsampling: 2,
	}
}

// DopplerAzimuth builds a (doppler × angle) map. The cube is not modified.
//
// Range bins are subsampled, static clutter is removed by subtracting each
// bin's mean over chirps, and a centred doppler FFT runs along the chirp
// axis. Every doppler bin is Bartlett-beamformed, the per-angle mean across
// range bins is removed, and each cell holds log(mean |y|²) over range.
func DopplerAzimuth(cube *radar.Cube, opts DopplerAzimuthOptions) (*Heatmap, error) {
	if opts.RangeSubsampling < 1 {
		return nil, fmt.Errorf("%w: range subsampling %d", ErrInvalidOptions, opts.RangeSubsampling)
	}
	if opts.RangeInitialBin < 0 || opts.RangeInitialBin >= cube.Samples {
		return nil, fmt.Errorf("%w: initial range bin %d outside [0, %d)", ErrInvalidOptions, opts.RangeInitialBin, cube.Samples)
	}

	steer, err := dsp.Steering(opts.AngleRange, opts.AngleResolution, cube.Antennas)
	if err != nil {
		return nil, err
	}

	sub := subsampleRange(cube, opts.RangeInitialBin, opts.RangeSubsampling)
	removeStatic(sub)
	dc := dopplerFFT(sub)

	nRange := dc.Samples
	nAng := steer.Angles()
	out := mat.NewDense(dc.Chirps, nAng, nil)
	snap := mat.NewCDense(dc.Antennas, nRange, nil)
	for d := 0; d < dc.Chirps; d++ {
		for a := 0; a < dc.Antennas; a++ {
			for r, v := range dc.Row(d, a) {
				snap.Set(a, r, complex128(v))
			}
		}
		y, err := dsp.Bartlett(steer, snap)
		if err != nil {
			return nil, err
		}
		for k := 0; k < nAng; k++ {
			var mean complex128
			for r := 0; r < nRange; r++ {
				mean += y.At(k, r)
			}
			mean /= complex(float64(nRange), 0)

			var power float64
			for r := 0; r < nRange; r++ {
				v := y.At(k, r) - mean
				power += real(v)*real(v) + imag(v)*imag(v)
			}
			out.Set(d, k, math.Log(power/float64(nRange)))
		}
	}
	return &Heatmap{Kind: KindDopplerAzimuth, Values: out}, nil
}

// subsampleRange copies range bins start, start+stride, ... into a new cube.
func subsampleRange(cube *radar.Cube, start, stride int) *radar.Cube {
	n := (cube.Samples - start + stride - 1) / stride
	out := radar.NewCube(cube.Chirps, cube.Antennas, n)
	for c := 0; c < cube.Chirps; c++ {
		for a := 0; a < cube.Antennas; a++ {
			src, dst := cube.Row(c, a), out.Row(c, a)
			for i := range dst {
				dst[i] = src[start+i*stride]
			}
		}
	}
	return out
}

// removeStatic subtracts the mean over chirps from every (antenna, range)
// cell, suppressing zero-doppler clutter.
func removeStatic(cube *radar.Cube) {
	for a := 0; a < cube.Antennas; a++ {
		for s := 0; s < cube.Samples; s++ {
			var sum complex128
			for c := 0; c < cube.Chirps; c++ {
				sum += complex128(cube.At(c, a, s))
			}
			mean := complex64(sum / complex(float64(cube.Chirps), 0))
			for c := 0; c < cube.Chirps; c++ {
				cube.Set(c, a, s, cube.At(c, a, s)-mean)
			}
		}
	}
}

package heatmap

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/radarize/internal/dsp"
	"github.com/banshee-data/radarize/internal/radar"
)

// RangeAzimuthOptions configures RangeAzimuth.
type RangeAzimuthOptions struct {
	AngleRange      float64 // degrees, default 90
	AngleResolution float64 // degrees, default 1
	// Method names the beamformer. Only "capon" is implemented.
	Method string
	Capon  dsp.CaponOptions
}

// DefaultRangeAzimuthOptions mirrors the sensor defaults. Note that the
// default method is "apes", which is not implemented; callers must select
// "capon".
func DefaultRangeAzimuthOptions() RangeAzimuthOptions {
	return RangeAzimuthOptions{
		AngleRange:      90,
		AngleResolution: 1,
		Method:          dsp.DefaultRangeAzimuthMethod,
	}
}

// RangeAzimuth builds a (range × angle) log-magnitude Capon map. Each range
// bin is beamformed using its antennas × chirps snapshot after the range FFT.
func RangeAzimuth(cube *radar.Cube, opts RangeAzimuthOptions) (*Heatmap, error) {
	method, err := dsp.ParseMethod(opts.Method)
	if err != nil {
		return nil, err
	}
	if method != dsp.MethodCapon {
		return nil, fmt.Errorf("%w: range-azimuth implements capon only, got %q", dsp.ErrUnsupportedMethod, opts.Method)
	}

	steer, err := dsp.Steering(opts.AngleRange, opts.AngleResolution, cube.Antennas)
	if err != nil {
		return nil, err
	}

	rc := rangeFFT(cube)
	nRange := rc.Samples
	out := mat.NewDense(nRange, steer.Angles(), nil)
	snap := mat.NewCDense(rc.Antennas, rc.Chirps, nil)
	for r := 0; r < nRange; r++ {
		for a := 0; a < rc.Antennas; a++ {
			for c := 0; c < rc.Chirps; c++ {
				snap.Set(a, c, complex128(rc.At(c, a, r)))
			}
		}
		res, err := dsp.Capon(steer, snap, opts.Capon)
		if err != nil {
			return nil, fmt.Errorf("range bin %d: %w", r, err)
		}
		for k, p := range res.Spectrum {
			out.Set(r, k, math.Log(cmplx.Abs(p)))
		}
	}
	return &Heatmap{Kind: KindRangeAzimuth, Values: out}, nil
}

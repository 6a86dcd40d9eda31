package radar

import "fmt"

// ReshapeOptions controls frame reshaping.
type ReshapeOptions struct {
	// PhaseCorrection is applied only on variants with known antenna errata.
	PhaseCorrection PhaseCorrection
}

// Reshape converts a raw frame into a calibrated radar cube of shape
// (n_chirps/n_tx, n_rx·n_tx, n_samples).
//
// Frames whose ADC output is already complex are reshaped and cast without
// calibration. Raw frames have each group of four ADC words combined into
// two complex samples, errata flips applied, and every virtual antenna
// scaled by its calibration coefficient.
func Reshape(f *Frame, opts ReshapeOptions) (*Cube, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	nChirps, nRx, nSamples, nTx := f.Chirps(), f.NumRx(), f.Samples(), f.NumTx()

	if !f.Raw() {
		data := make([]complex64, len(f.Data))
		for i, v := range f.Data {
			data[i] = complex(float32(v), 0)
		}
		return CubeFromData(nChirps/nTx, nRx*nTx, nSamples, data)
	}

	cube := NewCube(nChirps, nRx, nSamples)
	combineInterleaved(cube.Data, f.Data)

	// Flips are addressed by physical channel but the cube holds only the
	// enabled receivers, so walk the mask to find each channel's position.
	if flips := f.Variant().flipsRx(opts.PhaseCorrection); len(flips) > 0 {
		pos := 0
		for iRx, on := range f.Rx {
			if on == 0 {
				continue
			}
			if containsInt(flips, iRx) {
				cube.scaleAntenna(pos, -1)
			}
			pos++
		}
	}

	cube, err := cube.Reshape(nChirps/nTx, nRx*nTx, nSamples)
	if err != nil {
		return nil, err
	}

	bias := f.Calibration()
	v := 0
	for iTx, txOn := range f.Tx {
		if txOn == 0 {
			continue
		}
		for iRx, rxOn := range f.Rx {
			if rxOn == 0 {
				continue
			}
			cube.scaleAntenna(v, bias[iTx*len(f.Rx)+iRx])
			v++
		}
	}
	return cube, nil
}

// ReshapeTDM reshapes a frame and then folds the transmit-multiplexed
// chirps into the virtual array.
func ReshapeTDM(f *Frame, opts ReshapeOptions) (*Cube, error) {
	cube, err := Reshape(f, opts)
	if err != nil {
		return nil, err
	}
	folded, err := FoldTDM(cube, f.NumTx(), f.NumRx())
	if err != nil {
		return nil, fmt.Errorf("tdm fold: %w", err)
	}
	return folded, nil
}

// combineInterleaved turns ADC words [q0 q1 i0 i1 ...] into complex samples
// i0+jq0, i1+jq1. len(dst) must be len(src)/2.
func combineInterleaved(dst []complex64, src []float64) {
	for k := 0; 4*k+3 < len(src); k++ {
		dst[2*k] = complex(float32(src[4*k+2]), float32(src[4*k]))
		dst[2*k+1] = complex(float32(src[4*k+3]), float32(src[4*k+1]))
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

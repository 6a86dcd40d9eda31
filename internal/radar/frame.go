package radar

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShapeMismatch reports a sample buffer, mask or calibration vector
	// that disagrees with the frame's declared dimensions.
	ErrShapeMismatch = errors.New("radar: shape mismatch")

	// ErrConflictingPhaseCorrection is returned when both antenna flip
	// corrections are requested at once.
	ErrConflictingPhaseCorrection = errors.New("radar: conflicting phase corrections")
)

// Variant identifies the sensor hardware family. Antenna errata corrections
// are keyed off the variant rather than the raw platform string.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantXWR14xx
	VariantXWR16xx
	VariantXWR18xx
	VariantXWR68xx
)

var variantNames = map[Variant]string{
	VariantUnknown: "unknown",
	VariantXWR14xx: "xWR14xx",
	VariantXWR16xx: "xWR16xx",
	VariantXWR18xx: "xWR18xx",
	VariantXWR68xx: "xWR68xx",
}

func (v Variant) String() string {
	if s, ok := variantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant resolves a platform identifier such as "xWR68xx_AOP" to its
// hardware family. Unrecognised platforms map to VariantUnknown, which
// receives no errata correction.
func ParseVariant(platform string) Variant {
	// Matching is case-insensitive.
	p := strings.ToLower(platform)
	for _, v := range []Variant{VariantXWR68xx, VariantXWR18xx, VariantXWR16xx, VariantXWR14xx} {
		if strings.Contains(p, strings.ToLower(variantNames[v])) {
			return v
		}
	}
	return VariantUnknown
}

// flipsRx returns the physical receive channels that need a 180° phase flip
// on this variant for the given correction.
func (v Variant) flipsRx(pc PhaseCorrection) []int {
	if v != VariantXWR68xx {
		return nil
	}
	switch pc {
	case FlipPairA:
		return []int{1, 2}
	case FlipPairB:
		return []int{0, 2}
	}
	return nil
}

// PhaseCorrection selects an antenna errata correction.
type PhaseCorrection int

const (
	// PhaseCorrectionNone applies no flip.
	PhaseCorrectionNone PhaseCorrection = iota
	// FlipPairA flips RX2 and RX3 (ODS antenna boards).
	FlipPairA
	// FlipPairB flips RX1 and RX3 (AoP antenna boards).
	FlipPairB
)

func (pc PhaseCorrection) String() string {
	switch pc {
	case PhaseCorrectionNone:
		return "none"
	case FlipPairA:
		return "ods"
	case FlipPairB:
		return "aop"
	}
	return fmt.Sprintf("PhaseCorrection(%d)", int(pc))
}

// NewPhaseCorrection converts the legacy pair of flip flags into a single
// correction. Setting both is rejected.
func NewPhaseCorrection(flipODS, flipAOP bool) (PhaseCorrection, error) {
	switch {
	case flipODS && flipAOP:
		return PhaseCorrectionNone, ErrConflictingPhaseCorrection
	case flipODS:
		return FlipPairA, nil
	case flipAOP:
		return FlipPairB, nil
	}
	return PhaseCorrectionNone, nil
}

// ParsePhaseCorrection accepts "none", "ods" or "aop" (case-insensitive);
// the empty string means none.
func ParsePhaseCorrection(s string) (PhaseCorrection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PhaseCorrectionNone, nil
	case "ods":
		return FlipPairA, nil
	case "aop":
		return FlipPairB, nil
	}
	return PhaseCorrectionNone, fmt.Errorf("unknown phase correction %q", s)
}

// Frame is one raw radar frame as delivered by the sensor transport.
// The JSON field names follow the sensor message.
type Frame struct {
	Platform     string    `json:"platform"`
	ADCOutputFmt int       `json:"adc_output_fmt"`
	RxPhaseBias  []float64 `json:"rx_phase_bias"` // interleaved re/im, 2·len(Tx)·len(Rx)
	Shape        [3]int    `json:"shape"`         // n_chirps, n_rx, n_samples
	Rx           Mask      `json:"rx"`
	Tx           Mask      `json:"tx"`
	Data         []float64 `json:"data"`
}

// Chirps returns the declared chirp count.
func (f *Frame) Chirps() int { return f.Shape[0] }

// NumRx returns the declared receive channel count.
func (f *Frame) NumRx() int { return f.Shape[1] }

// Samples returns the declared ADC samples per chirp.
func (f *Frame) Samples() int { return f.Shape[2] }

// NumTx returns the number of enabled transmitters.
func (f *Frame) NumTx() int { return countEnabled(f.Tx) }

// Raw reports whether Data holds interleaved ADC words that still need to
// be combined into complex samples.
func (f *Frame) Raw() bool { return f.ADCOutputFmt > 0 }

// Variant resolves the frame's platform string.
func (f *Frame) Variant() Variant { return ParseVariant(f.Platform) }

// Calibration returns the complex calibration coefficients, one per
// physical (tx, rx) pair in tx-major order.
func (f *Frame) Calibration() []complex64 {
	out := make([]complex64, len(f.RxPhaseBias)/2)
	for i := range out {
		out[i] = complex(float32(f.RxPhaseBias[2*i]), float32(f.RxPhaseBias[2*i+1]))
	}
	return out
}

// Validate checks that the frame's buffers agree with its declared
// dimensions. It performs no numeric work.
func (f *Frame) Validate() error {
	nChirps, nRx, nSamples := f.Chirps(), f.NumRx(), f.Samples()
	if nChirps <= 0 || nRx <= 0 || nSamples <= 0 {
		return fmt.Errorf("%w: non-positive shape %v", ErrShapeMismatch, f.Shape)
	}
	nTx := f.NumTx()
	if nTx == 0 {
		return fmt.Errorf("%w: no enabled transmitters in %v", ErrShapeMismatch, f.Tx)
	}
	if nChirps%nTx != 0 {
		return fmt.Errorf("%w: %d chirps not divisible by %d transmitters", ErrShapeMismatch, nChirps, nTx)
	}

	want := nChirps * nRx * nSamples
	if f.Raw() {
		want *= 2
	}
	if len(f.Data) != want {
		return fmt.Errorf("%w: got %d samples, want %d for shape %v", ErrShapeMismatch, len(f.Data), want, f.Shape)
	}

	if !f.Raw() {
		return nil
	}
	// Four ADC words make two complex samples.
	if len(f.Data)%4 != 0 {
		return fmt.Errorf("%w: raw buffer length %d is not a multiple of 4", ErrShapeMismatch, len(f.Data))
	}
	if got := countEnabled(f.Rx); got != nRx {
		return fmt.Errorf("%w: %d enabled receivers, shape declares %d", ErrShapeMismatch, got, nRx)
	}
	if len(f.RxPhaseBias)%2 != 0 {
		return fmt.Errorf("%w: odd calibration vector length %d", ErrShapeMismatch, len(f.RxPhaseBias))
	}
	if need := 2 * len(f.Tx) * len(f.Rx); len(f.RxPhaseBias) < need {
		return fmt.Errorf("%w: calibration vector has %d values, want %d", ErrShapeMismatch, len(f.RxPhaseBias), need)
	}
	return nil
}

func countEnabled(mask []int) int {
	n := 0
	for _, on := range mask {
		if on != 0 {
			n++
		}
	}
	return n
}

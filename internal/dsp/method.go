package dsp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedMethod is returned for beamforming methods that are unknown
// or not implemented by the caller's processing path.
var ErrUnsupportedMethod = errors.New("dsp: unsupported beamforming method")

// Method selects an angle-spectrum estimator.
type Method int

const (
	MethodUnknown Method = iota
	MethodBartlett
	MethodCapon
	// MethodAPES is recognised so that configuration naming it fails with
	// ErrUnsupportedMethod rather than a parse error. No path implements it.
	MethodAPES
)

// DefaultRangeAzimuthMethod is the method named by default in sensor
// configurations.
const DefaultRangeAzimuthMethod = "apes"

func (m Method) String() string {
	switch m {
	case MethodBartlett:
		return "bartlett"
	case MethodCapon:
		return "capon"
	case MethodAPES:
		return "apes"
	}
	return "unknown"
}

// ParseMethod maps a method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bartlett":
		return MethodBartlett, nil
	case "capon", "mvdr":
		return MethodCapon, nil
	case "apes":
		return MethodAPES, nil
	}
	return MethodUnknown, fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

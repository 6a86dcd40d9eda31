// Package dsp implements the angle-of-arrival kernels: steering vectors,
// spatial covariance and the Bartlett and Capon (MVDR) beamformers.
//
// Matrices are gonum complex dense matrices with antennas on the row axis of
// every snapshot.
package dsp

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidSteering reports steering table parameters that cannot produce
// any angle rows.
var ErrInvalidSteering = errors.New("dsp: invalid steering parameters")

// SteeringKey identifies a steering table.
type SteeringKey struct {
	AngleRange      float64 // degrees either side of boresight
	AngleResolution float64 // degrees per row
	Antennas        int
}

// SteeringTable holds one unit-modulus array response vector per look
// angle. It is immutable once built and safe for concurrent readers.
type SteeringTable struct {
	key     SteeringKey
	vectors *mat.CDense // angles × antennas
	conj    *mat.CDense // element-wise conjugate of vectors
}

// Key returns the parameters the table was built from.
func (t *SteeringTable) Key() SteeringKey { return t.key }

// Angles returns the number of look angles (rows).
func (t *SteeringTable) Angles() int {
	r, _ := t.vectors.Dims()
	return r
}

// Antennas returns the number of antenna columns.
func (t *SteeringTable) Antennas() int { return t.key.Antennas }

// At returns the response of antenna j at angle row k.
func (t *SteeringTable) At(k, j int) complex128 { return t.vectors.At(k, j) }

// AngleDeg returns the look angle of row k in degrees.
func (t *SteeringTable) AngleDeg(k int) float64 {
	return -t.key.AngleRange - 1 + float64(k)*t.key.AngleResolution
}

// Vectors returns a copy of the angles × antennas matrix.
func (t *SteeringTable) Vectors() *mat.CDense {
	raw := t.vectors.RawCMatrix()
	return mat.NewCDense(raw.Rows, raw.Cols, append([]complex128(nil), raw.Data...))
}

// NumSteeringVectors returns round((2·angleRange + 1)/resolution + 1), with
// ties rounded to even.
func NumSteeringVectors(angleRange, resolution float64) int {
	return int(math.RoundToEven((2*angleRange+1)/resolution + 1))
}

// GenerateSteering builds a steering table for a half-wavelength uniform
// linear array. Row k looks at -angleRange-1 + k·resolution degrees and
// antenna j has phase -π·j·sin(θ).
func GenerateSteering(angleRange, resolution float64, antennas int) (*SteeringTable, error) {
	if resolution <= 0 || angleRange < 0 || antennas <= 0 {
		return nil, fmt.Errorf("%w: range=%g resolution=%g antennas=%d", ErrInvalidSteering, angleRange, resolution, antennas)
	}
	n := NumSteeringVectors(angleRange, resolution)
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d angle rows", ErrInvalidSteering, n)
	}

	vec := make([]complex128, n*antennas)
	cnj := make([]complex128, n*antennas)
	for k := 0; k < n; k++ {
		theta := (-angleRange - 1 + float64(k)*resolution) * math.Pi / 180
		s := math.Sin(theta)
		for j := 0; j < antennas; j++ {
			phase := -math.Pi * float64(j) * s
			re, im := math.Cos(phase), math.Sin(phase)
			vec[k*antennas+j] = complex(re, im)
			cnj[k*antennas+j] = complex(re, -im)
		}
	}

	return &SteeringTable{
		key:     SteeringKey{AngleRange: angleRange, AngleResolution: resolution, Antennas: antennas},
		vectors: mat.NewCDense(n, antennas, vec),
		conj:    mat.NewCDense(n, antennas, cnj),
	}, nil
}

// steeringCache memoises tables by key. Tables are built once and never
// modified afterwards.
var steeringCache = struct {
	sync.RWMutex
	tables map[SteeringKey]*SteeringTable
}{tables: make(map[SteeringKey]*SteeringTable)}

// Steering returns the shared table for the given parameters, building it
// on first use.
func Steering(angleRange, resolution float64, antennas int) (*SteeringTable, error) {
	key := SteeringKey{AngleRange: angleRange, AngleResolution: resolution, Antennas: antennas}

	steeringCache.RLock()
	t, ok := steeringCache.tables[key]
	steeringCache.RUnlock()
	if ok {
		return t, nil
	}

	steeringCache.Lock()
	defer steeringCache.Unlock()
	if t, ok := steeringCache.tables[key]; ok {
		return t, nil
	}
	t, err := GenerateSteering(angleRange, resolution, antennas)
	if err != nil {
		return nil, err
	}
	steeringCache.tables[key] = t
	return t, nil
}

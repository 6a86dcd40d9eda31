package dsp

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSteering_Dimensions(t *testing.T) {
	// (2·90 + 1)/1 + 1 rows, from -91° to +90°.
	tbl, err := GenerateSteering(90, 1, 8)
	require.NoError(t, err)

	assert.Equal(t, 182, tbl.Angles())
	assert.Equal(t, 8, tbl.Antennas())
	assert.Equal(t, -91.0, tbl.AngleDeg(0))
	assert.Equal(t, 90.0, tbl.AngleDeg(tbl.Angles()-1))

	for k := 0; k < tbl.Angles(); k++ {
		for j := 0; j < tbl.Antennas(); j++ {
			assert.InDelta(t, 1.0, cmplx.Abs(tbl.At(k, j)), 1e-6)
		}
		assert.Equal(t, complex128(1), tbl.At(k, 0), "antenna 0 is the phase reference")
	}
}

func TestGenerateSteering_Phase(t *testing.T) {
	tbl, err := GenerateSteering(90, 1, 4)
	require.NoError(t, err)

	k := 121 // 30°
	require.Equal(t, 30.0, tbl.AngleDeg(k))
	for j := 0; j < 4; j++ {
		want := cmplx.Exp(complex(0, -math.Pi*float64(j)*0.5))
		got := tbl.At(k, j)
		assert.InDelta(t, real(want), real(got), 1e-12)
		assert.InDelta(t, imag(want), imag(got), 1e-12)
	}
}

func TestNumSteeringVectors(t *testing.T) {
	assert.Equal(t, 182, NumSteeringVectors(90, 1))
	assert.Equal(t, 92, NumSteeringVectors(90, 2)) // 91.5 rounds to even
	assert.Equal(t, 61, NumSteeringVectors(90, 3))
	assert.Equal(t, 2, NumSteeringVectors(0, 1))
}

func TestGenerateSteering_Invalid(t *testing.T) {
	for _, tc := range []struct {
		rng, res float64
		ants     int
	}{
		{90, 0, 8},
		{90, -1, 8},
		{-1, 1, 8},
		{90, 1, 0},
	} {
		_, err := GenerateSteering(tc.rng, tc.res, tc.ants)
		assert.ErrorIs(t, err, ErrInvalidSteering, "%+v", tc)
	}
}

func TestSteering_CachedAndShared(t *testing.T) {
	const workers = 16
	tables := make([]*SteeringTable, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := Steering(45, 0.5, 12)
			if err == nil {
				tables[i] = tbl
			}
		}(i)
	}
	wg.Wait()

	require.NotNil(t, tables[0])
	for i := 1; i < workers; i++ {
		assert.Same(t, tables[0], tables[i])
	}

	other, err := Steering(45, 0.5, 8)
	require.NoError(t, err)
	assert.NotSame(t, tables[0], other)
	assert.Equal(t, SteeringKey{AngleRange: 45, AngleResolution: 0.5, Antennas: 8}, other.Key())
}

func TestSteeringTable_VectorsIsACopy(t *testing.T) {
	tbl, err := GenerateSteering(10, 1, 3)
	require.NoError(t, err)

	v := tbl.Vectors()
	v.Set(0, 0, 42)
	assert.Equal(t, complex128(1), tbl.At(0, 0))
}

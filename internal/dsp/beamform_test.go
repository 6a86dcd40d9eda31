package dsp

import (
	"errors"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/radarize/internal/radar"
	"github.com/banshee-data/radarize/internal/testutil"
)

func filled(rows, cols int, v complex128) *mat.CDense {
	data := make([]complex128, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewCDense(rows, cols, data)
}

// planeWave returns an antennas × samples snapshot of a source at steering
// row k with random complex amplitude per sample plus optional noise.
func planeWave(tbl *SteeringTable, k, samples int, noise float64, rng *rand.Rand) *mat.CDense {
	ants := tbl.Antennas()
	x := mat.NewCDense(ants, samples, nil)
	for s := 0; s < samples; s++ {
		amp := complex(rng.NormFloat64(), rng.NormFloat64())
		for j := 0; j < ants; j++ {
			n := complex(noise*rng.NormFloat64(), noise*rng.NormFloat64())
			x.Set(j, s, amp*tbl.At(k, j)+n)
		}
	}
	return x
}

func TestCovariance_AllOnes(t *testing.T) {
	x := filled(4, 8, 1)
	rxx := Covariance(x)

	r, c := rxx.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 4, c)

	// Direct reference: X·Xᴴ / 8.
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var ref complex128
			for s := 0; s < 8; s++ {
				ref += x.At(i, s) * cmplx.Conj(x.At(j, s))
			}
			ref /= 8
			assert.InDelta(t, real(ref), real(rxx.At(i, j)), 1e-5)
			assert.InDelta(t, imag(ref), imag(rxx.At(i, j)), 1e-5)
			assert.InDelta(t, 1.0, real(rxx.At(i, j)), 1e-5)
		}
	}
}

func TestCovariance_FoldedCubeSlice(t *testing.T) {
	cube := radar.NewCube(4, 4, 8)
	for i := range cube.Data {
		cube.Data[i] = 1
	}
	folded, err := radar.FoldTDM(cube, 1, 4)
	require.NoError(t, err)
	chirps, ants, samples := folded.Dims()
	require.Equal(t, []int{4, 4, 8}, []int{chirps, ants, samples})

	x := mat.NewCDense(ants, samples, nil)
	for a := 0; a < ants; a++ {
		for s, v := range folded.Row(0, a) {
			x.Set(a, s, complex128(v))
		}
	}
	rxx := Covariance(x)

	for i := 0; i < ants; i++ {
		for j := 0; j < ants; j++ {
			var want complex128
			for s := 0; s < samples; s++ {
				want += x.At(i, s) * cmplx.Conj(x.At(j, s))
			}
			want /= complex(float64(samples), 0)
			testutil.AssertComplexNear(t, rxx.At(i, j), want, 1e-5)
			testutil.AssertComplexNear(t, rxx.At(i, j), 1, 1e-5)
		}
	}
}

func TestCovariance_Hermitian(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	x := mat.NewCDense(6, 20, nil)
	for i := 0; i < 6; i++ {
		for s := 0; s < 20; s++ {
			x.Set(i, s, complex(rng.NormFloat64(), rng.NormFloat64()))
		}
	}
	rxx := Covariance(x)
	for i := 0; i < 6; i++ {
		assert.InDelta(t, 0, imag(rxx.At(i, i)), 1e-12)
		for j := 0; j < 6; j++ {
			testutil.AssertComplexNear(t, rxx.At(i, j), cmplx.Conj(rxx.At(j, i)), 1e-12)
		}
	}
}

func TestInvert(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	const n = 5
	x := mat.NewCDense(n, 40, nil)
	for i := 0; i < n; i++ {
		for s := 0; s < 40; s++ {
			x.Set(i, s, complex(rng.NormFloat64(), rng.NormFloat64()))
		}
	}
	rxx := Covariance(x)

	inv, err := Invert(rxx, DefaultMaxCondition)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var v complex128
			for k := 0; k < n; k++ {
				v += rxx.At(i, k) * inv.At(k, j)
			}
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, real(v), 1e-9)
			assert.InDelta(t, 0, imag(v), 1e-9)
		}
	}
}

func TestBartlett_PeakAtMatchingAngle(t *testing.T) {
	tbl, err := GenerateSteering(90, 1, 8)
	require.NoError(t, err)

	k0 := 111 // 20°
	x := mat.NewCDense(8, 1, nil)
	for j := 0; j < 8; j++ {
		x.Set(j, 0, tbl.At(k0, j))
	}

	y, err := Bartlett(tbl, x)
	require.NoError(t, err)
	r, c := y.Dims()
	require.Equal(t, tbl.Angles(), r)
	require.Equal(t, 1, c)

	peak := cmplx.Abs(y.At(k0, 0))
	assert.InDelta(t, 8.0, peak, 1e-9, "coherent sum over 8 antennas")
	for k := 0; k < r; k++ {
		if k == k0 {
			continue
		}
		assert.Less(t, cmplx.Abs(y.At(k, 0)), peak, "angle row %d", k)
	}
}

func TestBartlett_AntennaMismatch(t *testing.T) {
	tbl, err := GenerateSteering(90, 1, 8)
	require.NoError(t, err)
	_, err = Bartlett(tbl, filled(4, 3, 1))
	assert.ErrorIs(t, err, ErrAntennaMismatch)
}

func TestCapon_ResolvesSource(t *testing.T) {
	tbl, err := GenerateSteering(90, 1, 8)
	require.NoError(t, err)

	k0 := 76 // -15°
	x := planeWave(tbl, k0, 64, 0.05, rand.New(rand.NewSource(3)))

	res, err := Capon(tbl, x, CaponOptions{})
	require.NoError(t, err)
	require.Len(t, res.Spectrum, tbl.Angles())

	best := 0
	for k, p := range res.Spectrum {
		if cmplx.Abs(p) > cmplx.Abs(res.Spectrum[best]) {
			best = k
		}
	}
	assert.Equal(t, k0, best)

	// Distortionless response: aᴴ·w = 1 at every look angle.
	for _, k := range []int{0, k0, 150} {
		var g complex128
		for j := 0; j < 8; j++ {
			g += cmplx.Conj(tbl.At(k, j)) * res.Weights.At(k, j)
		}
		testutil.AssertComplexNear(t, g, 1, 1e-6)
	}
}

func TestCapon_SingularCovariance(t *testing.T) {
	tbl, err := GenerateSteering(90, 1, 4)
	require.NoError(t, err)

	_, err = Capon(tbl, filled(4, 8, 1), CaponOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSingularCovariance), "got %v", err)

	// Two snapshots cannot span four antennas.
	rng := rand.New(rand.NewSource(1))
	x := mat.NewCDense(4, 2, nil)
	for i := 0; i < 4; i++ {
		for s := 0; s < 2; s++ {
			x.Set(i, s, complex(rng.NormFloat64(), rng.NormFloat64()))
		}
	}
	_, err = Capon(tbl, x, CaponOptions{})
	assert.ErrorIs(t, err, ErrSingularCovariance)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("Capon")
	require.NoError(t, err)
	assert.Equal(t, MethodCapon, m)

	m, err = ParseMethod(DefaultRangeAzimuthMethod)
	require.NoError(t, err)
	assert.Equal(t, MethodAPES, m)
	assert.Equal(t, "apes", m.String())

	_, err = ParseMethod("music")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

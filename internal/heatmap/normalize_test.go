package heatmap

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/radarize/internal/radar"
	"github.com/banshee-data/radarize/internal/testutil"
)

func denseMap(rows, cols int, data []float64) *Heatmap {
	return &Heatmap{Kind: KindDopplerAzimuth, Values: mat.NewDense(rows, cols, data)}
}

func TestNormalize_DerivedBounds(t *testing.T) {
	h := denseMap(2, 3, []float64{-2, 0, 2, 4, 6, 8})
	n := Normalize(h, Bounds{})

	assert.Equal(t, KindDopplerAzimuth, n.Kind)
	want := []float64{0, 0.2, 0.4, 0.6, 0.8, 1}
	for i, w := range want {
		assert.InDelta(t, w, n.At(i/3, i%3), 1e-12)
	}
}

func TestNormalize_ExplicitBoundsClip(t *testing.T) {
	h := denseMap(1, 4, []float64{5, 10, 15, 25})
	n := Normalize(h, Bounds{Min: Float64(10), Max: Float64(20)})
	assert.Equal(t, []float64{0, 0, 0.5, 1}, mat.Row(nil, 0, n.Values))

	// Only the minimum given; the maximum comes from the data.
	n = Normalize(h, Bounds{Min: Float64(10)})
	testutil.AssertFloatNear(t, n.At(0, 2), 1.0/3, 1e-12)
	assert.Equal(t, 1.0, n.At(0, 3))
}

func TestNormalize_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	data := make([]float64, 6*7)
	for i := range data {
		data[i] = rng.NormFloat64() * 4
	}
	h := denseMap(6, 7, data)

	b := Bounds{Min: Float64(0), Max: Float64(1)}
	once := Normalize(h, b)
	twice := Normalize(once, b)
	assert.True(t, mat.Equal(once.Values, twice.Values))
}

func TestNormalize_DegenerateRange(t *testing.T) {
	h := denseMap(2, 2, []float64{3, 3, 3, 3})
	n := Normalize(h, Bounds{})
	assert.Equal(t, 0.0, mat.Max(n.Values))
	assert.Equal(t, 0.0, mat.Min(n.Values))
}

func TestNormalize_MaxBelowMin(t *testing.T) {
	// A fixed floor above the data's own maximum still follows the formula.
	h := denseMap(1, 3, []float64{4, 6, 8})
	n := Normalize(h, Bounds{Min: Float64(10)})
	assert.Equal(t, []float64{1, 1, 1}, mat.Row(nil, 0, n.Values))

	n = Normalize(h, Bounds{Min: Float64(10), Max: Float64(2)})
	assert.Equal(t, []float64{0.75, 0.5, 0.25}, mat.Row(nil, 0, n.Values))
}

func TestResize_AreaAverage(t *testing.T) {
	h := denseMap(4, 4, []float64{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 8,
	})
	out, err := Resize(h, 2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1, out.At(0, 0), 1e-12)
	assert.InDelta(t, 2, out.At(0, 1), 1e-12)
	assert.InDelta(t, 3, out.At(1, 0), 1e-12)
	assert.InDelta(t, 5, out.At(1, 1), 1e-12)
}

func TestResize_NonFiniteStaysInFootprint(t *testing.T) {
	h := denseMap(4, 4, []float64{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, math.Inf(-1),
	})
	out, err := Resize(h, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.At(0, 0))
	assert.Equal(t, 2.0, out.At(0, 1))
	assert.Equal(t, 3.0, out.At(1, 0))
	assert.True(t, math.IsInf(out.At(1, 1), -1))
}

func TestResize_FractionalFootprint(t *testing.T) {
	// Three columns into two: each output covers 1.5 inputs.
	h := denseMap(1, 3, []float64{0, 3, 6})
	out, err := Resize(h, 1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1, out.At(0, 0), 1e-12) // (0·1 + 3·0.5)/1.5
	assert.InDelta(t, 5, out.At(0, 1), 1e-12) // (3·0.5 + 6·1)/1.5
}

func TestResize_UpsampleAndIdentity(t *testing.T) {
	h := denseMap(2, 2, []float64{1, 2, 3, 4})

	same, err := Resize(h, 2, 2)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(h.Values, same.Values, 1e-12))

	up, err := Resize(h, 4, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1, up.At(1, 1), 1e-12)
	assert.InDelta(t, 4, up.At(3, 2), 1e-12)

	_, err = Resize(h, 0, 4)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestPreprocess(t *testing.T) {
	cube := targetCube(16, 8, 32, 2, 5, 15, 0.05, 12)
	// Lift the target's log power above the normalisation floor of 10.
	for i := range cube.Data {
		cube.Data[i] *= 10
	}

	out, err := Preprocess(cube, DefaultPreprocessOptions())
	require.NoError(t, err)

	r, c := out.Dims()
	assert.Equal(t, 48, r)
	assert.Equal(t, 48, c)
	assert.GreaterOrEqual(t, mat.Min(out.Values), 0.0)
	assert.LessOrEqual(t, mat.Max(out.Values), 1.0)
	assert.Greater(t, mat.Max(out.Values), 0.0)

	_, err = Preprocess(radar.NewCube(4, 4, 8), PreprocessOptions{Doppler: DefaultDopplerAzimuthOptions(), Rows: -1, Cols: 48})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

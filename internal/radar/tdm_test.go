package radar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldTDM_PlacementAndEnergy(t *testing.T) {
	const (
		nTx      = 3
		nRx      = 4
		chirps   = 5
		nSamples = 6
	)
	src := NewCube(chirps, nTx*nRx, nSamples)
	for i := range src.Data {
		src.Data[i] = complex(float32(i%17)-8, float32(i%5)+1)
	}

	out, err := FoldTDM(src, nTx, nRx)
	require.NoError(t, err)

	c, a, s := out.Dims()
	require.Equal(t, chirps*nTx, c)
	require.Equal(t, nTx*nRx, a)
	require.Equal(t, nSamples, s)

	populated := 0.0
	for ch := 0; ch < c; ch++ {
		tx := ch % nTx
		for ant := 0; ant < a; ant++ {
			inBlock := ant/nRx == tx
			for smp := 0; smp < s; smp++ {
				v := out.At(ch, ant, smp)
				if !inBlock {
					assert.Equal(t, complex64(0), v, "chirp %d antenna %d", ch, ant)
					continue
				}
				assert.Equal(t, src.At(ch/nTx, ant, smp), v)
				populated += float64(real(v))*float64(real(v)) + float64(imag(v))*float64(imag(v))
			}
		}
	}

	assert.InDelta(t, src.Energy(), populated, 1e-9)
	assert.InDelta(t, src.Energy(), out.Energy(), 1e-9)
}

func TestFoldTDM_SingleTransmitterIsIdentity(t *testing.T) {
	src := NewCube(4, 4, 8)
	for i := range src.Data {
		src.Data[i] = 1 + 1i
	}
	out, err := FoldTDM(src, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, src.Data, out.Data)
}

func TestFoldTDM_RejectsAntennaMismatch(t *testing.T) {
	_, err := FoldTDM(NewCube(2, 6, 4), 2, 4)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = FoldTDM(NewCube(2, 6, 4), 0, 6)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestCube_ReshapeSharesStorage(t *testing.T) {
	c := NewCube(4, 2, 3)
	r, err := c.Reshape(2, 4, 3)
	require.NoError(t, err)
	r.Set(1, 3, 2, 5i)
	assert.Equal(t, complex64(5i), c.Data[len(c.Data)-1])

	_, err = c.Reshape(3, 3, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	clone := c.Clone()
	clone.Data[0] = 1
	assert.Equal(t, complex64(0), c.Data[0])
}

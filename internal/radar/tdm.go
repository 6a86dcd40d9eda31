package radar

import "fmt"

// FoldTDM spreads transmit-multiplexed chirps across time so each
// transmitter keeps its own chirp cadence.
//
// The input has shape (C, nTx·nRx, S), where chirp c carries one chirp from
// every transmitter in antenna block [i·nRx, (i+1)·nRx). The output has shape
// (C·nTx, nTx·nRx, S) with transmitter i's block of source chirp c placed in
// chirp i + c·nTx. Every other cell is zero, so total energy is unchanged.
func FoldTDM(cube *Cube, nTx, nRx int) (*Cube, error) {
	if nTx <= 0 || nRx <= 0 {
		return nil, fmt.Errorf("%w: nTx=%d nRx=%d", ErrShapeMismatch, nTx, nRx)
	}
	if cube.Antennas != nTx*nRx {
		return nil, fmt.Errorf("%w: cube has %d antennas, want %d·%d", ErrShapeMismatch, cube.Antennas, nTx, nRx)
	}

	out := NewCube(cube.Chirps*nTx, cube.Antennas, cube.Samples)
	for i := 0; i < nTx; i++ {
		for c := 0; c < cube.Chirps; c++ {
			for r := 0; r < nRx; r++ {
				a := i*nRx + r
				copy(out.Row(i+c*nTx, a), cube.Row(c, a))
			}
		}
	}
	return out, nil
}

package radar

import "fmt"

// Cube is a dense complex radar cube indexed [chirp, antenna, sample] and
// stored row-major, so the sample axis is contiguous.
type Cube struct {
	Chirps   int
	Antennas int
	Samples  int
	Data     []complex64
}

// NewCube allocates a zeroed cube.
func NewCube(chirps, antennas, samples int) *Cube {
	return &Cube{
		Chirps:   chirps,
		Antennas: antennas,
		Samples:  samples,
		Data:     make([]complex64, chirps*antennas*samples),
	}
}

// CubeFromData wraps data without copying. The length must match the shape.
func CubeFromData(chirps, antennas, samples int, data []complex64) (*Cube, error) {
	if chirps <= 0 || antennas <= 0 || samples <= 0 || len(data) != chirps*antennas*samples {
		return nil, fmt.Errorf("%w: %d values for cube (%d, %d, %d)", ErrShapeMismatch, len(data), chirps, antennas, samples)
	}
	return &Cube{Chirps: chirps, Antennas: antennas, Samples: samples, Data: data}, nil
}

func (c *Cube) index(chirp, antenna, sample int) int {
	return (chirp*c.Antennas+antenna)*c.Samples + sample
}

// At returns the sample at [chirp, antenna, sample].
func (c *Cube) At(chirp, antenna, sample int) complex64 {
	return c.Data[c.index(chirp, antenna, sample)]
}

// Set stores v at [chirp, antenna, sample].
func (c *Cube) Set(chirp, antenna, sample int, v complex64) {
	c.Data[c.index(chirp, antenna, sample)] = v
}

// Row returns the contiguous sample slice for one chirp and antenna. The
// slice aliases the cube.
func (c *Cube) Row(chirp, antenna int) []complex64 {
	i := c.index(chirp, antenna, 0)
	return c.Data[i : i+c.Samples]
}

// Dims returns (chirps, antennas, samples).
func (c *Cube) Dims() (int, int, int) {
	return c.Chirps, c.Antennas, c.Samples
}

// Clone returns a deep copy.
func (c *Cube) Clone() *Cube {
	out := &Cube{Chirps: c.Chirps, Antennas: c.Antennas, Samples: c.Samples}
	out.Data = append([]complex64(nil), c.Data...)
	return out
}

// Reshape reinterprets the row-major buffer with a new shape without copying.
func (c *Cube) Reshape(chirps, antennas, samples int) (*Cube, error) {
	return CubeFromData(chirps, antennas, samples, c.Data)
}

// scaleAntenna multiplies every chirp and sample of one antenna by k.
func (c *Cube) scaleAntenna(antenna int, k complex64) {
	for ch := 0; ch < c.Chirps; ch++ {
		row := c.Row(ch, antenna)
		for s := range row {
			row[s] *= k
		}
	}
}

// Energy returns the sum of squared magnitudes over the whole cube.
func (c *Cube) Energy() float64 {
	var e float64
	for _, v := range c.Data {
		re, im := float64(real(v)), float64(imag(v))
		e += re*re + im*im
	}
	return e
}

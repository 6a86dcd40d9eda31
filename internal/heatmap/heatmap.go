// Package heatmap assembles angle-of-arrival heatmaps from radar cubes.
//
// Two projections are built: range-azimuth (Capon per range bin) and
// doppler-azimuth (Bartlett over clutter-removed doppler bins). Both are on a
// natural-log magnitude scale; Normalize and Resize turn them into a fixed
// [0, 1] raster for model input.
package heatmap

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidOptions reports builder options that do not fit the cube.
var ErrInvalidOptions = errors.New("heatmap: invalid options")

// Kind names the axes of a heatmap.
type Kind int

const (
	KindRangeAzimuth   Kind = iota + 1 // rows are range bins
	KindDopplerAzimuth                 // rows are zero-centred doppler bins
)

func (k Kind) String() string {
	switch k {
	case KindRangeAzimuth:
		return "range-azimuth"
	case KindDopplerAzimuth:
		return "doppler-azimuth"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Heatmap is a real 2D map with angle bins along the columns.
type Heatmap struct {
	Kind   Kind
	Values *mat.Dense
}

// Dims returns (rows, angle columns).
func (h *Heatmap) Dims() (int, int) { return h.Values.Dims() }

// At returns the value at row i, column j.
func (h *Heatmap) At(i, j int) float64 { return h.Values.At(i, j) }

// Peak returns the position and value of the largest element.
func (h *Heatmap) Peak() (row, col int, v float64) {
	r, c := h.Values.Dims()
	v = h.Values.At(0, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if x := h.Values.At(i, j); x > v {
				row, col, v = i, j, x
			}
		}
	}
	return row, col, v
}

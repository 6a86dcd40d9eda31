package heatmap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Bounds are optional explicit normalisation limits. A nil bound is taken
// from the heatmap itself.
type Bounds struct {
	Min *float64
	Max *float64
}

// Float64 returns a pointer to v, for building Bounds literals.
func Float64(v float64) *float64 { return &v }

// Normalize maps values to clip((v - min)/(max - min), 0, 1). The formula
// also applies when max < min. Equal bounds, or a NaN span, give all zeros.
func Normalize(h *Heatmap, b Bounds) *Heatmap {
	lo, hi := mat.Min(h.Values), mat.Max(h.Values)
	if b.Min != nil {
		lo = *b.Min
	}
	if b.Max != nil {
		hi = *b.Max
	}

	r, c := h.Values.Dims()
	out := mat.NewDense(r, c, nil)
	span := hi - lo
	if span == 0 || math.IsNaN(span) {
		return &Heatmap{Kind: h.Kind, Values: out}
	}
	out.Apply(func(_, _ int, v float64) float64 {
		v = (v - lo) / span
		switch {
		case v < 0:
			return 0
		case v > 1:
			return 1
		}
		return v
	}, h.Values)
	return &Heatmap{Kind: h.Kind, Values: out}
}

// Resize resamples the heatmap to rows × cols by area averaging: each output
// cell is the coverage-weighted mean of the input cells under its footprint.
// Downsizing therefore averages rather than aliases. Only overlapping input
// cells contribute, so a non-finite cell stays inside its own footprint.
func Resize(h *Heatmap, rows, cols int) (*Heatmap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: output raster %d×%d", ErrInvalidOptions, rows, cols)
	}
	inRows, inCols := h.Values.Dims()
	rowTaps := areaTaps(rows, inRows)
	colTaps := areaTaps(cols, inCols)

	// Rows first: tmp is rows × inCols.
	tmp := mat.NewDense(rows, inCols, nil)
	for i, taps := range rowTaps {
		dst := tmp.RawRowView(i)
		for _, tp := range taps {
			floats.AddScaled(dst, tp.w, h.Values.RawRowView(tp.idx))
		}
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src, dst := tmp.RawRowView(i), out.RawRowView(i)
		for j, taps := range colTaps {
			var v float64
			for _, tp := range taps {
				v += tp.w * src[tp.idx]
			}
			dst[j] = v
		}
	}
	return &Heatmap{Kind: h.Kind, Values: out}, nil
}

// areaTap is one input cell's share of an output cell.
type areaTap struct {
	idx int
	w   float64
}

// areaTaps returns, for each of out cells, the input cells overlapping its
// footprint and their normalised coverage weights.
func areaTaps(out, in int) [][]areaTap {
	taps := make([][]areaTap, out)
	scale := float64(in) / float64(out)
	for i := range taps {
		lo, hi := float64(i)*scale, float64(i+1)*scale
		first := int(math.Floor(lo))
		last := int(math.Ceil(hi))
		if last > in {
			last = in
		}
		var sum float64
		for p := first; p < last; p++ {
			if w := overlap(lo, hi, float64(p), float64(p+1)); w > 0 {
				taps[i] = append(taps[i], areaTap{idx: p, w: w})
				sum += w
			}
		}
		for k := range taps[i] {
			taps[i][k].w /= sum
		}
	}
	return taps
}

func overlap(a0, a1, b0, b1 float64) float64 {
	lo, hi := a0, a1
	if b0 > lo {
		lo = b0
	}
	if b1 < hi {
		hi = b1
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}

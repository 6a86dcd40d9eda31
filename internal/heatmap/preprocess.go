package heatmap

import "github.com/banshee-data/radarize/internal/radar"

// PreprocessOptions configures Preprocess.
type PreprocessOptions struct {
	Doppler DopplerAzimuthOptions
	Bounds  Bounds
	Rows    int
	Cols    int
}

// DefaultPreprocessOptions returns the model-input defaults: doppler-azimuth
// over every second range bin, normalised from a floor of 10 to the map's own
// maximum, resized to 48×48.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		Doppler: DefaultDopplerAzimuthOptions(),
		Bounds:  Bounds{Min: Float64(10)},
		Rows:    48,
		Cols:    48,
	}
}

// Preprocess turns a radar cube into a normalised, fixed-size
// doppler-azimuth raster.
func Preprocess(cube *radar.Cube, opts PreprocessOptions) (*Heatmap, error) {
	h, err := DopplerAzimuth(cube, opts.Doppler)
	if err != nil {
		return nil, err
	}
	return Resize(Normalize(h, opts.Bounds), opts.Rows, opts.Cols)
}

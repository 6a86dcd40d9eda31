package pipeline

import (
	"fmt"
	"time"

	"github.com/banshee-data/radarize/internal/config"
	"github.com/banshee-data/radarize/internal/dsp"
	"github.com/banshee-data/radarize/internal/heatmap"
	"github.com/banshee-data/radarize/internal/radar"
)

// Config holds everything a Processor needs to handle one frame.
type Config struct {
	Reshape      radar.ReshapeOptions
	TDMFold      bool
	Preprocess   heatmap.PreprocessOptions
	RangeAzimuth *heatmap.RangeAzimuthOptions // nil disables the range-azimuth map
	Workers      int

	// FrameDeadline drops results that took longer than this. Zero disables.
	FrameDeadline time.Duration
}

// DefaultConfig is the processor configuration with every tuning default.
func DefaultConfig() Config {
	return Config{
		Preprocess: heatmap.DefaultPreprocessOptions(),
		Workers:    4,
	}
}

// ConfigFromTuning builds a processor configuration from tuning values.
// A nil TuningConfig yields the defaults.
func ConfigFromTuning(t *config.TuningConfig) (Config, error) {
	if t == nil {
		t = config.EmptyTuningConfig()
	}
	if err := t.Validate(); err != nil {
		return Config{}, err
	}

	pc, err := radar.ParsePhaseCorrection(t.GetPhaseCorrection())
	if err != nil {
		return Config{}, err
	}

	normMin := t.GetNormalizeMin()
	cfg := Config{
		Reshape: radar.ReshapeOptions{PhaseCorrection: pc},
		TDMFold: t.GetTDMFold(),
		Preprocess: heatmap.PreprocessOptions{
			Doppler: heatmap.DopplerAzimuthOptions{
				AngleRange:       t.GetAngleRange(),
				AngleResolution:  t.GetAngleResolution(),
				RangeInitialBin:  t.GetRangeInitialBin(),
				RangeSubsampling: t.GetRangeSubsamplingFactor(),
			},
			Bounds: heatmap.Bounds{Min: &normMin, Max: t.NormalizeMax},
			Rows:   t.GetOutputRows(),
			Cols:   t.GetOutputCols(),
		},
		Workers:       t.GetWorkers(),
		FrameDeadline: t.GetFrameDeadline(),
	}

	if t.GetRangeAzimuth() {
		method := t.GetRangeAzimuthMethod()
		m, err := dsp.ParseMethod(method)
		if err != nil {
			return Config{}, fmt.Errorf("range_azimuth_method: %w", err)
		}
		if m != dsp.MethodCapon {
			return Config{}, fmt.Errorf("range_azimuth_method: %w: %q", dsp.ErrUnsupportedMethod, method)
		}
		cfg.RangeAzimuth = &heatmap.RangeAzimuthOptions{
			AngleRange:      t.GetAngleRange(),
			AngleResolution: t.GetAngleResolution(),
			Method:          method,
			Capon:           dsp.CaponOptions{MaxCondition: t.GetMaxCondition()},
		}
	}
	return cfg, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for heatmap processing.
// Every field is optional; the Get* methods supply the default for any
// field omitted from the JSON.
type TuningConfig struct {
	// Beamforming grid
	AngleRange      *float64 `json:"angle_range,omitempty"`      // degrees either side of boresight
	AngleResolution *float64 `json:"angle_resolution,omitempty"` // degrees per bin
	MaxCondition    *float64 `json:"max_condition,omitempty"`    // Capon covariance condition limit

	// Doppler-azimuth params
	RangeInitialBin        *int `json:"range_initial_bin,omitempty"`
	RangeSubsamplingFactor *int `json:"range_subsampling_factor,omitempty"`

	// Range-azimuth params (optional second output)
	RangeAzimuth       *bool   `json:"range_azimuth,omitempty"`
	RangeAzimuthMethod *string `json:"range_azimuth_method,omitempty"`

	// Output raster
	NormalizeMin *float64 `json:"normalize_min,omitempty"` // log-power floor, default 10
	NormalizeMax *float64 `json:"normalize_max,omitempty"` // omit to derive from each heatmap
	OutputRows   *int     `json:"output_rows,omitempty"`
	OutputCols   *int     `json:"output_cols,omitempty"`

	// Frame handling
	PhaseCorrection *string `json:"phase_correction,omitempty"` // "none", "ods" or "aop"
	TDMFold         *bool   `json:"tdm_fold,omitempty"`
	Workers         *int    `json:"workers,omitempty"`
	FrameDeadline   *string `json:"frame_deadline,omitempty"` // duration string like "100ms"; empty disables
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the Get* defaults. It matches config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	c := EmptyTuningConfig()
	return &TuningConfig{
		AngleRange:             ptrFloat64(c.GetAngleRange()),
		AngleResolution:        ptrFloat64(c.GetAngleResolution()),
		MaxCondition:           ptrFloat64(c.GetMaxCondition()),
		RangeInitialBin:        ptrInt(c.GetRangeInitialBin()),
		RangeSubsamplingFactor: ptrInt(c.GetRangeSubsamplingFactor()),
		RangeAzimuth:           ptrBool(c.GetRangeAzimuth()),
		RangeAzimuthMethod:     ptrString(c.GetRangeAzimuthMethod()),
		NormalizeMin:           ptrFloat64(c.GetNormalizeMin()),
		OutputRows:             ptrInt(c.GetOutputRows()),
		OutputCols:             ptrInt(c.GetOutputCols()),
		PhaseCorrection:        ptrString(c.GetPhaseCorrection()),
		TDMFold:                ptrBool(c.GetTDMFold()),
		Workers:                ptrInt(c.GetWorkers()),
		FrameDeadline:          ptrString(""),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/heatmap/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.AngleRange != nil && (*c.AngleRange < 0 || *c.AngleRange > 90) {
		return fmt.Errorf("angle_range must be between 0 and 90, got %f", *c.AngleRange)
	}
	if c.AngleResolution != nil && *c.AngleResolution <= 0 {
		return fmt.Errorf("angle_resolution must be positive, got %f", *c.AngleResolution)
	}
	if c.MaxCondition != nil && *c.MaxCondition <= 1 {
		return fmt.Errorf("max_condition must be greater than 1, got %g", *c.MaxCondition)
	}
	if c.RangeInitialBin != nil && *c.RangeInitialBin < 0 {
		return fmt.Errorf("range_initial_bin must be non-negative, got %d", *c.RangeInitialBin)
	}
	if c.RangeSubsamplingFactor != nil && *c.RangeSubsamplingFactor < 1 {
		return fmt.Errorf("range_subsampling_factor must be at least 1, got %d", *c.RangeSubsamplingFactor)
	}
	if c.NormalizeMax != nil && *c.NormalizeMax <= c.GetNormalizeMin() {
		return fmt.Errorf("normalize_max (%f) must exceed normalize_min (%f)", *c.NormalizeMax, c.GetNormalizeMin())
	}
	if c.OutputRows != nil && *c.OutputRows <= 0 {
		return fmt.Errorf("output_rows must be positive, got %d", *c.OutputRows)
	}
	if c.OutputCols != nil && *c.OutputCols <= 0 {
		return fmt.Errorf("output_cols must be positive, got %d", *c.OutputCols)
	}
	if c.PhaseCorrection != nil {
		switch strings.ToLower(*c.PhaseCorrection) {
		case "", "none", "ods", "aop":
		default:
			return fmt.Errorf("phase_correction must be one of none, ods, aop; got %q", *c.PhaseCorrection)
		}
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	// Validate FrameDeadline can be parsed if set
	if c.FrameDeadline != nil && *c.FrameDeadline != "" {
		if _, err := time.ParseDuration(*c.FrameDeadline); err != nil {
			return fmt.Errorf("invalid frame_deadline '%s': %w", *c.FrameDeadline, err)
		}
	}

	return nil
}

// GetAngleRange returns the angle_range value or the default.
func (c *TuningConfig) GetAngleRange() float64 {
	if c.AngleRange == nil {
		return 90
	}
	return *c.AngleRange
}

// GetAngleResolution returns the angle_resolution value or the default.
func (c *TuningConfig) GetAngleResolution() float64 {
	if c.AngleResolution == nil {
		return 1
	}
	return *c.AngleResolution
}

// GetMaxCondition returns the max_condition value or the default.
func (c *TuningConfig) GetMaxCondition() float64 {
	if c.MaxCondition == nil {
		return 1e12
	}
	return *c.MaxCondition
}

// GetRangeInitialBin returns the range_initial_bin value or the default.
func (c *TuningConfig) GetRangeInitialBin() int {
	if c.RangeInitialBin == nil {
		return 0
	}
	return *c.RangeInitialBin
}

// GetRangeSubsamplingFactor returns the range_subsampling_factor value or the default.
func (c *TuningConfig) GetRangeSubsamplingFactor() int {
	if c.RangeSubsamplingFactor == nil {
		return 2
	}
	return *c.RangeSubsamplingFactor
}

// GetRangeAzimuth reports whether range-azimuth maps are also built.
func (c *TuningConfig) GetRangeAzimuth() bool {
	if c.RangeAzimuth == nil {
		return false
	}
	return *c.RangeAzimuth
}

// GetRangeAzimuthMethod returns the range_azimuth_method value or the default.
func (c *TuningConfig) GetRangeAzimuthMethod() string {
	if c.RangeAzimuthMethod == nil || *c.RangeAzimuthMethod == "" {
		return "capon"
	}
	return *c.RangeAzimuthMethod
}

// GetNormalizeMin returns the normalize_min value or the default.
func (c *TuningConfig) GetNormalizeMin() float64 {
	if c.NormalizeMin == nil {
		return 10
	}
	return *c.NormalizeMin
}

// GetOutputRows returns the output_rows value or the default.
func (c *TuningConfig) GetOutputRows() int {
	if c.OutputRows == nil {
		return 48
	}
	return *c.OutputRows
}

// GetOutputCols returns the output_cols value or the default.
func (c *TuningConfig) GetOutputCols() int {
	if c.OutputCols == nil {
		return 48
	}
	return *c.OutputCols
}

// GetPhaseCorrection returns the phase_correction value or the default.
func (c *TuningConfig) GetPhaseCorrection() string {
	if c.PhaseCorrection == nil || *c.PhaseCorrection == "" {
		return "none"
	}
	return *c.PhaseCorrection
}

// GetTDMFold returns the tdm_fold value or the default.
func (c *TuningConfig) GetTDMFold() bool {
	if c.TDMFold == nil {
		return false
	}
	return *c.TDMFold
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 4
	}
	return *c.Workers
}

// GetFrameDeadline parses and returns the FrameDeadline as a time.Duration.
// Zero means frames are never dropped for lateness.
func (c *TuningConfig) GetFrameDeadline() time.Duration {
	if c.FrameDeadline == nil || *c.FrameDeadline == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.FrameDeadline)
	if err != nil {
		return 0 // disabled on parse error
	}
	return d
}

// Package radar owns the raw FMCW frame model and the radar cube.
//
// Responsibilities: validating frames from the sensor transport, combining
// interleaved ADC samples into complex values, antenna errata correction,
// per-virtual-antenna calibration and TDM-MIMO virtual array folding.
// Key types: Frame, Cube, Variant, PhaseCorrection.
//
// Dependency rule: radar depends on nothing else in this module. Beamforming
// lives in internal/dsp and heatmap assembly in internal/heatmap.
package radar

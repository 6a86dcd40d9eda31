// Package pipeline turns recorded radar frames into model-ready heatmaps.
//
// A Processor wires the radar, dsp and heatmap packages together: each frame
// is reshaped (optionally TDM-folded), converted to a normalised
// doppler-azimuth raster and, when enabled, a Capon range-azimuth map.
// Batches run on a bounded worker pool; frames that fail or overrun the
// configured deadline are logged and dropped rather than aborting the run.
package pipeline

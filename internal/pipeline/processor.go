package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/radarize/internal/heatmap"
	"github.com/banshee-data/radarize/internal/monitoring"
	"github.com/banshee-data/radarize/internal/radar"
	"github.com/banshee-data/radarize/internal/timeutil"
)

// ErrFrameDeadline marks a frame whose processing overran Config.FrameDeadline.
var ErrFrameDeadline = errors.New("pipeline: frame exceeded deadline")

// Result is the output for one frame.
type Result struct {
	Index        int
	Doppler      *heatmap.Heatmap // normalised, resized doppler-azimuth raster
	RangeAzimuth *heatmap.Heatmap // nil unless enabled
	Elapsed      time.Duration
}

// Summary describes one ProcessBatch run.
type Summary struct {
	RunID     string
	Results   []*Result // in input order; nil where the frame was dropped
	Processed int
	Failed    int
	Late      int
	Elapsed   time.Duration
}

// Dropped returns the number of frames without a result.
func (s *Summary) Dropped() int { return s.Failed + s.Late }

// Processor converts frames to heatmaps. It is safe for concurrent use.
type Processor struct {
	cfg   Config
	clock timeutil.Clock
}

// NewProcessor returns a Processor using the real clock.
func NewProcessor(cfg Config) *Processor {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Processor{cfg: cfg, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for deadlines and timings.
func (p *Processor) SetClock(c timeutil.Clock) {
	if c == nil {
		c = timeutil.RealClock{}
	}
	p.clock = c
}

// Config returns the processor configuration.
func (p *Processor) Config() Config { return p.cfg }

// Process runs a single frame through reshape, preprocessing and the
// optional range-azimuth map.
func (p *Processor) Process(index int, f *radar.Frame) (*Result, error) {
	start := p.clock.Now()

	var (
		cube *radar.Cube
		err  error
	)
	if p.cfg.TDMFold {
		cube, err = radar.ReshapeTDM(f, p.cfg.Reshape)
	} else {
		cube, err = radar.Reshape(f, p.cfg.Reshape)
	}
	if err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}

	res := &Result{Index: index}
	if res.Doppler, err = heatmap.Preprocess(cube, p.cfg.Preprocess); err != nil {
		return nil, fmt.Errorf("doppler-azimuth: %w", err)
	}
	if p.cfg.RangeAzimuth != nil {
		if res.RangeAzimuth, err = heatmap.RangeAzimuth(cube, *p.cfg.RangeAzimuth); err != nil {
			return nil, fmt.Errorf("range-azimuth: %w", err)
		}
	}

	res.Elapsed = p.clock.Since(start)
	if d := p.cfg.FrameDeadline; d > 0 && res.Elapsed > d {
		return nil, fmt.Errorf("%w: took %v, limit %v", ErrFrameDeadline, res.Elapsed, d)
	}
	return res, nil
}

// ProcessBatch processes frames on up to Config.Workers goroutines. Frames
// that fail or run late are logged and dropped; the only error returned is
// the context's, in which case the summary covers the frames finished so far.
func (p *Processor) ProcessBatch(ctx context.Context, frames []*radar.Frame) (*Summary, error) {
	sum := &Summary{
		RunID:   uuid.NewString(),
		Results: make([]*Result, len(frames)),
	}
	start := p.clock.Now()
	monitoring.Logf("[pipeline] run %s: processing %d frames with %d workers", sum.RunID, len(frames), p.cfg.Workers)

	var processed, failed, late atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, f := range frames {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := p.Process(i, f)
			switch {
			case errors.Is(err, ErrFrameDeadline):
				late.Add(1)
				monitoring.Logf("[pipeline] run %s: dropping late frame %d: %v", sum.RunID, i, err)
			case err != nil:
				failed.Add(1)
				monitoring.Logf("[pipeline] run %s: dropping frame %d: %v", sum.RunID, i, err)
			default:
				processed.Add(1)
				sum.Results[i] = r
				row, col, v := r.Doppler.Peak()
				monitoring.Debugf("[pipeline] run %s: frame %d peak (%d,%d)=%.3f in %v", sum.RunID, i, row, col, v, r.Elapsed)
			}
			return nil
		})
	}
	err := g.Wait()

	sum.Processed = int(processed.Load())
	sum.Failed = int(failed.Load())
	sum.Late = int(late.Load())
	sum.Elapsed = p.clock.Since(start)
	monitoring.Logf("[pipeline] run %s: %d processed, %d failed, %d late in %v",
		sum.RunID, sum.Processed, sum.Failed, sum.Late, sum.Elapsed)
	if err != nil {
		return sum, fmt.Errorf("run %s: %w", sum.RunID, err)
	}
	return sum, nil
}

// Command heatmap replays recorded radar frames through the heatmap
// pipeline and logs a summary of every frame.
//
// Frames come from a JSON-lines capture (-frames), a session stored in a
// SQLite capture database (-db -session), or both with -import, which
// stores the capture as a new session before processing it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/radarize/internal/config"
	"github.com/banshee-data/radarize/internal/framestore"
	"github.com/banshee-data/radarize/internal/monitoring"
	"github.com/banshee-data/radarize/internal/pipeline"
	"github.com/banshee-data/radarize/internal/radar"
	"github.com/banshee-data/radarize/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to tuning JSON (defaults apply when empty)")
	framesPath  = flag.String("frames", "", "JSON-lines capture to process")
	dbPath      = flag.String("db", "", "SQLite capture database")
	sessionID   = flag.String("session", "", "Session in -db to process")
	importFlag  = flag.Bool("import", false, "Store -frames in -db as a new session before processing")
	listFlag    = flag.Bool("list", false, "List sessions in -db and exit")
	workers     = flag.Int("workers", 0, "Worker goroutines (0 uses the config value)")
	debugFlag   = flag.Bool("debug", false, "Log per-frame details")
	versionFlag = flag.Bool("version", false, "Print version and exit")
)

type options struct {
	ConfigPath string
	FramesPath string
	DBPath     string
	SessionID  string
	Import     bool
	List       bool
	Workers    int
}

var errNoInput = errors.New("nothing to process: set -frames or -db with -session")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.String())
		return
	}
	monitoring.SetDebug(*debugFlag)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		ConfigPath: *configPath,
		FramesPath: *framesPath,
		DBPath:     *dbPath,
		SessionID:  *sessionID,
		Import:     *importFlag,
		List:       *listFlag,
		Workers:    *workers,
	}
	if err := run(ctx, opts); err != nil {
		log.Fatalf("heatmap: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	tuning := config.EmptyTuningConfig()
	if opts.ConfigPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(opts.ConfigPath); err != nil {
			return err
		}
	}
	cfg, err := pipeline.ConfigFromTuning(tuning)
	if err != nil {
		return err
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}

	var store *framestore.Store
	if opts.DBPath != "" {
		if store, err = framestore.Open(opts.DBPath); err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer store.Close()
	}

	if opts.List {
		if store == nil {
			return errors.New("-list requires -db")
		}
		return listSessions(ctx, store)
	}

	frames, err := loadFrames(ctx, store, opts)
	if err != nil {
		return err
	}

	sum, err := pipeline.NewProcessor(cfg).ProcessBatch(ctx, frames)
	if sum != nil {
		logSummary(sum)
	}
	return err
}

func loadFrames(ctx context.Context, store *framestore.Store, opts options) ([]*radar.Frame, error) {
	switch {
	case opts.FramesPath != "":
		f, err := os.Open(opts.FramesPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		frames, err := framestore.ReadJSONLines(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", opts.FramesPath, err)
		}
		if opts.Import {
			if store == nil {
				return nil, errors.New("-import requires -db")
			}
			session, err := store.Import(ctx, frames, time.Now())
			if err != nil {
				return nil, err
			}
			log.Printf("stored %d frames as session %s", len(frames), session)
		}
		return frames, nil

	case store != nil && opts.SessionID != "":
		recs, err := store.SessionFrames(ctx, opts.SessionID)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, fmt.Errorf("session %s has no frames", opts.SessionID)
		}
		frames := make([]*radar.Frame, len(recs))
		for i, r := range recs {
			frames[i] = r.Frame
		}
		return frames, nil
	}
	return nil, errNoInput
}

func listSessions(ctx context.Context, store *framestore.Store) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Printf("%s\t%d frames\t%s .. %s\n", s.ID, s.Frames,
			s.First.Format(time.RFC3339), s.Last.Format(time.RFC3339))
	}
	return nil
}

func logSummary(sum *pipeline.Summary) {
	for _, r := range sum.Results {
		if r == nil {
			continue
		}
		row, col, v := r.Doppler.Peak()
		line := fmt.Sprintf("frame %d: doppler-azimuth peak (%d,%d)=%.3f", r.Index, row, col, v)
		if r.RangeAzimuth != nil {
			rr, rc, rv := r.RangeAzimuth.Peak()
			line += fmt.Sprintf(", range-azimuth peak (%d,%d)=%.3f", rr, rc, rv)
		}
		log.Print(line)
	}
	log.Printf("run %s: %d processed, %d dropped in %v", sum.RunID, sum.Processed, sum.Dropped(), sum.Elapsed)
}

package framestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/radarize/internal/radar"
)

// ReadJSONLines decodes a stream of JSON frame objects, one per line as
// written by the capture recorder. Frames are not validated here.
func ReadJSONLines(r io.Reader) ([]*radar.Frame, error) {
	dec := json.NewDecoder(r)
	var frames []*radar.Frame
	for {
		var f radar.Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", len(frames), err)
		}
		frames = append(frames, &f)
	}
}

// WriteJSONLines writes frames as newline-delimited JSON.
func WriteJSONLines(w io.Writer, frames []*radar.Frame) error {
	enc := json.NewEncoder(w)
	for i, f := range frames {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}

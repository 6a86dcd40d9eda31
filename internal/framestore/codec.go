package framestore

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
)

// encodeSamples compresses ADC samples using gob encoding and gzip compression.
func encodeSamples(data []float64) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(data); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeSamples decompresses and decodes ADC samples from a gob+gzip blob.
func decodeSamples(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty sample blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var data []float64
	if err := gob.NewDecoder(gz).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	return data, nil
}

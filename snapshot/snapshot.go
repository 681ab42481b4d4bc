// Package snapshot saves and loads whole particle datasets
// (coordinates and masses) as zlib-compressed gob streams, so a large
// generated dataset can be reused across benchmark runs without
// regenerating it. A benchmark dataset is a single unchanging blob,
// so there's just one encode/decode pair rather than a bucketed
// stream of frames.
package snapshot

import (
	"compress/zlib"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// Dataset is the on-disk representation of a particle set.
type Dataset struct {
	X, Y, Z, Mass []float64
}

// Save writes d to path as a zlib-compressed gob stream.
func Save(path string, d Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	defer file.Close()

	zw := zlib.NewWriter(file)
	if err := gob.NewEncoder(zw).Encode(d); err != nil {
		zw.Close()
		return fmt.Errorf("snapshot: encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("snapshot: flush %s: %w", path, err)
	}
	return nil
}

// Load reads a Dataset previously written by Save.
func Load(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer file.Close()

	zr, err := zlib.NewReader(file)
	if err != nil {
		return Dataset{}, fmt.Errorf("snapshot: decompress %s: %w", path, err)
	}
	defer zr.Close()

	var d Dataset
	if err := gob.NewDecoder(zr).Decode(&d); err != nil && err != io.EOF {
		return Dataset{}, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	return d, nil
}

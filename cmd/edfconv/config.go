package main

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	formatCSV   = "csv"
	formatStore = "store"
)

// config holds the command line. Conversion parameters live in the file
// named by configPath.
type config struct {
	// Directory of recordings for check and convert
	dir string
	// File to inspect
	file string
	// Conversion parameter file. Empty falls back to $EDFCONV_CONFIG
	configPath string
	// Output format, csv or store
	format string
	// Where converted files are written
	outDir string
	// Number of files converted at once. 1 runs sequentially
	workers int
	// Skip the pre-flight read of every file
	skipCheck bool
	// Seconds of signal summarised by inspect
	inspectSeconds float64
	// Log at debug level
	verbose bool
	// Log as JSON
	jsonLog bool
}

func newZeroConfig() config {
	return config{
		format:         formatCSV,
		outDir:         "out",
		workers:        1,
		inspectSeconds: 30,
	}
}

func (cfg *config) validate() error {
	switch cfg.format {
	case formatCSV, formatStore:
	default:
		return fmt.Errorf("unknown format %q (csv or store)", cfg.format)
	}

	if cfg.workers < 1 {
		return errors.New("too few workers (1 min)")
	}

	if cfg.inspectSeconds <= 0 {
		return errors.New("inspect length must be positive")
	}

	if cfg.outDir == "" {
		return errors.New("no output directory")
	}

	return nil
}

// Package config loads conversion parameters from a JSON or YAML file.
//
// A file must set fs, new_fs, win and scale. filter is optional:
//
//	{"fs": 100, "new_fs": 10, "win": 30, "scale": 1000000}
package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/noriah/edfconv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is used when neither a flag nor EnvPath names a file.
	DefaultPath = "config.json"
	// EnvPath is the environment variable that overrides DefaultPath.
	EnvPath = "EDFCONV_CONFIG"
)

// Format of a configuration file.
type Format int

const (
	JSON Format = iota
	YAML
)

// File is the on-disk layout. Pointers tell missing keys from zero values.
type File struct {
	SampleRate *float64 `json:"fs" yaml:"fs"`
	TargetRate *float64 `json:"new_fs" yaml:"new_fs"`
	Window     *float64 `json:"win" yaml:"win"`
	Scale      *float64 `json:"scale" yaml:"scale"`
	Filter     string   `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Path picks the configuration file: flag if set, then $EDFCONV_CONFIG, then
// DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// FormatOf guesses the format from the file extension. Anything that is not
// .yaml or .yml is read as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (edfconv.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return edfconv.Config{}, errors.Wrap(err, "failed to read config")
	}

	cfg, err := Parse(data, FormatOf(path))
	if err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}

	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte, format Format) (edfconv.Config, error) {
	var f File

	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		// an empty document leaves every key missing
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return edfconv.Config{}, errors.Wrap(err, "failed to parse yaml")
		}
		if err := dec.Decode(new(yaml.Node)); err != io.EOF {
			return edfconv.Config{}, errors.New("failed to parse yaml: more than one document")
		}

	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()

		if err := dec.Decode(&f); err != nil {
			return edfconv.Config{}, errors.Wrap(err, "failed to parse json")
		}
		if _, err := dec.Token(); err != io.EOF {
			return edfconv.Config{}, errors.New("failed to parse json: trailing data after object")
		}
	}

	return f.Config()
}

// Config converts f, failing with ErrInvalidParameter when a required key is
// missing or a value is out of range.
func (f File) Config() (edfconv.Config, error) {
	var missing []string

	for _, key := range []struct {
		name string
		v    *float64
	}{
		{"fs", f.SampleRate},
		{"new_fs", f.TargetRate},
		{"win", f.Window},
		{"scale", f.Scale},
	} {
		if key.v == nil {
			missing = append(missing, key.name)
		}
	}

	if len(missing) > 0 {
		return edfconv.Config{}, errors.Wrapf(edfconv.ErrInvalidParameter,
			"missing keys: %s", strings.Join(missing, ", "))
	}

	cfg := edfconv.NewZeroConfig()
	cfg.SampleRate = *f.SampleRate
	cfg.TargetRate = *f.TargetRate
	cfg.Window = *f.Window
	cfg.Scale = *f.Scale

	if f.Filter != "" {
		cfg.Filter = f.Filter
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

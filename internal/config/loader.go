package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Loader reads Config values from TOML sources.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a loader backed by the OS file system.
func NewLoader() *Loader {
	return &Loader{fs: DefaultFS()}
}

// NewLoaderWithFS creates a loader with a custom file system.
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads configuration from path. A missing file is not an error;
// the built-in defaults are returned. Keys absent from the file keep
// their default values.
func (l *Loader) Load(path string) (Config, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return l.parse(path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *Loader) LoadFromReader(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	return l.parse("<reader>", data)
}

// parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected.
func (l *Loader) parse(source string, data []byte) (Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, newParseError(source, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", source, err)
	}

	return cfg, nil
}

// Load reads configuration from path using the OS file system.
func Load(path string) (Config, error) {
	return NewLoader().Load(path)
}

// newParseError wraps a go-toml decoding failure, extracting the
// document position when the error carries one.
func newParseError(source string, err error) *ParseError {
	perr := &ParseError{Path: source, Message: err.Error(), Err: err}

	var decodeErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decodeErr):
		perr.Line, perr.Column = decodeErr.Position()
	case errors.As(err, &strictErr) && len(strictErr.Errors) > 0:
		first := &strictErr.Errors[0]
		perr.Line, perr.Column = first.Position()
		if key := first.Key(); len(key) > 0 {
			perr.Message = fmt.Sprintf("unknown key %q", strings.Join(key, "."))
		}
	}

	return perr
}

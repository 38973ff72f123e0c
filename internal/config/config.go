// Package config loads and validates the Twine configuration file.
//
// Twine uses TOML as its configuration format:
//
//	# ~/.config/twine/config.toml
//	[editor]
//	history_limit = 1000
//	batch_capacity = 256
//	line_ending = "auto"
//
//	[log]
//	level = "info"
//
//	[script]
//	paths = ["~/.config/twine/init.lua"]
//	timeout_ms = 5000
//	capabilities = ["buffer"]
//
// A missing configuration file is not an error; Load returns the
// built-in defaults. Unknown keys and invalid values are errors, so a
// typo in the file surfaces at startup instead of being ignored.
package config

import (
	"fmt"
	"time"
)

// Line ending values accepted by EditorConfig.LineEnding.
const (
	LineEndingAuto = "auto"
	LineEndingLF   = "lf"
	LineEndingCRLF = "crlf"
	LineEndingCR   = "cr"
)

// Log level values accepted by LogConfig.Level.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Capability values accepted by ScriptConfig.Capabilities.
const (
	CapabilityBuffer = "buffer"
	CapabilityFiles  = "files"
)

// Config holds all Twine settings.
type Config struct {
	Editor EditorConfig `toml:"editor"`
	Log    LogConfig    `toml:"log"`
	Script ScriptConfig `toml:"script"`
}

// EditorConfig holds buffer and editing settings.
type EditorConfig struct {
	// HistoryLimit bounds the undo stack per buffer.
	HistoryLimit int `toml:"history_limit"`

	// BatchCapacity is the number of bytes of contiguous typing a
	// buffer stages before committing automatically.
	BatchCapacity int `toml:"batch_capacity"`

	// LineEnding selects the line ending for inserted text
	// ("auto", "lf", "crlf", "cr"). "auto" detects it from file content.
	LineEnding string `toml:"line_ending"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the logging verbosity ("debug", "info", "warn", "error").
	Level string `toml:"level"`
}

// ScriptConfig holds Lua scripting settings.
type ScriptConfig struct {
	// Paths lists scripts to run at startup, in order.
	Paths []string `toml:"paths"`

	// TimeoutMS bounds a single script execution in milliseconds.
	// Zero disables the timeout.
	TimeoutMS int `toml:"timeout_ms"`

	// Capabilities lists the capabilities granted to scripts
	// ("buffer", "files").
	Capabilities []string `toml:"capabilities"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			HistoryLimit:  1000,
			BatchCapacity: 256,
			LineEnding:    LineEndingAuto,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
		Script: ScriptConfig{
			TimeoutMS:    5000,
			Capabilities: []string{CapabilityBuffer},
		},
	}
}

// Timeout returns TimeoutMS as a duration. Zero means no timeout.
func (sc ScriptConfig) Timeout() time.Duration {
	if sc.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(sc.TimeoutMS) * time.Millisecond
}

// Validate checks all settings and returns the first violation found.
func (c Config) Validate() error {
	if c.Editor.HistoryLimit <= 0 {
		return fmt.Errorf("%w: editor.history_limit must be positive, got %d",
			ErrInvalidValue, c.Editor.HistoryLimit)
	}
	if c.Editor.BatchCapacity <= 0 {
		return fmt.Errorf("%w: editor.batch_capacity must be positive, got %d",
			ErrInvalidValue, c.Editor.BatchCapacity)
	}
	switch c.Editor.LineEnding {
	case LineEndingAuto, LineEndingLF, LineEndingCRLF, LineEndingCR:
	default:
		return fmt.Errorf("%w: editor.line_ending must be one of auto, lf, crlf, cr; got %q",
			ErrInvalidValue, c.Editor.LineEnding)
	}
	switch c.Log.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("%w: log.level must be one of debug, info, warn, error; got %q",
			ErrInvalidValue, c.Log.Level)
	}
	if c.Script.TimeoutMS < 0 {
		return fmt.Errorf("%w: script.timeout_ms must not be negative, got %d",
			ErrInvalidValue, c.Script.TimeoutMS)
	}
	for _, capability := range c.Script.Capabilities {
		switch capability {
		case CapabilityBuffer, CapabilityFiles:
		default:
			return fmt.Errorf("%w: script.capabilities contains unknown capability %q",
				ErrInvalidValue, capability)
		}
	}
	return nil
}

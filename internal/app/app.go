package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/twine/internal/config"
	"github.com/dshills/twine/internal/engine/buffer"
	"github.com/dshills/twine/internal/script/api"
	"github.com/dshills/twine/internal/script/lua"
	"github.com/dshills/twine/internal/textio"
)

// Editor is the central coordinator: it owns the open buffers, the
// message sink, and the scripting engine. All methods are safe for
// concurrent use.
type Editor struct {
	mu  sync.RWMutex
	cfg config.Config

	buffers map[string]*bufferEntry
	order   []string // open order, for listing and rotation
	current string

	sink     io.Writer
	logger   *Logger
	engine   *lua.Engine
	readOnly bool
}

// bufferEntry pairs a buffer with what the file loader detected, so
// saving can reproduce the BOM.
type bufferEntry struct {
	buf  *buffer.Buffer
	info textio.Info
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithSink sets the writer that receives user-visible messages,
// including script output. Defaults to io.Discard.
func WithSink(w io.Writer) EditorOption {
	return func(e *Editor) {
		if w != nil {
			e.sink = w
		}
	}
}

// WithLogger sets the editor's logger.
func WithLogger(l *Logger) EditorOption {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithReadOnly opens all buffers read-only.
func WithReadOnly() EditorOption {
	return func(e *Editor) {
		e.readOnly = true
	}
}

// NewEditor creates an editor from a validated configuration, wires
// up the scripting engine, and opens an empty scratch buffer.
func NewEditor(cfg config.Config, opts ...EditorOption) (*Editor, error) {
	ed := &Editor{
		cfg:     cfg,
		buffers: make(map[string]*bufferEntry),
		sink:    io.Discard,
		logger:  GetLogger().WithComponent("editor"),
	}
	for _, opt := range opts {
		opt(ed)
	}

	caps := make([]api.Capability, 0, len(cfg.Script.Capabilities))
	canFiles := false
	for _, name := range cfg.Script.Capabilities {
		c := api.Capability(name)
		caps = append(caps, c)
		if c == api.CapabilityFiles {
			canFiles = true
		}
	}

	ctx := &api.Context{
		Buffer: &bufferProvider{ed: ed},
		Editor: &editorProvider{ed: ed, canFiles: canFiles},
	}
	engine, err := lua.NewEngine(ctx,
		lua.WithCapabilities(caps...),
		lua.WithTimeout(cfg.Script.Timeout()),
		lua.WithOutput(ed.sink),
	)
	if err != nil {
		return nil, &InitError{Component: "script engine", Err: err}
	}
	ed.engine = engine

	ed.NewScratch()
	return ed, nil
}

// Close releases the scripting engine. The editor must not be used
// afterwards.
func (e *Editor) Close() error {
	return e.engine.Close()
}

// Config returns the editor's configuration.
func (e *Editor) Config() config.Config {
	return e.cfg
}

// Logger returns the editor's logger.
func (e *Editor) Logger() *Logger {
	return e.logger
}

// Engine returns the scripting engine.
func (e *Editor) Engine() *lua.Engine {
	return e.engine
}

// Send writes a user-visible message line to the sink. Script output
// arrives here too, so redirecting the sink redirects both.
func (e *Editor) Send(text string) {
	e.mu.RLock()
	w := e.sink
	e.mu.RUnlock()
	fmt.Fprintln(w, text)
}

// SetSink redirects user-visible messages and script output.
// A nil writer discards them.
func (e *Editor) SetSink(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	e.mu.Lock()
	e.sink = w
	e.mu.Unlock()
	e.engine.SetOutput(w)
}

// RunStartupScripts executes the configured startup scripts in order,
// stopping at the first failure.
func (e *Editor) RunStartupScripts() error {
	paths := make([]string, 0, len(e.cfg.Script.Paths))
	for _, p := range e.cfg.Script.Paths {
		paths = append(paths, expandHome(p))
	}
	if len(paths) > 0 {
		e.logger.Debug("running %d startup scripts", len(paths))
	}
	return e.engine.RunFiles(paths)
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

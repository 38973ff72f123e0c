package lua

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/twine/internal/script/api"
)

// Engine ties a sandboxed State to the editor API modules and the
// output sink. All user-visible script output, including print, goes
// through the sink; scripts never write to stdout directly.
type Engine struct {
	state    *State
	registry *api.Registry

	mu  sync.Mutex
	out io.Writer
}

type engineConfig struct {
	stateOpts    []StateOption
	capabilities []api.Capability
	out          io.Writer
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithCapabilities grants capabilities to the script environment.
// Granted capabilities decide which API modules are injected and, for
// the files capability, whether scripts may open and save files.
func WithCapabilities(caps ...api.Capability) EngineOption {
	return func(c *engineConfig) {
		c.capabilities = append(c.capabilities, caps...)
	}
}

// WithOutput sets the sink for script output. Defaults to io.Discard.
func WithOutput(w io.Writer) EngineOption {
	return func(c *engineConfig) {
		c.out = w
	}
}

// WithTimeout sets the per-execution budget.
func WithTimeout(d time.Duration) EngineOption {
	return func(c *engineConfig) {
		c.stateOpts = append(c.stateOpts, WithExecutionTimeout(d))
	}
}

// NewEngine creates a script engine over the given editor context.
func NewEngine(ctx *api.Context, opts ...EngineOption) (*Engine, error) {
	cfg := engineConfig{out: io.Discard}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.out == nil {
		cfg.out = io.Discard
	}

	state, err := NewState(cfg.stateOpts...)
	if err != nil {
		return nil, err
	}

	for _, cap := range cfg.capabilities {
		state.Sandbox().Grant(cap)
	}

	registry, err := api.DefaultRegistry(ctx)
	if err != nil {
		state.Close()
		return nil, err
	}

	if err := registry.InjectAll(state.L, state.Sandbox()); err != nil {
		state.Close()
		return nil, err
	}

	e := &Engine{
		state:    state,
		registry: registry,
		out:      cfg.out,
	}
	e.installPrint()

	return e, nil
}

// installPrint points Lua's print at the engine sink. The closure
// reads the sink through the engine so SetOutput takes effect without
// reinstalling.
func (e *Engine) installPrint() {
	L := e.state.L
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		parts := make([]string, 0, top)
		for i := 1; i <= top; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(e.Output(), strings.Join(parts, "\t"))
		return 0
	}))
}

// SetOutput redirects script output to w. A nil writer discards
// output.
func (e *Engine) SetOutput(w io.Writer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	e.out = w
}

// Output returns the current script output sink.
func (e *Engine) Output() io.Writer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out
}

// DoString executes Lua code.
func (e *Engine) DoString(code string) error {
	return e.state.DoString(code)
}

// DoFile executes a Lua file.
func (e *Engine) DoFile(path string) error {
	return e.state.DoFile(path)
}

// RunFiles executes script files in order, stopping at the first
// failure.
func (e *Engine) RunFiles(paths []string) error {
	for _, path := range paths {
		if err := e.DoFile(path); err != nil {
			return fmt.Errorf("script %s: %w", path, err)
		}
	}
	return nil
}

// Call calls a global Lua function defined by a previously executed
// script.
func (e *Engine) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	return e.state.Call(fn, args...)
}

// HasCapability reports whether the script environment holds the
// capability.
func (e *Engine) HasCapability(cap api.Capability) bool {
	return e.state.Sandbox().HasCapability(cap)
}

// Close releases the underlying Lua state.
func (e *Engine) Close() error {
	return e.state.Close()
}

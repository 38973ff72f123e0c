package api

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Capability represents a permission a script environment can grant.
type Capability string

// Capabilities gating API modules and operations.
const (
	// CapabilityBuffer grants buffer read and write access.
	CapabilityBuffer Capability = "buffer"

	// CapabilityFiles grants opening and saving files through the
	// editor module.
	CapabilityFiles Capability = "files"
)

// CapabilityChecker reports which capabilities the current script
// environment holds. The lua sandbox implements it.
type CapabilityChecker interface {
	HasCapability(cap Capability) bool
}

// Module is a Lua API module that can be registered with the script
// engine.
type Module interface {
	// Name returns the module name (e.g., "buf", "ed", "util").
	Name() string

	// RequiredCapability returns the capability required to use this
	// module, or "" if none is required.
	RequiredCapability() Capability

	// Register installs the module functions into the Lua state under
	// a _tw_<name> global.
	Register(L *lua.LState) error
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}

	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns all registered module names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	return names
}

// InjectAll registers every module the checker permits into the Lua
// state and installs the tw loader. Modules whose capability is not
// granted are skipped, not errors; a nil checker admits only modules
// that require no capability.
func (r *Registry) InjectAll(L *lua.LState, checker CapabilityChecker) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, mod := range r.modules {
		reqCap := mod.RequiredCapability()
		if reqCap != "" {
			if checker == nil || !checker.HasCapability(reqCap) {
				continue
			}
		}

		if err := mod.Register(L); err != nil {
			return fmt.Errorf("register module %q: %w", name, err)
		}
	}

	return installTwLoader(L)
}

// Inject registers the named modules. Unlike InjectAll it treats a
// missing capability as an error.
func (r *Registry) Inject(L *lua.LState, checker CapabilityChecker, moduleNames ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range moduleNames {
		mod, ok := r.modules[name]
		if !ok {
			return fmt.Errorf("module %q not found", name)
		}

		reqCap := mod.RequiredCapability()
		if reqCap != "" {
			if checker == nil || !checker.HasCapability(reqCap) {
				return fmt.Errorf("capability %q required for module %q", reqCap, name)
			}
		}

		if err := mod.Register(L); err != nil {
			return fmt.Errorf("register module %q: %w", name, err)
		}
	}

	return installTwLoader(L)
}

// Version reported to scripts through tw.version.
const apiVersion = "0.1.0"

// installTwLoader collects the _tw_* globals into one table and
// preloads it so scripts can require("tw").
func installTwLoader(L *lua.LState) error {
	twModule := L.NewTable()

	moduleNames := []string{"buf", "ed", "util"}
	for _, name := range moduleNames {
		globalName := "_tw_" + name
		val := L.GetGlobal(globalName)
		if val != lua.LNil {
			L.SetField(twModule, name, val)
			L.SetGlobal(globalName, lua.LNil)
		}
	}

	L.SetField(twModule, "version", lua.LString(apiVersion))

	L.PreloadModule("tw", func(L *lua.LState) int {
		L.Push(twModule)
		return 1
	})

	return nil
}

// DefaultRegistry creates a registry with the standard modules.
func DefaultRegistry(ctx *Context) (*Registry, error) {
	r := NewRegistry()

	modules := []Module{
		NewBufferModule(ctx),
		NewEditorModule(ctx),
		NewUtilModule(),
	}

	for _, mod := range modules {
		if err := r.Register(mod); err != nil {
			return nil, err
		}
	}

	return r, nil
}

package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/twine/internal/script/api"
)

// Sandbox restricts Lua execution to safe operations and tracks the
// capabilities granted to the script environment. It implements
// api.CapabilityChecker, so the module registry can consult it
// directly.
type Sandbox struct {
	L *lua.LState

	capabilities map[api.Capability]bool
}

// NewSandbox creates a sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{
		L:            L,
		capabilities: make(map[api.Capability]bool),
	}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	// Remove loaders that could pull in arbitrary code.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installSafeRequire()
}

// safeModules are the built-in modules scripts may require.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

// installSafeRequire replaces require with a whitelist-based version
// and disables filesystem module loading. Only whitelisted built-ins
// and modules preloaded through L.PreloadModule (the tw module) can
// be loaded.
func (s *Sandbox) installSafeRequire() {
	// Clear package.path and package.cpath so nothing loads from disk,
	// and drop any loaded modules outside the safe set.
	if pkgTable, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkgTable, "path", lua.LString(""))
		s.L.SetField(pkgTable, "cpath", lua.LString(""))

		safeLoaded := map[string]bool{
			"_G": true, "package": true,
			"string": true, "table": true, "math": true,
		}
		if loadedTbl, ok := s.L.GetField(pkgTable, "loaded").(*lua.LTable); ok {
			var remove []string
			loadedTbl.ForEach(func(k, _ lua.LValue) {
				if ks, ok := k.(lua.LString); ok && !safeLoaded[string(ks)] {
					remove = append(remove, string(ks))
				}
			})
			for _, key := range remove {
				loadedTbl.RawSetString(key, lua.LNil)
			}
		}
	}

	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		if safeModules[modName] || modName == "tw" {
			L.Push(originalRequire)
			L.Push(lua.LString(modName))
			L.Call(1, 1)
			return 1
		}

		L.RaiseError("module %q is not available", modName)
		return 0 // unreachable
	}))
}

// Grant enables a capability.
func (s *Sandbox) Grant(cap api.Capability) {
	s.capabilities[cap] = true
}

// Revoke disables a capability. Modules already injected stay
// injected; revocation affects future injections only.
func (s *Sandbox) Revoke(cap api.Capability) {
	delete(s.capabilities, cap)
}

// HasCapability returns true if the capability is granted.
func (s *Sandbox) HasCapability(cap api.Capability) bool {
	return s.capabilities[cap]
}

// Capabilities returns all granted capabilities.
func (s *Sandbox) Capabilities() []api.Capability {
	caps := make([]api.Capability, 0, len(s.capabilities))
	for cap, granted := range s.capabilities {
		if granted {
			caps = append(caps, cap)
		}
	}
	return caps
}

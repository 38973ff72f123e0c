package api

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// UtilModule implements the tw.util API module: string helpers that
// Lua's pattern-based stdlib makes awkward.
type UtilModule struct{}

// NewUtilModule creates a new util module.
func NewUtilModule() *UtilModule {
	return &UtilModule{}
}

// Name returns the module name.
func (m *UtilModule) Name() string {
	return "util"
}

// RequiredCapability returns the capability required for this module.
// Utility functions require none.
func (m *UtilModule) RequiredCapability() Capability {
	return ""
}

// Register registers the module into the Lua state.
func (m *UtilModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "split", L.NewFunction(m.split))
	L.SetField(mod, "join", L.NewFunction(m.join))
	L.SetField(mod, "trim", L.NewFunction(m.trim))
	L.SetField(mod, "starts_with", L.NewFunction(m.startsWith))
	L.SetField(mod, "ends_with", L.NewFunction(m.endsWith))
	L.SetField(mod, "contains", L.NewFunction(m.contains))
	L.SetField(mod, "lines", L.NewFunction(m.lines))

	L.SetGlobal("_tw_util", mod)
	return nil
}

// split(str, sep) -> {parts}
// Splits a string by separator.
func (m *UtilModule) split(L *lua.LState) int {
	str := L.CheckString(1)
	sep := L.CheckString(2)

	parts := strings.Split(str, sep)
	tbl := L.NewTable()
	for i, part := range parts {
		tbl.RawSetInt(i+1, lua.LString(part))
	}

	L.Push(tbl)
	return 1
}

// join({parts}, sep) -> string
// Joins table elements with a separator.
func (m *UtilModule) join(L *lua.LState) int {
	tbl := L.CheckTable(1)
	sep := L.CheckString(2)

	var parts []string
	tbl.ForEach(func(_, v lua.LValue) {
		parts = append(parts, v.String())
	})

	L.Push(lua.LString(strings.Join(parts, sep)))
	return 1
}

// trim(str) -> string
// Trims whitespace from both ends of a string.
func (m *UtilModule) trim(L *lua.LState) int {
	str := L.CheckString(1)
	L.Push(lua.LString(strings.TrimSpace(str)))
	return 1
}

// starts_with(str, prefix) -> bool
func (m *UtilModule) startsWith(L *lua.LState) int {
	str := L.CheckString(1)
	prefix := L.CheckString(2)
	L.Push(lua.LBool(strings.HasPrefix(str, prefix)))
	return 1
}

// ends_with(str, suffix) -> bool
func (m *UtilModule) endsWith(L *lua.LState) int {
	str := L.CheckString(1)
	suffix := L.CheckString(2)
	L.Push(lua.LBool(strings.HasSuffix(str, suffix)))
	return 1
}

// contains(str, substr) -> bool
func (m *UtilModule) contains(L *lua.LState) int {
	str := L.CheckString(1)
	substr := L.CheckString(2)
	L.Push(lua.LBool(strings.Contains(str, substr)))
	return 1
}

// lines(str) -> {lines}
// Splits a string into lines, handling both \n and \r\n.
func (m *UtilModule) lines(L *lua.LState) int {
	str := L.CheckString(1)

	tbl := L.NewTable()
	i := 1
	for _, line := range strings.Split(str, "\n") {
		tbl.RawSetInt(i, lua.LString(strings.TrimSuffix(line, "\r")))
		i++
	}

	L.Push(tbl)
	return 1
}

package api

import (
	lua "github.com/yuin/gopher-lua"
)

// EditorModule implements the tw.ed API module: the output sink,
// buffer management, and file access. The module itself requires no
// capability so send always works; open and save check file access at
// call time.
type EditorModule struct {
	ctx *Context
}

// NewEditorModule creates a new editor module.
func NewEditorModule(ctx *Context) *EditorModule {
	return &EditorModule{ctx: ctx}
}

// Name returns the module name.
func (m *EditorModule) Name() string {
	return "ed"
}

// RequiredCapability returns the capability required for this module.
func (m *EditorModule) RequiredCapability() Capability {
	return ""
}

// Register registers the module into the Lua state.
func (m *EditorModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "send", L.NewFunction(m.send))
	L.SetField(mod, "buffers", L.NewFunction(m.buffers))
	L.SetField(mod, "current", L.NewFunction(m.current))
	L.SetField(mod, "switch_buffer", L.NewFunction(m.switchBuffer))
	L.SetField(mod, "open", L.NewFunction(m.open))
	L.SetField(mod, "save", L.NewFunction(m.save))

	L.SetGlobal("_tw_ed", mod)
	return nil
}

// send(text) -> nil
// Writes user-visible text to the editor's output sink.
func (m *EditorModule) send(L *lua.LState) int {
	text := L.CheckString(1)

	if m.ctx.Editor == nil {
		return 0
	}

	m.ctx.Editor.Send(text)
	return 0
}

// buffers() -> {names}
// Returns the names of all open buffers.
func (m *EditorModule) buffers(L *lua.LState) int {
	tbl := L.NewTable()

	if m.ctx.Editor != nil {
		for i, name := range m.ctx.Editor.Buffers() {
			tbl.RawSetInt(i+1, lua.LString(name))
		}
	}

	L.Push(tbl)
	return 1
}

// current() -> string
// Returns the name of the active buffer.
func (m *EditorModule) current(L *lua.LState) int {
	if m.ctx.Editor == nil {
		L.Push(lua.LString(""))
		return 1
	}

	L.Push(lua.LString(m.ctx.Editor.Current()))
	return 1
}

// switch_buffer(name) -> nil
// Makes the named buffer active.
func (m *EditorModule) switchBuffer(L *lua.LState) int {
	name := L.CheckString(1)

	if m.ctx.Editor == nil {
		L.RaiseError("switch_buffer: no editor available")
		return 0
	}

	if err := m.ctx.Editor.Switch(name); err != nil {
		L.RaiseError("switch_buffer: %v", err)
		return 0
	}

	return 0
}

// open(path) -> name
// Opens a file into a new buffer and makes it active. Requires the
// files capability.
func (m *EditorModule) open(L *lua.LState) int {
	path := L.CheckString(1)

	if m.ctx.Editor == nil {
		L.RaiseError("open: no editor available")
		return 0
	}
	if !m.ctx.Editor.CanAccessFiles() {
		L.RaiseError("open: capability %q not granted", CapabilityFiles)
		return 0
	}

	name, err := m.ctx.Editor.Open(path)
	if err != nil {
		L.RaiseError("open: %v", err)
		return 0
	}

	L.Push(lua.LString(name))
	return 1
}

// save() -> nil
// Writes the active buffer back to its file. Requires the files
// capability.
func (m *EditorModule) save(L *lua.LState) int {
	if m.ctx.Editor == nil {
		L.RaiseError("save: no editor available")
		return 0
	}
	if !m.ctx.Editor.CanAccessFiles() {
		L.RaiseError("save: capability %q not granted", CapabilityFiles)
		return 0
	}

	if err := m.ctx.Editor.Save(); err != nil {
		L.RaiseError("save: %v", err)
		return 0
	}

	return 0
}

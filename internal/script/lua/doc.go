// Package lua provides the sandboxed Lua runtime for editor
// scripting.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed state management (no io, os, or debug; whitelisted
//     require; no filesystem module loading)
//   - Capability grants consumed by the api module registry
//   - An enforced per-execution timeout via the VM's context support
//   - Panic-safe execution
//
// # State
//
// The State type manages one sandboxed Lua runtime:
//
//	state, err := lua.NewState(
//	    lua.WithExecutionTimeout(2 * time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	err = state.DoString(`x = 40 + 2`)
//
// # Engine
//
// Engine ties a State to the editor API modules and the output sink.
// Scripts reach the editor through require("tw") and print through
// the sink the host installed:
//
//	engine, err := lua.NewEngine(ctx,
//	    lua.WithCapabilities(api.CapabilityBuffer),
//	    lua.WithOutput(os.Stdout),
//	)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	err = engine.DoString(`
//	    local tw = require("tw")
//	    tw.ed.send("buffer has " .. tw.buf.line_count() .. " lines")
//	`)
package lua

// Package api defines the Lua-facing editor API.
//
// Each module exposes a slice of editor functionality to scripts as a
// table of functions. Modules register themselves under private
// _tw_<name> globals; the registry aggregates them into the "tw"
// module that scripts load with require("tw"):
//
//	local tw = require("tw")
//	tw.ed.send("lines: " .. tw.buf.line_count())
//
// Modules reach the editor through the provider interfaces in Context,
// never through concrete editor types, so the package stays testable
// with small fakes. Modules that mutate state declare a required
// capability; the registry skips them when the capability is not
// granted.
package api

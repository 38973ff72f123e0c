// Package main is the entry point for the twine interactive shell.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/dshills/twine/internal/app"
	"github.com/dshills/twine/internal/config"
	"github.com/dshills/twine/internal/engine/buffer"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	errorColor  = color.New(color.FgRed)
	infoColor   = color.New(color.FgHiBlack)
)

type options struct {
	ConfigPath string
	LogLevel   string
	ReadOnly   bool
	Files      []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(resolveConfigPath(opts.ConfigPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(level),
		Output: os.Stderr,
		Prefix: "twine",
	})

	edOpts := []app.EditorOption{
		app.WithSink(os.Stdout),
		app.WithLogger(logger),
	}
	if opts.ReadOnly {
		edOpts = append(edOpts, app.WithReadOnly())
	}

	editor, err := app.NewEditor(cfg, edOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer editor.Close()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signals
		fmt.Fprintln(os.Stderr)
		editor.Close()
		os.Exit(130)
	}()

	// Startup scripts are best effort; a broken script should not keep
	// the shell from starting.
	if err := editor.RunStartupScripts(); err != nil {
		logger.Warn("startup scripts: %v", err)
	}

	for _, path := range opts.Files {
		if _, err := editor.Open(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	repl := &REPL{
		editor: editor,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	return repl.loop()
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Open files in read-only mode")
	flag.BoolVar(&opts.ReadOnly, "R", false, "Open files in read-only mode (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Twine - rope text buffer shell\n\n")
		fmt.Fprintf(os.Stderr, "Usage: twine [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  twine                       Start with an empty scratch buffer\n")
		fmt.Fprintf(os.Stderr, "  twine file.txt              Open a file\n")
		fmt.Fprintf(os.Stderr, "  twine -R file.txt           Open a file read-only\n")
		fmt.Fprintf(os.Stderr, "  twine -c twine.toml         Use a specific configuration file\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Twine %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	// Remaining arguments are files to open
	opts.Files = flag.Args()

	return opts
}

// resolveConfigPath returns the explicit path when given, otherwise
// the standard location under the user configuration directory. The
// loader treats a missing file as defaults.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "twine", "config.toml")
}

// REPL holds the state of the interactive session.
type REPL struct {
	editor *app.Editor
	reader *bufio.Reader
	out    io.Writer
}

func (r *REPL) loop() int {
	fmt.Fprintf(r.out, "Twine %s - persistent rope buffer shell\n", version)
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(r.out)

	for {
		promptColor.Fprintf(r.out, "twine:%s> ", r.editor.CurrentName())
		input, err := r.reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return 0
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if !r.handleCommand(input) {
			return 0
		}
	}
}

func (r *REPL) handleCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		r.printHelp()

	case "quit", "exit":
		fmt.Fprintln(r.out, "Goodbye!")
		return false

	case "version":
		fmt.Fprintf(r.out, "Twine %s (commit %s, built %s)\n", version, commit, date)

	case "new":
		fmt.Fprintf(r.out, "Created %s\n", r.editor.NewScratch())

	case "open":
		r.cmdOpen(args)

	case "buffers", "ls":
		r.cmdBuffers()

	case "switch", "b":
		r.cmdSwitch(args)

	case "next":
		fmt.Fprintf(r.out, "Switched to %s\n", r.editor.Next())

	case "prev", "previous":
		fmt.Fprintf(r.out, "Switched to %s\n", r.editor.Previous())

	case "close":
		r.cmdClose(args)

	case "show", "dump":
		r.cmdShow()

	case "line":
		r.cmdLine(args)

	case "insert":
		r.cmdInsert(args)

	case "delete":
		r.cmdDelete(args)

	case "replace":
		r.cmdReplace(args)

	case "type":
		r.cmdType(args)

	case "backspace", "rub":
		r.cmdBackspace(args)

	case "commit":
		r.cmdCommit()

	case "discard":
		r.editor.Current().DiscardStage()
		fmt.Fprintln(r.out, "Staged typing discarded")

	case "seek":
		r.cmdSeek(args)

	case "cursor":
		r.cmdCursor()

	case "undo":
		r.cmdUndo()

	case "redo":
		r.cmdRedo()

	case "save":
		r.cmdSave(args)

	case "ending":
		r.cmdEnding(args)

	case "stats", "status":
		r.cmdStats()

	case "lua":
		r.cmdLua(strings.TrimSpace(strings.TrimPrefix(input, parts[0])))

	case "luafile":
		r.cmdLuaFile(args)

	default:
		r.errorf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}

	return true
}

func (r *REPL) errorf(format string, args ...any) {
	errorColor.Fprintf(r.out, format, args...)
}

func (r *REPL) printHelp() {
	help := `
Available Commands:
-------------------

BUFFERS:
  new                     Open a fresh scratch buffer
  open <path>             Open a file into a new buffer
  buffers                 List open buffers (> marks current, * modified)
  switch <name>           Make the named buffer current
  next, prev              Cycle through buffers in open order
  close [name]            Close a buffer (current if no name given)
  save [path]             Save the current buffer; with a path, rebind to it

EDITS (byte offsets, committed immediately):
  insert <offset> <text>  Insert text at a byte offset
  delete <start> <end>    Delete the byte range [start, end)
  replace <s> <e> <text>  Replace the byte range [s, e)

TYPING (staged, committed as one undo step):
  type <text>             Stage text at the cursor
  backspace [n]           Rub out n staged bytes before the cursor
  commit                  Commit staged typing into the buffer
  discard                 Drop staged typing

CURSOR:
  seek <offset>           Move the cursor to a byte offset
  seek line <n> [col]     Move the cursor to a line (1-based) and column
  cursor                  Show the cursor position

INSPECTION:
  show                    Print the buffer content
  line <n>                Print one line (1-based)
  stats                   Buffer statistics
  ending [lf|crlf|cr]     Show or convert the line ending style

HISTORY:
  undo, redo              Step through edit history

SCRIPTING:
  lua <code>              Run a Lua chunk
  luafile <path>          Run a Lua script file

OTHER:
  version                 Show version information
  help                    Show this help message
  quit, exit              Exit the shell

Text arguments expand \n, \r and \t escape sequences.
`
	fmt.Fprintln(r.out, help)
}

// unescape expands the escape sequences accepted in text arguments.
func unescape(s string) string {
	s = strings.ReplaceAll(s, "\\n", "\n")
	s = strings.ReplaceAll(s, "\\r", "\r")
	s = strings.ReplaceAll(s, "\\t", "\t")
	return s
}

func (r *REPL) cmdOpen(args []string) {
	if len(args) < 1 {
		r.errorf("Usage: open <path>\n")
		return
	}

	name, err := r.editor.Open(args[0])
	if err != nil {
		r.errorf("Open error: %v\n", err)
		return
	}

	buf := r.editor.Current()
	fmt.Fprintf(r.out, "Opened %s (%d bytes, %d lines)\n", name, int(buf.Len()), buf.LineCount())
}

func (r *REPL) cmdBuffers() {
	current := r.editor.CurrentName()
	for _, name := range r.editor.Buffers() {
		buf, ok := r.editor.Buffer(name)
		if !ok {
			continue
		}

		marker := "  "
		if name == current {
			marker = "> "
		}
		modified := " "
		if buf.Modified() {
			modified = "*"
		}
		fmt.Fprintf(r.out, "%s%s%s", marker, name, modified)
		if p := buf.Path(); p != "" {
			infoColor.Fprintf(r.out, "  %s", p)
		}
		fmt.Fprintln(r.out)
	}
}

func (r *REPL) cmdSwitch(args []string) {
	if len(args) < 1 {
		r.errorf("Usage: switch <name>\n")
		return
	}
	if err := r.editor.Switch(args[0]); err != nil {
		r.errorf("Switch error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Switched to %s\n", args[0])
}

func (r *REPL) cmdClose(args []string) {
	name := r.editor.CurrentName()
	if len(args) > 0 {
		name = args[0]
	}
	if err := r.editor.CloseBuffer(name); err != nil {
		r.errorf("Close error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Closed %s, now at %s\n", name, r.editor.CurrentName())
}

func (r *REPL) cmdShow() {
	buf := r.editor.Current()
	text := buf.Text()

	fmt.Fprintln(r.out, "--------")
	fmt.Fprint(r.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out, "--------")
	infoColor.Fprintf(r.out, "%d bytes, %d lines, revision %d\n", int(buf.Len()), buf.LineCount(), buf.Revision())
	if p := buf.Pending(); p > 0 {
		infoColor.Fprintf(r.out, "(%d staged bytes not shown; use 'commit')\n", p)
	}
}

func (r *REPL) cmdLine(args []string) {
	if len(args) < 1 {
		r.errorf("Usage: line <number>\n")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		r.errorf("Invalid line number: %s\n", args[0])
		return
	}

	text, err := r.editor.Current().Line(n - 1)
	if err != nil {
		r.errorf("Line error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "%d: %q\n", n, text)
}

func (r *REPL) cmdInsert(args []string) {
	if len(args) < 2 {
		r.errorf("Usage: insert <offset> <text>\n")
		return
	}
	offset, err := strconv.Atoi(args[0])
	if err != nil {
		r.errorf("Invalid offset: %s\n", args[0])
		return
	}

	text := unescape(strings.Join(args[1:], " "))
	buf := r.editor.Current()
	end, err := buf.Insert(buffer.ByteOffset(offset), text)
	if err != nil {
		r.errorf("Insert error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Inserted, end offset %d, buffer now %d bytes\n", int(end), int(buf.Len()))
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) < 2 {
		r.errorf("Usage: delete <start> <end>\n")
		return
	}
	start, err1 := strconv.Atoi(args[0])
	end, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		r.errorf("Invalid range: %s %s\n", args[0], args[1])
		return
	}

	buf := r.editor.Current()
	if err := buf.Delete(buffer.ByteOffset(start), buffer.ByteOffset(end)); err != nil {
		r.errorf("Delete error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Deleted %d bytes, buffer now %d bytes\n", end-start, int(buf.Len()))
}

func (r *REPL) cmdReplace(args []string) {
	if len(args) < 3 {
		r.errorf("Usage: replace <start> <end> <text>\n")
		return
	}
	start, err1 := strconv.Atoi(args[0])
	end, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		r.errorf("Invalid range: %s %s\n", args[0], args[1])
		return
	}

	text := unescape(strings.Join(args[2:], " "))
	buf := r.editor.Current()
	endOffset, err := buf.Replace(buffer.ByteOffset(start), buffer.ByteOffset(end), text)
	if err != nil {
		r.errorf("Replace error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Replaced, end offset %d, buffer now %d bytes\n", int(endOffset), int(buf.Len()))
}

func (r *REPL) cmdType(args []string) {
	if len(args) < 1 {
		r.errorf("Usage: type <text>\n")
		return
	}

	text := unescape(strings.Join(args, " "))
	buf := r.editor.Current()
	if err := buf.StageInsert(buf.Position(), text); err != nil {
		r.errorf("Type error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Staged, %d pending bytes, cursor at %d\n", buf.Pending(), int(buf.Position()))
}

func (r *REPL) cmdBackspace(args []string) {
	n := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			r.errorf("Invalid count: %s\n", args[0])
			return
		}
		n = parsed
	}

	buf := r.editor.Current()
	pos := buf.Position()
	start := pos - buffer.ByteOffset(n)
	if start < 0 {
		start = 0
	}
	if err := buf.StageDelete(start, pos); err != nil {
		r.errorf("Backspace error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Cursor at %d, %d pending bytes\n", int(buf.Position()), buf.Pending())
}

func (r *REPL) cmdCommit() {
	buf := r.editor.Current()
	pending := buf.Pending()
	buf.Flush()
	fmt.Fprintf(r.out, "Committed %d staged bytes, revision %d\n", pending, buf.Revision())
}

func (r *REPL) cmdSeek(args []string) {
	buf := r.editor.Current()

	switch {
	case len(args) == 1:
		offset, err := strconv.Atoi(args[0])
		if err != nil {
			r.errorf("Invalid offset: %s\n", args[0])
			return
		}
		if err := buf.SetPosition(buffer.ByteOffset(offset)); err != nil {
			r.errorf("Seek error: %v\n", err)
			return
		}

	case len(args) >= 2 && strings.ToLower(args[0]) == "line":
		line, err := strconv.Atoi(args[1])
		if err != nil || line < 1 {
			r.errorf("Invalid line: %s\n", args[1])
			return
		}
		col := 0
		if len(args) >= 3 {
			col, err = strconv.Atoi(args[2])
			if err != nil || col < 0 {
				r.errorf("Invalid column: %s\n", args[2])
				return
			}
		}
		offset, err := buf.PointToOffset(buffer.Point{Line: line - 1, Column: col})
		if err != nil {
			r.errorf("Seek error: %v\n", err)
			return
		}
		if err := buf.SetPosition(offset); err != nil {
			r.errorf("Seek error: %v\n", err)
			return
		}

	default:
		r.errorf("Usage: seek <offset> | seek line <n> [col]\n")
		return
	}

	r.cmdCursor()
}

func (r *REPL) cmdCursor() {
	buf := r.editor.Current()
	pos := buf.Position()
	pt, err := buf.OffsetToPoint(pos)
	if err != nil {
		r.errorf("Cursor error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Cursor: byte=%d, line=%d, column=%d\n", int(pos), pt.Line+1, pt.Column)
}

func (r *REPL) cmdUndo() {
	buf := r.editor.Current()
	if !buf.Undo() {
		fmt.Fprintln(r.out, "Nothing to undo")
		return
	}
	fmt.Fprintf(r.out, "Undone, buffer now %d bytes, revision %d\n", int(buf.Len()), buf.Revision())
}

func (r *REPL) cmdRedo() {
	buf := r.editor.Current()
	if !buf.Redo() {
		fmt.Fprintln(r.out, "Nothing to redo")
		return
	}
	fmt.Fprintf(r.out, "Redone, buffer now %d bytes, revision %d\n", int(buf.Len()), buf.Revision())
}

func (r *REPL) cmdSave(args []string) {
	var err error
	if len(args) > 0 {
		err = r.editor.SaveAs(args[0])
	} else {
		err = r.editor.Save()
	}
	if err != nil {
		r.errorf("Save error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Saved to %s\n", r.editor.Current().Path())
}

func (r *REPL) cmdEnding(args []string) {
	buf := r.editor.Current()

	if len(args) == 0 {
		fmt.Fprintf(r.out, "Line ending: %s\n", buf.LineEnding())
		return
	}

	var le buffer.LineEnding
	switch strings.ToLower(args[0]) {
	case "lf":
		le = buffer.LineEndingLF
	case "crlf":
		le = buffer.LineEndingCRLF
	case "cr":
		le = buffer.LineEndingCR
	default:
		r.errorf("Usage: ending [lf|crlf|cr]\n")
		return
	}

	if err := buf.ConvertLineEndings(le); err != nil {
		r.errorf("Convert error: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Converted to %s\n", le)
}

func (r *REPL) cmdStats() {
	name := r.editor.CurrentName()
	buf := r.editor.Current()

	fmt.Fprintf(r.out, "Buffer %s:\n", name)
	fmt.Fprintf(r.out, "  Bytes:     %d\n", int(buf.Len()))
	fmt.Fprintf(r.out, "  Lines:     %d\n", buf.LineCount())
	fmt.Fprintf(r.out, "  Revision:  %d\n", buf.Revision())
	fmt.Fprintf(r.out, "  Modified:  %v\n", buf.Modified())
	fmt.Fprintf(r.out, "  Read-only: %v\n", buf.ReadOnly())
	fmt.Fprintf(r.out, "  Line end:  %s\n", buf.LineEnding())
	fmt.Fprintf(r.out, "  Undo/redo: %d/%d\n", buf.UndoCount(), buf.RedoCount())
	fmt.Fprintf(r.out, "  Staged:    %d bytes\n", buf.Pending())
	if p := buf.Path(); p != "" {
		fmt.Fprintf(r.out, "  Path:      %s\n", p)
	}
	if info, ok := r.editor.Info(name); ok && info.HadBOM {
		fmt.Fprintln(r.out, "  BOM:       yes (preserved on save)")
	}
}

func (r *REPL) cmdLua(code string) {
	if code == "" {
		r.errorf("Usage: lua <code>\n")
		return
	}
	if err := r.editor.Engine().DoString(code); err != nil {
		r.errorf("Lua error: %v\n", err)
	}
}

func (r *REPL) cmdLuaFile(args []string) {
	if len(args) < 1 {
		r.errorf("Usage: luafile <path>\n")
		return
	}
	if err := r.editor.Engine().DoFile(args[0]); err != nil {
		r.errorf("Lua error: %v\n", err)
	}
}

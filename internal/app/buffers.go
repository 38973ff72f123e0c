package app

import (
	"fmt"
	"path/filepath"

	"github.com/dshills/twine/internal/config"
	"github.com/dshills/twine/internal/engine/buffer"
	"github.com/dshills/twine/internal/textio"
)

// NewScratch opens an empty scratch buffer and makes it current. The
// name is "scratch", or "scratch-2" and so on when taken.
func (e *Editor) NewScratch() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.newScratchLocked()
}

func (e *Editor) newScratchLocked() string {
	name := e.uniqueNameLocked("scratch")
	buf := buffer.New(e.bufferOptions(name)...)
	e.addLocked(name, &bufferEntry{buf: buf})
	return name
}

// Open loads a file into a new buffer and makes it current. Opening a
// path that is already loaded switches to the existing buffer instead
// of loading it twice.
func (e *Editor) Open(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", NewOperationError("open", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range e.order {
		if e.buffers[name].buf.Path() == abs {
			e.current = name
			return name, nil
		}
	}

	doc, err := textio.Open(abs)
	if err != nil {
		return "", NewOperationError("open", path, err)
	}

	name := e.uniqueNameLocked(filepath.Base(abs))
	opts := append(e.bufferOptions(name), buffer.WithPath(abs))
	if e.cfg.Editor.LineEnding == config.LineEndingAuto {
		switch doc.Info.LineEnding {
		case textio.LineEndingLF:
			opts = append(opts, buffer.WithLF())
		case textio.LineEndingCRLF:
			opts = append(opts, buffer.WithCRLF())
		case textio.LineEndingCR:
			opts = append(opts, buffer.WithCR())
		}
	}
	buf := buffer.NewFromRope(doc.Rope, opts...)
	e.addLocked(name, &bufferEntry{buf: buf, info: doc.Info})
	e.logger.Info("opened %s (%d bytes)", abs, int(buf.Len()))
	return name, nil
}

// Save writes the current buffer back to the file it was opened from.
func (e *Editor) Save() error {
	e.mu.RLock()
	entry, name := e.currentEntryLocked()
	e.mu.RUnlock()
	if entry == nil {
		return NewOperationError("save", "", ErrNoBuffer)
	}
	path := entry.buf.Path()
	if path == "" {
		return NewOperationError("save", name, ErrNoFilePath)
	}
	return e.saveEntry(entry, name, path)
}

// SaveAs writes the current buffer to path and rebinds the buffer to
// that path for future saves.
func (e *Editor) SaveAs(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return NewOperationError("save", path, err)
	}
	e.mu.RLock()
	entry, name := e.currentEntryLocked()
	e.mu.RUnlock()
	if entry == nil {
		return NewOperationError("save", path, ErrNoBuffer)
	}
	if err := e.saveEntry(entry, name, abs); err != nil {
		return err
	}
	entry.buf.SetPath(abs)
	return nil
}

// saveEntry writes the buffer to disk without holding the editor
// lock. The buffer serializes itself under its own lock.
func (e *Editor) saveEntry(entry *bufferEntry, name, path string) error {
	if err := textio.Save(path, entry.buf, entry.info); err != nil {
		return NewOperationError("save", name, err)
	}
	entry.buf.MarkSaved()
	e.logger.Debug("saved %s to %s", name, path)
	return nil
}

// Switch makes the named buffer current.
func (e *Editor) Switch(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.buffers[name]; !ok {
		return NewOperationError("switch", name, ErrUnknownBuffer)
	}
	e.current = name
	return nil
}

// CloseBuffer discards the named buffer and any unsaved changes in
// it. Closing the last buffer opens a fresh scratch so the editor
// always has a current buffer.
func (e *Editor) CloseBuffer(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.buffers[name]; !ok {
		return NewOperationError("close", name, ErrUnknownBuffer)
	}
	delete(e.buffers, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if len(e.order) == 0 {
		e.newScratchLocked()
		return nil
	}
	if e.current == name {
		e.current = e.order[len(e.order)-1]
	}
	return nil
}

// Next makes the next buffer in open order current and returns its
// name, wrapping at the end of the list.
func (e *Editor) Next() string {
	return e.rotate(1)
}

// Previous makes the previous buffer in open order current.
func (e *Editor) Previous() string {
	return e.rotate(-1)
}

func (e *Editor) rotate(step int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.order) == 0 {
		return ""
	}
	idx := 0
	for i, n := range e.order {
		if n == e.current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(e.order)) % len(e.order)
	e.current = e.order[idx]
	return e.current
}

// Buffers returns the open buffer names in open order.
func (e *Editor) Buffers() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// CurrentName returns the name of the current buffer.
func (e *Editor) CurrentName() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Current returns the current buffer, or nil when none is open.
func (e *Editor) Current() *buffer.Buffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if entry := e.buffers[e.current]; entry != nil {
		return entry.buf
	}
	return nil
}

// Buffer returns the named buffer.
func (e *Editor) Buffer(name string) (*buffer.Buffer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.buffers[name]
	if !ok {
		return nil, false
	}
	return entry.buf, true
}

// Info returns what the file loader detected for the named buffer.
// Scratch buffers report the zero value.
func (e *Editor) Info(name string) (textio.Info, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.buffers[name]
	if !ok {
		return textio.Info{}, false
	}
	return entry.info, true
}

func (e *Editor) currentEntryLocked() (*bufferEntry, string) {
	if e.current == "" {
		return nil, ""
	}
	return e.buffers[e.current], e.current
}

func (e *Editor) addLocked(name string, entry *bufferEntry) {
	e.buffers[name] = entry
	e.order = append(e.order, name)
	e.current = name
}

func (e *Editor) uniqueNameLocked(base string) string {
	name := base
	for i := 2; ; i++ {
		if _, ok := e.buffers[name]; !ok {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}

func (e *Editor) bufferOptions(name string) []buffer.Option {
	opts := []buffer.Option{
		buffer.WithName(name),
		buffer.WithHistoryLimit(e.cfg.Editor.HistoryLimit),
		buffer.WithBatchCapacity(e.cfg.Editor.BatchCapacity),
	}
	switch e.cfg.Editor.LineEnding {
	case config.LineEndingLF:
		opts = append(opts, buffer.WithLF())
	case config.LineEndingCRLF:
		opts = append(opts, buffer.WithCRLF())
	case config.LineEndingCR:
		opts = append(opts, buffer.WithCR())
	}
	if e.readOnly {
		opts = append(opts, buffer.WithReadOnly())
	}
	return opts
}

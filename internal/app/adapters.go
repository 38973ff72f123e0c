package app

import (
	"errors"
	"io"

	"github.com/dshills/twine/internal/engine/buffer"
)

// bufferProvider exposes the editor's current buffer to the scripting
// engine. Scripts act on whichever buffer is current at call time, so
// every method resolves the buffer fresh. Reads on an absent buffer
// return zero values; mutations return ErrNoBuffer.
type bufferProvider struct {
	ed *Editor
}

func (p *bufferProvider) cur() *buffer.Buffer { return p.ed.Current() }

func (p *bufferProvider) Current() string {
	if b := p.cur(); b != nil {
		return b.Name()
	}
	return ""
}

func (p *bufferProvider) Text() string {
	if b := p.cur(); b != nil {
		return b.Text()
	}
	return ""
}

func (p *bufferProvider) TextRange(start, end int) (string, error) {
	b := p.cur()
	if b == nil {
		return "", ErrNoBuffer
	}
	return b.Slice(buffer.ByteOffset(start), buffer.ByteOffset(end))
}

func (p *bufferProvider) Line(line int) (string, error) {
	b := p.cur()
	if b == nil {
		return "", ErrNoBuffer
	}
	return b.Line(line)
}

func (p *bufferProvider) LineCount() int {
	if b := p.cur(); b != nil {
		return b.LineCount()
	}
	return 0
}

func (p *bufferProvider) Len() int {
	if b := p.cur(); b != nil {
		return int(b.Len())
	}
	return 0
}

func (p *bufferProvider) Position() int {
	if b := p.cur(); b != nil {
		return int(b.Position())
	}
	return 0
}

func (p *bufferProvider) SetPosition(offset int) error {
	b := p.cur()
	if b == nil {
		return ErrNoBuffer
	}
	return b.SetPosition(buffer.ByteOffset(offset))
}

func (p *bufferProvider) CharAt(offset int) (string, bool, error) {
	b := p.cur()
	if b == nil {
		return "", false, ErrNoBuffer
	}
	r, _, err := b.RuneAt(buffer.ByteOffset(offset))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(r), true, nil
}

func (p *bufferProvider) Insert(offset int, text string) (int, error) {
	b := p.cur()
	if b == nil {
		return 0, ErrNoBuffer
	}
	end, err := b.Insert(buffer.ByteOffset(offset), text)
	return int(end), err
}

func (p *bufferProvider) Delete(start, end int) error {
	b := p.cur()
	if b == nil {
		return ErrNoBuffer
	}
	return b.Delete(buffer.ByteOffset(start), buffer.ByteOffset(end))
}

func (p *bufferProvider) Replace(start, end int, text string) (int, error) {
	b := p.cur()
	if b == nil {
		return 0, ErrNoBuffer
	}
	pos, err := b.Replace(buffer.ByteOffset(start), buffer.ByteOffset(end), text)
	return int(pos), err
}

func (p *bufferProvider) Undo() bool {
	if b := p.cur(); b != nil {
		return b.Undo()
	}
	return false
}

func (p *bufferProvider) Redo() bool {
	if b := p.cur(); b != nil {
		return b.Redo()
	}
	return false
}

func (p *bufferProvider) Path() string {
	if b := p.cur(); b != nil {
		return b.Path()
	}
	return ""
}

func (p *bufferProvider) Modified() bool {
	if b := p.cur(); b != nil {
		return b.Modified()
	}
	return false
}

// editorProvider exposes editor-level operations to the scripting
// engine. File access is fixed at engine construction from the
// configured capabilities.
type editorProvider struct {
	ed       *Editor
	canFiles bool
}

func (p *editorProvider) Send(text string)  { p.ed.Send(text) }
func (p *editorProvider) Buffers() []string { return p.ed.Buffers() }
func (p *editorProvider) Current() string   { return p.ed.CurrentName() }

func (p *editorProvider) Switch(name string) error { return p.ed.Switch(name) }

func (p *editorProvider) Open(path string) (string, error) {
	return p.ed.Open(path)
}

func (p *editorProvider) Save() error          { return p.ed.Save() }
func (p *editorProvider) CanAccessFiles() bool { return p.canFiles }

// Package textio reads and writes text files for the editor.
//
// Loading strips a leading UTF-8 byte order mark and detects the
// dominant line ending so both can be preserved on save. Content is
// otherwise untouched: a load/save round-trip with no edits in
// between reproduces the file byte for byte.
//
// Files encoded as UTF-16 or UTF-32 are rejected rather than
// misread; Twine edits UTF-8 text only.
package textio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dimchansky/utfbom"

	"github.com/dshills/twine/internal/engine/rope"
)

// ErrUnsupportedEncoding indicates the file carries a byte order mark
// for an encoding Twine does not read.
var ErrUnsupportedEncoding = errors.New("textio: unsupported encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Info describes what was detected while loading a file.
type Info struct {
	// HadBOM reports whether the file began with a UTF-8 BOM.
	// Save re-emits it so the marker survives an edit session.
	HadBOM bool

	// LineEnding is the dominant line ending of the loaded content.
	LineEnding LineEnding
}

// Document is the result of loading a text file.
type Document struct {
	Path string
	Rope rope.Rope
	Info Info
}

// Load reads UTF-8 text from r into a rope. A leading UTF-8 BOM is
// stripped and recorded in Info; UTF-16 and UTF-32 BOMs are rejected
// with ErrUnsupportedEncoding.
func Load(r io.Reader) (rope.Rope, Info, error) {
	sr, enc := utfbom.Skip(r)

	var info Info
	switch enc {
	case utfbom.UTF8:
		info.HadBOM = true
	case utfbom.Unknown:
	default:
		return rope.Rope{}, Info{}, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, enc)
	}

	data, err := io.ReadAll(sr)
	if err != nil {
		return rope.Rope{}, Info{}, fmt.Errorf("reading: %w", err)
	}
	info.LineEnding = DetectLineEnding(data)

	root, err := rope.FromBytes(data)
	if err != nil {
		return rope.Rope{}, Info{}, err
	}
	return root, info, nil
}

// Open loads the file at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	root, info, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return &Document{Path: path, Rope: root, Info: info}, nil
}

// Save writes content to path, re-emitting the BOM when the loaded
// file had one. Ropes and buffers both implement io.WriterTo, so
// either can be written directly.
func Save(path string, content io.WriterTo, info Info) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(f, content, info); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func write(w io.Writer, content io.WriterTo, info Info) error {
	if info.HadBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	_, err := content.WriteTo(w)
	return err
}

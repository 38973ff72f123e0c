package buffer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/twine/internal/engine/rope"
)

func TestNew(t *testing.T) {
	b := New()

	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}

	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}

	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}

	if b.Modified() {
		t.Error("new buffer should not be modified")
	}
}

func TestNewFromString(t *testing.T) {
	text := "Hello, World!"
	b := NewFromString(text)

	if b.Text() != text {
		t.Errorf("expected %q, got %q", text, b.Text())
	}

	if b.Len() != ByteOffset(len(text)) {
		t.Errorf("expected length %d, got %d", len(text), b.Len())
	}
}

func TestNewFromStringMultiline(t *testing.T) {
	text := "line1\nline2\nline3"
	b := NewFromString(text)

	if b.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", b.LineCount())
	}

	line, err := b.Line(0)
	if err != nil {
		t.Fatalf("Line(0) failed: %v", err)
	}
	if line != "line1" {
		t.Errorf("expected line1, got %q", line)
	}

	line, err = b.Line(2)
	if err != nil {
		t.Fatalf("Line(2) failed: %v", err)
	}
	if line != "line3" {
		t.Errorf("expected line3, got %q", line)
	}
}

func TestNewFromReader(t *testing.T) {
	b, err := NewFromReader(strings.NewReader("from reader\n"))
	if err != nil {
		t.Fatalf("NewFromReader failed: %v", err)
	}
	if b.Text() != "from reader\n" {
		t.Errorf("got %q", b.Text())
	}
}

func TestNewFromReaderInvalidUTF8(t *testing.T) {
	_, err := NewFromReader(strings.NewReader("ab\xffcd"))
	if !errors.Is(err, rope.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestNewFromRope(t *testing.T) {
	root := rope.FromString("alpha\r\nbeta\r\n")

	b := NewFromRope(root)
	if b.Text() != "alpha\r\nbeta\r\n" {
		t.Errorf("got %q", b.Text())
	}
	if b.LineEnding() != LineEndingCRLF {
		t.Errorf("line ending = %v, want CRLF", b.LineEnding())
	}
}

func TestNameAndPath(t *testing.T) {
	b := New(WithName("scratch"), WithPath("/tmp/scratch.txt"))

	if b.Name() != "scratch" {
		t.Errorf("name = %q", b.Name())
	}
	if b.Path() != "/tmp/scratch.txt" {
		t.Errorf("path = %q", b.Path())
	}

	b.SetName("notes")
	b.SetPath("/tmp/notes.txt")
	if b.Name() != "notes" || b.Path() != "/tmp/notes.txt" {
		t.Errorf("rename failed: %q %q", b.Name(), b.Path())
	}
}

// Edit Tests

func TestInsert(t *testing.T) {
	b := NewFromString("hello world")

	end, err := b.Insert(5, ",")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if b.Text() != "hello, world" {
		t.Errorf("got %q, want %q", b.Text(), "hello, world")
	}
	if end != 6 {
		t.Errorf("end = %d, want 6", end)
	}
	if b.Position() != 6 {
		t.Errorf("cursor = %d, want 6", b.Position())
	}
	if !b.Modified() {
		t.Error("buffer should be modified after insert")
	}
}

func TestInsertAtStartAndEnd(t *testing.T) {
	b := NewFromString("middle")

	if _, err := b.Insert(0, "start "); err != nil {
		t.Fatalf("Insert at start failed: %v", err)
	}
	if _, err := b.Insert(b.Len(), " end"); err != nil {
		t.Fatalf("Insert at end failed: %v", err)
	}

	if b.Text() != "start middle end" {
		t.Errorf("got %q", b.Text())
	}
}

func TestInsertOutOfRange(t *testing.T) {
	b := NewFromString("hello")
	before := b.Revision()

	if _, err := b.Insert(6, "x"); !errors.Is(err, rope.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	if b.Text() != "hello" {
		t.Error("failed insert must leave the buffer unchanged")
	}
	if b.Revision() != before {
		t.Error("failed insert must not bump the revision")
	}
}

func TestInsertInsideRune(t *testing.T) {
	b := NewFromString("héllo")

	// The é occupies bytes 1 and 2; offset 2 is inside it.
	if _, err := b.Insert(2, "x"); !errors.Is(err, rope.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
	if b.Text() != "héllo" {
		t.Error("failed insert must leave the buffer unchanged")
	}
}

func TestInsertEmptyIsNoOp(t *testing.T) {
	b := NewFromString("hello")
	before := b.Revision()

	end, err := b.Insert(2, "")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if end != 2 {
		t.Errorf("end = %d, want 2", end)
	}
	if b.Revision() != before {
		t.Error("empty insert must not bump the revision")
	}
	if b.CanUndo() {
		t.Error("empty insert must not create an undo entry")
	}
}

func TestDelete(t *testing.T) {
	b := NewFromString("hello, world")

	if err := b.Delete(5, 7); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if b.Text() != "helloworld" {
		t.Errorf("got %q", b.Text())
	}
	if b.Position() != 5 {
		t.Errorf("cursor = %d, want 5", b.Position())
	}
}

func TestDeleteAll(t *testing.T) {
	b := NewFromString("everything")

	if err := b.Delete(0, b.Len()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if !b.IsEmpty() {
		t.Error("buffer should be empty")
	}
}

func TestDeleteEmptyRangeIsNoOp(t *testing.T) {
	b := NewFromString("hello")
	before := b.Revision()

	if err := b.Delete(3, 3); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if b.Revision() != before {
		t.Error("empty delete must not bump the revision")
	}
}

func TestDeleteErrors(t *testing.T) {
	b := NewFromString("hello")

	tests := []struct {
		name       string
		start, end ByteOffset
	}{
		{"negative start", -1, 2},
		{"end past length", 0, 6},
		{"inverted range", 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Delete(tt.start, tt.end); !errors.Is(err, rope.ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
			if b.Text() != "hello" {
				t.Error("failed delete must leave the buffer unchanged")
			}
		})
	}
}

func TestReplace(t *testing.T) {
	b := NewFromString("hello world")

	end, err := b.Replace(6, 11, "twine")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if b.Text() != "hello twine" {
		t.Errorf("got %q", b.Text())
	}
	if end != 11 {
		t.Errorf("end = %d, want 11", end)
	}
}

func TestReplaceGrowAndShrink(t *testing.T) {
	b := NewFromString("aXc")

	if _, err := b.Replace(1, 2, "long middle"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if b.Text() != "along middlec" {
		t.Errorf("got %q", b.Text())
	}

	if _, err := b.Replace(1, 12, "b"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if b.Text() != "abc" {
		t.Errorf("got %q", b.Text())
	}
}

// Read Tests

func TestSlice(t *testing.T) {
	b := NewFromString("hello world")

	got, err := b.Slice(6, 11)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if got != "world" {
		t.Errorf("got %q, want %q", got, "world")
	}

	if _, err := b.Slice(6, 20); !errors.Is(err, rope.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestRuneAt(t *testing.T) {
	b := NewFromString("héllo")

	r, size, err := b.RuneAt(1)
	if err != nil {
		t.Fatalf("RuneAt failed: %v", err)
	}
	if r != 'é' || size != 2 {
		t.Errorf("got %q size %d", r, size)
	}

	// End of buffer reads as EOF, matching the reader convention.
	if _, _, err := b.RuneAt(b.Len()); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF at end, got %v", err)
	}

	if _, _, err := b.RuneAt(2); !errors.Is(err, rope.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding inside rune, got %v", err)
	}
}

func TestLineOffsets(t *testing.T) {
	b := NewFromString("ab\ncdef\ng")

	start, err := b.LineStart(1)
	if err != nil {
		t.Fatalf("LineStart failed: %v", err)
	}
	if start != 3 {
		t.Errorf("LineStart(1) = %d, want 3", start)
	}

	end, err := b.LineEnd(1)
	if err != nil {
		t.Fatalf("LineEnd failed: %v", err)
	}
	if end != 7 {
		t.Errorf("LineEnd(1) = %d, want 7", end)
	}

	line, err := b.LineAt(5)
	if err != nil {
		t.Fatalf("LineAt failed: %v", err)
	}
	if line != 1 {
		t.Errorf("LineAt(5) = %d, want 1", line)
	}
}

func TestPointConversion(t *testing.T) {
	b := NewFromString("ab\ncdef\ng")

	p, err := b.OffsetToPoint(5)
	if err != nil {
		t.Fatalf("OffsetToPoint failed: %v", err)
	}
	if p.Line != 1 || p.Column != 2 {
		t.Errorf("point = %+v, want {1 2}", p)
	}

	off, err := b.PointToOffset(Point{Line: 1, Column: 2})
	if err != nil {
		t.Fatalf("PointToOffset failed: %v", err)
	}
	if off != 5 {
		t.Errorf("offset = %d, want 5", off)
	}
}

// Cursor Tests

func TestSetPosition(t *testing.T) {
	b := NewFromString("hello")

	if err := b.SetPosition(3); err != nil {
		t.Fatalf("SetPosition failed: %v", err)
	}
	if b.Position() != 3 {
		t.Errorf("position = %d, want 3", b.Position())
	}

	// End of buffer is a valid cursor position.
	if err := b.SetPosition(5); err != nil {
		t.Fatalf("SetPosition at end failed: %v", err)
	}

	if err := b.SetPosition(6); !errors.Is(err, rope.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestSetPositionInsideRune(t *testing.T) {
	b := NewFromString("héllo")

	if err := b.SetPosition(2); !errors.Is(err, rope.ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestClampPosition(t *testing.T) {
	b := NewFromString("héllo")

	tests := []struct {
		offset ByteOffset
		want   ByteOffset
	}{
		{-5, 0},
		{0, 0},
		{2, 1}, // inside é, clamps back to its start
		{3, 3},
		{100, 6},
	}

	for _, tt := range tests {
		if got := b.ClampPosition(tt.offset); got != tt.want {
			t.Errorf("ClampPosition(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

// Line Ending Tests

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		name string
		text string
		want LineEnding
	}{
		{"empty", "", LineEndingLF},
		{"lf", "a\nb\nc\n", LineEndingLF},
		{"crlf", "a\r\nb\r\n", LineEndingCRLF},
		{"cr", "a\rb\r", LineEndingCR},
		{"mixed mostly crlf", "a\r\nb\r\nc\n", LineEndingCRLF},
		{"no endings", "abc", LineEndingLF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLineEnding(tt.text); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContentPreservedOnLoad(t *testing.T) {
	// Loading never rewrites content, even when the detected style
	// differs from the default.
	text := "a\r\nb\r\n"
	b := NewFromString(text)

	if b.Text() != text {
		t.Errorf("content was rewritten: %q", b.Text())
	}
	if b.LineEnding() != LineEndingCRLF {
		t.Errorf("detected ending = %v, want CRLF", b.LineEnding())
	}
}

func TestInsertNormalizesLineEndings(t *testing.T) {
	b := NewFromString("a\r\nb\r\n")

	if _, err := b.Insert(0, "x\ny\n"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if b.Text() != "x\r\ny\r\na\r\nb\r\n" {
		t.Errorf("got %q", b.Text())
	}
}

func TestConvertLineEndings(t *testing.T) {
	b := NewFromString("a\r\nb\r\nc")

	if err := b.ConvertLineEndings(LineEndingLF); err != nil {
		t.Fatalf("ConvertLineEndings failed: %v", err)
	}

	if b.Text() != "a\nb\nc" {
		t.Errorf("got %q", b.Text())
	}

	// The conversion is one undoable edit.
	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "a\r\nb\r\nc" {
		t.Errorf("after undo: got %q", b.Text())
	}
}

// State Tests

func TestRevisionAdvances(t *testing.T) {
	b := NewFromString("hello")

	r0 := b.Revision()
	if _, err := b.Insert(5, "!"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	r1 := b.Revision()
	if r1 <= r0 {
		t.Errorf("revision did not advance: %d -> %d", r0, r1)
	}

	b.Undo()
	if b.Revision() <= r1 {
		t.Error("undo must advance the revision")
	}
}

func TestModifiedAndMarkSaved(t *testing.T) {
	b := NewFromString("hello")

	if b.Modified() {
		t.Error("fresh buffer should not be modified")
	}

	if _, err := b.Insert(5, "!"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !b.Modified() {
		t.Error("buffer should be modified after insert")
	}

	b.MarkSaved()
	if b.Modified() {
		t.Error("buffer should not be modified after MarkSaved")
	}
}

func TestReadOnly(t *testing.T) {
	b := NewFromString("locked", WithReadOnly())

	if _, err := b.Insert(0, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Insert: expected ErrReadOnly, got %v", err)
	}
	if err := b.Delete(0, 1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete: expected ErrReadOnly, got %v", err)
	}
	if _, err := b.Replace(0, 1, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Replace: expected ErrReadOnly, got %v", err)
	}
	if err := b.StageInsert(0, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("StageInsert: expected ErrReadOnly, got %v", err)
	}

	b.SetReadOnly(false)
	if _, err := b.Insert(0, "x"); err != nil {
		t.Errorf("Insert after SetReadOnly(false) failed: %v", err)
	}
}

// Snapshot Tests

func TestSnapshotIsolation(t *testing.T) {
	b := NewFromString("before")
	snap := b.Snapshot()

	if _, err := b.Insert(6, " after"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if snap.Text() != "before" {
		t.Errorf("snapshot changed: %q", snap.Text())
	}
	if b.Text() != "before after" {
		t.Errorf("buffer text: %q", b.Text())
	}
	if snap.Revision() == b.Revision() {
		t.Error("snapshot revision should lag the edited buffer")
	}
}

func TestSnapshotReads(t *testing.T) {
	b := NewFromString("one\ntwo\nthree")
	snap := b.Snapshot()

	if snap.LineCount() != 3 {
		t.Errorf("line count = %d", snap.LineCount())
	}
	line, err := snap.Line(1)
	if err != nil || line != "two" {
		t.Errorf("Line(1) = %q, %v", line, err)
	}

	var sb strings.Builder
	if _, err := snap.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if sb.String() != "one\ntwo\nthree" {
		t.Errorf("WriteTo got %q", sb.String())
	}

	data, err := io.ReadAll(snap.Reader())
	if err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if string(data) != "one\ntwo\nthree" {
		t.Errorf("Reader got %q", data)
	}
}

// Batch Edit Tests

func TestApplyEdit(t *testing.T) {
	b := NewFromString("hello world")

	res, err := b.ApplyEdit(NewEdit(NewRange(0, 5), "goodbye"))
	if err != nil {
		t.Fatalf("ApplyEdit failed: %v", err)
	}

	if b.Text() != "goodbye world" {
		t.Errorf("got %q", b.Text())
	}
	if res.OldText != "hello" {
		t.Errorf("old text = %q", res.OldText)
	}
	if res.NewRange != (Range{Start: 0, End: 7}) {
		t.Errorf("new range = %v", res.NewRange)
	}
	if res.Delta != 2 {
		t.Errorf("delta = %d, want 2", res.Delta)
	}
}

func TestApplyEdits(t *testing.T) {
	b := NewFromString("aaa bbb ccc")

	// Reverse order: highest offset first.
	err := b.ApplyEdits([]Edit{
		NewEdit(NewRange(8, 11), "CCC"),
		NewEdit(NewRange(4, 7), "BBB"),
		NewEdit(NewRange(0, 3), "AAA"),
	})
	if err != nil {
		t.Fatalf("ApplyEdits failed: %v", err)
	}

	if b.Text() != "AAA BBB CCC" {
		t.Errorf("got %q", b.Text())
	}

	// The batch is one undo step.
	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "aaa bbb ccc" {
		t.Errorf("after undo: got %q", b.Text())
	}
}

func TestApplyEditsOverlap(t *testing.T) {
	b := NewFromString("aaa bbb ccc")

	err := b.ApplyEdits([]Edit{
		NewEdit(NewRange(4, 9), "x"),
		NewEdit(NewRange(0, 5), "y"),
	})
	if !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("expected ErrEditsOverlap, got %v", err)
	}
	if b.Text() != "aaa bbb ccc" {
		t.Error("failed batch must leave the buffer unchanged")
	}
}

func TestApplyEditsValidatesBeforeApplying(t *testing.T) {
	b := NewFromString("short")

	err := b.ApplyEdits([]Edit{
		NewEdit(NewRange(10, 20), "x"),
		NewEdit(NewRange(0, 2), "y"),
	})
	if !errors.Is(err, rope.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if b.Text() != "short" {
		t.Error("failed batch must leave the buffer unchanged")
	}
}

// Concurrency Tests

func TestConcurrentReadersAndWriter(t *testing.T) {
	b := NewFromString("seed\n")
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := b.Snapshot()
				if got := ByteOffset(len(snap.Text())); got != snap.Len() {
					t.Errorf("snapshot text/len mismatch: %d vs %d", got, snap.Len())
					return
				}
				_ = b.LineCount()
				_ = b.Position()
			}
		}()
	}

	for i := 0; i < 200; i++ {
		if _, err := b.Insert(b.Len(), fmt.Sprintf("line %d\n", i)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	close(done)
	wg.Wait()

	if b.LineCount() != 202 {
		t.Errorf("line count = %d, want 202", b.LineCount())
	}
}

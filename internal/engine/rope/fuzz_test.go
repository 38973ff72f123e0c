package rope

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func FuzzFromString(f *testing.F) {
	f.Add("")
	f.Add("hello")
	f.Add("hello\nworld")
	f.Add("hello\r\nworld")
	f.Add("日本語")
	f.Add("emoji 🎉 test")
	f.Add(strings.Repeat("long\n", 200))

	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			return
		}
		r := FromString(s)
		if int(r.Len()) != len(s) {
			t.Errorf("Len() = %d, want %d", r.Len(), len(s))
		}
		if r.String() != s {
			t.Error("String() disagrees with the input")
		}
		if got, want := r.NewlineCount(), strings.Count(s, "\n"); got != want {
			t.Errorf("NewlineCount() = %d, want %d", got, want)
		}
	})
}

func FuzzInsert(f *testing.F) {
	f.Add("hello", 0, "x")
	f.Add("hello", 5, "x")
	f.Add("hello", 3, "world")
	f.Add("", 0, "test")
	f.Add("日本語", 3, "x")

	f.Fuzz(func(t *testing.T, initial string, offset int, insert string) {
		if !utf8.ValidString(initial) || !utf8.ValidString(insert) {
			return
		}
		r := FromString(initial)
		at := alignOffset(initial, offset)
		result, err := r.Insert(at, insert)
		if err != nil {
			t.Fatalf("Insert(%d, %q) error = %v", at, insert, err)
		}
		if expected := initial[:at] + insert + initial[at:]; result.String() != expected {
			t.Errorf("Insert(%d, %q) produced wrong text", at, insert)
		}
		if r.String() != initial {
			t.Error("Insert modified the receiver")
		}
	})
}

func FuzzDelete(f *testing.F) {
	f.Add("hello world", 0, 5)
	f.Add("hello world", 6, 11)
	f.Add("hello world", 5, 6)
	f.Add("日本語", 0, 3)

	f.Fuzz(func(t *testing.T, initial string, startSeed, endSeed int) {
		if !utf8.ValidString(initial) {
			return
		}
		start := alignOffset(initial, startSeed)
		end := alignOffset(initial, endSeed)
		if end < start {
			start, end = end, start
		}
		r := FromString(initial)
		result, err := r.Delete(start, end)
		if err != nil {
			t.Fatalf("Delete(%d, %d) error = %v", start, end, err)
		}
		if expected := initial[:start] + initial[end:]; result.String() != expected {
			t.Errorf("Delete(%d, %d) produced wrong text", start, end)
		}
	})
}

func FuzzSplitMerge(f *testing.F) {
	f.Add("hello world", 5)
	f.Add("a\nb\nc", 2)
	f.Add("", 0)

	f.Fuzz(func(t *testing.T, s string, seed int) {
		if !utf8.ValidString(s) {
			return
		}
		r := FromString(s)
		at := alignOffset(s, seed)
		left, right, err := r.Split(at)
		if err != nil {
			t.Fatalf("Split(%d) error = %v", at, err)
		}
		if left.String() != s[:at] || right.String() != s[at:] {
			t.Errorf("Split(%d) halves are wrong", at)
		}
		if Merge(left, right).String() != s {
			t.Errorf("Merge after Split(%d) lost text", at)
		}
	})
}

func FuzzLineIndex(f *testing.F) {
	f.Add("line1\nline2\nline3", 6)
	f.Add("\n\n\n", 1)
	f.Add("no newline", 4)

	f.Fuzz(func(t *testing.T, s string, seed int) {
		if !utf8.ValidString(s) {
			return
		}
		r := FromString(s)
		offset := alignOffset(s, seed)
		line, err := r.LineAt(offset)
		if err != nil {
			t.Fatalf("LineAt(%d) error = %v", offset, err)
		}
		if want := strings.Count(s[:offset], "\n"); line != want {
			t.Errorf("LineAt(%d) = %d, want %d", offset, line, want)
		}
		start, err := r.LineStart(line)
		if err != nil {
			t.Fatalf("LineStart(%d) error = %v", line, err)
		}
		if start > offset {
			t.Errorf("LineStart(%d) = %d, beyond the offset %d it contains", line, start, offset)
		}
	})
}

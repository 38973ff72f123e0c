// twine-bench is a benchmark and stress test for the rope engine. It
// builds a multi-megabyte document and measures typing, random edits,
// line lookups, reads, and history churn, reporting tree height along
// the way.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"strings"
	"time"

	"github.com/dshills/twine/internal/engine/buffer"
	"github.com/dshills/twine/internal/engine/rope"
)

const (
	docBytes      = 8 << 20 // 8 MB base document
	typingBurst   = 100_000 // single-rune keystrokes
	randomEditOps = 10_000
	lineLookupOps = 100_000
	sliceReadOps  = 10_000
	sliceReadSize = 4 * 1024
	historyEdits  = 500
)

type BenchResult struct {
	Name     string
	Duration time.Duration
	Ops      int
	Extra    string
}

func (r BenchResult) String() string {
	if r.Ops > 0 {
		opsPerSec := float64(r.Ops) / r.Duration.Seconds()
		if r.Extra != "" {
			return fmt.Sprintf("%-40s %12v  (%d ops, %.0f ops/sec) %s", r.Name, r.Duration.Round(time.Microsecond), r.Ops, opsPerSec, r.Extra)
		}
		return fmt.Sprintf("%-40s %12v  (%d ops, %.0f ops/sec)", r.Name, r.Duration.Round(time.Microsecond), r.Ops, opsPerSec)
	}
	if r.Extra != "" {
		return fmt.Sprintf("%-40s %12v  %s", r.Name, r.Duration.Round(time.Microsecond), r.Extra)
	}
	return fmt.Sprintf("%-40s %12v", r.Name, r.Duration.Round(time.Microsecond))
}

func main() {
	fmt.Println("Twine Rope Benchmark")
	fmt.Println("====================")
	fmt.Printf("Document size: %d MB\n", docBytes/(1024*1024))
	fmt.Printf("Go version: %s\n", runtime.Version())
	fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Println()

	var results []BenchResult

	runBench := func(name string, fn func() BenchResult) {
		fmt.Printf("  %-40s ", name+"...")
		result := fn()
		fmt.Printf("%v\n", result.Duration.Round(time.Microsecond))
		results = append(results, result)
	}

	fmt.Println("Generating test document...")
	doc, lines := generateDocument()
	fmt.Printf("Document ready: %d bytes, %d lines\n\n", len(doc), lines)

	fmt.Println("Construction:")
	var base rope.Rope
	runBench("Build rope from text", func() BenchResult {
		start := time.Now()
		base = rope.FromString(doc)
		return BenchResult{
			Name:     "Build rope from text",
			Duration: time.Since(start),
			Extra:    heightReport(base),
		}
	})

	fmt.Println("\nTyping workloads:")
	runBench(fmt.Sprintf("Raw inserts (1 byte x %d)", typingBurst), benchRawTyping)
	runBench(fmt.Sprintf("Unstaged buffer (1 byte x %d)", typingBurst), benchUnstagedTyping)
	runBench(fmt.Sprintf("Staged buffer (1 byte x %d)", typingBurst), benchStagedTyping)

	fmt.Println("\nEditing workloads:")
	runBench(fmt.Sprintf("Random edits (x %d)", randomEditOps), func() BenchResult {
		return benchRandomEdits(base)
	})

	fmt.Println("\nRead workloads:")
	runBench(fmt.Sprintf("Line lookups (x %d)", lineLookupOps), func() BenchResult {
		return benchLineLookups(base)
	})
	runBench(fmt.Sprintf("Slice reads (4KB x %d)", sliceReadOps), func() BenchResult {
		return benchSliceReads(base)
	})
	runBench("Serialize (WriteTo)", func() BenchResult {
		return benchSerialize(base)
	})

	fmt.Println("\nHistory workloads:")
	runBench(fmt.Sprintf("Undo/redo cycles (x %d edits)", historyEdits), func() BenchResult {
		return benchUndoRedo(doc)
	})
	runBench(fmt.Sprintf("Snapshot under edits (x %d)", historyEdits), func() BenchResult {
		return benchSnapshots(doc)
	})

	fmt.Println()
	fmt.Println("SUMMARY")
	fmt.Println("=======")
	for _, r := range results {
		fmt.Println(r)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Println()
	fmt.Printf("Peak heap allocation: %d MB\n", m.HeapSys/(1024*1024))
	fmt.Printf("Total allocations: %d MB\n", m.TotalAlloc/(1024*1024))
}

// generateDocument builds numbered text lines totalling about
// docBytes, the same shape a log or source file would have.
func generateDocument() (string, int) {
	var sb strings.Builder
	sb.Grow(docBytes + 128)

	lineNum := 0
	for sb.Len() < docBytes {
		lineNum++
		fmt.Fprintf(&sb, "%08d: ", lineNum)
		contentLen := 60 + (lineNum % 40)
		for i := 0; i < contentLen; i++ {
			sb.WriteByte('a' + byte((lineNum+i)%26))
		}
		sb.WriteByte('\n')
	}
	return sb.String(), lineNum
}

func heightReport(r rope.Rope) string {
	return fmt.Sprintf("height %d, %d chunks", r.Height(), r.ChunkCount())
}

// benchRawTyping commits every keystroke straight into the rope, the
// worst case the EditBuffer exists to avoid.
func benchRawTyping() BenchResult {
	r := rope.FromString("")
	ops := 0
	start := time.Now()

	for i := 0; i < typingBurst; i++ {
		var err error
		r, err = r.Insert(r.Len(), "x")
		if err != nil {
			return errResult("Raw inserts", err)
		}
		ops++
	}

	return BenchResult{
		Name:     fmt.Sprintf("Raw inserts (1 byte x %d)", typingBurst),
		Duration: time.Since(start),
		Ops:      ops,
		Extra:    heightReport(r),
	}
}

// benchUnstagedTyping routes keystrokes through Buffer.Insert, one
// committed edit and one history entry per keystroke.
func benchUnstagedTyping() BenchResult {
	b := buffer.New()
	ops := 0
	start := time.Now()

	for i := 0; i < typingBurst; i++ {
		if _, err := b.Insert(b.Len(), "x"); err != nil {
			return errResult("Unstaged buffer", err)
		}
		ops++
	}

	return BenchResult{
		Name:     fmt.Sprintf("Unstaged buffer (1 byte x %d)", typingBurst),
		Duration: time.Since(start),
		Ops:      ops,
		Extra:    heightReport(b.Rope()),
	}
}

// benchStagedTyping routes keystrokes through the staging buffer, so
// contiguous runs land in the rope as single edits.
func benchStagedTyping() BenchResult {
	b := buffer.New()
	ops := 0
	start := time.Now()

	for i := 0; i < typingBurst; i++ {
		if err := b.StageInsert(b.Position(), "x"); err != nil {
			return errResult("Staged buffer", err)
		}
		ops++
	}
	b.Flush()

	return BenchResult{
		Name:     fmt.Sprintf("Staged buffer (1 byte x %d)", typingBurst),
		Duration: time.Since(start),
		Ops:      ops,
		Extra:    fmt.Sprintf("%s, %d undo entries", heightReport(b.Rope()), b.UndoCount()),
	}
}

func benchRandomEdits(base rope.Rope) BenchResult {
	r := base
	rng := rand.New(rand.NewSource(42))
	word := "disrupt "
	ops := 0
	start := time.Now()

	for i := 0; i < randomEditOps; i++ {
		var err error
		if rng.Intn(10) < 7 || r.Len() < 64 {
			offset := rope.ByteOffset(rng.Intn(int(r.Len()) + 1))
			r, err = r.Insert(offset, word)
		} else {
			from := rng.Intn(int(r.Len()) - 32)
			r, err = r.Delete(rope.ByteOffset(from), rope.ByteOffset(from+8))
		}
		if err != nil {
			return errResult("Random edits", err)
		}
		ops++
	}

	return BenchResult{
		Name:     fmt.Sprintf("Random edits (x %d)", randomEditOps),
		Duration: time.Since(start),
		Ops:      ops,
		Extra:    heightReport(r),
	}
}

func benchLineLookups(r rope.Rope) BenchResult {
	rng := rand.New(rand.NewSource(7))
	lineCount := r.LineCount()
	ops := 0
	start := time.Now()

	for i := 0; i < lineLookupOps; i++ {
		line := rng.Intn(lineCount)
		offset, err := r.LineStart(line)
		if err != nil {
			return errResult("Line lookups", err)
		}
		back, err := r.LineAt(offset)
		if err != nil {
			return errResult("Line lookups", err)
		}
		if back != line {
			return errResult("Line lookups", fmt.Errorf("line %d resolved to %d", line, back))
		}
		ops++
	}

	return BenchResult{
		Name:     fmt.Sprintf("Line lookups (x %d)", lineLookupOps),
		Duration: time.Since(start),
		Ops:      ops,
	}
}

func benchSliceReads(r rope.Rope) BenchResult {
	rng := rand.New(rand.NewSource(11))
	maxStart := int(r.Len()) - sliceReadSize
	ops := 0
	bytesRead := 0
	start := time.Now()

	for i := 0; i < sliceReadOps; i++ {
		from := rng.Intn(maxStart)
		s, err := r.Slice(rope.ByteOffset(from), rope.ByteOffset(from+sliceReadSize))
		if err != nil {
			return errResult("Slice reads", err)
		}
		bytesRead += len(s)
		ops++
	}

	return BenchResult{
		Name:     fmt.Sprintf("Slice reads (4KB x %d)", sliceReadOps),
		Duration: time.Since(start),
		Ops:      ops,
		Extra:    fmt.Sprintf("%d MB read", bytesRead/(1024*1024)),
	}
}

func benchSerialize(r rope.Rope) BenchResult {
	start := time.Now()

	n, err := r.WriteTo(io.Discard)
	if err != nil {
		return errResult("Serialize (WriteTo)", err)
	}

	duration := time.Since(start)
	mbPerSec := float64(n) / (1024 * 1024) / duration.Seconds()
	return BenchResult{
		Name:     "Serialize (WriteTo)",
		Duration: duration,
		Extra:    fmt.Sprintf("%.0f MB/sec", mbPerSec),
	}
}

func benchUndoRedo(doc string) BenchResult {
	b := buffer.NewFromString(doc, buffer.WithHistoryLimit(historyEdits+1))

	for i := 0; i < historyEdits; i++ {
		if _, err := b.Insert(0, "edit\n"); err != nil {
			return errResult("Undo/redo cycles", err)
		}
	}

	ops := 0
	start := time.Now()

	for cycle := 0; cycle < 3; cycle++ {
		for b.Undo() {
			ops++
		}
		for b.Redo() {
			ops++
		}
	}

	return BenchResult{
		Name:     fmt.Sprintf("Undo/redo cycles (x %d edits)", historyEdits),
		Duration: time.Since(start),
		Ops:      ops,
	}
}

// benchSnapshots measures the cost of taking a consistent read view
// while the buffer keeps changing: near zero, since a snapshot is a
// root handle, not a copy.
func benchSnapshots(doc string) BenchResult {
	b := buffer.NewFromString(doc)
	ops := 0
	start := time.Now()

	var last buffer.Snapshot
	for i := 0; i < historyEdits; i++ {
		last = b.Snapshot()
		if _, err := b.Insert(0, "x"); err != nil {
			return errResult("Snapshot under edits", err)
		}
		ops++
	}

	return BenchResult{
		Name:     fmt.Sprintf("Snapshot under edits (x %d)", historyEdits),
		Duration: time.Since(start),
		Ops:      ops,
		Extra:    fmt.Sprintf("last snapshot at revision %d", last.Revision()),
	}
}

func errResult(name string, err error) BenchResult {
	return BenchResult{Name: name, Extra: fmt.Sprintf("ERROR: %v", err)}
}

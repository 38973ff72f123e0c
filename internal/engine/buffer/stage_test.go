package buffer

import (
	"errors"
	"testing"
)

// Staging Tests

func TestStageInsertAbsorbsRun(t *testing.T) {
	b := New()

	for i, ch := range []string{"h", "e", "l", "l", "o"} {
		if err := b.StageInsert(ByteOffset(i), ch); err != nil {
			t.Fatalf("StageInsert failed: %v", err)
		}
	}

	// The run is staged, not committed.
	if b.Text() != "" {
		t.Errorf("staged text leaked into reads: %q", b.Text())
	}
	if b.Pending() != 5 {
		t.Errorf("pending = %d, want 5", b.Pending())
	}
	if b.Position() != 5 {
		t.Errorf("position = %d, want 5", b.Position())
	}

	b.Flush()

	if b.Text() != "hello" {
		t.Errorf("got %q, want %q", b.Text(), "hello")
	}
	if b.Pending() != 0 {
		t.Errorf("pending after flush = %d", b.Pending())
	}

	// The whole run is one undo step.
	if b.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", b.UndoCount())
	}
	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "" {
		t.Errorf("after undo: %q", b.Text())
	}
}

func TestStagedTextInvisibleToSnapshots(t *testing.T) {
	b := NewFromString("base")

	if err := b.StageInsert(4, " typed"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}

	snap := b.Snapshot()
	if snap.Text() != "base" {
		t.Errorf("snapshot sees staged text: %q", snap.Text())
	}
	if b.Len() != 4 {
		t.Errorf("Len = %d, want 4", b.Len())
	}

	b.Flush()
	if b.Text() != "base typed" {
		t.Errorf("got %q", b.Text())
	}
	if snap.Text() != "base" {
		t.Errorf("old snapshot changed: %q", snap.Text())
	}
}

func TestStageDeleteAbsorbsBackspace(t *testing.T) {
	b := New()

	if err := b.StageInsert(0, "helloo"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	if err := b.StageDelete(5, 6); err != nil {
		t.Fatalf("StageDelete failed: %v", err)
	}

	if b.Pending() != 5 {
		t.Errorf("pending = %d, want 5", b.Pending())
	}
	if b.Position() != 5 {
		t.Errorf("position = %d, want 5", b.Position())
	}

	b.Flush()
	if b.Text() != "hello" {
		t.Errorf("got %q, want %q", b.Text(), "hello")
	}
	if b.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", b.UndoCount())
	}
}

func TestStageDeleteOutsideRunCommitsFirst(t *testing.T) {
	b := NewFromString("abcdef")

	if err := b.StageInsert(6, "xyz"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	// Deleting committed text cannot be absorbed; the run commits and
	// the delete runs against the tree.
	if err := b.StageDelete(0, 1); err != nil {
		t.Fatalf("StageDelete failed: %v", err)
	}

	if b.Text() != "bcdefxyz" {
		t.Errorf("got %q", b.Text())
	}
	if b.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2", b.UndoCount())
	}
}

func TestNonContiguousInsertCommitsRun(t *testing.T) {
	b := New()

	if err := b.StageInsert(0, "ab"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	// Offset 0 no longer continues the run, which ends at 2.
	if err := b.StageInsert(0, "cd"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}

	if b.Text() != "ab" {
		t.Errorf("first run should be committed: %q", b.Text())
	}
	if b.Pending() != 2 {
		t.Errorf("pending = %d, want 2", b.Pending())
	}

	b.Flush()
	if b.Text() != "cdab" {
		t.Errorf("got %q", b.Text())
	}
	if b.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2", b.UndoCount())
	}
}

func TestStageAutoCommitAtCapacity(t *testing.T) {
	b := New(WithBatchCapacity(4))

	for i, ch := range []string{"a", "b", "c", "d", "e"} {
		if err := b.StageInsert(ByteOffset(i), ch); err != nil {
			t.Fatalf("StageInsert failed: %v", err)
		}
	}

	// The first four committed when the stage filled; the fifth is
	// staged in the re-armed run.
	if b.Text() != "abcd" {
		t.Errorf("got %q, want %q", b.Text(), "abcd")
	}
	if b.Pending() != 1 {
		t.Errorf("pending = %d, want 1", b.Pending())
	}

	b.Flush()
	if b.Text() != "abcde" {
		t.Errorf("got %q", b.Text())
	}
	if b.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2", b.UndoCount())
	}
}

func TestStageInsertOutOfRange(t *testing.T) {
	b := NewFromString("ab")

	err := b.StageInsert(3, "x")
	if err == nil {
		t.Fatal("expected error for out of range stage")
	}
	if b.Text() != "ab" {
		t.Errorf("buffer changed: %q", b.Text())
	}
}

func TestStageInsertNormalizesLineEndings(t *testing.T) {
	b := NewFromString("a\r\nb")

	if err := b.StageInsert(b.Len(), "\nx"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	b.Flush()

	if b.Text() != "a\r\nb\r\nx" {
		t.Errorf("got %q", b.Text())
	}
}

func TestDiscardStage(t *testing.T) {
	b := NewFromString("keep")

	if err := b.StageInsert(4, " drop"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	if !b.Modified() {
		t.Error("pending stage should count as modified")
	}

	b.DiscardStage()

	if b.Text() != "keep" {
		t.Errorf("got %q", b.Text())
	}
	if b.Position() != 4 {
		t.Errorf("position = %d, want 4", b.Position())
	}
	if b.Pending() != 0 {
		t.Errorf("pending = %d", b.Pending())
	}
	if b.CanUndo() {
		t.Error("discarded stage must not leave an undo entry")
	}
}

func TestCommittedEditFlushesStage(t *testing.T) {
	b := New()

	if err := b.StageInsert(0, "ab"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	// A committed insert flushes the run first and sees its text.
	if _, err := b.Insert(2, "c"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if b.Text() != "abc" {
		t.Errorf("got %q", b.Text())
	}
	if b.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2", b.UndoCount())
	}
}

// Undo Tests

func TestUndoRedoRestoresPosition(t *testing.T) {
	b := New()

	if _, err := b.Insert(0, "hello"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := b.Insert(5, " world"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "hello" {
		t.Errorf("got %q", b.Text())
	}
	if b.Position() != 5 {
		t.Errorf("position = %d, want 5", b.Position())
	}

	if !b.Redo() {
		t.Fatal("Redo failed")
	}
	if b.Text() != "hello world" {
		t.Errorf("got %q", b.Text())
	}
	if b.Position() != 11 {
		t.Errorf("position = %d, want 11", b.Position())
	}
}

func TestUndoRedoOnEmptyHistory(t *testing.T) {
	b := New()

	if b.Undo() {
		t.Error("Undo on empty history should return false")
	}
	if b.Redo() {
		t.Error("Redo on empty history should return false")
	}
	if b.CanUndo() || b.CanRedo() {
		t.Error("empty history should report nothing to undo or redo")
	}
}

func TestRedoClearedByNewEdit(t *testing.T) {
	b := New()

	if _, err := b.Insert(0, "a"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	b.Undo()
	if !b.CanRedo() {
		t.Fatal("expected redo available after undo")
	}

	if _, err := b.Insert(0, "b"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if b.CanRedo() {
		t.Error("new edit must clear the redo stack")
	}
}

func TestCanUndoCountsPendingStage(t *testing.T) {
	b := New()

	if b.CanUndo() {
		t.Error("fresh buffer should have nothing to undo")
	}
	if err := b.StageInsert(0, "x"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	if !b.CanUndo() {
		t.Error("pending stage should be undoable")
	}

	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "" {
		t.Errorf("got %q", b.Text())
	}
}

func TestUndoLabels(t *testing.T) {
	b := New()

	if _, err := b.Insert(0, "abc"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := b.StageInsert(3, "d"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	b.Flush()

	infos := b.UndoInfo()
	if len(infos) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(infos))
	}
	if infos[0].Label != "typing" {
		t.Errorf("most recent label = %q, want %q", infos[0].Label, "typing")
	}
	if infos[1].Label != "insert" {
		t.Errorf("older label = %q, want %q", infos[1].Label, "insert")
	}

	info, ok := b.PeekUndo()
	if !ok || info.Label != "typing" {
		t.Errorf("PeekUndo = %q, %v", info.Label, ok)
	}
}

// Group Tests

func TestGroupUndoesAsOne(t *testing.T) {
	b := New()

	if _, err := b.Insert(0, "a"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	b.BeginGroup("edit run")
	if _, err := b.Insert(1, "b"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := b.Insert(2, "c"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	b.EndGroup()

	if b.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2", b.UndoCount())
	}

	if !b.Undo() {
		t.Fatal("Undo failed")
	}
	if b.Text() != "a" {
		t.Errorf("got %q, want %q", b.Text(), "a")
	}

	info, ok := b.PeekRedo()
	if !ok || info.Label != "edit run" {
		t.Errorf("redo label = %q, %v", info.Label, ok)
	}
}

func TestGroupIncludesStagedTyping(t *testing.T) {
	b := New()

	b.BeginGroup("typed group")
	if err := b.StageInsert(0, "abc"); err != nil {
		t.Fatalf("StageInsert failed: %v", err)
	}
	b.EndGroup()

	if b.Text() != "abc" {
		t.Errorf("got %q", b.Text())
	}
	if b.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", b.UndoCount())
	}
}

func TestCancelGroupKeepsEdits(t *testing.T) {
	b := NewFromString("base")

	b.BeginGroup("doomed")
	if _, err := b.Insert(4, "!"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	b.CancelGroup()

	if b.Text() != "base!" {
		t.Errorf("got %q", b.Text())
	}
	if b.CanUndo() {
		t.Error("canceled group must not leave an undo entry")
	}
}

func TestTransaction(t *testing.T) {
	b := New()

	err := b.Transaction("swap", func() error {
		if _, err := b.Insert(0, "x"); err != nil {
			return err
		}
		_, err := b.Insert(1, "y")
		return err
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}

	if b.Text() != "xy" {
		t.Errorf("got %q", b.Text())
	}
	if b.UndoCount() != 1 {
		t.Errorf("undo count = %d, want 1", b.UndoCount())
	}
}

func TestTransactionErrorDiscardsEntry(t *testing.T) {
	b := New()
	boom := errors.New("boom")

	err := b.Transaction("failing", func() error {
		if _, err := b.Insert(0, "partial"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// Edits stay applied; only the undo entry is dropped.
	if b.Text() != "partial" {
		t.Errorf("got %q", b.Text())
	}
	if b.CanUndo() {
		t.Error("failed transaction must not leave an undo entry")
	}
}

// Checkpoint Tests

func TestCheckpointUndoTo(t *testing.T) {
	b := NewFromString("x")

	if _, err := b.Insert(1, "1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := b.Insert(2, "2"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	cp := b.Checkpoint()

	for _, ch := range []string{"3", "4", "5"} {
		if _, err := b.Insert(b.Len(), ch); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if b.Text() != "x12345" {
		t.Fatalf("setup: got %q", b.Text())
	}

	n := b.UndoTo(cp)
	if n != 3 {
		t.Errorf("undone = %d, want 3", n)
	}
	if b.Text() != "x12" {
		t.Errorf("got %q, want %q", b.Text(), "x12")
	}

	// The rewound edits are redoable.
	for b.Redo() {
	}
	if b.Text() != "x12345" {
		t.Errorf("after redo: got %q", b.Text())
	}
}

func TestUndoToAtCheckpointIsNoOp(t *testing.T) {
	b := NewFromString("x")
	cp := b.Checkpoint()

	if n := b.UndoTo(cp); n != 0 {
		t.Errorf("undone = %d, want 0", n)
	}
	if b.Text() != "x" {
		t.Errorf("got %q", b.Text())
	}
}

// History Limit Tests

func TestHistoryLimitViaOption(t *testing.T) {
	b := New(WithHistoryLimit(2))

	for i, ch := range []string{"a", "b", "c"} {
		if _, err := b.Insert(ByteOffset(i), ch); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if b.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2", b.UndoCount())
	}

	b.Undo()
	b.Undo()
	if b.CanUndo() {
		t.Error("oldest entry should have been dropped")
	}
	// The first edit is no longer reachable.
	if b.Text() != "a" {
		t.Errorf("got %q, want %q", b.Text(), "a")
	}
}

func TestClearHistory(t *testing.T) {
	b := New()

	if _, err := b.Insert(0, "a"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	b.Undo()
	b.ClearHistory()

	if b.CanUndo() || b.CanRedo() {
		t.Error("ClearHistory must drop both stacks")
	}
}

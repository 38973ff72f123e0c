// Package buffer provides a thread-safe text buffer built on top of
// the rope data structure. It serves as the primary interface for
// text manipulation in the editor engine.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Efficient text operations through the underlying rope
//   - Coordinate conversion between byte offsets and line/column positions
//   - A staging area that batches contiguous typing into one edit
//   - Snapshot-based undo and redo with grouping
//   - Read-only snapshots for concurrent access
//   - Cursor tracking, file path, and modified state
//
// Basic usage:
//
//	// Create a buffer with some text
//	buf := buffer.NewFromString("Hello, World!")
//
//	// Insert text
//	buf.Insert(7, "Beautiful ")  // "Hello, Beautiful World!"
//
//	// Delete text
//	buf.Delete(0, 7)  // "Beautiful World!"
//
//	// Undo restores the previous state in O(1)
//	buf.Undo()
//
//	// Get a snapshot for concurrent reading
//	snap := buf.Snapshot()
//	go func() {
//	    text := snap.Text()
//	    // Process text...
//	}()
//
// Staged Typing:
//
// StageInsert and StageDelete absorb contiguous keystrokes into a
// small flat buffer instead of rebuilding the tree per character. A
// staged run commits as a single edit, and a single undo step, when
// Flush is called, when the stage fills, or before any non-contiguous
// edit. Reads always see committed content only.
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Read operations acquire a read
// lock, while write operations acquire an exclusive write lock. For
// scenarios requiring multiple reads without the possibility of
// intervening writes, use Snapshot() to obtain a consistent read-only
// view.
package buffer

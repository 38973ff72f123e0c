// Package rope provides an immutable rope data structure for efficient text storage and manipulation.
//
// A rope is a binary tree whose leaves hold bounded chunks of text and
// whose internal nodes store the byte length of their left subtree
// alongside aggregated measurements. An offset descends the tree by
// comparing against those weights, so position lookups, splits, and
// merges all run in O(log n).
//
// Key properties:
//   - Operations return new ropes; a Rope value is never modified,
//     so any handle doubles as an O(1) snapshot
//   - Edits copy only one root-to-leaf path and share every other
//     node with the previous version
//   - Chunk boundaries fall after every newline, making line lookups
//     a descent over per-subtree newline counts
//   - Offsets are validated, not clamped: out-of-range positions and
//     positions inside a multi-byte rune return errors and leave the
//     rope untouched
//
// Basic usage:
//
//	r := rope.FromString("hello world")
//	r, err := r.Insert(5, ",")     // "hello, world"
//	r, err = r.Delete(0, 6)        // "world"
//	text := r.String()             // "world"
//
// Interactive edits should go through an EditBuffer, which batches a
// run of contiguous insertions into a single split and merge instead
// of one tree edit per keystroke.
package rope

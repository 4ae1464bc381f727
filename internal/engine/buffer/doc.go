// Package buffer is the named, undo-tracked span of text a window looks
// at. It sits directly on top of the gap-buffer engine and adds what a
// single gap buffer doesn't have on its own: a name and filename, dirty
// and read-only flags, cached line/byte/word statistics, and the two
// coordinate systems everything above it (window reframing, the
// differential renderer, the search engine) needs to agree on.
//
//   - ByteOffset: raw byte position, what the gap buffer and undo log
//     actually index by.
//   - Point: line and column, column counted in bytes from the start of
//     the line — cheap, exact, and what Insert/Delete/the undo log deal
//     in.
//   - DisplayPoint: line and column, column counted in terminal cells —
//     what a tab or a wide CJK/emoji grapheme actually occupies on
//     screen, via uniseg. The window package and the renderer do not
//     use it: window points carry byte columns (Point) and reframing
//     is by line only.
//
// Edits route through history.Applier so every Insert/Delete/Replace is
// undoable without the buffer itself knowing anything about undo
// grouping policy.
//
// All Buffer methods are safe for concurrent use: reads take the
// RWMutex's read lock, writes take the write lock.
package buffer

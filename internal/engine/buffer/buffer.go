package buffer

import (
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"github.com/wllclngn/muedit/internal/engine/gapbuffer"
	"github.com/wllclngn/muedit/internal/engine/history"
	"github.com/wllclngn/muedit/internal/search"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap or are not in reverse order")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "\\n"
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Flag is a bit in a Buffer's flags field.
type Flag uint8

const (
	FlagChanged Flag = 1 << iota
	FlagInvisible
	FlagTruncated
	FlagViewOnly
	FlagCrypt
)

// Mode is a bit in a Buffer's mode bitset, analogous to the original's
// per-buffer editing modes (wrap, overwrite, read-only-by-convention,
// and so on); the core only needs the bitset mechanics, not any
// particular mode's behavior.
type Mode uint32

// stats holds the cached statistics, each field
// held as an atomic so a read is always self-consistent without a lock.
type stats struct {
	lineCount atomic.Int64
	byteCount atomic.Int64
	wordCount atomic.Int64
	dirty     atomic.Bool
}

// Buffer wraps a GapBuffer with the name/flags/modes/statistics/undo-log
// surface. All methods are thread-safe.
type Buffer struct {
	mu sync.RWMutex

	name     string
	filename string
	flags    Flag
	modes    Mode

	gb *gapbuffer.GapBuffer

	undo *history.Engine

	dot  Point
	mark Point

	stats stats

	lineEnding LineEnding
	tabWidth   int

	windowCount int
}

// NewBuffer creates a new empty, named buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		gb:         gapbuffer.New(),
		undo:       history.New(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.recomputeStatsLocked()
	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	s = b.normalizeLineEndings(s)
	b.gb.Insert(0, []byte(s))
	b.recomputeStatsLocked()
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	b := NewBuffer(opts...)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := b.normalizeLineEndings(string(data))
	b.gb.Insert(0, []byte(text))
	b.recomputeStatsLocked()
	return b, nil
}

func (b *Buffer) normalizeLineEndings(s string) string {
	switch b.lineEnding {
	case LineEndingLF:
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	case LineEndingCRLF:
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
		s = strings.ReplaceAll(s, "\n", "\r\n")
	case LineEndingCR:
		s = strings.ReplaceAll(s, "\r\n", "\r")
		s = strings.ReplaceAll(s, "\n", "\r")
	}
	return s
}

// Name returns the buffer's unique name.
func (b *Buffer) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// Filename returns the path the buffer was loaded from, if any.
func (b *Buffer) Filename() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filename
}

// SetFilename updates the backing filename.
func (b *Buffer) SetFilename(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filename = name
}

// Flags returns the current flag bitset.
func (b *Buffer) Flags() Flag {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.flags
}

// HasFlag reports whether f is set.
func (b *Buffer) HasFlag(f Flag) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.flags&f != 0
}

// Modes returns the current mode bitset.
func (b *Buffer) Modes() Mode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.modes
}

// SetMode ORs m into the mode bitset.
func (b *Buffer) SetMode(m Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modes |= m
}

// ClearMode ANDNOTs m out of the mode bitset.
func (b *Buffer) ClearMode(m Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modes &^= m
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.String()
}

// TextRange returns text in the given byte range.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := end - start
	out := make([]byte, n)
	written, _ := b.gb.GetText(start, n, out)
	return string(out[:written])
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.Len()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(b.gb.LineCount())
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	off, _ := b.gb.LineToOffset(int(line))
	return off
}

// LineEndOffset returns the byte offset of the end of a line (before the
// newline, or the buffer end for the last line).
func (b *Buffer) LineEndOffset(line uint32) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEndOffsetLocked(line)
}

func (b *Buffer) lineEndOffsetLocked(line uint32) ByteOffset {
	start, status := b.gb.LineToOffset(int(line))
	if status != gapbuffer.Success {
		return b.gb.Len()
	}
	next, status := b.gb.LineToOffset(int(line) + 1)
	n := b.gb.Len()
	if status != gapbuffer.Success {
		return n
	}
	if next == 0 {
		return n
	}
	end := next - 1 // drop the newline
	if end < start {
		end = start
	}
	return end
}

// LineText returns the text of a specific line (without its newline).
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, status := b.gb.LineToOffset(int(line))
	if status != gapbuffer.Success {
		return ""
	}
	end := b.lineEndOffsetLocked(line)
	n := end - start
	if n <= 0 {
		return ""
	}
	out := make([]byte, n)
	written, _ := b.gb.GetText(start, n, out)
	return string(out[:written])
}

// LineLen returns the length of a specific line in bytes (without newline).
func (b *Buffer) LineLen(line uint32) int {
	return len(b.LineText(line))
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, status := b.gb.GetChar(offset)
	return v, status == gapbuffer.Success
}

// RuneAt returns the rune at the given byte offset.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := b.gb.Len()
	if offset < 0 || offset >= n {
		return utf8.RuneError, 0
	}
	end := offset + 4
	if end > n {
		end = n
	}
	buf := make([]byte, end-offset)
	written, _ := b.gb.GetText(offset, end-offset, buf)
	return utf8.DecodeRune(buf[:written])
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	line, _ := b.gb.OffsetToLine(offset)
	lineStart, _ := b.gb.LineToOffset(line)
	return Point{Line: uint32(line), Column: uint32(offset - lineStart)}
}

// PointToOffset converts line/column to byte offset.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lineStart, _ := b.gb.LineToOffset(int(point.Line))
	return lineStart + ByteOffset(point.Column)
}

// OffsetToDisplayPoint converts a byte offset to a line/screen-column
// position, expanding tabs to the buffer's tab width and widening
// double-width graphemes, so it agrees with where the renderer actually
// paints the corresponding cell.
func (b *Buffer) OffsetToDisplayPoint(offset ByteOffset) DisplayPoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	line, _ := b.gb.OffsetToLine(offset)
	lineStart, _ := b.gb.LineToOffset(line)
	n := offset - lineStart
	buf := make([]byte, n)
	written, _ := b.gb.GetText(lineStart, n, buf)
	return DisplayPoint{Line: uint32(line), Column: displayColumnFromString(string(buf[:written]), b.tabWidth)}
}

// DisplayPointToOffset converts a line/screen-column position back to a
// byte offset, the inverse of OffsetToDisplayPoint. A column that falls
// inside a multi-cell grapheme or tab stop resolves to that grapheme's
// starting byte.
func (b *Buffer) DisplayPointToOffset(point DisplayPoint) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lineStart, _ := b.gb.LineToOffset(int(point.Line))
	end := b.lineEndOffsetLocked(point.Line)
	n := end - lineStart
	buf := make([]byte, n)
	written, _ := b.gb.GetText(lineStart, n, buf)
	byteCol := byteOffsetFromDisplayColumn(string(buf[:written]), point.Column, b.tabWidth)
	return lineStart + ByteOffset(byteCol)
}

// Write Operations

// Insert inserts text at the given offset, recording an undo entry and
// updating cached statistics incrementally. Returns the end position of
// the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > b.gb.Len() {
		return 0, ErrOffsetOutOfRange
	}

	text = b.normalizeLineEndings(text)
	if status := b.gb.Insert(offset, []byte(text)); status != gapbuffer.Success {
		return 0, ErrOffsetOutOfRange
	}

	b.recordEditLocked(history.Insert, offset, []byte(text))
	b.applyStatsDeltaLocked(text, +1)
	b.flags |= FlagChanged

	return offset + ByteOffset(len(text)), nil
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > b.gb.Len() {
		return ErrRangeInvalid
	}

	n := end - start
	old := make([]byte, n)
	written, _ := b.gb.GetText(start, n, old)
	old = old[:written]

	if status := b.gb.Delete(start, n); status != gapbuffer.Success {
		return ErrRangeInvalid
	}

	b.recordEditLocked(history.Delete, start, old)
	b.applyStatsDeltaLocked(string(old), -1)
	b.flags |= FlagChanged

	return nil
}

// Replace replaces text in the given range with new text, returning the
// end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > b.gb.Len() {
		return 0, ErrRangeInvalid
	}

	n := end - start
	old := make([]byte, n)
	written, _ := b.gb.GetText(start, n, old)
	old = old[:written]

	text = b.normalizeLineEndings(text)

	if status := b.gb.Delete(start, n); status != gapbuffer.Success {
		return 0, ErrRangeInvalid
	}
	if status := b.gb.Insert(start, []byte(text)); status != gapbuffer.Success {
		return 0, ErrRangeInvalid
	}

	b.recordEditLocked(history.Delete, start, old)
	b.recordEditLocked(history.Insert, start, []byte(text))
	b.stats.dirty.Store(true)
	b.flags |= FlagChanged

	return start + ByteOffset(len(text)), nil
}

// ApplyEdit applies a single edit to the buffer.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	oldText := b.TextRange(edit.Range.Start, edit.Range.End)
	newEnd, err := b.Replace(edit.Range.Start, edit.Range.End, edit.NewText)
	if err != nil {
		return EditResult{}, err
	}
	return EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: newEnd},
		OldText:  oldText,
		Delta:    int64(len(edit.NewText)) - int64(edit.Range.Len()),
	}, nil
}

// ApplyEdits applies multiple edits atomically. Edits must be in reverse
// order (highest offset first) to maintain validity.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}
	for _, edit := range edits {
		if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End || edit.Range.End > b.Len() {
			return ErrRangeInvalid
		}
	}
	b.undo.GroupBegin()
	defer b.undo.GroupEnd()
	for _, edit := range edits {
		if _, err := b.Replace(edit.Range.Start, edit.Range.End, edit.NewText); err != nil {
			return err
		}
	}
	return nil
}

// Undo/Redo Engine glue (history.Applier implementation)

func (b *Buffer) ApplyInsert(line, col int, text []byte) error {
	off, _ := b.gb.LineToOffset(line)
	pos := off + ByteOffset(col)
	if status := b.gb.Insert(pos, text); status != gapbuffer.Success {
		return ErrOffsetOutOfRange
	}
	b.stats.dirty.Store(true)
	return nil
}

func (b *Buffer) ApplyDelete(line, col, n int) error {
	off, _ := b.gb.LineToOffset(line)
	pos := off + ByteOffset(col)
	if status := b.gb.Delete(pos, int64(n)); status != gapbuffer.Success {
		return ErrRangeInvalid
	}
	b.stats.dirty.Store(true)
	return nil
}

func (b *Buffer) SetDot(line, col int) {
	off, _ := b.gb.LineToOffset(line)
	b.dot = Point{Line: uint32(line), Column: uint32(col)}
	_ = off
}

// Undo reverts the most recent undo group.
func (b *Buffer) Undo() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.undo.Undo(b)
	if !b.undo.IsDirty() {
		b.flags &^= FlagChanged
	} else {
		b.flags |= FlagChanged
	}
	return err
}

// Redo re-applies the most recently undone group.
func (b *Buffer) Redo() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.undo.Redo(b)
	if !b.undo.IsDirty() {
		b.flags &^= FlagChanged
	} else {
		b.flags |= FlagChanged
	}
	return err
}

// MarkSaved stamps the current undo version as the saved baseline and
// clears the CHANGED flag.
func (b *Buffer) MarkSaved() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.undo.MarkSaved()
	b.flags &^= FlagChanged
}

func (b *Buffer) recordEditLocked(typ history.RecordType, offset ByteOffset, text []byte) {
	if b.undo.InOperation() {
		return
	}
	line, _ := b.gb.OffsetToLine(offset)
	lineStart, _ := b.gb.LineToOffset(line)
	col := int(offset - lineStart)
	b.undo.Record(typ, line, col, text)
}

// Search

// SearchForward runs a Boyer-Moore-Horspool forward search over the
// buffer content starting at start.
func (b *Buffer) SearchForward(start ByteOffset, pattern *search.Pattern) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	off, _ := b.gb.SearchForward(start, nil, func(text, _ []byte) int {
		return pattern.Forward(text, 0)
	})
	return off
}

// Buffer State

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gb.Len() == 0
}

// IsDirty reports whether the buffer differs from its saved baseline.
func (b *Buffer) IsDirty() bool {
	return b.undo.IsDirty()
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetLineEnding sets the buffer's line ending style. Does not convert
// existing line endings.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabWidth = width
}

// Helper functions for screen-column conversion

// displayColumnFromString walks s grapheme cluster by grapheme cluster,
// summing each cluster's terminal cell width, with a tab expanding to
// the next multiple of tabWidth.
func displayColumnFromString(s string, tabWidth int) uint32 {
	var col uint32
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			col = uint32((int(col)/tabWidth + 1) * tabWidth)
			continue
		}
		col += uint32(width)
	}
	return col
}

// byteOffsetFromDisplayColumn is the inverse walk: it returns the byte
// offset of the grapheme cluster occupying the given display column.
func byteOffsetFromDisplayColumn(line string, displayCol uint32, tabWidth int) int {
	var col uint32
	var byteOffset int
	s := line
	state := -1
	for len(s) > 0 {
		if col >= displayCol {
			break
		}
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			col = uint32((int(col)/tabWidth + 1) * tabWidth)
		} else {
			col += uint32(width)
		}
		byteOffset += len(cluster)
	}
	return byteOffset
}

// Package gapbuffer implements the core mutable byte sequence underlying a
// buffer: a contiguous backing array with a movable gap at the cursor, so
// that sequential edits at a stable cursor cost amortised O(1).
package gapbuffer

import (
	"sync/atomic"
)

// Status is the fallible-operation result code. Zero value is Success.
type Status int

const (
	Success Status = iota
	ErrStatus
	OutOfMemory
	Invalid
	Range
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case ErrStatus:
		return "error"
	case OutOfMemory:
		return "out of memory"
	case Invalid:
		return "invalid argument"
	case Range:
		return "range"
	default:
		return "unknown status"
	}
}

const (
	// minSize is the minimum capacity given to a freshly compacted buffer
	// beyond its logical size.
	minSize = 64

	// growthFactor is applied to capacity when the gap cannot hold an
	// incoming insert.
	growthFactor = 1.5

	// compactThreshold is the gap size, in bytes, beyond which a delete
	// triggers compaction back down to logical_size+minSize.
	compactThreshold = 4096

	// lineIndexChunk is the growth chunk size for the line index slice.
	lineIndexChunk = 128
)

// charCache remembers the last (line, byte offset, char offset) triple
// computed for a logical position, invalidated on any edit.
type charCache struct {
	valid      bool
	line       int
	byteOffset int64
	charOffset int64
}

// GapBuffer is a mutable byte sequence with a contiguous gap at the cursor.
// Not safe for concurrent use by multiple writers; a monotonic generation
// counter lets other components cheaply detect that a read-only cache has
// gone stale (§5 concurrency model: single-writer, lock-free invalidation
// via atomics).
type GapBuffer struct {
	data     []byte
	gapStart int
	gapEnd   int

	generation atomic.Uint64

	lineIndex     []int64
	lineIndexOK   bool
	cache         charCache
}

// New returns an empty gap buffer.
func New() *GapBuffer {
	g := &GapBuffer{
		data:   make([]byte, minSize),
		gapEnd: minSize,
	}
	g.gapStart = 0
	g.invalidate()
	return g
}

// NewFromString returns a gap buffer pre-loaded with s, cursor at the end.
func NewFromString(s string) *GapBuffer {
	g := New()
	g.Insert(int64(0), []byte(s))
	return g
}

// Len returns the logical size L of the buffer.
func (g *GapBuffer) Len() int64 {
	return int64(g.gapStart + (len(g.data) - g.gapEnd))
}

// Capacity returns the backing array capacity C.
func (g *GapBuffer) Capacity() int64 {
	return int64(len(g.data))
}

// Generation returns the monotonic edit counter.
func (g *GapBuffer) Generation() uint64 {
	return g.generation.Load()
}

func (g *GapBuffer) invalidate() {
	g.generation.Add(1)
	g.lineIndexOK = false
	g.cache.valid = false
}

// physical maps a logical position to a physical index into data, assuming
// pos is not inside the gap (callers must move the gap first, or only use
// this for pos <= gapStart or pos >= logical position past the gap).
func (g *GapBuffer) physical(pos int64) int {
	if pos < int64(g.gapStart) {
		return int(pos)
	}
	return int(pos) + (g.gapEnd - g.gapStart)
}

// moveGapTo relocates the gap so that gapStart == pos (pos is a logical
// offset). Moves the shorter side.
func (g *GapBuffer) moveGapTo(pos int) {
	if pos == g.gapStart {
		return
	}
	if pos < g.gapStart {
		n := g.gapStart - pos
		copy(g.data[g.gapEnd-n:g.gapEnd], g.data[pos:g.gapStart])
		g.gapStart = pos
		g.gapEnd -= n
	} else {
		n := pos - g.gapStart
		copy(g.data[g.gapStart:g.gapStart+n], g.data[g.gapEnd:g.gapEnd+n])
		g.gapStart += n
		g.gapEnd += n
	}
}

func (g *GapBuffer) gapSize() int {
	return g.gapEnd - g.gapStart
}

// growFor ensures the gap can hold at least need additional bytes, growing
// capacity by growthFactor (applied repeatedly) when it cannot.
func (g *GapBuffer) growFor(need int) {
	if g.gapSize() >= need {
		return
	}
	newCap := len(g.data)
	if newCap == 0 {
		newCap = minSize
	}
	for newCap-int(g.Len()) < need {
		grown := int(float64(newCap) * growthFactor)
		if grown <= newCap {
			grown = newCap + minSize
		}
		newCap = grown
	}
	g.resizeTo(newCap)
}

// resizeTo reallocates the backing array to newCap, keeping gapStart fixed
// and pushing the tail segment to the end of the new array.
func (g *GapBuffer) resizeTo(newCap int) {
	tail := len(g.data) - g.gapEnd
	nd := make([]byte, newCap)
	copy(nd, g.data[:g.gapStart])
	newGapEnd := newCap - tail
	copy(nd[newGapEnd:], g.data[g.gapEnd:])
	g.data = nd
	g.gapEnd = newGapEnd
}

// compact shrinks the backing array down to logical_size+minSize. Used
// after deletes that leave an oversized gap.
func (g *GapBuffer) compact() {
	g.resizeTo(int(g.Len()) + minSize)
}

// Insert inserts bytes at logical position pos. Fails with Invalid when
// pos > L.
func (g *GapBuffer) Insert(pos int64, bytes []byte) Status {
	if pos < 0 || pos > g.Len() {
		return Invalid
	}
	if len(bytes) == 0 {
		return Success
	}
	g.growFor(len(bytes))
	g.moveGapTo(int(pos))
	copy(g.data[g.gapStart:], bytes)
	g.gapStart += len(bytes)
	g.invalidate()
	return Success
}

// Delete removes n bytes starting at logical position pos. Fails with
// Invalid when pos+n > L.
func (g *GapBuffer) Delete(pos int64, n int64) Status {
	if pos < 0 || n < 0 || pos+n > g.Len() {
		return Invalid
	}
	if n == 0 {
		return Success
	}
	g.moveGapTo(int(pos))
	g.gapEnd += int(n)
	g.invalidate()
	if g.gapSize() > compactThreshold {
		g.compact()
	}
	return Success
}

// SetCursor performs a pure gap move to pos without mutating content.
func (g *GapBuffer) SetCursor(pos int64) Status {
	if pos < 0 || pos > g.Len() {
		return Invalid
	}
	g.moveGapTo(int(pos))
	return Success
}

// GetChar reads the single byte at logical position p.
func (g *GapBuffer) GetChar(p int64) (byte, Status) {
	if p < 0 || p >= g.Len() {
		return 0, Range
	}
	return g.data[g.physical(p)], Success
}

// GetText reads n bytes starting at logical position p into out, handling
// the two-segment copy for ranges that straddle the gap. out must have
// capacity n; returns the number of bytes actually written.
func (g *GapBuffer) GetText(p int64, n int64, out []byte) (int, Status) {
	if p < 0 || n < 0 || p+n > g.Len() {
		return 0, Range
	}
	if n == 0 {
		return 0, Success
	}
	start := int(p)
	end := int(p + n)
	written := 0
	if end <= g.gapStart {
		written = copy(out, g.data[start:end])
		return written, Success
	}
	if start >= g.gapStart {
		physStart := start + g.gapSize()
		physEnd := end + g.gapSize()
		written = copy(out, g.data[physStart:physEnd])
		return written, Success
	}
	// straddles the gap
	w := copy(out, g.data[start:g.gapStart])
	written += w
	w = copy(out[written:], g.data[g.gapEnd:g.gapEnd+(end-g.gapStart)])
	written += w
	return written, Success
}

// Bytes returns the full logical contents as a freshly allocated slice.
func (g *GapBuffer) Bytes() []byte {
	n := g.Len()
	out := make([]byte, n)
	g.GetText(0, n, out)
	return out
}

// String returns the full logical contents as a string.
func (g *GapBuffer) String() string {
	return string(g.Bytes())
}

// rebuildLineIndex recomputes the ordered list of byte offsets of line
// starts (logical, gap-compensated). First element is always 0.
func (g *GapBuffer) rebuildLineIndex() {
	n := g.Len()
	idx := g.lineIndex[:0]
	if cap(idx) == 0 {
		idx = make([]int64, 0, lineIndexChunk)
	}
	idx = append(idx, 0)
	var i int64
	for i = 0; i < n; i++ {
		b, _ := g.GetChar(i)
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	g.lineIndex = idx
	g.lineIndexOK = true
}

func (g *GapBuffer) ensureLineIndex() {
	if !g.lineIndexOK {
		g.rebuildLineIndex()
	}
}

// LineCount returns the number of lines (a buffer with no trailing newline
// still counts its last partial line).
func (g *GapBuffer) LineCount() int {
	g.ensureLineIndex()
	return len(g.lineIndex)
}

// LineToOffset returns the byte offset of the start of line i (0-indexed).
func (g *GapBuffer) LineToOffset(i int) (int64, Status) {
	g.ensureLineIndex()
	if i < 0 || i >= len(g.lineIndex) {
		return 0, Range
	}
	return g.lineIndex[i], Success
}

// OffsetToLine returns the 0-indexed line number containing byte offset
// off, found by binary search over the line index. Consults and refreshes
// the single-entry character cache first, since callers frequently probe
// a position close to the last one resolved (cursor-adjacent lookups).
func (g *GapBuffer) OffsetToLine(off int64) (int, Status) {
	if off < 0 || off > g.Len() {
		return 0, Range
	}
	if g.cache.valid && g.cache.byteOffset == off {
		return g.cache.line, Success
	}
	g.ensureLineIndex()
	lo, hi := 0, len(g.lineIndex)-1
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if g.lineIndex[mid] <= off {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	g.cache = charCache{valid: true, line: best, byteOffset: off, charOffset: off - g.lineIndex[best]}
	return best, Success
}

// SearchForward materialises [start, L) and runs matcher over it (the
// buffer passes a Boyer-Moore-Horspool search), returning the absolute
// offset of the first match or L on miss.
func (g *GapBuffer) SearchForward(start int64, pattern []byte, matcher func(text, pattern []byte) int) (int64, Status) {
	if start < 0 || start > g.Len() {
		return 0, Invalid
	}
	n := g.Len() - start
	buf := make([]byte, n)
	g.GetText(start, n, buf)
	hit := matcher(buf, pattern)
	if hit < 0 {
		return g.Len(), Success
	}
	return start + int64(hit), Success
}

// Package window implements the viewport record onto a buffer: top line,
// point, mark, row/column extents, and the redraw-intent flag bitset the
// differential renderer consults.
package window

import "github.com/wllclngn/muedit/internal/renderer/selection"

// Flag is a redraw-intent bit. Multiple may be set at once.
type Flag uint8

const (
	// WFMODE marks only the mode line as needing a repaint.
	WFMODE Flag = 1 << iota
	// WFHARD forces a full repaint of every row in the window.
	WFHARD
	// WFEDIT marks that an edit occurred somewhere in the window's
	// buffer and the affected rows need a repaint.
	WFEDIT
)

// Window is a viewport onto a buffer.
type Window struct {
	BufferName string

	TopLine int // first buffer line shown in row 0 of the viewport
	Point   Position
	Mark    Position
	HasMark bool

	Row, Col       int // screen position of the viewport's top-left cell
	Rows, Cols     int // viewport extents

	flags Flag
}

// Position is a (line, column) pair within a buffer, independent of the
// gap-buffer-relative buffer.Point type so window code does not import
// the buffer package.
type Position struct {
	Line   int
	Column int
}

// New returns a window over the named buffer with the given screen
// placement.
func New(bufferName string, row, col, rows, cols int) *Window {
	return &Window{
		BufferName: bufferName,
		Row:        row,
		Col:        col,
		Rows:       rows,
		Cols:       cols,
		flags:      WFHARD,
	}
}

// MarkDirty ORs f into the window's pending-redraw flags.
func (w *Window) MarkDirty(f Flag) {
	w.flags |= f
}

// NeedsRedraw reports whether any redraw flag is set.
func (w *Window) NeedsRedraw() bool {
	return w.flags != 0
}

// HasFlag reports whether f is set.
func (w *Window) HasFlag(f Flag) bool {
	return w.flags&f != 0
}

// ClearFlags resets the redraw-intent bitset after a successful repaint.
func (w *Window) ClearFlags() {
	w.flags = 0
}

// SetMark drops the mark at the given position, defining a region with
// the current point.
func (w *Window) SetMark(p Position) {
	w.Mark = p
	w.HasMark = true
}

// ClearMark removes the mark.
func (w *Window) ClearMark() {
	w.HasMark = false
}

// MarkRange returns the buffer region between the mark and point as a
// normalized selection.Range, for region-kill commands and region
// highlighting. ok is false when no mark is set.
func (w *Window) MarkRange() (r selection.Range, ok bool) {
	if !w.HasMark {
		return selection.Range{}, false
	}
	r = selection.Range{
		Start: selection.Position{Line: uint32(w.Mark.Line), Column: uint32(w.Mark.Column)},
		End:   selection.Position{Line: uint32(w.Point.Line), Column: uint32(w.Point.Column)},
		Type:  selection.TypeNormal,
	}
	return r.Normalize(), true
}

// Reframe moves TopLine toward point, scrolling by at most one screen
// height per call: when point has moved past the last visible row,
// scroll up by scrollCount; when point is above the first visible row,
// scroll down by scrollCount, stopping at line 0. scrollCount is capped
// at Rows, and a single call does not necessarily bring point into view.
func (w *Window) Reframe(scrollCount int) {
	if scrollCount > w.Rows {
		scrollCount = w.Rows
	}
	last := w.TopLine + w.Rows - 1
	switch {
	case w.Point.Line > last:
		w.TopLine += scrollCount
		w.MarkDirty(WFHARD)
	case w.Point.Line < w.TopLine:
		w.TopLine -= scrollCount
		if w.TopLine < 0 {
			w.TopLine = 0
		}
		w.MarkDirty(WFHARD)
	}
}

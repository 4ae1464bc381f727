package renderer

import (
	"encoding/binary"
	"hash/fnv"
	"time"

	"github.com/wllclngn/muedit/internal/renderer/backend"
	"github.com/wllclngn/muedit/internal/renderer/cursor"
	"github.com/wllclngn/muedit/internal/renderer/style"
)

// physicalLine is the differential renderer's record of what a terminal
// row last showed: its cells (for prefix/suffix comparison) and a
// checksum (for the cheap "did this row change at all" test).
type physicalLine struct {
	cells    []Cell
	checksum uint64
	valid    bool
}

// Differential is the differential renderer: it owns a virtual Matrix
// that callers draw into, a per-row record of what the terminal last
// displayed, and the diff loop that reconciles the two with the fewest
// possible backend calls. It never composes buffer content itself; a
// caller writes the buffer's current view into the virtual matrix (via
// Matrix.SetCell/WriteRow) and then calls Sync to push the difference to
// the terminal.
type Differential struct {
	virtual  *Matrix
	physical []physicalLine
	be       backend.Backend
	cur      *cursor.Renderer
	resolver *style.Resolver

	rows, cols int
	scrollOps  int
}

// ScrollOptimizations returns the number of times Sync has collapsed a
// dirty band into a detected scroll instead of a full per-row rewrite.
func (d *Differential) ScrollOptimizations() int {
	return d.scrollOps
}

// NewDifferential creates a differential renderer over the given
// backend, sized to the backend's current terminal dimensions.
func NewDifferential(be backend.Backend, cur *cursor.Renderer) *Differential {
	cols, rows := be.Size()
	d := &Differential{
		be:       be,
		cur:      cur,
		resolver: style.NewResolver(),
	}
	d.virtual = NewMatrix(rows, cols)
	d.physical = make([]physicalLine, rows)
	d.rows, d.cols = rows, cols
	return d
}

// Matrix returns the virtual screen callers draw into.
func (d *Differential) Matrix() *Matrix {
	return d.virtual
}

// Resize resizes both the virtual matrix and the physical-line shadow,
// invalidating every physical line so the next Sync performs a full
// repaint.
func (d *Differential) Resize(rows, cols int) {
	d.virtual.Resize(rows, cols)
	d.physical = make([]physicalLine, rows)
	d.rows, d.cols = rows, cols
}

func lineChecksum(cells []Cell) uint64 {
	h := fnv.New64a()
	var buf [12]byte
	for _, c := range cells {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(c.Rune))
		binary.LittleEndian.PutUint16(buf[4:6], uint16(c.Style.Attributes))
		buf[6] = c.Style.Foreground.R
		buf[7] = c.Style.Foreground.G
		buf[8] = c.Style.Background.R
		buf[9] = c.Style.Background.G
		buf[10] = byte(c.Width)
		buf[11] = 0
		h.Write(buf[:])
	}
	return h.Sum64()
}

// selectionHighlight is the style span merged onto selected cells: plain
// reverse video, OR'd onto whatever attributes the cell already carries.
var selectionHighlight = Style{Attributes: AttrReverse}

// rowWithHighlight returns row's cells from the virtual matrix with the
// selection's HIGHLIGHT attribute (reverse video) resolved into any
// cell inside the active selection, via the shared layer-priority style
// resolver, without mutating the stored matrix.
func (d *Differential) rowWithHighlight(row int) []Cell {
	out := make([]Cell, d.cols)
	for c := 0; c < d.cols; c++ {
		out[c] = d.virtual.Cell(row, c)
	}

	startCol, endCol, ok := d.virtual.SelectionBoundsForRow(row)
	if !ok {
		return out
	}

	span := style.Span{
		StartCol: uint32(startCol),
		EndCol:   uint32(endCol),
		Style:    selectionHighlight,
		Layer:    style.LayerSelection,
		Merge:    style.MergeAttributes,
	}
	spans := []style.Span{span}
	for c := startCol; c < endCol && c < len(out); c++ {
		d.resolver.SetBaseStyle(out[c].Style)
		out[c] = d.resolver.ResolveCell(out[c], uint32(c), spans)
	}
	return out
}

// Sync reconciles the terminal with the virtual matrix: it scroll-
// optimizes the dirty band when a contiguous run of rows merely shifted,
// checksum-compares each remaining dirty row against its physical
// shadow, rewrites only the changed ones with prefix/suffix skipping,
// positions the hardware cursor, and flushes. Callers must have already
// reframed the window and drawn the current view into the matrix before
// calling Sync; CommitUpdates is called on success.
func (d *Differential) Sync() {
	first, last := d.virtual.DirtyLineRange()
	if first < 0 {
		d.syncCursor()
		d.be.Show()
		return
	}

	d.scrollOptimize(first, last)

	for row := first; row <= last; row++ {
		if !d.virtual.IsLineDirty(row) {
			continue
		}
		cells := d.rowWithHighlight(row)
		sum := lineChecksum(cells)
		if d.physical[row].valid && d.physical[row].checksum == sum {
			continue
		}
		d.updateLine(row, cells)
		d.physical[row] = physicalLine{cells: cells, checksum: sum, valid: true}
	}

	d.syncCursor()
	d.be.Show()
	d.virtual.CommitUpdates()
}

// updateLine rewrites a single terminal row, skipping any unchanged
// prefix and suffix so only the interior difference is sent to the
// backend, and erasing the tail in one Fill call when the new content
// ends in blanks shorter than the old row.
func (d *Differential) updateLine(row int, cells []Cell) {
	old := d.physical[row].cells

	start := 0
	for start < len(cells) && start < len(old) && cells[start].Equals(old[start]) {
		start++
	}

	end := len(cells)
	oldEnd := len(old)
	for end > start && oldEnd > start && cells[end-1].Equals(old[oldEnd-1]) {
		end--
		oldEnd--
	}

	allBlankTail := true
	for c := start; c < end; c++ {
		if !cells[c].IsEmpty() {
			allBlankTail = false
			break
		}
	}

	if allBlankTail && end > start {
		blank := EmptyCell()
		d.be.Fill(NewScreenRect(row, start, row+1, end), blank)
		return
	}

	for c := start; c < end; c++ {
		d.be.SetCell(c, row, cells[c])
	}
}

// scrollOptimize detects whether the dirty band [first, last] is better
// expressed as a physical scroll: it looks for a run of rows whose
// (already-composed) new content matches what the physical shadow
// recorded for a row further down the band, meaning the caller's redraw
// amounts to shifting existing terminal content rather than drawing new
// content. The virtual matrix is never touched here — the caller already
// wrote its correct final content into it; this only short-circuits the
// per-row checksum/diff work for the matched run and writes those rows
// directly, skipping them in the subsequent normal diff loop. The
// pattern is rejected when the shift distance exceeds twice the matched
// run length, since at that point a plain per-row rewrite costs less.
func (d *Differential) scrollOptimize(first, last int) {
	band := last - first + 1
	if band < 2 {
		return
	}

	for shift := 1; shift <= band-1; shift++ {
		matched := 0
		for row := first; row+shift <= last; row++ {
			src := row + shift
			if !d.physical[src].valid {
				break
			}
			cells := d.rowWithHighlight(row)
			if lineChecksum(cells) != d.physical[src].checksum {
				break
			}
			matched++
		}
		if matched == 0 {
			continue
		}
		if shift > 2*matched {
			continue
		}

		for i := 0; i < matched; i++ {
			row := first + i
			cells := d.rowWithHighlight(row)
			for c := 0; c < d.cols; c++ {
				d.be.SetCell(c, row, cells[c])
			}
			d.physical[row] = physicalLine{cells: cells, checksum: lineChecksum(cells), valid: true}
			d.virtual.ClearLineDirty(row)
		}
		d.scrollOps++
		return
	}
}

// syncCursor positions the hardware cursor at the matrix's current
// cursor position, or hides it, driving the cursor blink state machine
// if one was supplied. The hardware cursor is only shown during the
// blink renderer's "on" phase, so a caller gets real terminal-style
// blinking for free just by calling Sync once per frame.
func (d *Differential) syncCursor() {
	row, col := d.virtual.Cursor()
	if !d.virtual.CursorVisible() {
		d.be.HideCursor()
		return
	}
	if d.cur != nil {
		d.cur.SetPrimaryCursor(uint32(row), uint32(col))
		d.cur.Update(time.Now())
		if !d.cur.IsVisible() {
			d.be.HideCursor()
			return
		}
	}
	d.be.ShowCursor(col, row)
}

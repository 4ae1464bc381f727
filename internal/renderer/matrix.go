package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/wllclngn/muedit/internal/renderer/dirty"
)

// CellFlag holds per-cell redraw state, OR'd into a cell alongside its
// content. Only CellDirty is currently defined; bit width leaves room for
// future flags (selection highlight, search match) without a layout change.
type CellFlag uint8

const (
	CellDirty CellFlag = 1 << iota
)

// MatrixStats holds the atomic performance counters every public mutator
// on Matrix updates. Safe to read concurrently with further mutation.
type MatrixStats struct {
	CellsUpdated    uint64
	ScrollOps       uint64
	FullRedraws     uint64
	PartialRedraws  uint64
}

// Matrix is the rows x cols cell grid backing a window's screen area: a
// generation-counted, dirty-tracked buffer of (rune, style, flags) cells
// that the differential renderer diffs against the physical screen.
//
// Matrix does not itself talk to a terminal; it is the "virtual screen"
// half of the differential renderer. All mutation methods are
// safe under a single writer; stats and generation are read under RLock
// or atomically so a concurrent status reader never races the edit loop.
type Matrix struct {
	mu sync.RWMutex

	rows, cols int
	cells      [][]Cell
	flags      [][]CellFlag
	lineDirty  []bool

	firstDirtyLine int // -1 when nothing is dirty
	lastDirtyLine  int

	fullRedrawPending bool
	generation        atomic.Uint64

	cursorRow, cursorCol       int
	oldCursorRow, oldCursorCol int
	cursorVisible              bool

	selStartRow, selStartCol int
	selEndRow, selEndCol     int
	selectionActive          bool

	tracker *dirty.Tracker

	cellsUpdated   atomic.Uint64
	scrollOps      atomic.Uint64
	fullRedraws    atomic.Uint64
	partialRedraws atomic.Uint64
}

// MinMatrixRows and MinMatrixCols are the smallest grid a Matrix will
// accept; NewMatrix and Resize raise smaller requests to these.
const (
	MinMatrixRows = 1
	MinMatrixCols = 1
)

// NewMatrix allocates a rows x cols display matrix, fully dirty so the
// first render is always a full redraw.
func NewMatrix(rows, cols int) *Matrix {
	if rows < MinMatrixRows {
		rows = MinMatrixRows
	}
	if cols < MinMatrixCols {
		cols = MinMatrixCols
	}
	m := &Matrix{
		rows:            rows,
		cols:            cols,
		oldCursorRow:    -1,
		oldCursorCol:    -1,
		cursorVisible:   true,
		selStartRow:     -1,
		selStartCol:     -1,
		selEndRow:       -1,
		selEndCol:       -1,
		selectionActive: false,
		tracker:         dirty.NewTracker(cols, rows),
	}
	m.allocate(rows, cols)
	m.clearAllLocked()
	return m
}

func (m *Matrix) allocate(rows, cols int) {
	m.cells = make([][]Cell, rows)
	m.flags = make([][]CellFlag, rows)
	m.lineDirty = make([]bool, rows)
	for r := 0; r < rows; r++ {
		m.cells[r] = make([]Cell, cols)
		m.flags[r] = make([]CellFlag, cols)
		for c := 0; c < cols; c++ {
			m.cells[r][c] = EmptyCell()
		}
	}
}

func (m *Matrix) clearAllLocked() {
	for r := range m.lineDirty {
		m.lineDirty[r] = true
	}
	m.firstDirtyLine = 0
	m.lastDirtyLine = m.rows - 1
	m.fullRedrawPending = true
	m.generation.Add(1)
}

// Resize changes the matrix's dimensions. A change of size always
// reallocates the grid and marks the whole matrix dirty.
func (m *Matrix) Resize(rows, cols int) {
	if rows < MinMatrixRows {
		rows = MinMatrixRows
	}
	if cols < MinMatrixCols {
		cols = MinMatrixCols
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rows == m.rows && cols == m.cols {
		return
	}

	m.allocate(rows, cols)
	m.rows = rows
	m.cols = cols
	m.tracker.SetScreenSize(cols, rows)
	m.clearAllLocked()
}

// Dimensions returns the matrix's row and column count.
func (m *Matrix) Dimensions() (rows, cols int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rows, m.cols
}

// Generation returns the current generation counter, incremented on
// every resize and full-redraw promotion. Callers can use it to detect
// that a cached layout is stale without re-scanning the whole grid.
func (m *Matrix) Generation() uint64 {
	return m.generation.Load()
}

// SetCell writes a styled rune at (row, col). A write that would not
// change the cell's rune, width, or style is a no-op: it neither marks
// the cell dirty nor touches the dirty-line interval, matching the
// source's "no-op on identical write" rule.
func (m *Matrix) SetCell(row, col int, r rune, style Style) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return
	}

	next := NewStyledCell(r, style)
	if m.cells[row][col].Equals(next) {
		return
	}

	m.cells[row][col] = next
	m.flags[row][col] |= CellDirty
	m.markLineDirtyLocked(row)
	m.tracker.MarkLine(uint32(row))
	m.cellsUpdated.Add(1)
}

// Cell returns the cell at (row, col), or an empty cell if out of range.
func (m *Matrix) Cell(row, col int) Cell {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return EmptyCell()
	}
	return m.cells[row][col]
}

func (m *Matrix) markLineDirtyLocked(row int) {
	m.lineDirty[row] = true
	if m.firstDirtyLine < 0 || row < m.firstDirtyLine {
		m.firstDirtyLine = row
	}
	if row > m.lastDirtyLine {
		m.lastDirtyLine = row
	}
}

// WriteRow overwrites an entire row with cells, clipping to the matrix's
// column count. Lets a caller blit a composed line in one call rather
// than cell-by-cell.
func (m *Matrix) WriteRow(row int, cells []Cell) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 0 || row >= m.rows {
		return
	}

	changed := false
	for col := 0; col < m.cols && col < len(cells); col++ {
		if m.cells[row][col].Equals(cells[col]) {
			continue
		}
		m.cells[row][col] = cells[col]
		m.flags[row][col] |= CellDirty
		changed = true
		m.cellsUpdated.Add(1)
	}
	if changed {
		m.markLineDirtyLocked(row)
		m.tracker.MarkLine(uint32(row))
	}
}

// ScrollUp performs a physical memmove of rows [r0, r1] up by n lines:
// row r0+n's contents move to r0, and so on, with the n rows freed at
// the bottom of the band cleared to empty cells. The whole band is
// marked dirty since its row identities have changed. n <= 0 is a no-op.
func (m *Matrix) ScrollUp(r0, r1, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || r0 < 0 || r1 >= m.rows || r0 > r1 {
		return
	}
	if n > r1-r0+1 {
		n = r1 - r0 + 1
	}

	for row := r0; row <= r1-n; row++ {
		m.cells[row], m.cells[row+n] = m.cells[row+n], m.cells[row]
		m.flags[row], m.flags[row+n] = m.flags[row+n], m.flags[row]
	}
	for row := r1 - n + 1; row <= r1; row++ {
		for c := 0; c < m.cols; c++ {
			m.cells[row][c] = EmptyCell()
			m.flags[row][c] |= CellDirty
		}
	}
	for row := r0; row <= r1; row++ {
		m.markLineDirtyLocked(row)
	}
	m.tracker.MarkLines(uint32(r0), uint32(r1))
	m.scrollOps.Add(1)
}

// SetCursor moves the logical cursor, preserving the previous position
// for OldCursor to report.
func (m *Matrix) SetCursor(row, col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oldCursorRow, m.oldCursorCol = m.cursorRow, m.cursorCol
	m.cursorRow, m.cursorCol = row, col
}

// Cursor returns the current cursor position.
func (m *Matrix) Cursor() (row, col int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursorRow, m.cursorCol
}

// OldCursor returns the cursor position as of the previous SetCursor
// call, or (-1, -1) if the cursor has never moved.
func (m *Matrix) OldCursor() (row, col int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.oldCursorRow, m.oldCursorCol
}

// SetCursorVisible controls whether the hardware cursor should be shown.
func (m *Matrix) SetCursorVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursorVisible = visible
}

// CursorVisible reports whether the cursor is currently shown.
func (m *Matrix) CursorVisible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursorVisible
}

// SetSelection marks a rectangular selection active between two screen
// positions; cells inside it are OR'd with the HIGHLIGHT attribute at
// render time. Passing active=false clears it.
func (m *Matrix) SetSelection(startRow, startCol, endRow, endCol int, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !active {
		m.selectionActive = false
		m.selStartRow, m.selStartCol = -1, -1
		m.selEndRow, m.selEndCol = -1, -1
		return
	}

	if endRow < startRow || (endRow == startRow && endCol < startCol) {
		startRow, endRow = endRow, startRow
		startCol, endCol = endCol, startCol
	}
	m.selStartRow, m.selStartCol = startRow, startCol
	m.selEndRow, m.selEndCol = endRow, endCol
	m.selectionActive = true
}

// InSelection reports whether (row, col) falls within the active
// selection rectangle, in reading order from start to end inclusive.
func (m *Matrix) InSelection(row, col int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.selectionActive {
		return false
	}
	pos := row*1_000_000 + col
	start := m.selStartRow*1_000_000 + m.selStartCol
	end := m.selEndRow*1_000_000 + m.selEndCol
	return pos >= start && pos <= end
}

// SelectionBoundsForRow returns the column range selected on the given
// row, in reading-order selection semantics (the first and last rows of
// a multi-row selection are partial, interior rows are selected in
// full). ok is false if the row has no selected columns.
func (m *Matrix) SelectionBoundsForRow(row int) (startCol, endCol int, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.selectionActive || row < m.selStartRow || row > m.selEndRow {
		return 0, 0, false
	}

	startCol = 0
	if row == m.selStartRow {
		startCol = m.selStartCol
	}
	endCol = m.cols
	if row == m.selEndRow {
		endCol = m.selEndCol
	}
	if endCol <= startCol {
		return 0, 0, false
	}
	return startCol, endCol, true
}

// MarkFullRedraw forces every cell dirty and bumps the generation
// counter, e.g. after a resize or a terminal-suspend/resume cycle.
func (m *Matrix) MarkFullRedraw() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			m.flags[r][c] |= CellDirty
		}
	}
	m.clearAllLocked()
	m.tracker.MarkFullRedraw()
	m.fullRedraws.Add(1)
}

// NeedsRedraw reports whether any cell is dirty.
func (m *Matrix) NeedsRedraw() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fullRedrawPending || m.firstDirtyLine >= 0
}

// DirtyLineRange returns the inclusive [first, last] interval of lines
// touched since the last commit, or (-1, -1) if nothing is dirty.
func (m *Matrix) DirtyLineRange() (first, last int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.firstDirtyLine, m.lastDirtyLine
}

// ClearLineDirty marks a single row clean without touching any other
// row or the dirty-line interval's other bound. Used by callers that
// have already pushed a row's content to the display through a path
// other than the normal per-row diff, such as a detected scroll.
func (m *Matrix) ClearLineDirty(row int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row < 0 || row >= m.rows {
		return
	}
	for c := 0; c < m.cols; c++ {
		m.flags[row][c] &^= CellDirty
	}
	m.lineDirty[row] = false
}

// IsLineDirty reports whether the given row has a pending redraw.
func (m *Matrix) IsLineDirty(row int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if row < 0 || row >= m.rows {
		return false
	}
	return m.fullRedrawPending || m.lineDirty[row]
}

// CommitUpdates clears every cell's CELL_DIRTY flag and resets the
// dirty-line interval to empty, per the invariant that after a
// commit no cell reports dirty and first == last == -1.
func (m *Matrix) CommitUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()

	wasFull := m.fullRedrawPending
	for r := 0; r < m.rows; r++ {
		if !m.lineDirty[r] && !wasFull {
			continue
		}
		for c := 0; c < m.cols; c++ {
			m.flags[r][c] &^= CellDirty
		}
		m.lineDirty[r] = false
	}
	m.firstDirtyLine = -1
	m.lastDirtyLine = -1
	m.fullRedrawPending = false
	m.tracker.Clear()

	if wasFull {
		m.fullRedraws.Add(1)
	} else {
		m.partialRedraws.Add(1)
	}
}

// Stats returns a snapshot of the matrix's atomic performance counters.
func (m *Matrix) Stats() MatrixStats {
	return MatrixStats{
		CellsUpdated:   m.cellsUpdated.Load(),
		ScrollOps:      m.scrollOps.Load(),
		FullRedraws:    m.fullRedraws.Load(),
		PartialRedraws: m.partialRedraws.Load(),
	}
}

// Tracker exposes the underlying dirty-region tracker so callers that
// need rectangle-level (not just line-level) dirty information, such as
// a scroll-optimization pass, can query it directly.
func (m *Matrix) Tracker() *dirty.Tracker {
	return m.tracker
}

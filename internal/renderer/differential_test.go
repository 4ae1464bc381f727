package renderer

import (
	"testing"

	"github.com/wllclngn/muedit/internal/renderer/backend"
)

func TestDifferentialSyncCommitsAfterWrite(t *testing.T) {
	be := backend.NewNullBackend(10, 5)
	d := NewDifferential(be, nil)

	d.Matrix().SetCell(2, 2, 'x', DefaultStyle())
	d.Sync()

	if d.Matrix().NeedsRedraw() {
		t.Errorf("matrix still dirty after Sync")
	}
	if got := be.GetCell(2, 2).Rune; got != 'x' {
		t.Errorf("backend cell (2,2) = %q, want 'x'", got)
	}
}

func TestDifferentialSyncSkipsUnchangedChecksum(t *testing.T) {
	be := backend.NewNullBackend(10, 5)
	d := NewDifferential(be, nil)

	d.Matrix().SetCell(1, 0, 'a', DefaultStyle())
	d.Sync()

	d.Matrix().SetCell(1, 0, 'a', DefaultStyle())
	// Identical write is itself a no-op in Matrix.SetCell, so force the
	// line dirty the way a caller redrawing unconditionally would.
	d.virtual.mu.Lock()
	d.virtual.markLineDirtyLocked(1)
	d.virtual.firstDirtyLine, d.virtual.lastDirtyLine = 1, 1
	d.virtual.mu.Unlock()

	d.Sync()
	if d.physical[1].checksum == 0 {
		t.Fatalf("expected a recorded checksum for row 1")
	}
}

func TestDifferentialScrollOptimizeDetectsShiftedRows(t *testing.T) {
	be := backend.NewNullBackend(10, 24)
	d := NewDifferential(be, nil)

	for row := 0; row < 24; row++ {
		text := string(rune('A' + row%26))
		for i := 0; i < 10; i++ {
			d.Matrix().SetCell(row, i, rune(text[0]), DefaultStyle())
		}
	}
	d.Sync()

	// Shift rows 5..20 up into 4..19, clear row 20, matching scenario S5.
	for row := 5; row <= 20; row++ {
		src := d.rowWithHighlight(row)
		d.Matrix().WriteRow(row-1, src)
	}
	blank := make([]Cell, 10)
	for i := range blank {
		blank[i] = EmptyCell()
	}
	d.Matrix().WriteRow(20, blank)

	before := d.ScrollOptimizations()
	d.Sync()
	if d.ScrollOptimizations() <= before {
		t.Errorf("expected a detected scroll optimization, count unchanged at %d", before)
	}
}

func TestDifferentialResize(t *testing.T) {
	be := backend.NewNullBackend(10, 5)
	d := NewDifferential(be, nil)

	d.Resize(8, 20)
	rows, cols := d.Matrix().Dimensions()
	if rows != 8 || cols != 20 {
		t.Fatalf("Dimensions() = (%d,%d), want (8,20)", rows, cols)
	}
	if len(d.physical) != 8 {
		t.Errorf("len(physical) = %d, want 8", len(d.physical))
	}
}

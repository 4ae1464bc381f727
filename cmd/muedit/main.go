// Command muedit is a minimal terminal front end over the editing
// core: it wires a tcell backend to the buffer/window/keymap/hook
// stack and drives the differential renderer's draw loop. It does not
// read or write files; a fresh scratch buffer is all there is to edit.
package main

import (
	"fmt"
	"os"

	"github.com/wllclngn/muedit/internal/engine/buffer"
	"github.com/wllclngn/muedit/internal/engine/editor"
	"github.com/wllclngn/muedit/internal/engine/window"
	"github.com/wllclngn/muedit/internal/input/key"
	"github.com/wllclngn/muedit/internal/input/keymap"
	"github.com/wllclngn/muedit/internal/renderer"
	"github.com/wllclngn/muedit/internal/renderer/backend"
	"github.com/wllclngn/muedit/internal/renderer/cursor"
	"github.com/wllclngn/muedit/internal/renderer/selection"
	"github.com/wllclngn/muedit/internal/renderer/statusline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "muedit:", err)
		os.Exit(1)
	}
}

func run() error {
	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer term.Shutdown()

	ed := editor.New()
	win := ed.ActiveWindow()

	cols, rows := term.Size()
	win.Rows, win.Cols = rows-1, cols // reserve the bottom row for the mode line

	curRenderer := cursor.New(cursor.DefaultConfig())
	selRenderer := selection.NewRenderer(selection.DefaultConfig())
	diff := renderer.NewDifferential(term, curRenderer)

	status := &statusline.StatusLine{}

	bindCommands(ed, win)

	for {
		drawFrame(ed, win, diff, status, selRenderer, cols, rows)

		ev := term.PollEvent()
		switch ev.Type {
		case backend.EventResize:
			cols, rows = ev.Width, ev.Height
			win.Rows, win.Cols = rows-1, cols
			diff.Resize(rows, cols)
			win.MarkDirty(window.WFHARD)
		case backend.EventKey:
			if !handleKey(ed, win, ev) {
				return nil
			}
		}

		if ed.QuitRequested() {
			return nil
		}
	}
}

// handleKey self-inserts a rune typed without Ctrl, Alt or Meta and
// routes every other key event into the keymap dispatch chain. It
// always returns true; the quit command ends the main loop through
// Editor.RequestQuit instead.
func handleKey(ed *editor.Editor, win *window.Window, ev backend.Event) bool {
	e := toKeyEvent(ev)

	if e.IsRune() && !e.Modifiers.HasCtrl() && !e.Modifiers.HasMeta() && !e.Modifiers.HasAlt() {
		selfInsert(ed, win, e.Rune)
		return true
	}

	// Every command this front end binds lives in the global root; a
	// fuller front end would hold the returned child keymap across loop
	// iterations to resolve two-key C-x/C-h/Meta sequences.
	code := keymap.CodeFromEvent(e)
	_, err := ed.Dispatch(ed.Keymaps.Global(), "", code, false, 1)
	if err != nil {
		ed.SetMessage(err.Error())
	}
	return true
}

// toKeyEvent converts a backend event into the key package's event
// type. tcell (and hence the backend) reports control-letter chords as
// their own Key constants rather than as KeyRune plus a Ctrl
// modifier, so KeyCtrlA..KeyCtrlZ are unpacked back into a rune with
// ModCtrl set to keep CodeFromEvent's control-bit packing working;
// KeyCtrlSpace likewise becomes a space rune with ModCtrl.
func toKeyEvent(ev backend.Event) key.Event {
	var mods key.Modifier
	if ev.Mod&backend.ModShift != 0 {
		mods |= key.ModShift
	}
	if ev.Mod&backend.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if ev.Mod&backend.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if ev.Mod&backend.ModMeta != 0 {
		mods |= key.ModMeta
	}

	if ev.Key == backend.KeyRune {
		return key.NewRuneEvent(ev.Rune, mods)
	}
	if ev.Key >= backend.KeyCtrlA && ev.Key <= backend.KeyCtrlZ {
		letter := 'A' + rune(ev.Key-backend.KeyCtrlA)
		return key.NewRuneEvent(letter, mods|key.ModCtrl)
	}
	if ev.Key == backend.KeyCtrlSpace {
		return key.NewRuneEvent(' ', mods|key.ModCtrl)
	}
	return key.NewSpecialEvent(backendKeyToKey(ev.Key), mods)
}

func backendKeyToKey(k backend.Key) key.Key {
	switch k {
	case backend.KeyEscape:
		return key.KeyEscape
	case backend.KeyEnter:
		return key.KeyEnter
	case backend.KeyBackspace:
		return key.KeyBackspace
	case backend.KeyDelete:
		return key.KeyDelete
	case backend.KeyUp:
		return key.KeyUp
	case backend.KeyDown:
		return key.KeyDown
	case backend.KeyLeft:
		return key.KeyLeft
	case backend.KeyRight:
		return key.KeyRight
	default:
		return key.KeyNone
	}
}

// bindCommands installs the handful of commands the default legacy
// table names into the active editor's command table and global
// keymap.
func bindCommands(ed *editor.Editor, win *window.Window) {
	ed.RegisterCommand("quit", func(prefixFlag bool, repeatCount int) error {
		ed.RequestQuit()
		return nil
	})
	ed.RegisterCommand("forward-char", func(prefixFlag bool, repeatCount int) error {
		moveColumn(ed, win, repeatCount)
		return nil
	})
	ed.RegisterCommand("backward-char", func(prefixFlag bool, repeatCount int) error {
		moveColumn(ed, win, -repeatCount)
		return nil
	})
	ed.RegisterCommand("next-line", func(prefixFlag bool, repeatCount int) error {
		moveLine(ed, win, repeatCount)
		return nil
	})
	ed.RegisterCommand("previous-line", func(prefixFlag bool, repeatCount int) error {
		moveLine(ed, win, -repeatCount)
		return nil
	})
	ed.RegisterCommand("delete-char", func(prefixFlag bool, repeatCount int) error {
		deleteForward(ed, win)
		return nil
	})
	ed.RegisterCommand("set-mark", func(prefixFlag bool, repeatCount int) error {
		win.SetMark(win.Point)
		return nil
	})

	resolve := func(name string) (keymap.CommandFunc, bool) {
		fn, ok := ed.Commands[name]
		return fn, ok
	}
	keymap.Import(keymap.DefaultLegacyTable, ed.Keymaps, resolve)

	// Ctrl+Space doesn't collide with any rune self-insert (it carries
	// no printable rune), so it's free for set-mark, matching Emacs.
	ed.Keymaps.Global().Bind(keymap.Code(' ')|keymap.CodeControl, ed.Commands["set-mark"])
}

func selfInsert(ed *editor.Editor, win *window.Window, r rune) {
	buf := ed.ActiveBuffer()
	if buf == nil || r == 0 {
		return
	}
	off := buf.PointToOffset(buffer.Point{Line: uint32(win.Point.Line), Column: uint32(win.Point.Column)})
	end, err := buf.Insert(off, string(r))
	if err != nil {
		return
	}
	pt := buf.OffsetToPoint(end)
	win.Point = window.Position{Line: int(pt.Line), Column: int(pt.Column)}
	win.MarkDirty(window.WFEDIT)
}

func deleteForward(ed *editor.Editor, win *window.Window) {
	buf := ed.ActiveBuffer()
	if buf == nil {
		return
	}
	off := buf.PointToOffset(buffer.Point{Line: uint32(win.Point.Line), Column: uint32(win.Point.Column)})
	if off >= buf.Len() {
		return
	}
	_, width := buf.RuneAt(off)
	if width == 0 {
		width = 1
	}
	_ = buf.Delete(off, off+buffer.ByteOffset(width))
	win.MarkDirty(window.WFEDIT)
}

func moveColumn(ed *editor.Editor, win *window.Window, delta int) {
	buf := ed.ActiveBuffer()
	if buf == nil {
		return
	}
	off := buf.PointToOffset(buffer.Point{Line: uint32(win.Point.Line), Column: uint32(win.Point.Column)})
	off += buffer.ByteOffset(delta)
	if off < 0 {
		off = 0
	}
	if off > buf.Len() {
		off = buf.Len()
	}
	pt := buf.OffsetToPoint(off)
	win.Point = window.Position{Line: int(pt.Line), Column: int(pt.Column)}
	win.MarkDirty(window.WFEDIT)
}

func moveLine(ed *editor.Editor, win *window.Window, delta int) {
	buf := ed.ActiveBuffer()
	if buf == nil {
		return
	}
	line := int(win.Point.Line) + delta
	if line < 0 {
		line = 0
	}
	if max := int(buf.LineCount()) - 1; line > max {
		line = max
	}
	lineLen := buf.LineLen(uint32(line))
	col := win.Point.Column
	if col > lineLen {
		col = lineLen
	}
	win.Point = window.Position{Line: line, Column: col}
	win.MarkDirty(window.WFEDIT)
}

// drawFrame reframes the window around point, paints the buffer's
// visible lines and the mode line into the virtual matrix, highlights
// the mark-to-point region if a mark is set, and pushes the difference
// to the terminal.
func drawFrame(ed *editor.Editor, win *window.Window, diff *renderer.Differential, status *statusline.StatusLine, sel *selection.Renderer, cols, rows int) {
	win.Reframe(win.Rows)

	buf := ed.ActiveBuffer()
	matrix := diff.Matrix()
	style := renderer.DefaultStyle()

	markRange, hasMark := win.MarkRange()

	for row := 0; row < win.Rows; row++ {
		line := win.TopLine + row
		text := ""
		if buf != nil && uint32(line) < buf.LineCount() {
			text = buf.LineText(uint32(line))
		}
		writeRow(matrix, row, cols, text, style, sel, markRange, hasMark, uint32(line))
	}

	if buf != nil {
		status.SetBuffer(buf.Name(), nil, buf.Filename(), buf.IsDirty())
		line := uint32(win.Point.Line) + 1
		status.SetPosition(line, uint32(win.Point.Column)+1, line, buf.LineCount())
		status.SetExtent(int64(buf.Len()), 0)
	}
	status.SetScroll(statusline.ScrollMiddle, 0)
	writeRow(matrix, win.Rows, cols, status.FormatModeLine(cols), style.Reverse(), nil, selection.Range{}, false, 0)

	cursorRow := win.Point.Line - win.TopLine
	matrix.SetCursor(cursorRow, win.Point.Column)
	matrix.SetCursorVisible(true)

	diff.Sync()
	win.ClearFlags()
}

// writeRow paints one terminal row from text, applying sel's selection
// highlight to any column the mark-to-point region covers on bufLine.
func writeRow(matrix *renderer.Matrix, row, cols int, text string, style renderer.Style, sel *selection.Renderer, markRange selection.Range, hasMark bool, bufLine uint32) {
	runes := []rune(text)
	for col := 0; col < cols; col++ {
		r := rune(' ')
		if col < len(runes) {
			r = runes[col]
		}
		cellStyle := style
		if hasMark && sel != nil && markRange.Contains(bufLine, uint32(col)) {
			highlighted := sel.ApplySelection(renderer.Cell{Rune: r, Width: 1, Style: style}, true)
			cellStyle = highlighted.Style
		}
		matrix.SetCell(row, col, r, cellStyle)
	}
}

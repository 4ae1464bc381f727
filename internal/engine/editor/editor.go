// Package editor threads together the buffer set, window list, keymap
// roots, kill ring, and command-hook manager into the single context
// every command runs against, rather than scattering that state across
// package-level globals: commands have the signature
// fn(prefixFlag, repeatCount) error and reach the Editor through the
// closure that registers them.
package editor

import (
	"sync/atomic"

	"github.com/wllclngn/muedit/internal/dispatcher/hook"
	"github.com/wllclngn/muedit/internal/engine/buffer"
	"github.com/wllclngn/muedit/internal/engine/killring"
	"github.com/wllclngn/muedit/internal/engine/window"
	"github.com/wllclngn/muedit/internal/input/keymap"
)

// Terminal is the surface the core renders onto. The concrete
// implementation lives outside the core; internal/renderer adapts this
// onto a real terminal library.
type Terminal interface {
	Rows() int
	Cols() int
	Move(row, col int)
	PutCell(codepoint rune, fg, bg, attr int32)
	SetReverse(on bool)
	EraseToEOL()
	Beep()
	Scroll(from, to, count int)
	Flush() error
}

// CommandFunc is the published command entry point.
type CommandFunc = keymap.CommandFunc

// Editor is the shared context every command, hook, and keymap binding
// runs against.
type Editor struct {
	Buffers *buffer.Set
	Windows []*window.Window

	Keymaps  *keymap.Roots
	KillRing *killring.Ring
	Hooks    *hook.Manager

	Terminal Terminal

	// Commands is the function-name table published to a scripting
	// collaborator; the core never calls into it, only populates it so
	// an external collaborator can resolve names.
	Commands map[string]CommandFunc

	// Message is the current message-line text (minibuffer echo area).
	Message string

	activeWindow int

	transactionDepth atomic.Int32
	resizePending    atomic.Bool
	quitRequested    atomic.Bool
}

// New returns an editor with an empty scratch buffer as the sole window.
func New() *Editor {
	e := &Editor{
		Buffers:  buffer.NewSet(),
		Keymaps:  keymap.NewRoots(),
		KillRing: killring.New(),
		Hooks:    hook.New(),
		Commands: make(map[string]CommandFunc),
	}
	scratch, _ := e.Buffers.Find("*scratch*", true, 0)
	e.Buffers.Switch(scratch)
	w := window.New("*scratch*", 0, 0, 24, 80)
	e.Windows = append(e.Windows, w)
	return e
}

// ActiveWindow returns the window commands operate on.
func (e *Editor) ActiveWindow() *window.Window {
	if e.activeWindow < 0 || e.activeWindow >= len(e.Windows) {
		return nil
	}
	return e.Windows[e.activeWindow]
}

// ActiveBuffer returns the buffer shown in the active window.
func (e *Editor) ActiveBuffer() *buffer.Buffer {
	return e.Buffers.Current()
}

// RegisterCommand publishes fn under name in the command table. It does
// not bind any key; keymap bindings are installed separately.
func (e *Editor) RegisterCommand(name string, fn CommandFunc) {
	e.Commands[name] = fn
}

// Dispatch looks up code in km (following the prefix chain the caller
// has already walked into, e.g. Keymaps.CtlX()) and, on a command
// binding, runs it through the hook manager. The returned *keymap.Keymap
// is the child map to descend into when the lookup resolved to a prefix
// instead of a command.
func (e *Editor) Dispatch(km *keymap.Keymap, name string, code keymap.Code, prefixFlag bool, repeatCount int) (*keymap.Keymap, error) {
	entry, ok := km.Lookup(code)
	if !ok {
		return nil, nil
	}
	if entry.IsPrefix {
		return entry.Child, nil
	}
	err := e.Hooks.Execute(name, prefixFlag, repeatCount, func() error {
		return entry.Command(prefixFlag, repeatCount)
	})
	return nil, err
}

// BeginTransaction increments the edit-transaction depth counter: while
// non-zero, the render loop defers redraw.
func (e *Editor) BeginTransaction() {
	e.transactionDepth.Add(1)
}

// EndTransaction decrements the edit-transaction depth counter.
func (e *Editor) EndTransaction() {
	e.transactionDepth.Add(-1)
}

// InTransaction reports whether a nested command has deferred rendering.
func (e *Editor) InTransaction() bool {
	return e.transactionDepth.Load() > 0
}

// RequestResize records that a SIGWINCH-equivalent was observed; the
// main loop checks this between commands.
func (e *Editor) RequestResize() {
	e.resizePending.Store(true)
}

// ConsumeResize reports and clears a pending resize request.
func (e *Editor) ConsumeResize() bool {
	return e.resizePending.CompareAndSwap(true, false)
}

// RequestQuit records a termination signal for the main loop to observe.
func (e *Editor) RequestQuit() {
	e.quitRequested.Store(true)
}

// QuitRequested reports whether termination was requested.
func (e *Editor) QuitRequested() bool {
	return e.quitRequested.Load()
}

// SetMessage sets the message-line text, kept until the next
// SetMessage. The editor only stores it; nothing in this module draws
// it on screen.
func (e *Editor) SetMessage(msg string) {
	e.Message = msg
}

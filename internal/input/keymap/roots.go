package keymap

import "sync/atomic"

// Roots holds the four published root keymaps: global, C-x, Meta, and
// C-h. They are published via release-store (atomic.Pointer) so a
// concurrent reader always observes a fully-initialised set.
type Roots struct {
	global atomic.Pointer[Keymap]
	ctlx   atomic.Pointer[Keymap]
	meta   atomic.Pointer[Keymap]
	ctlh   atomic.Pointer[Keymap]
}

// NewRoots builds and publishes the four root keymaps, wiring the three
// prefix bindings (Control-X, Control-H, Escape) into the global map.
func NewRoots() *Roots {
	global := New("global", nil)
	ctlx := New("C-x", nil)
	meta := New("Meta", nil)
	ctlh := New("C-h", nil)

	global.BindChild(CodeControl|Code('X'), ctlx)
	global.BindChild(CodeControl|Code('H'), ctlh)
	global.BindChild(Code(0x1B), meta)

	r := &Roots{}
	r.global.Store(global)
	r.ctlx.Store(ctlx)
	r.meta.Store(meta)
	r.ctlh.Store(ctlh)
	return r
}

func (r *Roots) Global() *Keymap { return r.global.Load() }
func (r *Roots) CtlX() *Keymap   { return r.ctlx.Load() }
func (r *Roots) Meta() *Keymap   { return r.meta.Load() }
func (r *Roots) CtlH() *Keymap   { return r.ctlh.Load() }

// Replace atomically swaps in a freshly built set of four root keymaps
// (used when re-initialising bindings, e.g. after a legacy-table
// reimport). Readers racing the swap always see either the old or the
// new, fully-initialised, set.
func (r *Roots) Replace(global, ctlx, meta, ctlh *Keymap) {
	r.global.Store(global)
	r.ctlx.Store(ctlx)
	r.meta.Store(meta)
	r.ctlh.Store(ctlh)
}

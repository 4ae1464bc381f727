// Package renderer implements the display matrix and differential
// renderer: a virtual cell grid that callers draw into, and a diff loop
// that reconciles it against what the terminal last showed using the
// fewest possible backend writes.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│            Differential (diff loop)      │
//	├─────────────────────────────────────────┤
//	│  Matrix (virtual screen) │ physical shadow│
//	│  DirtyTracker            │ CursorRenderer │
//	├─────────────────────────────────────────┤
//	│           Backend Abstraction            │
//	├─────────────────────────────────────────┤
//	│  Terminal (tcell)                        │
//	└─────────────────────────────────────────┘
//
// Usage:
//
//	be, _ := backend.NewTerminal()
//	d := renderer.NewDifferential(be, cursorRenderer)
//	d.Matrix().SetCell(row, col, r, style)
//	d.Sync()
package renderer

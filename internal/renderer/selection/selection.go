// Package selection is the mark-to-point region window.Window tracks and
// cmd/muedit highlights: Range.Contains answers "is this
// buffer cell inside the region" for the per-cell highlight check, and
// Renderer.ApplySelection turns a cell's style into its highlighted form
// once Contains says yes. TypeLine and TypeBlock exist alongside the
// default stream (TypeNormal) selection for a future line-kill or
// rectangular-selection command to set on the window's mark range without
// this package changing.
package selection

import (
	"sync"

	"github.com/wllclngn/muedit/internal/renderer/core"
)

// Type represents the type of selection.
type Type uint8

const (
	// TypeNormal is a regular character-based selection.
	TypeNormal Type = iota
	// TypeLine is a line-based selection (selects entire lines).
	TypeLine
	// TypeBlock is a block/column selection (rectangular).
	TypeBlock
)

// Range represents a selection range in buffer coordinates.
type Range struct {
	// Start is the beginning of the selection (anchor point).
	Start Position
	// End is the end of the selection (active cursor).
	End Position
	// Type is the selection type.
	Type Type
}

// Position represents a position in buffer coordinates.
type Position struct {
	Line   uint32
	Column uint32
}

// IsEmpty returns true if the range selects nothing.
func (r Range) IsEmpty() bool {
	return r.Start.Line == r.End.Line && r.Start.Column == r.End.Column
}

// Normalize returns a range where Start is always before End.
func (r Range) Normalize() Range {
	if r.Start.Line > r.End.Line ||
		(r.Start.Line == r.End.Line && r.Start.Column > r.End.Column) {
		return Range{
			Start: r.End,
			End:   r.Start,
			Type:  r.Type,
		}
	}
	return r
}

// Contains returns true if the given position is within the selection.
func (r Range) Contains(line, col uint32) bool {
	if r.IsEmpty() {
		return false
	}

	norm := r.Normalize()

	switch r.Type {
	case TypeNormal:
		return r.containsNormal(norm, line, col)
	case TypeLine:
		return r.containsLine(norm, line)
	case TypeBlock:
		return r.containsBlock(norm, line, col)
	default:
		return r.containsNormal(norm, line, col)
	}
}

// containsNormal checks if position is in a normal (stream) selection.
func (r Range) containsNormal(norm Range, line, col uint32) bool {
	// Before start line
	if line < norm.Start.Line {
		return false
	}
	// After end line
	if line > norm.End.Line {
		return false
	}
	// On start line, check column
	if line == norm.Start.Line && col < norm.Start.Column {
		return false
	}
	// On end line, check column
	if line == norm.End.Line && col >= norm.End.Column {
		return false
	}
	return true
}

// containsLine checks if position is in a line selection.
func (r Range) containsLine(norm Range, line uint32) bool {
	return line >= norm.Start.Line && line <= norm.End.Line
}

// containsBlock checks if position is in a block (rectangular) selection.
func (r Range) containsBlock(norm Range, line, col uint32) bool {
	if line < norm.Start.Line || line > norm.End.Line {
		return false
	}
	// For block selection, columns are independent of lines
	minCol := norm.Start.Column
	maxCol := norm.End.Column
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	return col >= minCol && col < maxCol
}

// LineRange returns the line range of the selection.
func (r Range) LineRange() (startLine, endLine uint32) {
	norm := r.Normalize()
	return norm.Start.Line, norm.End.Line
}

// Config holds selection rendering configuration.
type Config struct {
	// PrimaryColor is the background color for primary selections.
	PrimaryColor core.Color
	// SecondaryColor is the background color for secondary selections.
	SecondaryColor core.Color
}

// DefaultConfig returns sensible default selection configuration.
func DefaultConfig() Config {
	return Config{
		PrimaryColor:   core.ColorBlue,
		SecondaryColor: core.ColorCyan,
	}
}

// Renderer handles selection rendering.
type Renderer struct {
	mu     sync.RWMutex
	config Config
}

// NewRenderer creates a new selection renderer.
func NewRenderer(config Config) *Renderer {
	return &Renderer{
		config: config,
	}
}

// Config returns the current configuration.
func (r *Renderer) Config() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.config
}

// SetConfig updates the configuration.
func (r *Renderer) SetConfig(config Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = config
}

// ApplySelection modifies a cell to show selection highlighting.
func (r *Renderer) ApplySelection(cell core.Cell, isPrimary bool) core.Cell {
	r.mu.RLock()
	defer r.mu.RUnlock()

	color := r.config.SecondaryColor
	if isPrimary {
		color = r.config.PrimaryColor
	}

	return core.Cell{
		Rune:  cell.Rune,
		Width: cell.Width,
		Style: core.Style{
			Foreground: cell.Style.Foreground,
			Background: color,
			Attributes: cell.Style.Attributes,
		},
	}
}

// String returns the string representation of a selection type.
func (t Type) String() string {
	switch t {
	case TypeNormal:
		return "normal"
	case TypeLine:
		return "line"
	case TypeBlock:
		return "block"
	default:
		return "normal"
	}
}


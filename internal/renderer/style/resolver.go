// Package style is how the Differential Renderer layers a selection
// highlight (or any other overlay) onto a cell's base style without the
// renderer having to know the merge rules itself. A caller sets the
// cell's current style as the Resolver's base, hands it the Spans that
// cover that column, and Resolve/ResolveCell returns the style with
// every enabled layer merged in, lowest priority first. Only the
// selection layer has a caller today; syntax, diagnostics, search, and
// diff all reserve a Layer slot for when those passes exist.
package style

import (
	"github.com/wllclngn/muedit/internal/renderer/core"
)

// Layer represents a style layer with priority.
type Layer uint8

const (
	// LayerBase is the base/default style layer.
	LayerBase Layer = iota

	// LayerSyntax is the syntax highlighting layer.
	LayerSyntax

	// LayerDiagnostic is the diagnostic (errors, warnings) layer.
	LayerDiagnostic

	// LayerSearch is the search highlight layer.
	LayerSearch

	// LayerDiff is the diff preview layer.
	LayerDiff

	// LayerSelection is the selection highlight layer.
	LayerSelection

	// LayerGhostText is the AI ghost text layer.
	LayerGhostText

	// LayerCursor is the cursor highlight layer (highest priority).
	LayerCursor

	// LayerCount is the number of layers.
	LayerCount
)

// String returns the string representation of the layer.
func (l Layer) String() string {
	switch l {
	case LayerBase:
		return "base"
	case LayerSyntax:
		return "syntax"
	case LayerDiagnostic:
		return "diagnostic"
	case LayerSearch:
		return "search"
	case LayerDiff:
		return "diff"
	case LayerSelection:
		return "selection"
	case LayerGhostText:
		return "ghost-text"
	case LayerCursor:
		return "cursor"
	default:
		return "unknown"
	}
}

// Span represents a styled span at a specific layer.
type Span struct {
	// StartCol is the starting column (inclusive).
	StartCol uint32

	// EndCol is the ending column (exclusive).
	EndCol uint32

	// Style is the style to apply.
	Style core.Style

	// Layer is the priority layer.
	Layer Layer

	// Merge indicates how to merge with lower layers.
	Merge MergeMode
}

// MergeMode determines how styles are merged.
type MergeMode uint8

const (
	// MergeReplace replaces all lower layer styles.
	MergeReplace MergeMode = iota

	// MergeOverlay overlays onto lower layers: non-default overlay colors
	// replace the base ones (a default overlay color keeps the base color)
	// and attributes are OR'd in.
	MergeOverlay

	// MergeAttributes only adds attributes, preserves colors.
	MergeAttributes

	// MergeForeground only changes foreground color.
	MergeForeground

	// MergeBackground only changes background color.
	MergeBackground
)

// Resolver resolves styles by combining multiple layers.
type Resolver struct {
	// baseStyle is the default style when no layers apply.
	baseStyle core.Style

	// layerEnabled tracks which layers are enabled.
	layerEnabled [LayerCount]bool
}

// NewResolver creates a new style resolver.
func NewResolver() *Resolver {
	r := &Resolver{
		baseStyle: core.DefaultStyle(),
	}

	// Enable all layers by default
	for i := 0; i < int(LayerCount); i++ {
		r.layerEnabled[i] = true
	}

	return r
}

// SetBaseStyle sets the base style.
func (r *Resolver) SetBaseStyle(style core.Style) {
	r.baseStyle = style
}

// SetLayerEnabled enables or disables a layer.
func (r *Resolver) SetLayerEnabled(layer Layer, enabled bool) {
	if layer < LayerCount {
		r.layerEnabled[layer] = enabled
	}
}

// IsLayerEnabled returns true if a layer is enabled.
func (r *Resolver) IsLayerEnabled(layer Layer) bool {
	if layer >= LayerCount {
		return false
	}
	return r.layerEnabled[layer]
}

// Resolve combines styles from multiple spans at a specific column.
func (r *Resolver) Resolve(col uint32, spans []Span) core.Style {
	result := r.baseStyle

	// Process spans in layer order (lower layers first)
	for layer := LayerBase; layer < LayerCount; layer++ {
		if !r.layerEnabled[layer] {
			continue
		}

		// Find spans for this layer that cover this column
		for _, span := range spans {
			if span.Layer != layer {
				continue
			}
			if col < span.StartCol || col >= span.EndCol {
				continue
			}

			result = r.mergeStyle(result, span.Style, span.Merge)
		}
	}

	return result
}

// ResolveCell resolves the style for a cell and returns an updated cell.
func (r *Resolver) ResolveCell(cell core.Cell, col uint32, spans []Span) core.Cell {
	cell.Style = r.Resolve(col, spans)
	return cell
}

// ResolveLine resolves styles for an entire line of cells.
func (r *Resolver) ResolveLine(cells []core.Cell, spans []Span) []core.Cell {
	if len(spans) == 0 {
		return cells
	}

	// Make a copy to avoid modifying original
	result := make([]core.Cell, len(cells))
	copy(result, cells)

	for i := range result {
		result[i].Style = r.Resolve(uint32(i), spans)
	}

	return result
}

// mergeStyle merges an overlay style onto a base style.
func (r *Resolver) mergeStyle(base, overlay core.Style, mode MergeMode) core.Style {
	switch mode {
	case MergeReplace:
		return overlay

	case MergeOverlay:
		result := base
		if !overlay.Foreground.IsDefault() {
			result.Foreground = overlay.Foreground
		}
		if !overlay.Background.IsDefault() {
			result.Background = overlay.Background
		}
		result.Attributes |= overlay.Attributes
		return result

	case MergeAttributes:
		result := base
		result.Attributes |= overlay.Attributes
		return result

	case MergeForeground:
		result := base
		if !overlay.Foreground.IsDefault() {
			result.Foreground = overlay.Foreground
		}
		return result

	case MergeBackground:
		result := base
		if !overlay.Background.IsDefault() {
			result.Background = overlay.Background
		}
		return result

	default:
		return overlay
	}
}


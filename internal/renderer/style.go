package renderer

import "github.com/wllclngn/muedit/internal/renderer/core"

// Attribute represents text attributes (bold, italic, etc.).
// Re-exported from core so backend and renderer share one definition.
type Attribute = core.Attribute

// Text attribute flags.
const (
	AttrNone          = core.AttrNone
	AttrBold          = core.AttrBold
	AttrDim           = core.AttrDim
	AttrItalic        = core.AttrItalic
	AttrUnderline     = core.AttrUnderline
	AttrBlink         = core.AttrBlink
	AttrReverse       = core.AttrReverse
	AttrStrikethrough = core.AttrStrikethrough
	AttrHidden        = core.AttrHidden
)

// Style represents the visual style of text.
type Style = core.Style

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style { return core.DefaultStyle() }

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style { return core.NewStyle(fg) }

// StyleSpan represents a styled range within a line.
type StyleSpan = core.StyleSpan

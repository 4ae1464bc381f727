// Package statusline renders the mode line: a single row summarizing
// buffer identity, position, and scroll extent, plus the echo-area
// message/command-input line immediately below it.
package statusline

import (
	"strconv"

	"github.com/wllclngn/muedit/internal/renderer"
	"github.com/wllclngn/muedit/internal/renderer/backend"
)

// Name and Version identify the editor in the mode line's left field.
const (
	Name    = "muedit"
	Version = "1"
)

// ScrollPosition summarizes where the viewport sits within the buffer,
// the mode line's rightmost field.
type ScrollPosition int

const (
	ScrollMiddle ScrollPosition = iota
	ScrollTop
	ScrollBottom
	ScrollAll // whole buffer fits on screen
)

// StatusLine renders the mode line plus an echo-area line beneath it.
type StatusLine struct {
	bufferName string
	modes      []string
	fileName   string
	changed    bool

	row, col   uint32 // 1-indexed cursor position for display
	line       uint32 // 1-indexed current line
	totalLines uint32
	sizeBytes  int64
	wordCount  int
	scroll     ScrollPosition
	percent    int

	commandActive bool
	commandPrompt rune
	commandBuffer string
	commandCursor int

	message     string
	messageType MessageType

	width  int
	height int
}

// MessageType indicates the type of status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// New creates a status line with no buffer bound yet.
func New() *StatusLine {
	return &StatusLine{
		commandPrompt: ':',
		height:        1,
	}
}

// SetBuffer updates the identity fields shown in the mode line: the
// buffer's internal name, its active modes, the backing file name (may
// be empty for an unsaved buffer), and the unsaved-changes flag.
func (s *StatusLine) SetBuffer(bufferName string, modes []string, fileName string, changed bool) {
	s.bufferName = bufferName
	s.modes = modes
	s.fileName = fileName
	s.changed = changed
}

// SetPosition updates the cursor's display position (1-indexed).
func (s *StatusLine) SetPosition(row, col, line, totalLines uint32) {
	s.row = row
	s.col = col
	s.line = line
	s.totalLines = totalLines
}

// SetExtent updates the buffer's size in bytes and word count.
func (s *StatusLine) SetExtent(sizeBytes int64, wordCount int) {
	s.sizeBytes = sizeBytes
	s.wordCount = wordCount
}

// SetScroll updates the scroll-position summary and, for ScrollMiddle,
// the percentage scrolled through the buffer.
func (s *StatusLine) SetScroll(pos ScrollPosition, percent int) {
	s.scroll = pos
	s.percent = percent
}

// SetCommandMode activates or deactivates the echo-area command prompt.
func (s *StatusLine) SetCommandMode(active bool, prompt rune) {
	s.commandActive = active
	s.commandPrompt = prompt
	if !active {
		s.commandBuffer = ""
		s.commandCursor = 0
	}
}

// SetCommandBuffer updates the text being typed at the command prompt.
func (s *StatusLine) SetCommandBuffer(buffer string, cursor int) {
	s.commandBuffer = buffer
	s.commandCursor = cursor
}

// SetMessage displays a one-line status message in the echo area.
func (s *StatusLine) SetMessage(msg string, msgType MessageType) {
	s.message = msg
	s.messageType = msgType
}

// ClearMessage clears any pending status message.
func (s *StatusLine) ClearMessage() {
	s.message = ""
	s.messageType = MessageNone
}

// Resize updates the status line's column width.
func (s *StatusLine) Resize(width, height int) {
	s.width = width
}

// Height returns the number of rows occupied: 1 normally, 2 while the
// command prompt is active.
func (s *StatusLine) Height() int {
	if s.commandActive {
		return 2
	}
	return 1
}

// FormatModeLine builds the mode line text:
//
//	flag name version: bufname (modes) filename | Ccol Lline/total sizeb Wwords | Top/Bot/All/xx%
//
// When the line is longer than width, the left (buffer-identity) field
// is trimmed so the total line never exceeds width; width <= 0 returns
// the untruncated string.
func (s *StatusLine) FormatModeLine(width int) string {
	statusFlag := "--"
	if s.changed {
		statusFlag = "**"
	}

	modes := ""
	for i, m := range s.modes {
		if i > 0 {
			modes += " "
		}
		modes += m
	}

	fileName := s.fileName
	if fileName == "" {
		fileName = "[No Name]"
	}

	left := statusFlag + " " + Name + " " + Version + ": " + s.bufferName
	if modes != "" {
		left += " (" + modes + ")"
	}
	left += " " + fileName

	position := "C" + strconv.Itoa(int(s.col)) + " L" + strconv.Itoa(int(s.line)) +
		"/" + strconv.Itoa(int(s.totalLines)) +
		" " + strconv.FormatInt(s.sizeBytes, 10) + "b" +
		" W" + strconv.Itoa(s.wordCount)

	scroll := s.formatScroll()

	line := left + " | " + position + " | " + scroll

	if width <= 0 || len(line) <= width {
		return line
	}
	return s.truncateToWidth(statusFlag, left, position, scroll, width)
}

func (s *StatusLine) formatScroll() string {
	switch s.scroll {
	case ScrollTop:
		return "Top"
	case ScrollBottom:
		return "Bot"
	case ScrollAll:
		return "All"
	default:
		return strconv.Itoa(s.percent) + "%"
	}
}

// truncateToWidth drops or trims the left (buffer-identity) field first,
// since the position and scroll fields carry the information a user is
// most likely mid-edit to need. The left field keeps as many leading
// bytes as fit and ends in "…"; the cut falls wherever that byte count
// lands, not at the colon before bufname or at a word boundary.
func (s *StatusLine) truncateToWidth(statusFlag, left, position, scroll string, width int) string {
	const ellipsis = "…"
	tail := " | " + position + " | " + scroll
	budget := width - len(tail)
	if budget <= 0 {
		if len(tail) <= width {
			return tail[len(tail)-width:]
		}
		return tail[:width]
	}
	if len(left) > budget {
		if budget <= len(ellipsis) {
			return statusFlag[:min(len(statusFlag), budget)] + tail
		}
		left = left[:budget-len(ellipsis)] + ellipsis
	}
	return left + tail
}

// Render draws the mode line (and, if active, the command/message line)
// to the backend at the given row.
func (s *StatusLine) Render(b backend.Backend, row int) {
	if s.commandActive {
		s.renderModeLine(b, row-1)
		s.renderCommandLine(b, row)
	} else if s.message != "" {
		s.renderMessage(b, row)
	} else {
		s.renderModeLine(b, row)
	}
}

func (s *StatusLine) renderModeLine(b backend.Backend, row int) {
	style := renderer.DefaultStyle().Reverse()
	text := s.FormatModeLine(s.width)

	col := 0
	for _, r := range text {
		if col >= s.width {
			break
		}
		b.SetCell(col, row, renderer.Cell{Rune: r, Width: 1, Style: style})
		col++
	}
	for ; col < s.width; col++ {
		b.SetCell(col, row, renderer.Cell{Rune: ' ', Width: 1, Style: style})
	}
}

func (s *StatusLine) renderCommandLine(b backend.Backend, row int) {
	style := renderer.DefaultStyle()
	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, renderer.Cell{Rune: ' ', Width: 1, Style: style})
	}

	b.SetCell(0, row, renderer.Cell{Rune: s.commandPrompt, Width: 1, Style: style})

	col := 1
	for _, r := range s.commandBuffer {
		if col >= s.width {
			break
		}
		b.SetCell(col, row, renderer.Cell{Rune: r, Width: 1, Style: style})
		col++
	}

	b.ShowCursor(s.commandCursor+1, row)
}

func (s *StatusLine) renderMessage(b backend.Backend, row int) {
	var style renderer.Style
	switch s.messageType {
	case MessageError:
		style = renderer.DefaultStyle().WithForeground(renderer.ColorRed).Bold()
	case MessageWarning:
		style = renderer.DefaultStyle().WithForeground(renderer.ColorYellow)
	default:
		style = renderer.DefaultStyle()
	}

	for x := 0; x < s.width; x++ {
		b.SetCell(x, row, renderer.Cell{Rune: ' ', Width: 1, Style: style})
	}
	col := 0
	for _, r := range s.message {
		if col >= s.width {
			break
		}
		b.SetCell(col, row, renderer.Cell{Rune: r, Width: 1, Style: style})
		col++
	}
}

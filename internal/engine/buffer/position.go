package buffer

import "fmt"

// ByteOffset represents a byte position in the buffer.
// This is the fundamental position type, directly indexing into the text.
type ByteOffset = int64

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column (byte offset within line)
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero point (0:0).
func (p Point) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// DisplayPoint represents a line and screen-column position, where the
// column is measured in terminal cells rather than bytes: a tab or a
// wide (double-width) rune advances it by more than one. It is distinct
// from the byte-indexed Point used for buffer storage offsets.
type DisplayPoint struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column in terminal cells
}

// String returns a human-readable representation of the point.
func (p DisplayPoint) String() string {
	return fmt.Sprintf("(%d:%d disp)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p DisplayPoint) Compare(other DisplayPoint) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p DisplayPoint) Before(other DisplayPoint) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p DisplayPoint) After(other DisplayPoint) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero point (0:0).
func (p DisplayPoint) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

package selection

import (
	"testing"

	"github.com/wllclngn/muedit/internal/renderer/core"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		selType Type
		want    string
	}{
		{TypeNormal, "normal"},
		{TypeLine, "line"},
		{TypeBlock, "block"},
		{Type(99), "normal"}, // Unknown
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.selType.String(); got != tt.want {
				t.Errorf("Type.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRangeIsEmpty(t *testing.T) {
	empty := Range{
		Start: Position{Line: 5, Column: 10},
		End:   Position{Line: 5, Column: 10},
	}
	if !empty.IsEmpty() {
		t.Error("Range with same start and end should be empty")
	}

	nonEmpty := Range{
		Start: Position{Line: 5, Column: 10},
		End:   Position{Line: 5, Column: 11},
	}
	if nonEmpty.IsEmpty() {
		t.Error("Range with different start and end should not be empty")
	}
}

func TestRangeNormalize(t *testing.T) {
	// Already normalized
	r1 := Range{
		Start: Position{Line: 1, Column: 0},
		End:   Position{Line: 2, Column: 5},
	}
	norm1 := r1.Normalize()
	if norm1.Start != r1.Start || norm1.End != r1.End {
		t.Error("Already normalized range should be unchanged")
	}

	// Reversed
	r2 := Range{
		Start: Position{Line: 5, Column: 10},
		End:   Position{Line: 2, Column: 5},
	}
	norm2 := r2.Normalize()
	if norm2.Start.Line != 2 || norm2.End.Line != 5 {
		t.Error("Reversed range should be normalized")
	}

	// Same line, reversed columns
	r3 := Range{
		Start: Position{Line: 5, Column: 10},
		End:   Position{Line: 5, Column: 5},
	}
	norm3 := r3.Normalize()
	if norm3.Start.Column != 5 || norm3.End.Column != 10 {
		t.Error("Same line reversed should be normalized")
	}
}

func TestRangeContainsNormal(t *testing.T) {
	r := Range{
		Start: Position{Line: 2, Column: 5},
		End:   Position{Line: 4, Column: 10},
		Type:  TypeNormal,
	}

	tests := []struct {
		line, col uint32
		want      bool
	}{
		{1, 0, false},  // Before start line
		{2, 4, false},  // On start line, before start col
		{2, 5, true},   // Start position
		{2, 10, true},  // On start line, after start col
		{3, 0, true},   // Middle line
		{3, 100, true}, // Middle line, any col
		{4, 0, true},   // End line, before end col
		{4, 9, true},   // End line, before end col
		{4, 10, false}, // End position (exclusive)
		{4, 11, false}, // After end col
		{5, 0, false},  // After end line
	}

	for _, tt := range tests {
		got := r.Contains(tt.line, tt.col)
		if got != tt.want {
			t.Errorf("Contains(%d, %d) = %v, want %v", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestRangeContainsLine(t *testing.T) {
	r := Range{
		Start: Position{Line: 2, Column: 5},
		End:   Position{Line: 4, Column: 10},
		Type:  TypeLine,
	}

	tests := []struct {
		line, col uint32
		want      bool
	}{
		{1, 0, false},
		{2, 0, true},   // Start line, col 0
		{2, 100, true}, // Start line, any col
		{3, 50, true},  // Middle line
		{4, 0, true},   // End line
		{5, 0, false},  // After end line
	}

	for _, tt := range tests {
		got := r.Contains(tt.line, tt.col)
		if got != tt.want {
			t.Errorf("Line Contains(%d, %d) = %v, want %v", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestRangeContainsBlock(t *testing.T) {
	r := Range{
		Start: Position{Line: 2, Column: 5},
		End:   Position{Line: 4, Column: 10},
		Type:  TypeBlock,
	}

	tests := []struct {
		line, col uint32
		want      bool
	}{
		{1, 7, false},  // Before start line
		{2, 4, false},  // On line, before block
		{2, 5, true},   // Top-left corner
		{2, 7, true},   // Inside block
		{2, 9, true},   // Before end col
		{2, 10, false}, // End col (exclusive)
		{3, 6, true},   // Middle of block
		{4, 5, true},   // Bottom-left
		{4, 11, false}, // After block
		{5, 7, false},  // After end line
	}

	for _, tt := range tests {
		got := r.Contains(tt.line, tt.col)
		if got != tt.want {
			t.Errorf("Block Contains(%d, %d) = %v, want %v", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestRangeContainsEmpty(t *testing.T) {
	r := Range{
		Start: Position{Line: 5, Column: 10},
		End:   Position{Line: 5, Column: 10},
	}

	if r.Contains(5, 10) {
		t.Error("Empty range should not contain any position")
	}
}

func TestRangeLineRange(t *testing.T) {
	r := Range{
		Start: Position{Line: 10, Column: 5},
		End:   Position{Line: 5, Column: 10},
	}

	start, end := r.LineRange()
	if start != 5 || end != 10 {
		t.Errorf("LineRange() = (%d, %d), want (5, 10)", start, end)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PrimaryColor.IsDefault() {
		t.Error("PrimaryColor should not be default")
	}
	if cfg.SecondaryColor.IsDefault() {
		t.Error("SecondaryColor should not be default")
	}
}

func TestRendererApplySelection(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	cell := core.Cell{
		Rune:  'A',
		Width: 1,
		Style: core.DefaultStyle(),
	}

	result := r.ApplySelection(cell, true)

	// Should change background color
	if result.Style.Background.IsDefault() {
		t.Error("Selection should change background color")
	}
	if result.Rune != 'A' {
		t.Error("Rune should be preserved")
	}
}

func TestRendererConfig(t *testing.T) {
	cfg := Config{
		PrimaryColor:   core.ColorRed,
		SecondaryColor: core.ColorGreen,
	}
	r := NewRenderer(cfg)

	got := r.Config()
	if got.PrimaryColor != core.ColorRed {
		t.Error("Config should preserve primary color")
	}

	newCfg := Config{
		PrimaryColor: core.ColorYellow,
	}
	r.SetConfig(newCfg)

	got = r.Config()
	if got.PrimaryColor != core.ColorYellow {
		t.Error("SetConfig should update config")
	}
}


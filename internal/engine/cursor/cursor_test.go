package cursor

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name         string
		line, column int
		wantLine     int
		wantColumn   int
	}{
		{"origin", 1, 1, 1, 1},
		{"normal", 5, 12, 5, 12},
		{"zero floored", 0, 0, 1, 1},
		{"negative floored", -3, -7, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.line, tt.column)
			if c.Line != tt.wantLine || c.Column != tt.wantColumn {
				t.Errorf("New(%d, %d) = %v, want (%d,%d)", tt.line, tt.column, c, tt.wantLine, tt.wantColumn)
			}
			if c.Ordinal != 0 {
				t.Errorf("New() Ordinal = %d, want 0", c.Ordinal)
			}
		})
	}
}

func TestCursor_Clamp(t *testing.T) {
	c := New(10, 40)

	if got := c.ClampLine(3); got.Line != 3 {
		t.Errorf("ClampLine(3).Line = %d, want 3", got.Line)
	}
	if got := c.ClampLine(20); got.Line != 10 {
		t.Errorf("ClampLine(20).Line = %d, want 10", got.Line)
	}
	if got := c.ClampColumn(5); got.Column != 5 {
		t.Errorf("ClampColumn(5).Column = %d, want 5", got.Column)
	}
	if got := c.ClampColumn(100); got.Column != 40 {
		t.Errorf("ClampColumn(100).Column = %d, want 40", got.Column)
	}
	// Degenerate maxima still produce a valid cursor.
	if got := c.ClampLine(0); got.Line != 1 {
		t.Errorf("ClampLine(0).Line = %d, want 1", got.Line)
	}
}

func TestCursor_ValueSemantics(t *testing.T) {
	orig := New(2, 3)
	moved := orig.WithLine(7).WithColumn(1)

	if !orig.Equal(New(2, 3)) {
		t.Errorf("original cursor mutated: %v", orig)
	}
	if moved.Line != 7 || moved.Column != 1 {
		t.Errorf("moved = %v, want (7,1)", moved)
	}
}

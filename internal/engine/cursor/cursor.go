// Package cursor provides the position descriptor used to address edits
// within a buffer. Cursor is an immutable value type.
package cursor

import "fmt"

// Cursor is an insertion point within a buffer. Line and Column are
// 1-based; Ordinal identifies the cursor among siblings (0 is the
// primary cursor).
type Cursor struct {
	// Line is the 1-based line number.
	Line int

	// Column is the 1-based column number, counted in grapheme clusters.
	Column int

	// Ordinal identifies the cursor among sibling cursors.
	Ordinal int
}

// New creates a cursor at the given position.
func New(line, column int) Cursor {
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	return Cursor{Line: line, Column: column}
}

// Origin returns the primary cursor at line 1, column 1.
func Origin() Cursor {
	return Cursor{Line: 1, Column: 1}
}

// WithLine returns a cursor on the given line (floored at 1).
func (c Cursor) WithLine(line int) Cursor {
	if line < 1 {
		line = 1
	}
	c.Line = line
	return c
}

// WithColumn returns a cursor at the given column (floored at 1).
func (c Cursor) WithColumn(column int) Cursor {
	if column < 1 {
		column = 1
	}
	c.Column = column
	return c
}

// ClampLine returns a cursor with Line clamped to [1, maxLine].
func (c Cursor) ClampLine(maxLine int) Cursor {
	if maxLine < 1 {
		maxLine = 1
	}
	if c.Line < 1 {
		c.Line = 1
	}
	if c.Line > maxLine {
		c.Line = maxLine
	}
	return c
}

// ClampColumn returns a cursor with Column clamped to [1, maxColumn].
// maxColumn is conventionally len(line)+1 so the cursor may sit after
// the last character.
func (c Cursor) ClampColumn(maxColumn int) Cursor {
	if maxColumn < 1 {
		maxColumn = 1
	}
	if c.Column < 1 {
		c.Column = 1
	}
	if c.Column > maxColumn {
		c.Column = maxColumn
	}
	return c
}

// Equal returns true if both cursors describe the same position and ordinal.
func (c Cursor) Equal(other Cursor) bool {
	return c == other
}

// String returns a human-readable form of the cursor.
func (c Cursor) String() string {
	return fmt.Sprintf("(%d,%d)#%d", c.Line, c.Column, c.Ordinal)
}

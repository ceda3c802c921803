package buffer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/radix/internal/engine/cursor"
)

// Errors returned by buffer operations.
var (
	// ErrReadOnly is returned when attempting to modify a read-only buffer.
	ErrReadOnly = errors.New("buffer is read-only")
)

// lineSeparator is the newline convention used to split and rejoin
// buffer content. Text inserted with embedded separators becomes real
// line boundaries on the next split.
const lineSeparator = "\n"

// ScrollOffset is a 2D scroll position associated with a buffer.
type ScrollOffset struct {
	// Rows is the vertical offset in lines.
	Rows int

	// Cols is the horizontal offset in columns.
	Cols int
}

// ChangeKind identifies the kind of a recorded mutation.
type ChangeKind uint8

const (
	// ChangeInsert records a cursor-addressed text insertion.
	ChangeInsert ChangeKind = iota
	// ChangeReplace records an explicit full-content replacement.
	ChangeReplace
	// ChangeSetCursor records a cursor move.
	ChangeSetCursor
	// ChangeSetScroll records a scroll offset change.
	ChangeSetScroll
)

// String returns a human-readable change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeInsert:
		return "insert"
	case ChangeReplace:
		return "replace"
	case ChangeSetCursor:
		return "set-cursor"
	case ChangeSetScroll:
		return "set-scroll"
	default:
		return "unknown"
	}
}

// Change is one recorded past mutation of a buffer.
type Change struct {
	// Kind identifies the mutation.
	Kind ChangeKind

	// Text is the inserted or replacement text, when applicable.
	Text string

	// At is the (clamped) cursor position the mutation was applied at.
	At cursor.Cursor

	// Timestamp is when the mutation was applied.
	Timestamp time.Time
}

// Buffer is an immutable-update text document with a cursor. All update
// methods return a new value; a Buffer is never mutated in place. Data
// begins absent (distinct from empty) and is established by the first
// insert or an explicit replacement.
type Buffer struct {
	id       uuid.UUID
	name     string
	data     string
	hasData  bool
	cursors  []cursor.Cursor
	history  []Change
	scroll   ScrollOffset
	readOnly bool
}

// New creates a buffer with absent data and one cursor at (1,1).
func New(id uuid.UUID) Buffer {
	return Buffer{
		id:      id,
		cursors: []cursor.Cursor{cursor.Origin()},
	}
}

// NewNamed creates a named buffer with absent data and one cursor at (1,1).
func NewNamed(id uuid.UUID, name string) Buffer {
	b := New(id)
	b.name = name
	return b
}

// ID returns the buffer's stable unique identifier.
func (b Buffer) ID() uuid.UUID {
	return b.id
}

// Name returns the buffer's display name.
func (b Buffer) Name() string {
	return b.name
}

// Data returns the buffer content and whether content has been
// established. Absent data is distinct from empty content.
func (b Buffer) Data() (string, bool) {
	return b.data, b.hasData
}

// Cursor returns the primary cursor.
func (b Buffer) Cursor() cursor.Cursor {
	return b.cursors[0]
}

// Cursors returns a copy of the cursor sequence. The current model
// carries exactly one cursor; additional cursors are a future extension
// point, not an edited set.
func (b Buffer) Cursors() []cursor.Cursor {
	out := make([]cursor.Cursor, len(b.cursors))
	copy(out, b.cursors)
	return out
}

// Scroll returns the buffer's scroll offset.
func (b Buffer) Scroll() ScrollOffset {
	return b.scroll
}

// ReadOnly returns true if the buffer rejects content mutations.
func (b Buffer) ReadOnly() bool {
	return b.readOnly
}

// History returns a copy of the recorded past mutations.
func (b Buffer) History() []Change {
	out := make([]Change, len(b.history))
	copy(out, b.history)
	return out
}

// LineCount returns the number of lines. A buffer with absent data has
// zero lines; established content always has at least one.
func (b Buffer) LineCount() int {
	if !b.hasData {
		return 0
	}
	return strings.Count(b.data, lineSeparator) + 1
}

// Line returns the 1-based nth line and whether it exists.
func (b Buffer) Line(n int) (string, bool) {
	if !b.hasData || n < 1 {
		return "", false
	}
	lines := strings.Split(b.data, lineSeparator)
	if n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

// WithName returns a buffer with the given display name.
func (b Buffer) WithName(name string) Buffer {
	b.name = name
	return b
}

// WithReadOnly returns a buffer with the read-only flag set.
func (b Buffer) WithReadOnly(readOnly bool) Buffer {
	b.readOnly = readOnly
	return b
}

// WithScroll returns a buffer with the scroll offset replaced. Content,
// cursors, and identity are untouched. Setting the current offset is a
// no-op that records no history.
func (b Buffer) WithScroll(offset ScrollOffset) Buffer {
	if b.scroll == offset {
		return b
	}
	b.scroll = offset
	b.history = appendChange(b.history, Change{
		Kind:      ChangeSetScroll,
		Timestamp: time.Now(),
	})
	return b
}

// WithCursor returns a buffer with the primary cursor replaced. The
// cursor is clamped to the buffer's content range. Moving to the current
// position is a no-op that records no history.
func (b Buffer) WithCursor(c cursor.Cursor) Buffer {
	c = b.clamp(c)
	if b.cursors[0].Equal(c) {
		return b
	}

	cursors := make([]cursor.Cursor, len(b.cursors))
	copy(cursors, b.cursors)
	cursors[0] = c
	b.cursors = cursors

	b.history = appendChange(b.history, Change{
		Kind:      ChangeSetCursor,
		At:        c,
		Timestamp: time.Now(),
	})
	return b
}

// WithData returns a buffer with its content explicitly replaced. The
// cursor is re-clamped against the new content.
func (b Buffer) WithData(text string) Buffer {
	if b.hasData && b.data == text {
		return b
	}
	b.data = text
	b.hasData = true

	cursors := make([]cursor.Cursor, len(b.cursors))
	copy(cursors, b.cursors)
	cursors[0] = b.clamp(cursors[0])
	b.cursors = cursors

	b.history = appendChange(b.history, Change{
		Kind:      ChangeReplace,
		Text:      text,
		Timestamp: time.Now(),
	})
	return b
}

// Equal reports whether two buffers carry the same observable state:
// identity, name, content, cursors, scroll, and read-only flag. The
// mutation history is bookkeeping and does not participate.
func (b Buffer) Equal(other Buffer) bool {
	if b.id != other.id ||
		b.name != other.name ||
		b.data != other.data ||
		b.hasData != other.hasData ||
		b.scroll != other.scroll ||
		b.readOnly != other.readOnly {
		return false
	}
	if len(b.cursors) != len(other.cursors) {
		return false
	}
	for i := range b.cursors {
		if !b.cursors[i].Equal(other.cursors[i]) {
			return false
		}
	}
	return true
}

// clamp constrains a cursor to the buffer's content range: line within
// [1, LineCount] and column within [1, width(line)+1]. A buffer with
// absent data pins the cursor at the origin.
func (b Buffer) clamp(c cursor.Cursor) cursor.Cursor {
	if !b.hasData {
		return cursor.Origin()
	}
	lines := strings.Split(b.data, lineSeparator)
	c = c.ClampLine(len(lines))
	return c.ClampColumn(graphemeCount(lines[c.Line-1]) + 1)
}

// appendChange appends without aliasing the source history slice.
func appendChange(history []Change, c Change) []Change {
	out := make([]Change, len(history), len(history)+1)
	copy(out, history)
	return append(out, c)
}

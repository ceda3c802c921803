package buffer

import (
	"strings"
	"time"

	"github.com/rivo/uniseg"

	"github.com/dshills/radix/internal/engine/cursor"
)

// Insert returns a buffer with text inserted at the primary cursor.
//
// If the buffer's data is absent, the text establishes the content
// verbatim with no line handling. Otherwise the content is split on the
// newline separator, the cursor's line is spliced at the cursor's
// column, and the lines are rejoined; only the targeted line changes.
// Embedded newlines in the inserted text become real line boundaries on
// the next split.
//
// Out-of-range cursor coordinates are clamped to the content range
// rather than rejected. Inserting into a read-only buffer returns
// ErrReadOnly.
func (b Buffer) Insert(text string) (Buffer, error) {
	if b.readOnly {
		return b, ErrReadOnly
	}
	if text == "" {
		return b, nil
	}

	at := b.cursors[0]
	if !b.hasData {
		b.data = text
		b.hasData = true
		at = cursor.Origin()
	} else {
		lines := strings.Split(b.data, lineSeparator)
		at = at.ClampLine(len(lines))
		line := lines[at.Line-1]
		at = at.ClampColumn(graphemeCount(line) + 1)
		lines[at.Line-1] = spliceLine(line, text, at.Column)
		b.data = strings.Join(lines, lineSeparator)
	}

	b.history = appendChange(b.history, Change{
		Kind:      ChangeInsert,
		Text:      text,
		At:        at,
		Timestamp: time.Now(),
	})
	return b, nil
}

// spliceLine inserts text into line before the 1-based column, measured
// in grapheme clusters. A column past the end of the line appends.
func spliceLine(line, text string, column int) string {
	idx := byteIndexOfColumn(line, column)
	return line[:idx] + text + line[idx:]
}

// byteIndexOfColumn returns the byte offset of the 1-based grapheme
// column within line. Columns past the end map to len(line).
func byteIndexOfColumn(line string, column int) int {
	if column <= 1 {
		return 0
	}
	g := uniseg.NewGraphemes(line)
	idx := 0
	for col := 1; col < column && g.Next(); col++ {
		_, to := g.Positions()
		idx = to
	}
	return idx
}

// graphemeCount returns the number of grapheme clusters in s.
func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// Package buffer provides the pure-value text document model for the
// Radix state core.
//
// A Buffer is a persistent value: every update returns a new Buffer and
// never mutates the receiver. Buffers are owned by the state snapshot
// that contains them, so no locking is needed anywhere in this package.
//
// Content is addressed by a 1-based (line, column) cursor, with columns
// counted in grapheme clusters so that multi-byte and combining
// characters occupy one column. Data begins absent — distinct from
// empty — and is established by the first Insert or an explicit
// WithData replacement.
//
//	buf := buffer.NewNamed(uuid.New(), "scratch")
//	buf, _ = buf.Insert("hello\nworld")
//	buf = buf.WithCursor(cursor.New(2, 1))
//	buf, _ = buf.Insert("big ") // "hello\nbig world"
package buffer

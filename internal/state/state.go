// Package state provides the Radix state snapshot — the aggregate
// application state the rendering layer observes — and the single-writer
// Store that holds the current snapshot.
//
// State is a persistent value: every mutation produces a new snapshot.
// Buffers are owned by the snapshot that contains them and are never
// mutated outside of producing a new snapshot.
package state

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dshills/radix/internal/engine/buffer"
)

// Errors returned by state operations.
var (
	// ErrBufferNotFound is returned when an operation references a buffer
	// id not present in the snapshot.
	ErrBufferNotFound = errors.New("buffer not found")

	// ErrNoActiveBuffer is returned when an operation requires an active
	// buffer and the snapshot has none.
	ErrNoActiveBuffer = errors.New("no active buffer")
)

// State is an immutable snapshot of the application state: the ordered
// collection of open buffers and the active buffer reference.
//
// Invariant: whenever the buffer list is non-empty, the active id
// references a buffer present in the list.
type State struct {
	buffers []buffer.Buffer
	active  uuid.UUID
}

// New creates the initial state: one default buffer, active.
func New(defaultBufferName string) State {
	buf := buffer.NewNamed(uuid.New(), defaultBufferName)
	return State{
		buffers: []buffer.Buffer{buf},
		active:  buf.ID(),
	}
}

// Empty returns a snapshot with no buffers. Valid as a value, but not
// accepted as a Store's initial state.
func Empty() State {
	return State{}
}

// Buffers returns a copy of the ordered buffer sequence.
func (s State) Buffers() []buffer.Buffer {
	out := make([]buffer.Buffer, len(s.buffers))
	copy(out, s.buffers)
	return out
}

// BufferCount returns the number of open buffers.
func (s State) BufferCount() int {
	return len(s.buffers)
}

// Buffer returns the buffer with the given id.
func (s State) Buffer(id uuid.UUID) (buffer.Buffer, bool) {
	for _, b := range s.buffers {
		if b.ID() == id {
			return b, true
		}
	}
	return buffer.Buffer{}, false
}

// ActiveID returns the active buffer id. Zero when no buffers are open.
func (s State) ActiveID() uuid.UUID {
	return s.active
}

// ActiveBuffer returns the active buffer.
func (s State) ActiveBuffer() (buffer.Buffer, bool) {
	return s.Buffer(s.active)
}

// OpenBuffer returns a snapshot with a new named buffer appended and
// made active, plus the created buffer.
func (s State) OpenBuffer(name string) (State, buffer.Buffer) {
	buf := buffer.NewNamed(uuid.New(), name)

	buffers := make([]buffer.Buffer, len(s.buffers), len(s.buffers)+1)
	copy(buffers, s.buffers)
	buffers = append(buffers, buf)

	return State{buffers: buffers, active: buf.ID()}, buf
}

// CloseBuffer returns a snapshot with the buffer removed. If the closed
// buffer was active, the nearest remaining buffer becomes active; a
// snapshot left with no buffers has a zero active id.
func (s State) CloseBuffer(id uuid.UUID) (State, error) {
	idx := -1
	for i, b := range s.buffers {
		if b.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, ErrBufferNotFound
	}

	buffers := make([]buffer.Buffer, 0, len(s.buffers)-1)
	buffers = append(buffers, s.buffers[:idx]...)
	buffers = append(buffers, s.buffers[idx+1:]...)

	active := s.active
	if active == id {
		switch {
		case len(buffers) == 0:
			active = uuid.Nil
		case idx > 0:
			active = buffers[idx-1].ID()
		default:
			active = buffers[0].ID()
		}
	}

	return State{buffers: buffers, active: active}, nil
}

// ReplaceBuffer returns a snapshot with the buffer of the same id
// replaced by the given value.
func (s State) ReplaceBuffer(b buffer.Buffer) (State, error) {
	idx := -1
	for i, existing := range s.buffers {
		if existing.ID() == b.ID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, ErrBufferNotFound
	}

	buffers := make([]buffer.Buffer, len(s.buffers))
	copy(buffers, s.buffers)
	buffers[idx] = b

	return State{buffers: buffers, active: s.active}, nil
}

// Activate returns a snapshot with the given buffer made active.
func (s State) Activate(id uuid.UUID) (State, error) {
	if _, ok := s.Buffer(id); !ok {
		return s, ErrBufferNotFound
	}
	return State{buffers: s.buffers, active: id}, nil
}

// UpdateActive applies fn to the active buffer and returns a snapshot
// carrying the result. The update never touches other buffers.
func (s State) UpdateActive(fn func(buffer.Buffer) (buffer.Buffer, error)) (State, error) {
	active, ok := s.ActiveBuffer()
	if !ok {
		return s, ErrNoActiveBuffer
	}
	updated, err := fn(active)
	if err != nil {
		return s, err
	}
	return s.ReplaceBuffer(updated)
}

// Valid reports whether the snapshot satisfies the active-buffer
// invariant.
func (s State) Valid() bool {
	if len(s.buffers) == 0 {
		return true
	}
	_, ok := s.Buffer(s.active)
	return ok
}

// Equal reports whether two snapshots carry the same observable state.
func (s State) Equal(other State) bool {
	if s.active != other.active || len(s.buffers) != len(other.buffers) {
		return false
	}
	for i := range s.buffers {
		if !s.buffers[i].Equal(other.buffers[i]) {
			return false
		}
	}
	return true
}

// Package editor provides the reducer for content edits against the
// active buffer: text insertion, cursor movement, and scrolling.
package editor

import (
	"errors"

	"github.com/dshills/radix/internal/dispatcher"
	"github.com/dshills/radix/internal/engine/buffer"
	"github.com/dshills/radix/internal/engine/cursor"
	"github.com/dshills/radix/internal/state"
)

// Name is the identifier action envelopes use to target this reducer.
const Name = "editor"

// Reducer applies content edits to the active buffer. It is pure: it
// computes a new snapshot and never mutates the one it is given.
type Reducer struct{}

// New creates the editor reducer.
func New() *Reducer {
	return &Reducer{}
}

// Name implements dispatcher.Reducer.
func (r *Reducer) Name() string {
	return Name
}

// Reduce implements dispatcher.Reducer. Workspace-level actions are not
// applicable here; they belong to the workspace reducer. An action
// outside the known union is an unhandled-action error.
func (r *Reducer) Reduce(s state.State, action dispatcher.Action) (dispatcher.Outcome, error) {
	switch a := action.(type) {
	case dispatcher.InsertText:
		return r.apply(s, func(b buffer.Buffer) (buffer.Buffer, error) {
			return b.Insert(a.Text)
		})

	case dispatcher.SetCursor:
		return r.apply(s, func(b buffer.Buffer) (buffer.Buffer, error) {
			return b.WithCursor(cursor.New(a.Line, a.Column)), nil
		})

	case dispatcher.SetScroll:
		return r.apply(s, func(b buffer.Buffer) (buffer.Buffer, error) {
			return b.WithScroll(buffer.ScrollOffset{Rows: a.Rows, Cols: a.Cols}), nil
		})

	case dispatcher.OpenBuffer, dispatcher.CloseBuffer, dispatcher.ActivateBuffer, dispatcher.SetReadOnly:
		return dispatcher.NotApplicable(), nil

	default:
		return dispatcher.Outcome{}, &dispatcher.UnhandledActionError{
			Reducer: Name,
			Kind:    action.Kind(),
		}
	}
}

// apply runs a buffer transformation against the active buffer. A
// missing active buffer or a read-only rejection is a matched no-op,
// not a failure.
func (r *Reducer) apply(s state.State, fn func(buffer.Buffer) (buffer.Buffer, error)) (dispatcher.Outcome, error) {
	next, err := s.UpdateActive(fn)
	if err != nil {
		if errors.Is(err, state.ErrNoActiveBuffer) || errors.Is(err, buffer.ErrReadOnly) {
			return dispatcher.Unchanged(), nil
		}
		return dispatcher.Outcome{}, err
	}
	if next.Equal(s) {
		return dispatcher.Unchanged(), nil
	}
	return dispatcher.Applied(next), nil
}

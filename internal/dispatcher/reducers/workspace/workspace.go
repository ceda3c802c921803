// Package workspace provides the reducer for buffer lifecycle actions:
// opening, closing, activating, and read-only toggling.
package workspace

import (
	"errors"

	"github.com/dshills/radix/internal/dispatcher"
	"github.com/dshills/radix/internal/state"
)

// Name is the identifier action envelopes use to target this reducer.
const Name = "workspace"

// Reducer applies buffer lifecycle changes to the snapshot.
type Reducer struct{}

// New creates the workspace reducer.
func New() *Reducer {
	return &Reducer{}
}

// Name implements dispatcher.Reducer.
func (r *Reducer) Name() string {
	return Name
}

// Reduce implements dispatcher.Reducer. Content edits are not applicable
// here; they belong to the editor reducer. An action outside the known
// union is an unhandled-action error.
func (r *Reducer) Reduce(s state.State, action dispatcher.Action) (dispatcher.Outcome, error) {
	switch a := action.(type) {
	case dispatcher.OpenBuffer:
		next, _ := s.OpenBuffer(a.Name)
		return dispatcher.Applied(next), nil

	case dispatcher.CloseBuffer:
		next, err := s.CloseBuffer(a.ID)
		if err != nil {
			// Already closed: a benign race with another action, not a failure.
			if errors.Is(err, state.ErrBufferNotFound) {
				return dispatcher.Unchanged(), nil
			}
			return dispatcher.Outcome{}, err
		}
		return dispatcher.Applied(next), nil

	case dispatcher.ActivateBuffer:
		next, err := s.Activate(a.ID)
		if err != nil {
			if errors.Is(err, state.ErrBufferNotFound) {
				return dispatcher.Unchanged(), nil
			}
			return dispatcher.Outcome{}, err
		}
		if next.Equal(s) {
			return dispatcher.Unchanged(), nil
		}
		return dispatcher.Applied(next), nil

	case dispatcher.SetReadOnly:
		buf, ok := s.Buffer(a.ID)
		if !ok {
			return dispatcher.Unchanged(), nil
		}
		if buf.ReadOnly() == a.ReadOnly {
			return dispatcher.Unchanged(), nil
		}
		next, err := s.ReplaceBuffer(buf.WithReadOnly(a.ReadOnly))
		if err != nil {
			return dispatcher.Outcome{}, err
		}
		return dispatcher.Applied(next), nil

	case dispatcher.InsertText, dispatcher.SetCursor, dispatcher.SetScroll:
		return dispatcher.NotApplicable(), nil

	default:
		return dispatcher.Outcome{}, &dispatcher.UnhandledActionError{
			Reducer: Name,
			Kind:    action.Kind(),
		}
	}
}

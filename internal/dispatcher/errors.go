package dispatcher

import "errors"

// Sentinel errors for the dispatch layer.
var (
	// ErrUnhandledAction is returned by a reducer that has no clause for
	// the given action. It is fatal to the handling listener; the
	// supervisor restarts the listener with a fresh subscription.
	ErrUnhandledAction = errors.New("unhandled action")

	// ErrMalformedEnvelope is returned when a wire envelope cannot be
	// decoded into the action union.
	ErrMalformedEnvelope = errors.New("malformed action envelope")

	// ErrUnknownActionKind is returned when a wire envelope names an
	// action kind outside the closed union.
	ErrUnknownActionKind = errors.New("unknown action kind")

	// ErrDuplicateReducer is returned when registering a reducer name twice.
	ErrDuplicateReducer = errors.New("reducer already registered")

	// ErrRestartLimit is returned by a supervisor that has exhausted its
	// restart budget.
	ErrRestartLimit = errors.New("listener restart limit exceeded")
)

// UnhandledActionError reports which reducer rejected which action kind.
type UnhandledActionError struct {
	// Reducer is the name of the reducer that had no matching clause.
	Reducer string

	// Kind is the wire name of the rejected action.
	Kind string
}

// Error implements the error interface.
func (e *UnhandledActionError) Error() string {
	return "reducer " + e.Reducer + " has no clause for action " + e.Kind
}

// Is allows errors.Is to match UnhandledActionError with ErrUnhandledAction.
func (e *UnhandledActionError) Is(target error) bool {
	return target == ErrUnhandledAction
}

package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/radix/internal/state"
)

// OutcomeKind classifies a reducer's result.
type OutcomeKind uint8

const (
	// OutcomeUnchanged means the action matched but produced no new state.
	OutcomeUnchanged OutcomeKind = iota

	// OutcomeApplied means the reducer produced a new state snapshot.
	OutcomeApplied

	// OutcomeNotApplicable means the action targets a different aggregate
	// and this reducer has nothing to say about it. Distinct from
	// "matched but no-op".
	OutcomeNotApplicable
)

// String returns a human-readable outcome kind name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeApplied:
		return "applied"
	case OutcomeNotApplicable:
		return "not-applicable"
	default:
		return "unknown"
	}
}

// Outcome is the result of a reducer invocation.
type Outcome struct {
	// Kind classifies the outcome.
	Kind OutcomeKind

	// State is the new snapshot when Kind is OutcomeApplied.
	State state.State
}

// Unchanged creates an outcome for a matched action with no effect.
func Unchanged() Outcome {
	return Outcome{Kind: OutcomeUnchanged}
}

// Applied creates an outcome carrying a new snapshot.
func Applied(s state.State) Outcome {
	return Outcome{Kind: OutcomeApplied, State: s}
}

// NotApplicable creates an outcome for an action outside the reducer's
// aggregate.
func NotApplicable() Outcome {
	return Outcome{Kind: OutcomeNotApplicable}
}

// Reducer is a pure capability mapping (snapshot, action) to an outcome.
// Implementations must not perform I/O or retain references to the
// snapshot; they compute and return.
type Reducer interface {
	// Name is the identifier action envelopes use to target this reducer.
	Name() string

	// Reduce computes the outcome of applying the action to the snapshot.
	// An action with no matching clause returns an error matching
	// ErrUnhandledAction.
	Reduce(s state.State, action Action) (Outcome, error)
}

// Registry holds reducers by name. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	reducers map[string]Reducer
}

// NewRegistry creates an empty reducer registry.
func NewRegistry() *Registry {
	return &Registry{
		reducers: make(map[string]Reducer),
	}
}

// Register adds a reducer under its name.
func (r *Registry) Register(red Reducer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := red.Name()
	if _, exists := r.reducers[name]; exists {
		return ErrDuplicateReducer
	}
	r.reducers[name] = red
	return nil
}

// Get returns the reducer registered under the given name.
func (r *Registry) Get(name string) (Reducer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	red, ok := r.reducers[name]
	return red, ok
}

// Names returns the registered reducer names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.reducers))
	for name := range r.reducers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

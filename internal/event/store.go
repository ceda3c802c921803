package event

import (
	"sort"
	"sync"
	"time"
)

// entry is a stored event plus its outstanding acknowledgments.
type entry struct {
	env Envelope

	// pending holds the subscriber identities that have not yet
	// acknowledged the event. The entry is removable once empty.
	pending map[string]struct{}
}

// eventStore holds published envelopes until every subscriber registered
// for the topic at publish time has acknowledged them.
// It is safe for concurrent use.
type eventStore struct {
	mu      sync.RWMutex
	entries map[ID]*entry
}

// newEventStore creates an empty event store.
func newEventStore() *eventStore {
	return &eventStore{
		entries: make(map[ID]*entry),
	}
}

// Add stores an envelope with the given set of outstanding subscribers.
// An envelope with no subscribers is retained for late fetches until the
// sweeper reclaims it.
func (s *eventStore) Add(env Envelope, subscribers []string) {
	pending := make(map[string]struct{}, len(subscribers))
	for _, id := range subscribers {
		pending[id] = struct{}{}
	}

	s.mu.Lock()
	s.entries[env.ID] = &entry{env: env, pending: pending}
	s.mu.Unlock()
}

// Fetch returns the envelope for the given ID.
func (s *eventStore) Fetch(id ID) (Envelope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Envelope{}, false
	}
	return e.env, true
}

// Ack marks the subscriber done with the event. It returns true if the
// event became fully acknowledged and was removed. Acknowledging an
// already-removed event is a no-op.
func (s *eventStore) Ack(subscriberID string, id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}

	delete(e.pending, subscriberID)
	if len(e.pending) == 0 {
		delete(s.entries, id)
		return true
	}
	return false
}

// PendingFor returns shadows of all events still awaiting acknowledgment
// from the given subscriber, in publish order.
func (s *eventStore) PendingFor(subscriberID string) []Shadow {
	s.mu.RLock()
	pending := make([]*entry, 0)
	for _, e := range s.entries {
		if _, ok := e.pending[subscriberID]; ok {
			pending = append(pending, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].env.Seq < pending[j].env.Seq
	})

	shadows := make([]Shadow, len(pending))
	for i, e := range pending {
		shadows[i] = e.env.Shadow()
	}
	return shadows
}

// SweepBefore removes every entry published before the cutoff, regardless
// of outstanding acknowledgments. It returns the reclaimed shadows.
func (s *eventStore) SweepBefore(cutoff time.Time) []Shadow {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reclaimed []Shadow
	for id, e := range s.entries {
		if e.env.Timestamp.Before(cutoff) {
			reclaimed = append(reclaimed, e.env.Shadow())
			delete(s.entries, id)
		}
	}
	return reclaimed
}

// Len returns the number of retained events.
func (s *eventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

package event

import (
	"time"

	"github.com/dshills/radix/internal/event/topic"
)

// ID is an opaque, time-ordered event identifier. IDs assigned by a
// single bus sort lexicographically in publish order.
type ID string

// Shadow references an event without carrying its payload. It is the
// (topic, identity) pair delivered to subscribers; the payload is
// fetched lazily via Bus.Fetch.
type Shadow struct {
	// Topic is the topic the event was published on.
	Topic topic.Topic

	// ID is the event identity within the bus.
	ID ID
}

// IsZero returns true if the shadow references no event.
func (s Shadow) IsZero() bool {
	return s.Topic == "" && s.ID == ""
}

// String returns a human-readable form of the shadow.
func (s Shadow) String() string {
	return string(s.Topic) + "#" + string(s.ID)
}

// Envelope is a stored event: the shadow fields plus the payload.
// Envelopes are immutable once published.
type Envelope struct {
	// Topic is the topic the event was published on.
	Topic topic.Topic

	// ID is the event identity.
	ID ID

	// Seq is the bus-wide publish sequence number. Within a topic it
	// increases monotonically with publish order.
	Seq uint64

	// Timestamp is when the event was published.
	Timestamp time.Time

	// Payload is the event-specific data. Subscribers type-assert.
	Payload any
}

// Shadow returns the envelope's shadow.
func (e Envelope) Shadow() Shadow {
	return Shadow{Topic: e.Topic, ID: e.ID}
}

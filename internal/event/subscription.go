package event

import (
	"github.com/dshills/radix/internal/event/topic"
)

// Subscription is a subscriber's handle onto the bus. Shadows of matching
// events arrive on Events in per-topic publish order; the subscriber
// fetches payloads by shadow and acknowledges when done.
type Subscription struct {
	subscriberID string
	inbox        chan Shadow
	bus          *bus
}

// SubscriberID returns the subscriber identity this subscription belongs to.
func (s *Subscription) SubscriberID() string {
	return s.subscriberID
}

// Events returns the channel of incoming event shadows. The channel is
// closed when the subscription is cancelled or the bus stops.
func (s *Subscription) Events() <-chan Shadow {
	return s.inbox
}

// Topics returns the topic patterns the subscriber is bound to.
func (s *Subscription) Topics() []topic.Topic {
	return s.bus.topicsOf(s.subscriberID)
}

// Cancel removes the subscriber from the bus and closes the inbox.
// Unacknowledged events remain stored and are redelivered if the same
// subscriber identity subscribes again.
func (s *Subscription) Cancel() {
	s.bus.unsubscribe(s.subscriberID)
}

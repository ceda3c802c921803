package event

import (
	"context"
	"crypto/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/dshills/radix/internal/event/topic"
)

// Bus is the central event bus. Publishing stores the payload, assigns an
// ordered identity, and fans the event's shadow out to every subscriber
// bound to the topic. Subscribers fetch payloads by shadow and
// acknowledge when done; an event is garbage-collected once every
// subscriber registered for its topic at publish time has acknowledged.
type Bus interface {
	// Publish stores the payload and enqueues delivery to matching
	// subscribers. Safe under concurrent publishers. The returned shadow
	// identifies the event.
	Publish(ctx context.Context, t topic.Topic, payload any) (Shadow, error)

	// Subscribe registers the subscriber for the given topic patterns.
	// Registration is idempotent: re-subscribing the same identity merges
	// patterns and redelivers every event the subscriber has not yet
	// acknowledged, in publish order.
	Subscribe(subscriberID string, topics ...topic.Topic) (*Subscription, error)

	// Fetch returns the stored envelope for a shadow. It fails with
	// ErrNotFound once the event has been garbage-collected.
	Fetch(shadow Shadow) (Envelope, error)

	// Ack marks the subscriber done with the event. Acknowledging an
	// event that is already collected is a no-op.
	Ack(subscriberID string, shadow Shadow) error

	// Lifecycle
	Start() error
	Stop(ctx context.Context) error
	IsRunning() bool

	// Stats returns current bus counters.
	Stats() Stats
}

// Stats contains event bus counters.
type Stats struct {
	// Published is the total number of events published.
	Published uint64

	// Delivered is the number of shadows enqueued to subscriber inboxes.
	Delivered uint64

	// Dropped is the number of shadows not enqueued because an inbox was
	// full. The event stays pending and is redelivered on re-subscribe.
	Dropped uint64

	// Acked is the total number of acknowledgments processed.
	Acked uint64

	// Reclaimed is the number of events removed by the retention sweeper
	// before being fully acknowledged.
	Reclaimed uint64

	// PendingEvents is the number of events currently retained.
	PendingEvents int

	// Subscribers is the number of currently registered subscribers.
	Subscribers int
}

// subscriber is a registered subscriber and its delivery inbox.
type subscriber struct {
	id       string
	patterns []topic.Topic
	inbox    chan Shadow
	handle   *Subscription
}

// matches reports whether the subscriber is bound to the given topic.
func (s *subscriber) matches(t topic.Topic) bool {
	for _, p := range s.patterns {
		if t.Matches(p) {
			return true
		}
	}
	return false
}

// hasPattern reports whether the subscriber already holds the pattern.
func (s *subscriber) hasPattern(p topic.Topic) bool {
	for _, existing := range s.patterns {
		if existing == p {
			return true
		}
	}
	return false
}

// bus is the default Bus implementation.
type bus struct {
	config busConfig
	store  *eventStore

	// mu serializes publish and subscription changes so that every
	// subscriber inbox observes per-topic publish order.
	mu          sync.Mutex
	subscribers map[string]*subscriber
	seen        map[string]struct{}
	seq         uint64
	entropy     *ulid.MonotonicEntropy

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	acked     atomic.Uint64
	reclaimed atomic.Uint64
}

// NewBus creates a new event bus with the given options.
func NewBus(opts ...BusOption) Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &bus{
		config:      config,
		store:       newEventStore(),
		subscribers: make(map[string]*subscriber),
		seen:        make(map[string]struct{}),
		entropy:     ulid.Monotonic(rand.Reader, 0),
	}
}

// Start starts the bus and its retention sweeper.
func (b *bus) Start() error {
	if b.running.Swap(true) {
		return ErrBusAlreadyRunning
	}

	b.done = make(chan struct{})
	if b.config.retention > 0 {
		b.wg.Add(1)
		go b.sweeper()
	}
	return nil
}

// Stop stops the bus gracefully. All subscriber inboxes are closed; it
// waits for the sweeper to exit or until the context is cancelled.
func (b *bus) Stop(ctx context.Context) error {
	if !b.running.Swap(false) {
		return ErrBusNotRunning
	}

	close(b.done)

	b.mu.Lock()
	for _, sub := range b.subscribers {
		close(sub.inbox)
	}
	b.subscribers = make(map[string]*subscriber)
	b.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}

// IsRunning returns true if the bus is running.
func (b *bus) IsRunning() bool {
	return b.running.Load()
}

// Publish stores the payload and fans the shadow out to subscribers.
func (b *bus) Publish(ctx context.Context, t topic.Topic, payload any) (Shadow, error) {
	if !b.running.Load() {
		return Shadow{}, ErrBusNotRunning
	}
	if !t.IsValid() || t.IsPattern() {
		return Shadow{}, ErrInvalidTopic
	}
	if err := ctx.Err(); err != nil {
		return Shadow{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	env := Envelope{
		Topic:     t,
		ID:        b.newID(),
		Seq:       b.seq,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	var targets []*subscriber
	for _, sub := range b.subscribers {
		if sub.matches(t) {
			targets = append(targets, sub)
		}
	}

	ids := make([]string, len(targets))
	for i, sub := range targets {
		ids[i] = sub.id
	}
	b.store.Add(env, ids)

	shadow := env.Shadow()
	for _, sub := range targets {
		select {
		case sub.inbox <- shadow:
			b.delivered.Add(1)
		default:
			// Inbox full. The event stays pending for this subscriber and
			// is replayed when it re-subscribes.
			b.dropped.Add(1)
			b.config.logger.Warn().
				Str("subscriber", sub.id).
				Str("event", shadow.String()).
				Msg("inbox full, delivery deferred to re-subscribe")
		}
	}

	b.published.Add(1)
	return shadow, nil
}

// Subscribe registers the subscriber for the given topic patterns.
func (b *bus) Subscribe(subscriberID string, topics ...topic.Topic) (*Subscription, error) {
	if !b.running.Load() {
		return nil, ErrBusNotRunning
	}
	if subscriberID == "" {
		return nil, ErrInvalidSubscriber
	}
	for _, t := range topics {
		if !t.IsValid() {
			return nil, ErrInvalidTopic
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub, exists := b.subscribers[subscriberID]
	if !exists {
		inbox := make(chan Shadow, b.config.inboxSize)
		sub = &subscriber{
			id:    subscriberID,
			inbox: inbox,
		}
		sub.handle = &Subscription{
			subscriberID: subscriberID,
			inbox:        inbox,
			bus:          b,
		}
		b.subscribers[subscriberID] = sub
		b.seen[subscriberID] = struct{}{}
	}

	for _, t := range topics {
		if !sub.hasPattern(t) {
			sub.patterns = append(sub.patterns, t)
		}
	}

	// Replay events still awaiting this subscriber's acknowledgment.
	// Covers a crashed subscriber re-attaching with the same identity.
	for _, shadow := range b.store.PendingFor(subscriberID) {
		if !sub.matches(shadow.Topic) {
			continue
		}
		select {
		case sub.inbox <- shadow:
			b.delivered.Add(1)
		default:
			b.dropped.Add(1)
		}
	}

	return sub.handle, nil
}

// Fetch returns the stored envelope for the given shadow.
func (b *bus) Fetch(shadow Shadow) (Envelope, error) {
	env, ok := b.store.Fetch(shadow.ID)
	if !ok {
		return Envelope{}, ErrNotFound
	}
	return env, nil
}

// Ack marks the subscriber done with the event.
func (b *bus) Ack(subscriberID string, shadow Shadow) error {
	if subscriberID == "" {
		return ErrInvalidSubscriber
	}

	b.mu.Lock()
	_, known := b.seen[subscriberID]
	b.mu.Unlock()
	if !known {
		return ErrUnknownSubscriber
	}

	b.acked.Add(1)
	if b.store.Ack(subscriberID, shadow.ID) {
		b.config.logger.Debug().
			Str("event", shadow.String()).
			Msg("event fully acknowledged, collected")
	}
	return nil
}

// Stats returns current bus counters.
func (b *bus) Stats() Stats {
	b.mu.Lock()
	subscribers := len(b.subscribers)
	b.mu.Unlock()

	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Dropped:       b.dropped.Load(),
		Acked:         b.acked.Load(),
		Reclaimed:     b.reclaimed.Load(),
		PendingEvents: b.store.Len(),
		Subscribers:   subscribers,
	}
}

// newID assigns the next ordered event identity. Callers hold b.mu, so
// the monotonic entropy source is never used concurrently.
func (b *bus) newID() ID {
	return ID(ulid.MustNew(ulid.Timestamp(time.Now()), b.entropy).String())
}

// topicsOf returns the patterns the subscriber is bound to.
func (b *bus) topicsOf(subscriberID string) []topic.Topic {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[subscriberID]
	if !ok {
		return nil
	}
	patterns := make([]topic.Topic, len(sub.patterns))
	copy(patterns, sub.patterns)
	return patterns
}

// unsubscribe removes the subscriber and closes its inbox. Pending
// acknowledgments are retained for redelivery.
func (b *bus) unsubscribe(subscriberID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[subscriberID]
	if !ok {
		return
	}
	delete(b.subscribers, subscriberID)
	close(sub.inbox)
}

// sweeper periodically reclaims events older than the retention window.
func (b *bus) sweeper() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.config.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-b.config.retention)
			reclaimed := b.store.SweepBefore(cutoff)
			if len(reclaimed) == 0 {
				continue
			}
			b.reclaimed.Add(uint64(len(reclaimed)))
			for _, shadow := range reclaimed {
				b.config.logger.Warn().
					Str("event", shadow.String()).
					Msg("unacknowledged event reclaimed by retention sweep")
			}
		}
	}
}

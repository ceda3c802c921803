package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dshills/radix/internal/event/topic"
)

func startedBus(t *testing.T, opts ...BusOption) Bus {
	t.Helper()
	bus := NewBus(opts...)
	if err := bus.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})
	return bus
}

func recvShadow(t *testing.T, ch <-chan Shadow) Shadow {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatal("inbox closed unexpectedly")
		}
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for shadow")
	}
	return Shadow{}
}

func TestBus_StartStop(t *testing.T) {
	bus := NewBus()

	if err := bus.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := bus.Start(); !errors.Is(err, ErrBusAlreadyRunning) {
		t.Errorf("second Start() = %v, want ErrBusAlreadyRunning", err)
	}

	ctx := context.Background()
	if err := bus.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if err := bus.Stop(ctx); !errors.Is(err, ErrBusNotRunning) {
		t.Errorf("second Stop() = %v, want ErrBusNotRunning", err)
	}
}

func TestBus_PublishValidation(t *testing.T) {
	bus := startedBus(t)
	ctx := context.Background()

	if _, err := bus.Publish(ctx, "", "payload"); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if _, err := bus.Publish(ctx, "state.*", "payload"); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("pattern topic: got %v, want ErrInvalidTopic", err)
	}
}

func TestBus_PublishFetchRoundTrip(t *testing.T) {
	bus := startedBus(t)
	ctx := context.Background()

	sub, err := bus.Subscribe("sub-a", topic.InputAction)
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}

	shadow, err := bus.Publish(ctx, topic.InputAction, "hello")
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	got := recvShadow(t, sub.Events())
	if got != shadow {
		t.Errorf("delivered shadow = %v, want %v", got, shadow)
	}

	env, err := bus.Fetch(shadow)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if env.Payload != "hello" {
		t.Errorf("Payload = %v, want %q", env.Payload, "hello")
	}
	if env.Topic != topic.InputAction {
		t.Errorf("Topic = %v, want %v", env.Topic, topic.InputAction)
	}
}

func TestBus_AckCollectsEvent(t *testing.T) {
	bus := startedBus(t)
	ctx := context.Background()

	if _, err := bus.Subscribe("sub-a", "work.items"); err != nil {
		t.Fatalf("Subscribe(sub-a) failed: %v", err)
	}
	if _, err := bus.Subscribe("sub-b", "work.items"); err != nil {
		t.Fatalf("Subscribe(sub-b) failed: %v", err)
	}

	shadow, err := bus.Publish(ctx, "work.items", 42)
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	// One ack is not enough.
	if err := bus.Ack("sub-a", shadow); err != nil {
		t.Fatalf("Ack(sub-a) failed: %v", err)
	}
	if _, err := bus.Fetch(shadow); err != nil {
		t.Errorf("Fetch() after partial ack = %v, want nil", err)
	}

	// Second ack completes the event.
	if err := bus.Ack("sub-b", shadow); err != nil {
		t.Fatalf("Ack(sub-b) failed: %v", err)
	}
	if _, err := bus.Fetch(shadow); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() after full ack = %v, want ErrNotFound", err)
	}

	// Acking a collected event is a no-op.
	if err := bus.Ack("sub-a", shadow); err != nil {
		t.Errorf("Ack() on collected event = %v, want nil", err)
	}
}

func TestBus_AckUnknownSubscriber(t *testing.T) {
	bus := startedBus(t)

	err := bus.Ack("never-subscribed", Shadow{Topic: "x.y", ID: "z"})
	if !errors.Is(err, ErrUnknownSubscriber) {
		t.Errorf("Ack() = %v, want ErrUnknownSubscriber", err)
	}
}

func TestBus_NoCrossTopicLeakage(t *testing.T) {
	bus := startedBus(t)
	ctx := context.Background()

	subA, _ := bus.Subscribe("sub-a", "alpha.events")
	subB, _ := bus.Subscribe("sub-b", "beta.events")

	if _, err := bus.Publish(ctx, "alpha.events", "for-a"); err != nil {
		t.Fatalf("Publish(alpha) failed: %v", err)
	}
	if _, err := bus.Publish(ctx, "beta.events", "for-b"); err != nil {
		t.Fatalf("Publish(beta) failed: %v", err)
	}

	gotA := recvShadow(t, subA.Events())
	if gotA.Topic != "alpha.events" {
		t.Errorf("sub-a received topic %v, want alpha.events", gotA.Topic)
	}
	gotB := recvShadow(t, subB.Events())
	if gotB.Topic != "beta.events" {
		t.Errorf("sub-b received topic %v, want beta.events", gotB.Topic)
	}

	select {
	case extra := <-subA.Events():
		t.Errorf("sub-a received unexpected extra shadow %v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PerSubscriberFIFO(t *testing.T) {
	bus := startedBus(t)
	ctx := context.Background()

	sub, _ := bus.Subscribe("sub-fifo", "seq.events")

	const n = 100
	for i := 0; i < n; i++ {
		if _, err := bus.Publish(ctx, "seq.events", i); err != nil {
			t.Fatalf("Publish(%d) failed: %v", i, err)
		}
	}

	var lastSeq uint64
	for i := 0; i < n; i++ {
		shadow := recvShadow(t, sub.Events())
		env, err := bus.Fetch(shadow)
		if err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
		if env.Seq <= lastSeq {
			t.Fatalf("out of order: seq %d after %d", env.Seq, lastSeq)
		}
		if env.Payload != i {
			t.Fatalf("payload = %v, want %d", env.Payload, i)
		}
		lastSeq = env.Seq
	}
}

func TestBus_RedeliveryOnResubscribe(t *testing.T) {
	bus := startedBus(t)
	ctx := context.Background()

	sub, _ := bus.Subscribe("sub-crash", "crash.events")

	shadow, err := bus.Publish(ctx, "crash.events", "pending")
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	recvShadow(t, sub.Events())

	// Crash without acknowledging.
	sub.Cancel()

	// Re-subscribe with the same identity: the pending event is replayed.
	sub2, err := bus.Subscribe("sub-crash", "crash.events")
	if err != nil {
		t.Fatalf("re-Subscribe() failed: %v", err)
	}
	got := recvShadow(t, sub2.Events())
	if got != shadow {
		t.Errorf("redelivered shadow = %v, want %v", got, shadow)
	}

	if err := bus.Ack("sub-crash", got); err != nil {
		t.Fatalf("Ack() failed: %v", err)
	}
	if _, err := bus.Fetch(got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() after ack = %v, want ErrNotFound", err)
	}
}

func TestBus_SubscribeIdempotent(t *testing.T) {
	bus := startedBus(t)

	sub1, err := bus.Subscribe("sub-a", "one.events")
	if err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	sub2, err := bus.Subscribe("sub-a", "one.events", "two.events")
	if err != nil {
		t.Fatalf("second Subscribe() failed: %v", err)
	}
	if sub1 != sub2 {
		t.Error("expected the same subscription handle for the same identity")
	}

	topics := sub2.Topics()
	if len(topics) != 2 {
		t.Fatalf("Topics() = %v, want two patterns", topics)
	}

	if got := bus.Stats().Subscribers; got != 1 {
		t.Errorf("Subscribers = %d, want 1", got)
	}
}

func TestBus_WildcardSubscription(t *testing.T) {
	bus := startedBus(t)
	ctx := context.Background()

	sub, _ := bus.Subscribe("sub-wild", "state.*")

	if _, err := bus.Publish(ctx, "state.changed", "snap"); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	got := recvShadow(t, sub.Events())
	if got.Topic != "state.changed" {
		t.Errorf("received topic %v, want state.changed", got.Topic)
	}
}

func TestBus_ConcurrentPublishers(t *testing.T) {
	bus := startedBus(t, WithInboxSize(4096))
	ctx := context.Background()

	sub, _ := bus.Subscribe("sub-conc", "conc.events")

	const publishers = 8
	const perPublisher = 50

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				if _, err := bus.Publish(ctx, "conc.events", fmt.Sprintf("%d-%d", p, i)); err != nil {
					t.Errorf("Publish() failed: %v", err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	var lastSeq uint64
	for i := 0; i < publishers*perPublisher; i++ {
		shadow := recvShadow(t, sub.Events())
		env, err := bus.Fetch(shadow)
		if err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
		if env.Seq <= lastSeq {
			t.Fatalf("sequence regressed: %d after %d", env.Seq, lastSeq)
		}
		lastSeq = env.Seq
		if err := bus.Ack("sub-conc", shadow); err != nil {
			t.Fatalf("Ack() failed: %v", err)
		}
	}

	stats := bus.Stats()
	if stats.Published != publishers*perPublisher {
		t.Errorf("Published = %d, want %d", stats.Published, publishers*perPublisher)
	}
	if stats.PendingEvents != 0 {
		t.Errorf("PendingEvents = %d, want 0", stats.PendingEvents)
	}
}

func TestBus_RetentionSweep(t *testing.T) {
	bus := startedBus(t,
		WithRetention(20*time.Millisecond),
		WithSweepInterval(10*time.Millisecond),
	)
	ctx := context.Background()

	if _, err := bus.Subscribe("sub-slow", "slow.events"); err != nil {
		t.Fatalf("Subscribe() failed: %v", err)
	}
	shadow, err := bus.Publish(ctx, "slow.events", "stale")
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if _, err := bus.Fetch(shadow); errors.Is(err, ErrNotFound) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("event was never reclaimed by the sweeper")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := bus.Stats().Reclaimed; got == 0 {
		t.Error("Reclaimed = 0, want at least 1")
	}
}

func TestBus_PublishWhileStopped(t *testing.T) {
	bus := NewBus()
	_, err := bus.Publish(context.Background(), "x.y", "payload")
	if !errors.Is(err, ErrBusNotRunning) {
		t.Errorf("Publish() on stopped bus = %v, want ErrBusNotRunning", err)
	}
}

// Package event provides the topic-addressed publish/subscribe bus at
// the heart of the Radix state core.
//
// Unlike a callback bus, this bus separates notification from payload:
// subscribers receive lightweight Shadows (the (topic, identity) pair)
// on a per-subscriber FIFO inbox, fetch the stored payload by identity,
// and acknowledge when done. An event is garbage-collected once every
// subscriber registered for its topic at publish time has acknowledged
// it.
//
// # Delivery semantics
//
//   - Per-topic, per-subscriber FIFO: a subscriber observes a topic's
//     events in publish order. No ordering is guaranteed across topics
//     or across subscribers.
//   - At-least-once: a subscriber that crashes before acknowledging is
//     redelivered its pending events when it re-subscribes with the same
//     identity. If the retention sweeper has already reclaimed the event,
//     redelivery is not possible (an accepted limitation).
//
// # Basic usage
//
//	bus := event.NewBus(event.WithInboxSize(256))
//	if err := bus.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Stop(context.Background())
//
//	sub, _ := bus.Subscribe("listener.input", topic.InputAction)
//	go func() {
//	    for shadow := range sub.Events() {
//	        env, err := bus.Fetch(shadow)
//	        if err != nil {
//	            continue // already collected
//	        }
//	        handle(env.Payload)
//	        bus.Ack("listener.input", shadow)
//	    }
//	}()
//
//	bus.Publish(ctx, topic.InputAction, payload)
//
// # Thread safety
//
// All Bus methods are safe for concurrent use. Publish calls are
// serialized internally so that inbox ordering matches publish order.
//
// # Subpackages
//
//   - topic: topic types and wildcard pattern matching
package event

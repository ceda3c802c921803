// Package dispatcher routes action envelopes from the event bus to pure
// reducers and writes applied outcomes back to the state store.
//
// # Protocol
//
// On each event a listener performs, in order:
//
//  1. Fetch the payload by the event's shadow.
//  2. Filter: payloads that are not action envelopes are acknowledged
//     and skipped (ignorable).
//  3. Resolve the target reducer named by the envelope; an unknown
//     target is acknowledged and skipped (not applicable).
//  4. Invoke the reducer against the current snapshot. The outcome is
//     unchanged, applied(new snapshot), or not-applicable.
//  5. Write the new snapshot via the store only when it actually
//     differs, then acknowledge — always, on every path, so that
//     non-matching handlers never block event garbage collection.
//
// # Failure policy
//
// Actions are a closed union; a reducer with no clause for an action
// returns an error matching ErrUnhandledAction instead of crashing.
// That error is structural and fatal to the listener: the listener
// acknowledges the poisoned event (so it is not replayed), terminates,
// and its Supervisor respawns it with a fresh subscription under
// exponential backoff. Ignorable and not-applicable conditions are
// absorbed locally and never escalate.
package dispatcher

// Package optimistic implements optimistic mutations with rollback.
//
// Execute runs the protocol once:
//
//  1. capture a snapshot (the rollback point),
//  2. apply the locally desired state,
//  3. run the remote operation,
//  4. on success reconcile with the authoritative value, if any,
//  5. on failure restore the snapshot and return the failure.
//
// Collection and Cell build keyed mutations on top of it. They allow one
// mutation per key at a time (a second one returns a busy result without
// touching anything), resolve against the state at resolution time, and
// touch only the mutated key. A resolution for a key that is gone, or that
// belongs to a collection that was Reset since, is a no-op.
package optimistic

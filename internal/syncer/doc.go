// Package syncer owns the client-visible todo list and keeps it in step
// with the persistence service behind a gateway.Gateway.
//
// Each intent issues one gateway call and applies its local mutation
// according to the outcome:
//
//	Add     waits for the service to assign an id, then appends.
//	Toggle  flips the flag immediately, then confirms or reverts.
//	Remove  waits for the service to confirm, then drops the item.
//	Refresh replaces the list wholesale; on failure the list is kept.
//
// Toggle is the only optimistic path. While its call is in flight the
// item is pending (see Core.Pending); a failed call restores the flag to
// its value before the intent.
//
// Concurrency
//
// A Core is safe for concurrent use. One mutex guards the list and is
// never held across a gateway call. Toggle and Remove for the same id
// are serialized: a later intent waits until the earlier call resolves.
// Calls for different ids run independently and may resolve in either
// order.
//
// Once issued, a gateway call is not cancelled by the caller's context;
// timeouts belong to the gateway's transport. The context only bounds the
// wait for an in-flight operation on the same id.
//
// A Refresh that lands while a toggle is pending is authoritative: the
// pending toggle no longer touches the item when it resolves.
package syncer

// Package body owns the tracked-body lifecycle.
//
// Responsibilities: per-frame reconciliation of raw sensor snapshots against
// the identity map, enter/leave/evict notifications, and read-only
// aggregate queries over the enabled bodies.
// Key types: Tracker, Record, RawPose, Frame, View.
//
// Concurrency rule: a Tracker is driven from a single goroutine. Update and
// every query run on the same goroutine, and subscribers may call back into
// the query methods while Update is delivering events.
// No sensor SDK, rendering or storage code is allowed in this package.
package body

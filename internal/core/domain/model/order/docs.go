// Package order provides the Order aggregate and its lifecycle rules.
//
// An order moves through pending → assigned → accepted → picked_up → in_progress → completed,
// and can be cancelled from any non-terminal status. completed and cancelled are terminal.
//
// Invariants maintained by the aggregate:
//   - a driver is attached iff the status is assigned, accepted, picked_up or in_progress,
//     or the order reached a terminal status after having been assigned
//   - assignedAt, startedAt, completedAt and cancelledAt are stamped at most once
//   - the cancellation reason is present iff the order is cancelled
//   - the fare total is always present and non-negative
//
// Persistence concerns are limited to ExpectedState and MarkPersisted, which let the
// repository guard writes with the status and version the aggregate was loaded with.
package order

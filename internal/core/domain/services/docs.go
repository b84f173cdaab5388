// Package services provides domain services that coordinate the Order and Driver aggregates.
//
// The package includes:
//   - OrderDispatcher: applies a driver assignment to both aggregates and ranks candidates
//     around a pickup point
package services

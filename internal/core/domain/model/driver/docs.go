// Package driver provides the Driver aggregate: the availability flag, verification,
// activity and block flags, the live connection handle and the last known position.
//
// A driver may be given a new order only while available, verified, active and not blocked.
// Availability is changed by order assignment and release, by the driver's live connection
// lifecycle, and by explicit toggles.
package driver

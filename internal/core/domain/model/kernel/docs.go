// Package kernel provides the shared value objects of the dispatch domain.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - GeoPoint: a validated WGS84 coordinate with geohash and great-circle distance helpers
//
// All values are immutable. Their zero values are invalid and are rejected by Validate,
// which every aggregate calls from its setters.
package kernel

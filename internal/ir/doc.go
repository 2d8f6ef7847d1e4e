// Package ir provides the canonical JSON form used for golden dumps, trace
// digests and machine-readable CLI output.
//
// Canonical JSON follows RFC 8785:
//   - object keys sorted by UTF-16 code units
//   - no insignificant whitespace
//   - strings NFC normalized, only quote, backslash and control characters
//     escaped (no HTML escaping)
//
// Values are limited to string, int, int64, bool, []any, []string and
// map[string]any. Floats and null are rejected so the same hierarchy always
// serializes to the same bytes.
//
// ir imports nothing internal.
package ir

// Package history exposes the transfer journal over HTTP.
//
//   - GET /journal?limit= : Newest entries first, 50 by default.
package history

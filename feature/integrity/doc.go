// Package integrity reports whether the services the tool depends on are healthy.
//
// # Checks
//
//   - Container: The configured container can be listed with the configured credentials.
//   - Journal: The transfer journal table exists with every mapped column.
//   - Source: The default import bucket exists.
//
// Checks whose dependency is not configured return 404 individually and are
// reported as skipped by the combined endpoint.
//
// # HTTP Endpoints
//
//   - GET /integrity: Combined report.
//   - GET /integrity/container
//   - GET /integrity/journal
//   - GET /integrity/source
package integrity

// Package importer brings objects from an S3-compatible bucket into the blob container.
//
// Import copies everything under a prefix. Sync reconciles the bucket against the
// container (see core/reconcile) and uploads only missing or changed objects,
// optionally purging blobs whose source object is gone.
//
// # HTTP Endpoints
//
//   - POST /import : Copy every object under a prefix.
//   - GET /import/plan?bucket=&prefix=&dest_prefix=&purge= : Show what a sync would do.
//   - POST /import/sync : Apply a sync.
package importer

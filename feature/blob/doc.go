// Package blob is a convenience facade over one blob storage container.
//
// # Reference Resolution
//
// Every operation targets a blob described by a Ref. The handle is chosen in a
// fixed order: an explicit handle in the Ref, the handle kept by Bind, a signed
// URL, and finally a container-relative path. When none is available the
// operation returns ErrMissingReference without touching the service.
//
// # Components
//
//   - Client: construction, signed URLs, upload, filtered download with post
//     actions, server-side copy and move, metadata, delete and listing.
//   - Handler: Exposes the container over HTTP.
//   - Loader: Registers the feature with the application.
//
// Mutating operations are written to an optional Recorder (see core/journal).
//
// # HTTP Endpoints
//
//   - GET /blobs?prefix=&metadata=true : List blobs.
//   - DELETE /blobs/* : Delete a blob.
//   - GET /metadata/* : Blob properties and metadata.
//   - PUT /metadata/* : Replace metadata with the JSON object in the body.
//   - DELETE /metadata/* : Clear metadata.
//   - POST /sas : Issue a signed URL.
//   - POST /transfer : Copy or move a blob server-side.
package blob

// Package storage provides an abstraction layer over the Azure Blob Storage SDK.
//
// It wraps the azblob service, container and block blob clients behind three small
// interfaces so the facade in feature/blob can be exercised against mocks
// (see core/storage/mocks) as well as a real account or Azurite.
//
// # Handles
//
//   - ServiceClient: account scope. Builds container handles, blob handles from
//     signed URLs, and signs blob SAS tokens with the account shared key.
//   - ContainerClient: container scope. Builds blob handles by name and lists blobs.
//   - BlobClient: a single blob. Upload, Download, Delete, metadata, properties and
//     server-side copy.
//
// # Connection Strings
//
// BuildConnectionString renders the fixed template
//
//	DefaultEndpointsProtocol=<protocol>;AccountName=<account>;AccountKey=<key>;EndpointSuffix=<suffix>
//
// and ParseConnectionString reads every field back, including BlobEndpoint, so custom
// endpoints survive a round trip.
//
// # Usage
//
//	svc, err := storage.Open(connStr, 30*time.Second)
//	blobs := svc.NewContainerClient("reports")
//	for item, err := range blobs.ListBlobs(ctx, storage.ListOptions{Prefix: "2024/"}) {
//	    ...
//	}
package storage

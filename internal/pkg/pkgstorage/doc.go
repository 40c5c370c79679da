// Package pkgstorage stores opaque blobs (uploaded files) under slash-separated
// keys. Two backends exist: the local filesystem and S3-compatible object
// storage.
package pkgstorage

// Package storage keeps ticket attachment blobs behind a small interface:
// S3 (or any S3-compatible service) in production, the local filesystem in
// development. Keys are validated against path traversal before they reach
// either backend.
package storage

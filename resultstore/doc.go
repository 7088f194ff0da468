// Package resultstore persists result archives.
//
// Store is the interface for writing and reading named archives. Names are
// slash-separated relative paths such as "runs/2024-05-01/<run-id>.bcq".
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: directory on the local file system
//   - minio.Store: MinIO and other S3-compatible servers
//   - s3.Store: Amazon S3 with multipart uploads
//
// RateLimited wraps any Store with an IO throughput limit.
package resultstore

// Package s3 provides an Amazon S3 implementation of resultstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("bicliques/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	_, err = resultstore.SaveRecord(ctx, store, resultstore.ArchiveName(runID), rec)
//
// # Features
//
//   - Multipart uploads for large archives
//   - CRC32C integrity checks on upload
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3

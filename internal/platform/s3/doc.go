// Package s3 stores benchmark artifacts in Hetzner Object Storage
// (S3-compatible).
//
// Client wraps the AWS SDK for the handful of bucket and object calls the
// tool makes. Store binds a Client to one bucket and creates that bucket on
// first use; it receives the metrics output of every client machine.
package s3

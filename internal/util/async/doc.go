// Package async runs independent tasks concurrently and collects every
// failure instead of stopping at the first one.
package async

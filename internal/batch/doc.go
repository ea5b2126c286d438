// Package batch writes many records at once.
//
// Batch buffers records for one table and flushes them as a single
// multi-row INSERT when a threshold is reached. Update applies one
// RecordUpdater per record in chunked transactions, optionally staggered
// over time so a large run does not occupy the whole connection pool.
package batch

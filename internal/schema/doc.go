// Package schema holds table definitions and the process-scoped cache
// that memoizes them.
//
// A TableDefinition is introspected lazily the first time a builder needs
// it and kept until explicitly invalidated. The Cache is passed by
// reference to every consumer (through the store) rather than living in a
// global.
//
// Concurrency: concurrent first requests for the same table are coalesced
// into one introspection call (singleflight). A failed introspection is
// not cached; the next call retries. Invalidation racing an in-flight
// introspection wins: the stale result is returned to its waiters but not
// stored.
package schema

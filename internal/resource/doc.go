// Package resource is the generic cached CRUD store behind every entity the client
// manages (services, employees, bookings, ...).
//
// # Cache
//
// A Store keeps the last fetched collection in fetch order. Create appends the server's
// record, Update replaces the record with the same id, Delete removes it. Updates are
// only sent for ids present in the local cache; an unknown id fails with the endpoint's
// not-found message and no request is made.
//
// # Loading and Errors
//
// Every operation sets Loading on entry and clears it on exit, and clears Err on entry
// and sets it on failure. Overlapping calls are not serialized: whichever finishes last
// decides the cache, Loading and Err.
//
// Failures never escape as Go errors. Each operation returns a transport.Outcome whose
// Error is the server's message or the endpoint's fallback text, and reports an Event
// through the store's hook (logged by default).
//
// # Documents
//
// Document is the single-record counterpart (a profile, the weekly hours) with Fetch,
// Put, Patch and the same bookkeeping.
//
// # Derived Operations
//
// Entity-specific operations (toggle endpoints, status changes) are built on Mutate,
// which gives them the same loading, error and cache semantics. Document.Do plays
// the same role for single records.
package resource

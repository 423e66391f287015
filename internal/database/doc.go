// Package database provides the PostgreSQL connection pool and a storage
// backend that keeps named slots in a single table.
//
// Several order desk instances can share one database: each slot is a row
// keyed by name, so the draft and the bearer token survive machine changes.
package database

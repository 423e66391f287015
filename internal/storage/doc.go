// Package storage provides the named-slot persistence behind the order draft
// and the bearer token.
//
// A slot is one key holding one opaque blob, always rewritten wholesale.
// Backends:
//   - Memory: process-local, used by tests and the --ephemeral CLI flag
//   - FileStorage: one file per key under a directory, atomic replace
//   - database.SlotStore: a Postgres table (see internal/database)
package storage

// Package core provides the foundational domain types and contracts used by
// Echo. It defines the core abstractions for:
//
//   - Turns (role-tagged conversation messages)
//   - Keys (the per-(user, agent) scope all memory state hangs off)
//   - Conversations (bounded per-key turn history plus activity timestamp)
//   - The HistoryStore persistence contract implemented by the history packages
//   - The shared error taxonomy (ValidationError, StorageError)
//
// The package intentionally keeps implementation concerns (persistence
// backends, mention routing, rendering, transports) out of scope, exposing
// small types and interfaces to enable custom backends and extensions.
package core

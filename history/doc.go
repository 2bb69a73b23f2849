// Package history houses concrete implementations of core.HistoryStore. The
// interface itself (and the Conversation type) live in the core package to
// centralize domain contracts. Depend on core.HistoryStore in calling code;
// only the wiring layer decides which implementation to instantiate.
//
// The process-local store in this package suits tests, examples and
// single-instance demo servers. Durable backends (MongoDB, Redis, MySQL) live
// in sub-packages so additional stores can be added without changing any
// calling code.
package history

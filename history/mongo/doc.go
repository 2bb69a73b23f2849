// Package mongo provides a MongoDB-backed core.HistoryStore. Conversations
// are stored one document per (user, agent) key; the append path is a single
// server-side $push with $slice so append+trim+persist is one atomic write
// and racing appends to the same key serialize in the storage engine.
package mongo

// Package redis provides a Redis-backed core.HistoryStore. Each (user, agent)
// key maps to a list of JSON-encoded turns plus a companion activity
// timestamp; the append path runs RPUSH+LTRIM+SET inside one MULTI/EXEC
// transaction so append+trim+persist is atomic and racing appends to the same
// key never lose an update.
package redis

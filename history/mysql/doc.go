// Package mysql provides a MySQL-backed core.HistoryStore built on GORM.
// Conversations are stored one row per (user, agent) key with the turn list
// serialized as a JSON column. Appends run inside a transaction that locks
// the row (SELECT ... FOR UPDATE) so racing appends to the same key
// serialize in the database, never in this process.
package mysql

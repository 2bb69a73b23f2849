// Package memory implements the bounded conversation-memory service: durable,
// per-(user, agent) short-term context with a fixed capacity. The Store
// validates input, stamps turns, enforces the capacity limit and renders the
// working-memory digest injected into downstream prompts. Persistence itself
// is delegated to a core.HistoryStore backend chosen at wiring time (see the
// history packages).
//
// Failure policy: validation errors are raised before any I/O; backend
// failures propagate to the caller unretried. The store never swallows
// errors and keeps no fallback cache, so the caller decides whether memory
// is best-effort for its flow.
package memory

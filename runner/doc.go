// Package runner implements the chat pipeline that connects mention routing,
// conversation memory, and agent executors.
//
// A chat request flows through four stages: resolve the target agent (via a
// directory lookup or an explicit agent name), load and append conversation
// memory, execute the agent with the cleaned instruction plus a working-memory
// digest, and record the assistant's reply.
//
// Rationale: memory is deliberately best-effort here. A failing history
// backend degrades context quality but must never stop a user's message from
// reaching its agent, so storage failures are logged and the pipeline carries
// on with whatever context it has. Validation failures and executor failures
// are real errors and propagate to the caller.
package runner

// Package executor defines the boundary to the downstream agent-execution
// collaborators that actually answer chat messages inside Echo.
//
// Core goals:
//   - Keep request/reply shapes minimal and transport independent
//   - Carry both the rendered working-memory digest and the structured
//     recent turns so adapters can pick whichever suits their wire format
//   - Facilitate lightweight mocking for tests (MockExecutor)
//
// Adapters (e.g. Anthropic, OpenAI, remote HTTP services) implement the
// Executor interface from this package so higher layers (runner, server)
// remain decoupled from vendor SDKs.
package executor

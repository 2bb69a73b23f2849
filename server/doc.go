// Package server exposes the chat pipeline and conversation memory over HTTP.
//
// The surface is a plain net/http handler with method+pattern routing, JSON
// request/response DTOs, and a small middleware chain (request id, request
// logging, CORS). Error translation is uniform: validation failures map to
// 400 with the offending field, storage failures map to 500 with a generic
// body, and the detail stays in the server log.
//
// Rationale: the chat endpoints ride on the runner, which treats memory as
// best-effort, so a degraded history backend never turns a chat request into
// a 500. The history read/clear endpoints talk to the store directly and do
// surface storage failures, since their whole purpose is the stored data.
package server

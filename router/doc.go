// Package router implements mention-based agent dispatch: parsing @agent
// tokens out of raw chat messages, resolving user-facing aliases to canonical
// agent ids and looking the result up in the agent directory.
//
// The Router itself is a pure function over strings: it never errors, has no
// side effects and no dependencies beyond its configured alias table. A
// message with zero mentions routes to the configured default agent; a
// message with several mentions routes on the first while all mention tokens
// are stripped from the cleaned text (preserved, documented behavior).
//
// The Directory layers the "is this agent real?" decision on top: it returns
// a tagged Entry that is either implemented (backed by a registered executor)
// or a coming-soon placeholder with a canned reply, so callers branch in
// exactly one place.
package router

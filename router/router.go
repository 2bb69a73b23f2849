package router

// Router resolves the target agent for a raw chat message. It is safe for
// concurrent use: all fields are immutable after construction.
type Router struct {
	defaultAgent string
	aliases      map[string]string
}

// New constructs a Router with the fallback agent and the alias table mapping
// user-typed aliases (conventionally lowercase) to canonical agent ids. The
// alias table is copied; a nil map is fine.
func New(defaultAgent string, aliases map[string]string) *Router {
	copied := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		copied[alias] = canonical
	}
	return &Router{defaultAgent: defaultAgent, aliases: copied}
}

// Route determines the canonical target agent and the cleaned message text.
//
// Without a mention the message is returned unchanged and the default agent
// is chosen. With mentions, the first token decides the target: a known alias
// maps to its canonical id, an unknown token passes through as the id itself
// (deferred to the directory, not rejected). All mention tokens are stripped
// from the cleaned text. Route never errors, including on empty input.
func (r *Router) Route(message string) (agent string, cleaned string) {
	token, ok := FirstMention(message)
	if !ok {
		return r.defaultAgent, message
	}
	agent = token
	if canonical, ok := r.aliases[token]; ok {
		agent = canonical
	}
	return agent, StripMentions(message)
}

// Resolve maps a user-facing alias to its canonical agent id, returning the
// input unchanged when it has no alias entry.
func (r *Router) Resolve(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// DefaultAgent returns the configured fallback agent id.
func (r *Router) DefaultAgent() string { return r.defaultAgent }

package router

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/lifeos/echo/executor"
)

// DefaultComingSoonTemplate formats the canned reply unimplemented agents
// answer with. It receives the canonical agent id.
const DefaultComingSoonTemplate = "The %s agent is coming soon."

// Entry is the outcome of a directory lookup: either an implemented agent
// backed by a registered executor, or an unimplemented placeholder carrying a
// canned reply. This mirrors a union of implemented | coming-soon in a
// Go-idiomatic way. Unimplemented agents are stateless: callers answer with
// the canned reply and never touch conversation memory under that key.
type Entry struct {
	agent  string
	exec   executor.Executor
	canned string
}

// Agent returns the canonical agent id of the entry.
func (e Entry) Agent() string { return e.agent }

// Implemented reports whether a real executor backs the agent.
func (e Entry) Implemented() bool { return e.exec != nil }

// Executor returns the registered executor, or nil for unimplemented agents.
func (e Entry) Executor() executor.Executor { return e.exec }

// CannedReply returns the coming-soon text for unimplemented agents.
func (e Entry) CannedReply() string { return e.canned }

// AgentInfo describes one directory entry for listings.
type AgentInfo struct {
	Name        string `json:"name"`
	Implemented bool   `json:"implemented"`
}

// DirectoryOptions configures directory construction.
type DirectoryOptions struct {
	// ComingSoonTemplate overrides the canned reply format for
	// unimplemented agents.
	ComingSoonTemplate string
}

// Directory is the agent registry built once from configuration. Routing
// rules (default agent, alias table) live in the embedded Router; Register
// attaches executors to canonical ids at wiring time. Lookup is the single
// well-tested "is this agent real?" branch the rest of the system relies on.
type Directory struct {
	router   *Router
	template string

	mu        sync.RWMutex
	executors map[string]executor.Executor
}

// NewDirectory constructs a Directory from the fallback agent and alias table.
func NewDirectory(defaultAgent string, aliases map[string]string, optFns ...func(o *DirectoryOptions)) *Directory {
	opts := DirectoryOptions{ComingSoonTemplate: DefaultComingSoonTemplate}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Directory{
		router:    New(defaultAgent, aliases),
		template:  opts.ComingSoonTemplate,
		executors: make(map[string]executor.Executor),
	}
}

// Register marks the canonical agent id as implemented, backed by ex.
// Registering again replaces the executor.
func (d *Directory) Register(agent string, ex executor.Executor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executors[agent] = ex
}

// Lookup resolves a canonical agent id to its directory entry: implemented
// when an executor was registered, a canned coming-soon entry otherwise.
func (d *Directory) Lookup(agent string) Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ex, ok := d.executors[agent]; ok {
		return Entry{agent: agent, exec: ex}
	}
	return Entry{agent: agent, canned: fmt.Sprintf(d.template, agent)}
}

// Dispatch routes the raw message and resolves the directory entry in one
// step, returning the entry and the cleaned message text.
func (d *Directory) Dispatch(message string) (Entry, string) {
	agent, cleaned := d.router.Route(message)
	return d.Lookup(agent), cleaned
}

// Resolve maps a user-facing alias to its canonical agent id.
func (d *Directory) Resolve(name string) string { return d.router.Resolve(name) }

// DefaultAgent returns the configured fallback agent id.
func (d *Directory) DefaultAgent() string { return d.router.DefaultAgent() }

// Agents lists every known canonical agent (alias targets, the default agent
// and all registered executors) sorted by name.
func (d *Directory) Agents() []AgentInfo {
	implemented := map[string]bool{}
	if d.router.defaultAgent != "" {
		implemented[d.router.defaultAgent] = false
	}
	for _, canonical := range d.router.aliases {
		implemented[canonical] = false
	}
	d.mu.RLock()
	for name := range d.executors {
		implemented[name] = true
	}
	d.mu.RUnlock()

	names := lo.Keys(implemented)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) AgentInfo {
		return AgentInfo{Name: name, Implemented: implemented[name]}
	})
}

package server

import (
	"sync"
	"time"
)

// Registry tracks connected MCP client sessions and the agent name each one
// last acted as. Binding is observational: a session becomes "agent-a" the
// first time it calls a tool passing agent="agent-a". Multiple sessions can
// be active at once (stdio plus any number of HTTP clients).
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]string    // sessionID → agent
	agents       map[string]string    // agent → sessionID
	lastActivity map[string]time.Time // sessionID → last tool call
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]string),
		agents:       make(map[string]string),
		lastActivity: make(map[string]time.Time),
	}
}

// Bind associates a session with an agent name. If the agent was bound to a
// different session (a reconnect), the old mapping is dropped.
func (r *Registry) Bind(sessionID, agent string) {
	if sessionID == "" || agent == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.agents[agent]; ok && old != sessionID {
		delete(r.sessions, old)
		delete(r.lastActivity, old)
	}
	r.sessions[sessionID] = agent
	r.agents[agent] = sessionID
	r.lastActivity[sessionID] = time.Now()
}

// Agent returns the agent bound to a session, or "" if none.
func (r *Registry) Agent(sessionID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionID]
}

// SessionFor returns the session a given agent is bound to, or "".
func (r *Registry) SessionFor(agent string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents[agent]
}

// Touch records tool-call activity for a session.
func (r *Registry) Touch(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; ok {
		r.lastActivity[sessionID] = time.Now()
	}
}

// LastActivity returns the last tool-call time for an agent's session, or the
// zero time if the agent has no session.
func (r *Registry) LastActivity(agent string) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.agents[agent]
	if !ok {
		return time.Time{}
	}
	return r.lastActivity[sid]
}

// Remove unregisters a session on disconnect.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agent, ok := r.sessions[sessionID]; ok {
		delete(r.agents, agent)
	}
	delete(r.sessions, sessionID)
	delete(r.lastActivity, sessionID)
}

// ConnectedAgents returns the currently bound agent names.
func (r *Registry) ConnectedAgents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agents := make([]string, 0, len(r.agents))
	for a := range r.agents {
		agents = append(agents, a)
	}
	return agents
}

// AgentCount returns the number of bound agents.
func (r *Registry) AgentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

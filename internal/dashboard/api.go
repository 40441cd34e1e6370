// Package dashboard provides a read-only web page and JSON API for watching
// the coordination hub: tasks by state, owners, and throughput counters.
package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/axonhq/axon/internal/domain"
	"github.com/axonhq/axon/internal/engine"
)

// AgentCounter reports the number of connected agents. Implemented by the
// session registry.
type AgentCounter interface {
	AgentCount() int
}

// Handler holds the dashboard's dependencies. All endpoints are read-only;
// mutations go through the MCP tools.
type Handler struct {
	eng    *engine.Engine
	agents AgentCounter
}

// NewHandler creates a dashboard handler.
func NewHandler(eng *engine.Engine, agents AgentCounter) *Handler {
	return &Handler{eng: eng, agents: agents}
}

// RegisterRoutes adds the dashboard routes to the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tasks", h.handleAPITasks)
	mux.HandleFunc("/api/stats", h.handleAPIStats)
	mux.HandleFunc("/dashboard", h.handleDashboard)
	mux.HandleFunc("/dashboard/", h.handleDashboard)
}

// TaskSnapshot is the per-task row in /api/tasks.
type TaskSnapshot struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	State       string `json:"state"`
	Age         string `json:"age"`
	UpdatedAge  string `json:"updated_age"`
}

// TasksResponse is the JSON body of /api/tasks.
type TasksResponse struct {
	Timestamp string         `json:"timestamp"`
	Tasks     []TaskSnapshot `json:"tasks"`
	Count     int            `json:"count"`
}

// StatsResponse is the JSON body of /api/stats.
type StatsResponse struct {
	Timestamp    string         `json:"timestamp"`
	TasksByState map[string]int `json:"tasks_by_state"`
	Messages     int            `json:"messages"`
	OpenSessions int            `json:"open_sessions"`
	Agents       int            `json:"agents"`
}

func (h *Handler) handleAPITasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"GET required"}`))
		return
	}

	var params engine.ListTasksParams
	q := r.URL.Query()
	if owner := q.Get("owner"); owner != "" {
		params.Owner = &owner
	}
	if state := q.Get("state"); state != "" {
		params.State = &state
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"limit must be an integer"}`))
			return
		}
		params.Limit = &limit
	}

	tasks, err := h.eng.ListTasks(r.Context(), params)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	now := time.Now().UTC()
	resp := TasksResponse{
		Timestamp: now.Format(time.RFC3339),
		Tasks:     make([]TaskSnapshot, 0, len(tasks)),
	}
	for _, t := range tasks {
		snap := TaskSnapshot{
			ID:          t.ID,
			Code:        t.Code,
			Name:        truncate(t.Name, 80),
			Description: truncate(t.Description, 120),
			State:       string(t.State),
			Age:         relTime(t.CreatedAt, now),
			UpdatedAge:  relTime(t.UpdatedAt, now),
		}
		if t.Owner != nil {
			snap.Owner = *t.Owner
		}
		resp.Tasks = append(resp.Tasks, snap)
	}
	resp.Count = len(resp.Tasks)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

func (h *Handler) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"GET required"}`))
		return
	}

	stats, err := h.eng.Stats(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := StatsResponse{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		TasksByState: make(map[string]int, len(domain.States)),
		Messages:     stats.Messages,
		OpenSessions: stats.OpenSessions,
		Agents:       h.agents.AgentCount(),
	}
	// Every state appears, zero or not, so the page never renders holes.
	for _, s := range domain.States {
		resp.TasksByState[string(s)] = stats.TasksByState[s]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

// writeEngineError emits only the domain message. Wrapped causes carry
// driver and SQL detail that must not reach the browser.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	if de, ok := domain.AsError(err); ok {
		if de.Kind == domain.KindValidation {
			status = http.StatusBadRequest
		}
		msg = de.Message
	}
	w.WriteHeader(status)
	body := struct {
		Error string `json:"error"`
	}{Error: msg}
	_ = json.NewEncoder(w).Encode(body)
}

func relTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return strconv.Itoa(int(d.Seconds())) + "s ago"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	default:
		return t.Format("Jan 2 15:04")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

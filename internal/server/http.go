package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/axonhq/axon/internal/config"
	"github.com/axonhq/axon/internal/logger"
)

// RouteRegistrar attaches extra routes to the HTTP host (the dashboard).
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Host serves the HTTP transport: streamable MCP at POST /mcp, the legacy SSE
// pair (GET /sse push channel, POST /message), /health, and any registered
// extra routes. One Host per process; it carries the instance identity.
type Host struct {
	cfg      *config.Config
	mcp      *mcpserver.MCPServer
	reg      *Registry
	log      *logger.Logger
	instance string
	started  time.Time
	extra    []RouteRegistrar
}

// NewHost creates the HTTP host. extra routes are registered after the
// built-in ones.
func NewHost(cfg *config.Config, s *mcpserver.MCPServer, reg *Registry, log *logger.Logger, extra ...RouteRegistrar) *Host {
	return &Host{
		cfg:      cfg,
		mcp:      s,
		reg:      reg,
		log:      log,
		instance: uuid.NewString(),
		started:  time.Now(),
		extra:    extra,
	}
}

// Instance returns the per-process instance id.
func (h *Host) Instance() string { return h.instance }

// Handler builds the full route table. baseURL is the externally reachable
// prefix the SSE server advertises for its message endpoint.
func (h *Host) Handler(baseURL string) http.Handler {
	sse := mcpserver.NewSSEServer(h.mcp, mcpserver.WithBaseURL(baseURL))
	stream := mcpserver.NewStreamableHTTPServer(h.mcp)

	mux := http.NewServeMux()
	mux.Handle("/mcp", stream)
	mux.Handle("/sse", sse)
	mux.Handle("/sse/", sse)
	mux.Handle("/message", sse)
	mux.HandleFunc("/health", h.handleHealth)
	for _, r := range h.extra {
		r.RegisterRoutes(mux)
	}
	return mux
}

type healthPayload struct {
	Status        string `json:"status"`
	Instance      string `json:"instance"`
	Transport     string `json:"transport"`
	Agents        int    `json:"agents"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (h *Host) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthPayload{
		Status:        "ok",
		Instance:      h.instance,
		Transport:     config.TransportHTTP,
		Agents:        h.reg.AgentCount(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

// Run listens on the configured address and serves until ctx is cancelled,
// then drains in-flight requests up to the shutdown grace period. A port of 0
// is honored (auto-assign) so several instances can share a machine.
func (h *Host) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.cfg.Listen)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", h.cfg.Listen, err)
	}
	baseURL := "http://" + ln.Addr().String()
	srv := &http.Server{Handler: h.Handler(baseURL)}

	h.log.Info("http transport ready",
		zap.String("addr", ln.Addr().String()),
		zap.String("instance", h.instance))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.cfg.ShutdownGrace())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.log.Warn("http drain incomplete, closing", zap.Error(err))
			_ = srv.Close()
		}
		return nil
	})
	return g.Wait()
}

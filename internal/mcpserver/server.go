package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"sysmonitor/internal/broadcast"
	"sysmonitor/internal/collector"
	"sysmonitor/internal/output"
	"sysmonitor/internal/session"
)

// SessionControl is the part of session.Controller the server drives.
type SessionControl interface {
	Start(ctx context.Context) error
	Stop()
	Status() session.Status
}

// IdentitySource answers the one-shot system identity query.
type IdentitySource interface {
	SystemInfo(ctx context.Context) collector.SystemInfo
}

// Server exposes the monitoring session as MCP tools. It observes the hub
// like any other client and keeps the most recent event of each kind.
type Server struct {
	mcpServer *mcp.Server
	session   SessionControl
	identity  IdentitySource
	logger    zerolog.Logger

	// Sessions outlive the tool call that started them.
	baseCtx context.Context

	sub *broadcast.Subscription
	wg  sync.WaitGroup

	mu         sync.RWMutex
	latest     *collector.Sample
	clock      *output.TimeUpdate
	completion *output.Completion
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

func NewServer(ctx context.Context, cfg Config, ctrl SessionControl, hub *broadcast.Hub, identity IdentitySource, logger zerolog.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		session:   ctrl,
		identity:  identity,
		logger:    logger,
		baseCtx:   ctx,
	}
	s.registerTools()

	if hub != nil {
		s.sub = hub.Subscribe(broadcast.DefaultBuffer)
		s.wg.Add(1)
		go s.track()
	}
	return s
}

func (s *Server) track() {
	defer s.wg.Done()
	for ev := range s.sub.Events() {
		s.Observe(ev)
	}
}

// Observe records a live event. A new session clears the previous completion.
func (s *Server) Observe(ev output.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case output.EventSystemData:
		if ev.Sample != nil {
			s.latest = ev.Sample
			s.completion = nil
		}
	case output.EventTimeUpdate:
		s.clock = ev.Time
	case output.EventMonitoringComplete:
		s.completion = ev.Complete
		s.clock = nil
	}
}

// StartSessionArgs is empty; the session uses the server's configuration.
type StartSessionArgs struct{}

type StartSessionResult struct {
	Started bool           `json:"started"`
	Message string         `json:"message"`
	Status  session.Status `json:"status"`
}

type StopSessionArgs struct{}

type StatusArgs struct{}

type StatusResult struct {
	Status     session.Status     `json:"status"`
	Elapsed    string             `json:"elapsed"`
	Remaining  string             `json:"remaining"`
	Completion *output.Completion `json:"completion,omitempty"`
}

type LatestSampleArgs struct{}

type SystemInfoArgs struct{}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_session",
		Description: "Start a monitoring session if none is running. Calling it while a session runs reports the running session instead of starting a second one.",
	}, s.handleStartSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "stop_session",
		Description: "Request early termination of the running session. The report is still generated from the samples collected so far.",
	}, s.handleStopSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_session_status",
		Description: "Get the session state, elapsed and remaining time, sample count and, once finished, the report path.",
	}, s.handleGetStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_latest_sample",
		Description: "Get the most recent metric sample: CPU, memory, disk, network, GPU and top processes. Failed categories carry an error field.",
	}, s.handleGetLatestSample)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_system_info",
		Description: "Get the host identity: OS, architecture, processor, core counts, max CPU frequency, total memory and hostname.",
	}, s.handleGetSystemInfo)
}

func (s *Server) handleStartSession(_ context.Context, _ *mcp.CallToolRequest, _ StartSessionArgs) (*mcp.CallToolResult, any, error) {
	err := s.session.Start(s.baseCtx)
	switch {
	case err == nil:
		s.logger.Info().Msg("session started by client")
		return nil, StartSessionResult{Started: true, Message: "session started", Status: s.session.Status()}, nil
	case errors.Is(err, session.ErrSessionActive):
		return nil, StartSessionResult{Message: "session already running", Status: s.session.Status()}, nil
	default:
		return nil, nil, fmt.Errorf("failed to start session: %w", err)
	}
}

func (s *Server) handleStopSession(_ context.Context, _ *mcp.CallToolRequest, _ StopSessionArgs) (*mcp.CallToolResult, any, error) {
	s.session.Stop()
	return nil, s.status(), nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcp.CallToolRequest, _ StatusArgs) (*mcp.CallToolResult, any, error) {
	return nil, s.status(), nil
}

func (s *Server) status() StatusResult {
	st := s.session.Status()
	res := StatusResult{
		Status:    st,
		Elapsed:   output.FormatElapsed(st.Elapsed),
		Remaining: output.FormatRemaining(st.Remaining),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if st.State == session.StateCompleted {
		res.Completion = s.completion
	}
	return res
}

// handleGetLatestSample returns the sample as any: categories serialize as
// either a value or {"error": ...}, which no single schema describes.
func (s *Server) handleGetLatestSample(_ context.Context, _ *mcp.CallToolRequest, _ LatestSampleArgs) (*mcp.CallToolResult, any, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		return nil, nil, errors.New("no sample collected yet; call start_session first")
	}
	return nil, latest, nil
}

func (s *Server) handleGetSystemInfo(ctx context.Context, _ *mcp.CallToolRequest, _ SystemInfoArgs) (*mcp.CallToolResult, any, error) {
	if s.identity == nil {
		return nil, collector.SystemInfo{Error: "system information not configured"}, nil
	}
	return nil, s.identity.SystemInfo(ctx), nil
}

// Start serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info().Msg("serving MCP on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Close detaches from the hub.
func (s *Server) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	s.wg.Wait()
}

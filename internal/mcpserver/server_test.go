package mcpserver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sysmonitor/internal/broadcast"
	"sysmonitor/internal/collector"
	"sysmonitor/internal/output"
	"sysmonitor/internal/session"
)

// MockSession implements SessionControl for testing
type MockSession struct {
	mu       sync.Mutex
	state    session.State
	starts   int
	stops    int
	StartErr error
	startCtx context.Context
}

func (m *MockSession) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return m.StartErr
	}
	if m.state == session.StateRunning {
		return session.ErrSessionActive
	}
	m.starts++
	m.state = session.StateRunning
	m.startCtx = ctx
	return nil
}

func (m *MockSession) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	if m.state == session.StateRunning {
		m.state = session.StateCancelled
	}
}

func (m *MockSession) Status() session.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return session.Status{State: m.state, Elapsed: 65 * time.Second, Remaining: 235 * time.Second}
}

// MockIdentity implements IdentitySource for testing
type MockIdentity struct {
	Info collector.SystemInfo
}

func (m *MockIdentity) SystemInfo(context.Context) collector.SystemInfo {
	return m.Info
}

func newTestServer(ctrl SessionControl) *Server {
	return NewServer(context.Background(), Config{ServerName: "test", ServerVersion: "0"}, ctrl, nil, &MockIdentity{
		Info: collector.SystemInfo{OS: "Linux", Hostname: "test-host"},
	}, zerolog.Nop())
}

func TestHandleStartSession_StartsOnce(t *testing.T) {
	ctrl := &MockSession{}
	s := newTestServer(ctrl)
	ctx := context.Background()

	_, out, err := s.handleStartSession(ctx, nil, StartSessionArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	first := out.(StartSessionResult)
	if !first.Started {
		t.Error("Expected first call to start a session")
	}

	_, out, err = s.handleStartSession(ctx, nil, StartSessionArgs{})
	if err != nil {
		t.Fatalf("Expected no error on reconnect, got: %v", err)
	}
	second := out.(StartSessionResult)
	if second.Started {
		t.Error("Expected second call not to start another session")
	}
	if second.Status.State != session.StateRunning {
		t.Errorf("Expected running state, got %s", second.Status.State)
	}
	if ctrl.starts != 1 {
		t.Errorf("Expected 1 start, got %d", ctrl.starts)
	}
}

func TestHandleStartSession_UsesServerContext(t *testing.T) {
	ctrl := &MockSession{}
	s := newTestServer(ctrl)

	callCtx, cancel := context.WithCancel(context.Background())
	if _, _, err := s.handleStartSession(callCtx, nil, StartSessionArgs{}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	cancel()

	if err := ctrl.startCtx.Err(); err != nil {
		t.Error("Session context must not end with the tool call")
	}
}

func TestHandleStartSession_Error(t *testing.T) {
	s := newTestServer(&MockSession{StartErr: errors.New("boom")})

	if _, _, err := s.handleStartSession(context.Background(), nil, StartSessionArgs{}); err == nil {
		t.Fatal("Expected error")
	}
}

func TestHandleStopSession(t *testing.T) {
	ctrl := &MockSession{}
	s := newTestServer(ctrl)
	ctx := context.Background()

	_, _, _ = s.handleStartSession(ctx, nil, StartSessionArgs{})
	_, out, err := s.handleStopSession(ctx, nil, StopSessionArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	res := out.(StatusResult)
	if res.Status.State != session.StateCancelled {
		t.Errorf("Expected cancelled state, got %s", res.Status.State)
	}
}

func TestHandleGetStatus_Formatting(t *testing.T) {
	s := newTestServer(&MockSession{})

	_, out, err := s.handleGetStatus(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	res := out.(StatusResult)
	if res.Elapsed != "0:01:05" {
		t.Errorf("Expected elapsed 0:01:05, got %s", res.Elapsed)
	}
	if res.Remaining != "03:55" {
		t.Errorf("Expected remaining 03:55, got %s", res.Remaining)
	}
}

func TestHandleGetStatus_Completion(t *testing.T) {
	ctrl := &MockSession{state: session.StateCompleted}
	s := newTestServer(ctrl)
	s.Observe(output.CompleteEvent(output.Completion{ReportPath: "reports/r.pdf", Samples: 3}))

	_, out, _ := s.handleGetStatus(context.Background(), nil, StatusArgs{})
	res := out.(StatusResult)
	if res.Completion == nil || res.Completion.ReportPath != "reports/r.pdf" {
		t.Errorf("Expected completion with report path, got %+v", res.Completion)
	}
}

func TestHandleGetLatestSample(t *testing.T) {
	s := newTestServer(&MockSession{})
	ctx := context.Background()

	if _, _, err := s.handleGetLatestSample(ctx, nil, LatestSampleArgs{}); err == nil {
		t.Fatal("Expected error before any sample")
	}

	sample := collector.Sample{CPU: collector.Ok(collector.CpuMetric{Percent: 45.5})}
	s.Observe(output.DataEvent(sample))

	_, out, err := s.handleGetLatestSample(ctx, nil, LatestSampleArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	got := out.(*collector.Sample)
	if cpu, _ := got.CPU.Get(); cpu.Percent != 45.5 {
		t.Errorf("Expected CPU usage 45.5, got %f", cpu.Percent)
	}
}

func TestObserve_NewSessionClearsCompletion(t *testing.T) {
	s := newTestServer(&MockSession{})
	s.Observe(output.CompleteEvent(output.Completion{ReportPath: "a.pdf"}))
	s.Observe(output.DataEvent(collector.Sample{}))

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.completion != nil {
		t.Error("Expected completion to be cleared by new data")
	}
}

func TestHandleGetSystemInfo(t *testing.T) {
	s := newTestServer(&MockSession{})

	_, out, err := s.handleGetSystemInfo(context.Background(), nil, SystemInfoArgs{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if info := out.(collector.SystemInfo); info.Hostname != "test-host" {
		t.Errorf("Expected hostname 'test-host', got '%s'", info.Hostname)
	}
}

func TestTrack_FollowsHub(t *testing.T) {
	hub := broadcast.NewHub(zerolog.Nop())
	s := NewServer(context.Background(), Config{}, &MockSession{}, hub, nil, zerolog.Nop())

	hub.Publish(output.DataEvent(collector.Sample{CPU: collector.Ok(collector.CpuMetric{Percent: 12})}))
	s.Close()

	_, out, err := s.handleGetLatestSample(context.Background(), nil, LatestSampleArgs{})
	if err != nil {
		t.Fatalf("Expected sample from hub, got error: %v", err)
	}
	if cpu, _ := out.(*collector.Sample).CPU.Get(); cpu.Percent != 12 {
		t.Errorf("Expected CPU 12, got %f", cpu.Percent)
	}
	if hub.Subscribers() != 0 {
		t.Error("Expected server to unsubscribe on Close")
	}
}

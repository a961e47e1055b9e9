package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/output"
)

type countingSampler struct {
	mu      sync.Mutex
	calls   int
	release chan struct{} // when set, each Collect waits for a value
	entered chan struct{}
}

func (s *countingSampler) Collect(ctx context.Context) collector.Sample {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	return collector.Sample{
		Timestamp: time.Now(),
		CPU:       collector.Ok(collector.CpuMetric{Percent: float64(n)}),
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []output.Event
}

func (p *recordingPublisher) Publish(ev output.Event) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return 1
}

func (p *recordingPublisher) count(kind output.EventKind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (p *recordingPublisher) last() output.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type recordingFinalizer struct {
	mu      sync.Mutex
	calls   int
	samples int
	err     error
}

func (f *recordingFinalizer) Finalize(ctx context.Context, r Result) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.samples = r.History.Len()
	if f.err != nil {
		return "", f.err
	}
	return "reports/test.pdf", nil
}

func newTestController(t *testing.T, cfg Config, sampler collector.Sampler) (*Controller, *recordingPublisher, *recordingFinalizer) {
	t.Helper()
	pub := &recordingPublisher{}
	fin := &recordingFinalizer{}
	c, err := NewController(cfg, sampler, pub, fin, zerolog.Nop())
	require.NoError(t, err)
	return c, pub, fin
}

func waitOutcome(t *testing.T, c *Controller) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := c.Wait(ctx)
	require.NoError(t, err)
	return out
}

func TestController_RunsToCompletion(t *testing.T) {
	cfg := Config{Duration: 60 * time.Millisecond, Interval: 10 * time.Millisecond}
	c, pub, fin := newTestController(t, cfg, &countingSampler{})

	require.NoError(t, c.Start(context.Background()))
	out := waitOutcome(t, c)

	assert.False(t, out.Cancelled)
	assert.False(t, out.Skipped)
	assert.NoError(t, out.Err)
	assert.Equal(t, "reports/test.pdf", out.ReportPath)
	assert.GreaterOrEqual(t, out.Samples, 1)

	assert.Equal(t, 1, fin.calls, "report generated exactly once")
	assert.Equal(t, out.Samples, fin.samples)
	assert.Equal(t, out.Samples, pub.count(output.EventSystemData))
	assert.Equal(t, out.Samples, pub.count(output.EventTimeUpdate))
	assert.Equal(t, 1, pub.count(output.EventMonitoringComplete))

	done := pub.last()
	require.Equal(t, output.EventMonitoringComplete, done.Kind)
	assert.Equal(t, "reports/test.pdf", done.Complete.ReportPath)

	st := c.Status()
	assert.Equal(t, StateCompleted, st.State)
	assert.Equal(t, time.Duration(0), st.Remaining)
}

func TestController_StartTwice(t *testing.T) {
	cfg := Config{Duration: time.Hour, Interval: 10 * time.Millisecond}
	sampler := &countingSampler{entered: make(chan struct{}, 100)}
	c, _, fin := newTestController(t, cfg, sampler)

	require.NoError(t, c.Start(context.Background()))
	<-sampler.entered // first tick is under way, so the session has a sample
	assert.ErrorIs(t, c.Start(context.Background()), ErrSessionActive)

	c.Stop()
	out := waitOutcome(t, c)
	assert.True(t, out.Cancelled)
	assert.False(t, out.Skipped)
	assert.GreaterOrEqual(t, out.Samples, 1)
	assert.Equal(t, 1, fin.calls)
}

func TestController_CancelBeforeFirstTick(t *testing.T) {
	cfg := Config{Duration: time.Hour, Interval: 10 * time.Millisecond}
	sampler := &countingSampler{}
	c, pub, fin := newTestController(t, cfg, sampler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Start(ctx))
	out := waitOutcome(t, c)

	assert.True(t, out.Cancelled)
	assert.True(t, out.Skipped)
	assert.Equal(t, 0, out.Samples)
	assert.NoError(t, out.Err)
	assert.Equal(t, 0, fin.calls, "no report without samples")
	assert.Equal(t, 0, sampler.calls)

	done := pub.last()
	require.Equal(t, output.EventMonitoringComplete, done.Kind)
	assert.Empty(t, done.Complete.ReportPath)
	assert.Equal(t, StateCompleted, c.Status().State)
}

func TestController_CancelAfterTicks(t *testing.T) {
	cfg := Config{Duration: time.Hour, Interval: 5 * time.Millisecond}
	c, pub, fin := newTestController(t, cfg, &countingSampler{})

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool {
		return pub.count(output.EventSystemData) >= 3
	}, 5*time.Second, time.Millisecond)

	c.Stop()
	c.Stop()
	out := waitOutcome(t, c)

	assert.True(t, out.Cancelled)
	assert.False(t, out.Skipped)
	assert.Equal(t, 1, fin.calls)
	assert.Equal(t, pub.count(output.EventSystemData), out.Samples)
	assert.Equal(t, out.Samples, fin.samples, "report covers exactly the completed ticks")
}

func TestController_InFlightTickCompletes(t *testing.T) {
	cfg := Config{Duration: time.Hour, Interval: time.Millisecond}
	sampler := &countingSampler{release: make(chan struct{}), entered: make(chan struct{}, 1)}
	c, _, fin := newTestController(t, cfg, sampler)

	require.NoError(t, c.Start(context.Background()))
	<-sampler.entered
	c.Stop()
	assert.Equal(t, StateCancelled, c.Status().State)
	sampler.release <- struct{}{}

	out := waitOutcome(t, c)
	assert.Equal(t, 1, out.Samples)
	assert.Equal(t, 1, fin.samples)
}

func TestController_StopIsNoOpOutsideRunning(t *testing.T) {
	cfg := Config{Duration: 20 * time.Millisecond, Interval: 10 * time.Millisecond}
	c, pub, fin := newTestController(t, cfg, &countingSampler{})

	c.Stop()
	assert.Equal(t, StateIdle, c.Status().State)
	_, err := c.Wait(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, c.Start(context.Background()))
	waitOutcome(t, c)
	c.Stop()

	assert.Equal(t, StateCompleted, c.Status().State)
	assert.Equal(t, 1, fin.calls)
	assert.Equal(t, 1, pub.count(output.EventMonitoringComplete))
}

func TestController_RestartUsesFreshHistory(t *testing.T) {
	cfg := Config{Duration: 30 * time.Millisecond, Interval: 10 * time.Millisecond}
	c, _, fin := newTestController(t, cfg, &countingSampler{})

	require.NoError(t, c.Start(context.Background()))
	first := waitOutcome(t, c)

	require.NoError(t, c.Start(context.Background()))
	second := waitOutcome(t, c)

	assert.Equal(t, 2, fin.calls)
	assert.Equal(t, second.Samples, fin.samples)
	assert.LessOrEqual(t, fin.samples, first.Samples+1)
}

func TestController_FinalizerError(t *testing.T) {
	cfg := Config{Duration: 20 * time.Millisecond, Interval: 10 * time.Millisecond}
	c, pub, fin := newTestController(t, cfg, &countingSampler{})
	fin.err = errors.New("read-only file system")

	require.NoError(t, c.Start(context.Background()))
	out := waitOutcome(t, c)

	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "read-only file system")
	assert.Empty(t, out.ReportPath)

	done := pub.last()
	assert.Contains(t, done.Complete.Error, "read-only file system")
}

func TestNewController_Validation(t *testing.T) {
	_, err := NewController(DefaultConfig(), nil, &recordingPublisher{}, nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewController(Config{Duration: 0, Interval: time.Second}, &countingSampler{}, &recordingPublisher{}, nil, zerolog.Nop())
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestController_NoFinalizer(t *testing.T) {
	cfg := Config{Duration: 20 * time.Millisecond, Interval: 10 * time.Millisecond}
	c, err := NewController(cfg, &countingSampler{}, &recordingPublisher{}, nil, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	out := waitOutcome(t, c)
	assert.Empty(t, out.ReportPath)
	assert.NoError(t, out.Err)
}

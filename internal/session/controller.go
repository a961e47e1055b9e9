package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sysmonitor/internal/collector"
	"sysmonitor/internal/history"
	"sysmonitor/internal/output"
)

var (
	// ErrSessionActive is returned by Start while a session is running.
	ErrSessionActive = errors.New("session already running")
	// ErrNoSession is returned by Wait before any session was started.
	ErrNoSession = errors.New("no session started")
)

// Publisher receives live events. Publish must not block.
type Publisher interface {
	Publish(ev output.Event) int
}

// Result is the final, read-only state of a session handed to the Finalizer.
type Result struct {
	History   *history.Store
	Stats     history.Statistics
	StartedAt time.Time
	EndedAt   time.Time
	Interval  time.Duration
	Cancelled bool
}

// Finalizer produces the session artifact and returns its location.
type Finalizer interface {
	Finalize(ctx context.Context, r Result) (string, error)
}

// FinalizerFunc adapts a function to Finalizer.
type FinalizerFunc func(ctx context.Context, r Result) (string, error)

func (f FinalizerFunc) Finalize(ctx context.Context, r Result) (string, error) {
	return f(ctx, r)
}

// Outcome describes how a session ended.
type Outcome struct {
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Samples    int       `json:"samples"`
	Cancelled  bool      `json:"cancelled"`
	Skipped    bool      `json:"skipped"` // no samples, so no report was attempted
	ReportPath string    `json:"report_path,omitempty"`
	Err        error     `json:"-"`
}

// Status is a point-in-time view of the controller.
type Status struct {
	State     State         `json:"state"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Remaining time.Duration `json:"remaining"`
	Samples   int           `json:"samples"`
	Last      *Outcome      `json:"last,omitempty"`
}

// Controller owns the session state machine and runs at most one sampling
// loop at a time. The loop goroutine is the only writer of the session history.
type Controller struct {
	cfg       Config
	sampler   collector.Sampler
	publisher Publisher
	finalizer Finalizer
	logger    zerolog.Logger
	now       func() time.Time

	mu        sync.Mutex
	state     State
	finishing bool
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
	samples   int
	last      *Outcome
}

// NewController creates a controller. The finalizer may be nil, in which case
// sessions end without an artifact.
func NewController(cfg Config, sampler collector.Sampler, publisher Publisher, finalizer Finalizer, logger zerolog.Logger) (*Controller, error) {
	if sampler == nil || publisher == nil {
		return nil, errors.New("sampler and publisher are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:       cfg,
		sampler:   sampler,
		publisher: publisher,
		finalizer: finalizer,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start begins a new session with an empty history. It returns
// ErrSessionActive if one is already running; a completed controller may be
// started again.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning || c.state == StateCancelled {
		return ErrSessionActive
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateRunning
	c.finishing = false
	c.startedAt = c.now()
	c.samples = 0
	c.done = make(chan struct{})

	c.logger.Info().
		Dur("duration", c.cfg.Duration).
		Dur("interval", c.cfg.Interval).
		Msg("session started")

	go c.run(ctx, history.New(), c.startedAt, c.done)
	return nil
}

// Stop requests early termination. The loop notices at its next tick
// boundary. Repeated calls, and calls when no session runs, are no-ops.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != StateRunning || c.finishing {
		c.mu.Unlock()
		return
	}
	c.state = StateCancelled
	cancel := c.cancel
	c.mu.Unlock()

	c.logger.Info().Msg("session cancellation requested")
	cancel()
}

// Done is closed when the current session completes. It is nil before the
// first Start.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Wait blocks until the current session completes and returns its outcome.
func (c *Controller) Wait(ctx context.Context) (Outcome, error) {
	done := c.Done()
	if done == nil {
		return Outcome{}, ErrNoSession
	}
	select {
	case <-done:
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.last, nil
}

// Status reports the current state and progress.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:     c.state,
		StartedAt: c.startedAt,
		Samples:   c.samples,
		Last:      c.last,
	}
	switch c.state {
	case StateRunning, StateCancelled:
		st.Elapsed = c.now().Sub(c.startedAt)
	case StateCompleted:
		st.Elapsed = c.last.EndedAt.Sub(c.last.StartedAt)
	}
	if c.state != StateIdle {
		st.Remaining = max(c.cfg.Duration-st.Elapsed, 0)
	}
	return st
}

// Config returns the session parameters.
func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) run(ctx context.Context, store *history.Store, start time.Time, done chan struct{}) {
	defer close(done)

	// Collection in flight finishes even if the session is cancelled meanwhile.
	collectCtx := context.WithoutCancel(ctx)
	boundary := start
	cancelled := false
	tick := 0

loop:
	for {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		if c.now().Sub(start) >= c.cfg.Duration {
			break
		}

		sample := c.sampler.Collect(collectCtx)
		store.Append(sample)
		tick++

		c.mu.Lock()
		c.samples = store.Len()
		c.mu.Unlock()

		elapsed := c.now().Sub(start)
		c.publisher.Publish(output.DataEvent(sample))
		c.publisher.Publish(output.TimeEvent(tick, elapsed, c.cfg.Duration-elapsed))

		// Sleep to the next boundary, skipping any that a slow tick overran.
		now := c.now()
		boundary = boundary.Add(c.cfg.Interval)
		for !boundary.After(now) {
			boundary = boundary.Add(c.cfg.Interval)
		}
		timer := time.NewTimer(boundary.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			cancelled = true
			break loop
		case <-timer.C:
		}
	}

	c.finish(ctx, store, start, cancelled)
}

func (c *Controller) finish(ctx context.Context, store *history.Store, start time.Time, cancelled bool) {
	c.mu.Lock()
	c.finishing = true
	if cancelled {
		c.state = StateCancelled
	}
	c.mu.Unlock()

	outcome := Outcome{
		StartedAt: start,
		EndedAt:   c.now(),
		Samples:   store.Len(),
		Cancelled: cancelled,
	}
	completion := output.Completion{Samples: outcome.Samples, Cancelled: cancelled}

	switch {
	case store.Len() == 0:
		outcome.Skipped = true
		completion.Message = "no samples collected; report skipped"
		c.logger.Info().Bool("cancelled", cancelled).Msg("session ended without samples, skipping report")
	case c.finalizer == nil:
		completion.Message = "session complete"
	default:
		path, err := c.finalizer.Finalize(context.WithoutCancel(ctx), Result{
			History:   store,
			Stats:     store.Statistics(),
			StartedAt: outcome.StartedAt,
			EndedAt:   outcome.EndedAt,
			Interval:  c.cfg.Interval,
			Cancelled: cancelled,
		})
		if err != nil {
			outcome.Err = fmt.Errorf("generate report: %w", err)
			completion.Error = outcome.Err.Error()
			c.logger.Error().Err(err).Int("samples", outcome.Samples).Msg("report generation failed")
		} else {
			outcome.ReportPath = path
			completion.ReportPath = path
			completion.Message = "report generated"
			c.logger.Info().Str("path", path).Int("samples", outcome.Samples).Msg("report generated")
		}
	}

	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.state = StateCompleted
	c.finishing = false
	c.last = &outcome
	c.mu.Unlock()
	cancel()

	c.publisher.Publish(output.CompleteEvent(completion))
}

package vidu

import (
	"context"
	"errors"
	"time"

	"vidu-cli/internal/model"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultPollTimeout  = 5 * time.Minute
)

// ErrPollTimeout means the wall-clock budget elapsed before the task reached
// a terminal state.
var ErrPollTimeout = errors.New("timeout waiting for completion")

// Poller runs the blocking status loop for one task. It is single-threaded:
// one query at a time, a fixed sleep between queries, and a wall-clock check
// once per iteration. A stalled individual request is bounded by the client's
// per-request timeout, not by Timeout.
type Poller struct {
	Client   *Client
	Interval time.Duration
	Timeout  time.Duration

	// Wait keeps polling until a terminal state; when false the loop stops
	// after the first query regardless of state.
	Wait bool

	Override *EndpointOverride

	// OnTransition fires whenever the observed state differs from the
	// previous observation, including the first.
	OnTransition func(state, viaURL string)

	// Test seams; real time is used when nil.
	now   func() time.Time
	sleep func(time.Duration)
}

// PollOutcome is the final observation of a poll run.
type PollOutcome struct {
	Body    map[string]any
	State   string
	ViaURL  string
	Queries int
}

// Terminal reports whether the loop stopped on success or failed rather than
// because waiting was disabled.
func (o PollOutcome) Terminal() bool {
	return model.IsTerminal(o.State)
}

func (p *Poller) Run(ctx context.Context, taskID string) (PollOutcome, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	now := p.now
	if now == nil {
		now = time.Now
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	start := now()
	outcome := PollOutcome{}
	lastState := ""
	seen := false

	for {
		status, err := p.Client.QueryTask(ctx, taskID, p.Override)
		if err != nil {
			return outcome, err
		}
		outcome.Queries++
		outcome.Body = status.Body
		outcome.State = model.StateOf(status.Body)
		outcome.ViaURL = status.ViaURL

		if !seen || outcome.State != lastState {
			seen = true
			lastState = outcome.State
			if p.OnTransition != nil {
				p.OnTransition(outcome.State, outcome.ViaURL)
			}
		}

		// Single exit point of the loop.
		if !p.Wait || model.IsTerminal(outcome.State) {
			return outcome, nil
		}

		if now().Sub(start) > timeout {
			return outcome, ErrPollTimeout
		}
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		sleep(interval)
	}
}

package vidu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeClock drives the poller without real sleeping: each sleep advances the
// clock by the requested duration.
type fakeClock struct {
	mu  sync.Mutex
	t   time.Time
	nap []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	c.nap = append(c.nap, d)
}

// scriptedStates serves each state once, in order, repeating the last one
// forever, always on the first discovery candidate.
func scriptedStates(t *testing.T, states ...string) (*httptest.Server, *int) {
	t.Helper()
	queries := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := queries
		if idx >= len(states) {
			idx = len(states) - 1
		}
		queries++
		fmt.Fprintf(w, `{"task_id":"task-1","state":%q}`, states[idx])
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestPollWaitStopsAtTerminalState(t *testing.T) {
	srv, queries := scriptedStates(t, "queued", "processing", "success")
	clock := newFakeClock()

	var transitions []string
	p := &Poller{
		Client:   testClient(srv.URL),
		Interval: 3 * time.Second,
		Timeout:  5 * time.Minute,
		Wait:     true,
		OnTransition: func(state, viaURL string) {
			transitions = append(transitions, state)
		},
		now:   clock.now,
		sleep: clock.sleep,
	}

	outcome, err := p.Run(context.Background(), "task-1")
	if err != nil {
		t.Fatal(err)
	}
	if *queries != 3 || outcome.Queries != 3 {
		t.Fatalf("expected exactly three queries, got server=%d outcome=%d", *queries, outcome.Queries)
	}
	if outcome.State != "success" || !outcome.Terminal() {
		t.Fatalf("unexpected outcome state %q", outcome.State)
	}
	want := []string{"queued", "processing", "success"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", transitions, want)
		}
	}
	if len(clock.nap) != 2 {
		t.Fatalf("expected two sleeps between three queries, got %d", len(clock.nap))
	}
}

func TestPollWaitStopsOnFailed(t *testing.T) {
	srv, _ := scriptedStates(t, "queued", "failed")
	clock := newFakeClock()

	p := &Poller{
		Client: testClient(srv.URL),
		Wait:   true,
		now:    clock.now,
		sleep:  clock.sleep,
	}
	outcome, err := p.Run(context.Background(), "task-1")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.State != "failed" || !outcome.Terminal() {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestPollWithoutWaitQueriesOnce(t *testing.T) {
	srv, queries := scriptedStates(t, "processing")
	clock := newFakeClock()

	p := &Poller{
		Client: testClient(srv.URL),
		Wait:   false,
		now:    clock.now,
		sleep:  clock.sleep,
	}
	outcome, err := p.Run(context.Background(), "task-1")
	if err != nil {
		t.Fatal(err)
	}
	if *queries != 1 {
		t.Fatalf("expected a single query without wait, got %d", *queries)
	}
	if outcome.Terminal() {
		t.Fatalf("processing must not count as terminal")
	}
	if len(clock.nap) != 0 {
		t.Fatalf("no sleeping expected without wait")
	}
}

func TestPollTimesOutWithoutTerminalState(t *testing.T) {
	srv, _ := scriptedStates(t, "processing")
	clock := newFakeClock()

	p := &Poller{
		Client:   testClient(srv.URL),
		Interval: 3 * time.Second,
		Timeout:  10 * time.Second,
		Wait:     true,
		now:      clock.now,
		sleep:    clock.sleep,
	}
	outcome, err := p.Run(context.Background(), "task-1")
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("expected ErrPollTimeout, got %v", err)
	}
	if outcome.State != "processing" {
		t.Fatalf("timeout outcome should carry the last observation, got %q", outcome.State)
	}
}

func TestPollTransitionFiresOncePerStateChange(t *testing.T) {
	srv, _ := scriptedStates(t, "queued", "queued", "queued", "processing", "success")
	clock := newFakeClock()

	var transitions []string
	p := &Poller{
		Client: testClient(srv.URL),
		Wait:   true,
		OnTransition: func(state, viaURL string) {
			transitions = append(transitions, state)
		},
		now:   clock.now,
		sleep: clock.sleep,
	}
	if _, err := p.Run(context.Background(), "task-1"); err != nil {
		t.Fatal(err)
	}
	want := []string{"queued", "processing", "success"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
}

func TestPollPropagatesQueryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	clock := newFakeClock()
	p := &Poller{
		Client: testClient(srv.URL),
		Wait:   true,
		now:    clock.now,
		sleep:  clock.sleep,
	}
	if _, err := p.Run(context.Background(), "task-1"); !errors.Is(err, ErrAllEndpointsFailed) {
		t.Fatalf("expected ErrAllEndpointsFailed, got %v", err)
	}
}

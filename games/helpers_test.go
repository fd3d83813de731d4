package games

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pendingTimer struct {
	d time.Duration
	f func()
}

// manualClock queues continuations until the test fires them.
type manualClock struct {
	mu      sync.Mutex
	pending []pendingTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = append(c.pending, pendingTimer{d: d, f: f})
}

func (c *manualClock) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// fire runs the oldest pending continuation and returns its delay.
func (c *manualClock) fire(t *testing.T) time.Duration {
	t.Helper()

	c.mu.Lock()
	require.NotEmpty(t, c.pending, "no pending timers")
	next := c.pending[0]
	c.pending = c.pending[1:]
	c.mu.Unlock()

	next.f()

	return next.d
}

// drain fires continuations until none are left.
func (c *manualClock) drain(t *testing.T) {
	t.Helper()

	for i := 0; c.len() > 0; i++ {
		require.Less(t, i, 1000, "timers never settled")
		c.fire(t)
	}
}

// recorder is a connection that keeps every message it receives.
type recorder struct {
	mu   sync.Mutex
	msgs []map[string]any
}

func (r *recorder) Send(data []byte) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.msgs = append(r.msgs, m)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m["type"].(string))
	}

	return out
}

func (r *recorder) last(kind string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.msgs) - 1; i >= 0; i-- {
		if r.msgs[i]["type"] == kind {
			return r.msgs[i]
		}
	}

	return nil
}

func (r *recorder) all(kind string) []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []map[string]any
	for _, m := range r.msgs {
		if m["type"] == kind {
			out = append(out, m)
		}
	}

	return out
}

func newTestEngine(bank []Question) (*Engine, *manualClock) {
	clock := &manualClock{}

	return NewEngine(Options{Bank: bank, Scheduler: clock}), clock
}

func wheel(points int) Game {
	return WheelGame{Type: KindWheel, Name: "wheel", PointsForWinner: points}
}

func guess(points int) Game {
	return GuessGame{Type: KindGuess, Name: "guess", PointsPerCorrect: points}
}

func mustJoin(t *testing.T, e *Engine, c Conn, code, username string) {
	t.Helper()

	_, err := e.Join(c, code, username)
	require.NoError(t, err)
}

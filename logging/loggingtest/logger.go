/*
Package loggingtest implements a logging.Logger that records the
entries and lets tests wait for them.
*/
package loggingtest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrWaitTimeout is returned by WaitFor and WaitForN when the expected
// entries were not logged in time.
var ErrWaitTimeout = errors.New("timeout")

type waiter struct {
	exp  string
	n    int
	done chan struct{}
}

// TestLogger records every entry, and echoes it to the logrus standard
// logger. It is safe for concurrent use.
type TestLogger struct {
	mu      sync.Mutex
	entries []string
	waiters []*waiter
	muted   bool
	closed  bool
}

// New creates a TestLogger. Close it when done.
func New() *TestLogger {
	return &TestLogger{}
}

func countContaining(entries []string, exp string) int {
	var n int
	for _, e := range entries {
		if strings.Contains(e, exp) {
			n++
		}
	}

	return n
}

func (tl *TestLogger) record(level log.Level, msg string) {
	log.StandardLogger().Log(level, msg)

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.muted || tl.closed {
		return
	}

	tl.entries = append(tl.entries, msg)

	waiting := tl.waiters[:0]
	for _, w := range tl.waiters {
		if strings.Contains(msg, w.exp) {
			w.n--
		}

		if w.n <= 0 {
			close(w.done)
			continue
		}

		waiting = append(waiting, w)
	}

	tl.waiters = waiting
}

func (tl *TestLogger) removeWaiter(w *waiter) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	for i, wi := range tl.waiters {
		if wi == w {
			tl.waiters = append(tl.waiters[:i], tl.waiters[i+1:]...)
			return
		}
	}
}

// WaitForN blocks until n entries containing exp were recorded, counting
// the ones recorded before the call, or returns ErrWaitTimeout.
func (tl *TestLogger) WaitForN(exp string, n int, to time.Duration) error {
	tl.mu.Lock()
	missing := n - countContaining(tl.entries, exp)
	if missing <= 0 {
		tl.mu.Unlock()
		return nil
	}

	w := &waiter{exp: exp, n: missing, done: make(chan struct{})}
	tl.waiters = append(tl.waiters, w)
	tl.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-time.After(to):
		tl.removeWaiter(w)
		return ErrWaitTimeout
	}
}

// WaitFor blocks until an entry containing exp is recorded.
func (tl *TestLogger) WaitFor(exp string, to time.Duration) error {
	return tl.WaitForN(exp, 1, to)
}

// Count returns how many recorded entries contain exp.
func (tl *TestLogger) Count(exp string) int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return countContaining(tl.entries, exp)
}

// Reset drops the recorded entries.
func (tl *TestLogger) Reset() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.entries = nil
}

// Mute stops recording until Unmute is called.
func (tl *TestLogger) Mute() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.muted = true
}

func (tl *TestLogger) Unmute() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.muted = false
}

// Close stops recording.
func (tl *TestLogger) Close() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.closed = true
}

func (tl *TestLogger) recordf(level log.Level, f string, a ...interface{}) {
	tl.record(level, fmt.Sprintf(f, a...))
}

func (tl *TestLogger) Error(a ...interface{})            { tl.record(log.ErrorLevel, fmt.Sprint(a...)) }
func (tl *TestLogger) Errorf(f string, a ...interface{}) { tl.recordf(log.ErrorLevel, f, a...) }
func (tl *TestLogger) Warn(a ...interface{})             { tl.record(log.WarnLevel, fmt.Sprint(a...)) }
func (tl *TestLogger) Warnf(f string, a ...interface{})  { tl.recordf(log.WarnLevel, f, a...) }
func (tl *TestLogger) Info(a ...interface{})             { tl.record(log.InfoLevel, fmt.Sprint(a...)) }
func (tl *TestLogger) Infof(f string, a ...interface{})  { tl.recordf(log.InfoLevel, f, a...) }
func (tl *TestLogger) Debug(a ...interface{})            { tl.record(log.DebugLevel, fmt.Sprint(a...)) }
func (tl *TestLogger) Debugf(f string, a ...interface{}) { tl.recordf(log.DebugLevel, f, a...) }

package loggingtest_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zalando/surlex/logging"
	"github.com/zalando/surlex/logging/loggingtest"
)

var _ logging.Logger = (*loggingtest.TestLogger)(nil)

func TestRecordsEveryLevel(t *testing.T) {
	lt := loggingtest.New()
	defer lt.Close()

	lt.Debug("debug")
	lt.Debugf("debugf: %s", "foo")
	lt.Info("info")
	lt.Infof("infof: %s", "foo")
	lt.Warn("warn")
	lt.Warnf("warnf: %s", "foo")
	lt.Error("error")
	lt.Errorf("errorf: %s", "foo")

	for _, s := range []string{"debug", "debugf: foo", "info", "infof: foo", "warn", "warnf: foo", "error", "errorf: foo"} {
		assert.NoError(t, lt.WaitFor(s, time.Millisecond), s)
	}

	assert.Equal(t, 2, lt.Count("info"))
	assert.Equal(t, 4, lt.Count("foo"))
}

func TestResetAndMute(t *testing.T) {
	lt := loggingtest.New()
	defer lt.Close()

	lt.Infof("pattern %q", "/<a>")
	lt.Reset()
	assert.Equal(t, loggingtest.ErrWaitTimeout, lt.WaitFor("pattern", time.Millisecond))

	lt.Mute()
	lt.Info("pattern")
	assert.Zero(t, lt.Count("pattern"))

	lt.Unmute()
	lt.Info("pattern")
	assert.Equal(t, 1, lt.Count("pattern"))
}

func TestWaitForLaterEntries(t *testing.T) {
	lt := loggingtest.New()
	defer lt.Close()

	lt.Warn("compiled /a")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		lt.Warnf("compiled %s", "/b")
		lt.Warnf("compiled %s", "/c")
	}()

	assert.NoError(t, lt.WaitForN("compiled", 3, time.Second))
	wg.Wait()
}

func TestClosed(t *testing.T) {
	lt := loggingtest.New()
	lt.Close()
	lt.Error("after close")
	assert.Zero(t, lt.Count("after close"))
}

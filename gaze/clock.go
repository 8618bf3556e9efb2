package gaze

import "time"

// TimeProvider supplies wall time to a Clock.
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider reads the process clock. time.Now carries a
// monotonic reading, so differences between two calls never go backwards.
type MonotonicTimeProvider struct{}

func (MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}

// MockTimeProvider is a manually advanced time source for tests and
// fixed-step tools.
type MockTimeProvider struct {
	current time.Time
}

func NewMockTimeProvider(start time.Time) *MockTimeProvider {
	return &MockTimeProvider{current: start}
}

func (m *MockTimeProvider) Now() time.Time {
	return m.current
}

// Set moves the mock to t.
func (m *MockTimeProvider) Set(t time.Time) {
	m.current = t
}

// Advance moves the mock forward by d.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}

// AdvanceSeconds moves the mock forward by s seconds.
func (m *MockTimeProvider) AdvanceSeconds(s float64) {
	m.Advance(time.Duration(s * float64(time.Second)))
}

// Clock reports elapsed and per-frame delta time in seconds. Elapsed does
// not disturb the delta bookkeeping. Time stands still while paused.
type Clock struct {
	provider TimeProvider
	start    time.Time
	last     time.Time
	paused   bool
	pausedAt time.Time
}

// NewClock starts a clock on provider, or on the process clock when nil.
func NewClock(provider TimeProvider) *Clock {
	if provider == nil {
		provider = MonotonicTimeProvider{}
	}
	c := &Clock{provider: provider}
	c.Reset()
	return c
}

func (c *Clock) now() time.Time {
	if c.paused {
		return c.pausedAt
	}
	return c.provider.Now()
}

// Reset restarts elapsed and delta time from now.
func (c *Clock) Reset() {
	now := c.provider.Now()
	c.start = now
	c.last = now
	c.pausedAt = now
}

// Pause freezes elapsed and delta time until Resume.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.pausedAt = c.provider.Now()
	c.paused = true
}

// Resume continues from the paused reading. The paused span is skipped, so
// neither Delta nor Elapsed jumps.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	gap := c.provider.Now().Sub(c.pausedAt)
	c.start = c.start.Add(gap)
	c.last = c.last.Add(gap)
	c.paused = false
}

func (c *Clock) Paused() bool {
	return c.paused
}

// Delta returns the seconds since the previous Delta call (or Reset).
func (c *Clock) Delta() float64 {
	now := c.now()
	d := now.Sub(c.last).Seconds()
	c.last = now
	return d
}

// Elapsed returns the seconds since Reset.
func (c *Clock) Elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}

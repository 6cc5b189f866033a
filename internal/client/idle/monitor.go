// Package idle watches user activity and forces a logout after a period of
// inactivity. It is advisory: the server's token expiry is the real
// enforcement.
package idle

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Clock abstracts time so tests can drive the poll loop deterministically.
type Clock interface {
	Now() time.Time
	Tick(d time.Duration) <-chan time.Time
}

type realClock struct{ ticker *time.Ticker }

func (realClock) Now() time.Time { return time.Now() }

func (c *realClock) Tick(d time.Duration) <-chan time.Time {
	c.ticker = time.NewTicker(d)
	return c.ticker.C
}

// Config holds the inactivity policy.
type Config struct {
	CheckInterval time.Duration // poll period
	Budget        time.Duration // idle time before forced logout
	WarnWindow    time.Duration // warn when remaining time drops below this
}

// Monitor polls the time since the last activity event. When the remaining
// budget drops inside the warning window it emits a warning; when the budget
// is spent it calls the logout callback exactly once.
type Monitor struct {
	cfg    Config
	clock  Clock
	log    *logrus.Logger
	onWarn func(remaining time.Duration)
	logout func(ctx context.Context)

	mu         sync.Mutex
	lastActive time.Time
	warned     bool
	done       bool
}

func NewMonitor(cfg Config, onWarn func(time.Duration), logout func(context.Context), log *logrus.Logger) *Monitor {
	return newMonitor(cfg, &realClock{}, onWarn, logout, log)
}

func newMonitor(cfg Config, clock Clock, onWarn func(time.Duration), logout func(context.Context), log *logrus.Logger) *Monitor {
	return &Monitor{
		cfg:        cfg,
		clock:      clock,
		log:        log,
		onWarn:     onWarn,
		logout:     logout,
		lastActive: clock.Now(),
	}
}

// Actividad registers a user activity event. It resets the idle budget and
// cancels a pending warning.
func (m *Monitor) Actividad() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActive = m.clock.Now()
	m.warned = false
}

// Extender is an explicit "keep my session" action; same effect as activity.
func (m *Monitor) Extender() { m.Actividad() }

// Run drives the poll loop until the context is cancelled or the logout
// fires. Call on its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	ticks := m.clock.Tick(m.cfg.CheckInterval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if m.paso(ctx) {
				return
			}
		}
	}
}

// paso evaluates one poll step; returns true when the monitor is finished.
func (m *Monitor) paso(ctx context.Context) bool {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return true
	}
	idle := m.clock.Now().Sub(m.lastActive)
	remaining := m.cfg.Budget - idle

	if remaining <= 0 {
		m.done = true
		m.mu.Unlock()
		if m.log != nil {
			m.log.WithField("inactivo", idle.String()).Info("sesión cerrada por inactividad")
		}
		m.logout(ctx)
		return true
	}

	warn := false
	if remaining <= m.cfg.WarnWindow && !m.warned {
		m.warned = true
		warn = true
	}
	m.mu.Unlock()

	if warn && m.onWarn != nil {
		m.onWarn(remaining)
	}
	return false
}

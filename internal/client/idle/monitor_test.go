package idle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the monitor without real timers: Advance moves time and
// the test calls paso directly instead of running the loop.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time                      { return c.now }
func (c *fakeClock) Tick(time.Duration) <-chan time.Time { return nil }
func (c *fakeClock) Advance(d time.Duration)             { c.now = c.now.Add(d) }

func nuevoMonitor(clock *fakeClock) (*Monitor, *[]time.Duration, *int) {
	var avisos []time.Duration
	var logouts int
	m := newMonitor(Config{
		CheckInterval: time.Second,
		Budget:        10 * time.Minute,
		WarnWindow:    time.Minute,
	}, clock, func(rem time.Duration) {
		avisos = append(avisos, rem)
	}, func(context.Context) {
		logouts++
	}, nil)
	return m, &avisos, &logouts
}

func TestMonitorAvisaYDesloguea(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m, avisos, logouts := nuevoMonitor(clock)
	ctx := context.Background()

	// dentro del presupuesto: nada
	clock.Advance(5 * time.Minute)
	assert.False(t, m.paso(ctx))
	assert.Empty(t, *avisos)
	assert.Zero(t, *logouts)

	// dentro de la ventana de aviso: un único aviso
	clock.Advance(4*time.Minute + 30*time.Second)
	assert.False(t, m.paso(ctx))
	require.Len(t, *avisos, 1)
	assert.Equal(t, 30*time.Second, (*avisos)[0])

	// pasos siguientes dentro de la ventana no repiten el aviso
	clock.Advance(10 * time.Second)
	assert.False(t, m.paso(ctx))
	assert.Len(t, *avisos, 1)

	// presupuesto agotado: logout exactamente una vez
	clock.Advance(time.Minute)
	assert.True(t, m.paso(ctx))
	assert.Equal(t, 1, *logouts)

	// el monitor queda terminado
	assert.True(t, m.paso(ctx))
	assert.Equal(t, 1, *logouts)
}

func TestActividadReiniciaElPresupuesto(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m, avisos, logouts := nuevoMonitor(clock)
	ctx := context.Background()

	clock.Advance(9*time.Minute + 30*time.Second)
	assert.False(t, m.paso(ctx))
	require.Len(t, *avisos, 1)

	// la actividad cancela el aviso pendiente y reinicia el contador
	m.Actividad()
	clock.Advance(8 * time.Minute)
	assert.False(t, m.paso(ctx))
	assert.Len(t, *avisos, 1)
	assert.Zero(t, *logouts)

	// sin nueva actividad vuelve a avisar y finalmente cierra
	clock.Advance(time.Minute + 45*time.Second)
	assert.False(t, m.paso(ctx))
	assert.Len(t, *avisos, 2)

	clock.Advance(time.Minute)
	assert.True(t, m.paso(ctx))
	assert.Equal(t, 1, *logouts)
}

func TestExtenderEquivaleAActividad(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m, _, logouts := nuevoMonitor(clock)
	ctx := context.Background()

	clock.Advance(9 * time.Minute)
	m.Extender()
	clock.Advance(9 * time.Minute)
	assert.False(t, m.paso(ctx))
	assert.Zero(t, *logouts)
}

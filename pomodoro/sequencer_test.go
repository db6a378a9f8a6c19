package pomodoro

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// lights records what every opened handle was told to do.
type lights struct {
	opens      int
	closes     int
	colors     []color.RGBA
	brightness []uint8
	failOpenAt int // 1-based open that fails, 0 never
	failFadeAt int // 1-based fade that fails, 0 never
}

func (l *lights) open() (api.Device, error) {
	l.opens++
	if l.failOpenAt == l.opens {
		return nil, api.ErrDeviceNotFound
	}
	return &fakeLight{lights: l}, nil
}

func (l *lights) last() color.RGBA {
	return l.colors[len(l.colors)-1]
}

type fakeLight struct {
	lights *lights
	closed bool
}

func (f *fakeLight) SetBrightness(b uint8) error {
	f.lights.brightness = append(f.lights.brightness, b)
	return nil
}

func (f *fakeLight) FadeToColor(c color.RGBA, _ time.Duration) error {
	if f.closed {
		return errors.New("use after close")
	}
	f.lights.colors = append(f.lights.colors, c)
	if f.lights.failFadeAt == len(f.lights.colors) {
		return errors.New("usb write failed")
	}
	return nil
}

func (f *fakeLight) GetVersion() (string, error) { return "test", nil }

func (f *fakeLight) Close() error {
	if f.closed {
		return errors.New("closed twice")
	}
	f.closed = true
	f.lights.closes++
	return nil
}

// recordingClock returns at once and remembers every requested sleep.
type recordingClock struct {
	slept    []time.Duration
	cancelAt int
	cancel   context.CancelFunc
}

func (c *recordingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	if c.cancelAt > 0 && len(c.slept) == c.cancelAt {
		c.cancel()
	}
	return ctx.Err()
}

func (c *recordingClock) total() time.Duration {
	var sum time.Duration
	for _, d := range c.slept {
		sum += d
	}
	return sum
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) session() events.SessionFinishedEvent {
	for i := len(p.events) - 1; i >= 0; i-- {
		if e, ok := p.events[i].(events.SessionFinishedEvent); ok {
			return e
		}
	}
	return events.SessionFinishedEvent{}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_Completes(t *testing.T) {
	s := DefaultSettings()
	l := &lights{}
	clock := &recordingClock{}
	pub := &recordingPublisher{}

	seq := New(l.open, s, WithClock(clock), WithPublisher(pub), WithLogger(quietLogger()))
	require.NoError(t, seq.Run(context.Background()))

	phases := Plan(s)
	assert.Equal(t, len(phases), l.opens)
	assert.Equal(t, len(phases), l.closes)
	assert.Equal(t, Summarize(phases, s.Flash).Sleep, clock.total())
	assert.Equal(t, api.Off, l.last())
	require.Len(t, l.brightness, len(phases))
	for _, b := range l.brightness {
		assert.Equal(t, uint8(100), b)
	}
	assert.Equal(t, events.ResultCompleted, pub.session().Result)
}

func TestRun_PhaseColorsAndFlash(t *testing.T) {
	s := DefaultSettings()
	s.Sets, s.Reps, s.Cue = 1, 2, 0
	s.Flash.Count = 1
	l := &lights{}

	seq := New(l.open, s, WithClock(&recordingClock{}), WithLogger(quietLogger()))
	require.NoError(t, seq.Run(context.Background()))

	white, off := s.Flash.Colors[0], s.Flash.Colors[1]
	assert.Equal(t, []color.RGBA{
		s.Palette.Work, white, off, api.Off,
		s.Palette.Rest, white, off, api.Off,
		s.Palette.Work, white, off, api.Off,
	}, l.colors)
}

func TestRun_DarkBetweenPhases(t *testing.T) {
	s := DefaultSettings()
	s.Sets, s.Reps = 1, 1
	s.Flash.Enabled = false
	l := &lights{}

	seq := New(l.open, s, WithClock(&recordingClock{}), WithLogger(quietLogger()))
	require.NoError(t, seq.Run(context.Background()))

	assert.Equal(t, []color.RGBA{
		s.Palette.Cue, api.Off,
		s.Palette.Work, api.Off,
		s.Palette.Cue, api.Off,
	}, l.colors)
}

func TestRun_StatusLines(t *testing.T) {
	s := DefaultSettings()
	s.Sets, s.Reps = 2, 2
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	seq := New((&lights{}).open, s, WithClock(&recordingClock{}), WithLogger(logger))
	require.NoError(t, seq.Run(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "Starting pomodoro timer.")
	assert.Contains(t, out, "Set: 1, Rep: 1, Status: Work (25 mins)")
	assert.Contains(t, out, "Set: 1, Rep: 1, Status: Rest (5 mins)")
	assert.Contains(t, out, "Set: 1, Rep: 2, Status: Break (30 mins)")
	assert.Contains(t, out, "Set: 2, Rep: 2, Status: Work (25 mins)")
	assert.Contains(t, out, "Pomodoro timer ended.")
}

func TestRun_Interrupted(t *testing.T) {
	s := DefaultSettings()
	l := &lights{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Sleep 1 is the start cue, sleep 2 the first work phase.
	clock := &recordingClock{cancelAt: 2, cancel: cancel}
	pub := &recordingPublisher{}

	seq := New(l.open, s, WithClock(clock), WithPublisher(pub), WithLogger(quietLogger()))
	err := seq.Run(ctx)

	require.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, 2, l.opens)
	assert.Equal(t, 2, l.closes)
	assert.Equal(t, api.Off, l.last())
	assert.Equal(t, events.ResultInterrupted, pub.session().Result)
}

func TestRun_InterruptedDuringFlash(t *testing.T) {
	s := DefaultSettings()
	s.Cue = 0
	l := &lights{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &recordingClock{cancelAt: 3, cancel: cancel}

	seq := New(l.open, s, WithClock(clock), WithLogger(quietLogger()))
	require.ErrorIs(t, seq.Run(ctx), ErrInterrupted)
	assert.Equal(t, 1, l.opens)
	assert.Equal(t, 1, l.closes)
	assert.Equal(t, api.Off, l.last())
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	l := &lights{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq := New(l.open, DefaultSettings(), WithClock(&recordingClock{}), WithLogger(quietLogger()))
	require.ErrorIs(t, seq.Run(ctx), ErrInterrupted)
	assert.Equal(t, 1, l.closes)
	assert.Equal(t, []color.RGBA{api.Off}, l.colors)
}

func TestRun_DeviceMissing(t *testing.T) {
	l := &lights{failOpenAt: 3}
	pub := &recordingPublisher{}
	var buf bytes.Buffer

	seq := New(l.open, DefaultSettings(),
		WithClock(&recordingClock{}),
		WithPublisher(pub),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithDeviceName("blink1"),
	)
	err := seq.Run(context.Background())

	require.ErrorIs(t, err, ErrDevice)
	require.ErrorIs(t, err, api.ErrDeviceNotFound)
	assert.Equal(t, 3, l.opens)
	assert.Equal(t, 2, l.closes)
	assert.Contains(t, buf.String(), "Make sure the blink1 device is plugged in.")
	assert.Contains(t, buf.String(), "Exiting.")
	assert.Equal(t, events.ResultDeviceError, pub.session().Result)
}

func TestRun_FadeFailureReleasesDevice(t *testing.T) {
	l := &lights{failFadeAt: 1}

	seq := New(l.open, DefaultSettings(), WithClock(&recordingClock{}), WithLogger(quietLogger()))
	require.ErrorIs(t, seq.Run(context.Background()), ErrDevice)
	assert.Equal(t, 1, l.opens)
	assert.Equal(t, 1, l.closes)
}

func TestRun_Brightness(t *testing.T) {
	s := DefaultSettings()
	s.Sets, s.Reps, s.Cue = 1, 1, 0
	s.Brightness = 40
	l := &lights{}

	seq := New(l.open, s, WithClock(&recordingClock{}), WithLogger(quietLogger()))
	require.NoError(t, seq.Run(context.Background()))
	assert.Equal(t, []uint8{40}, l.brightness)
}

func TestRun_InvalidSettings(t *testing.T) {
	s := DefaultSettings()
	s.Work = -time.Minute
	l := &lights{}

	err := New(l.open, s, WithLogger(quietLogger())).Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Zero(t, l.opens)
}

// updatingClock applies new settings after the first sleep.
type updatingClock struct {
	recordingClock
	seq    *Sequencer
	update Settings
}

func (c *updatingClock) Sleep(ctx context.Context, d time.Duration) error {
	err := c.recordingClock.Sleep(ctx, d)
	if len(c.slept) == 1 {
		_ = c.seq.Update(c.update)
	}
	return err
}

func TestUpdate_AppliesToNextPhase(t *testing.T) {
	s := DefaultSettings()
	s.Sets, s.Reps, s.Cue = 1, 2, 0
	s.Flash.Enabled = false

	updated := s
	updated.Rest = 2 * time.Minute
	updated.Work = 50 * time.Minute
	updated.Reps = 10

	clock := &updatingClock{update: updated}
	seq := New((&lights{}).open, s, WithClock(clock), WithLogger(quietLogger()))
	clock.seq = seq

	require.NoError(t, seq.Run(context.Background()))
	assert.Equal(t, []time.Duration{25 * time.Minute, 2 * time.Minute, 50 * time.Minute}, clock.slept)
}

func TestUpdate_RestoresFullBrightness(t *testing.T) {
	s := DefaultSettings()
	s.Sets, s.Reps, s.Cue = 1, 2, 0
	s.Flash.Enabled = false
	s.Brightness = 40

	updated := s
	updated.Brightness = 100

	l := &lights{}
	clock := &updatingClock{update: updated}
	seq := New(l.open, s, WithClock(clock), WithLogger(quietLogger()))
	clock.seq = seq

	require.NoError(t, seq.Run(context.Background()))
	assert.Equal(t, []uint8{40, 100, 100}, l.brightness)
}

func TestUpdate_RejectsInvalid(t *testing.T) {
	seq := New((&lights{}).open, DefaultSettings(), WithLogger(quietLogger()))
	bad := DefaultSettings()
	bad.Sets = 0
	assert.ErrorIs(t, seq.Update(bad), ErrInvalidSettings)
	assert.Equal(t, DefaultSets, seq.Settings().Sets)
}

func TestRun_ReleasesOncePerPhase(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := DefaultSettings()
		s.Sets = rapid.IntRange(1, 4).Draw(t, "sets")
		s.Reps = rapid.IntRange(1, 5).Draw(t, "reps")
		s.Cue = time.Duration(rapid.IntRange(0, 3).Draw(t, "cue")) * time.Second
		s.Flash.Enabled = rapid.Bool().Draw(t, "flash")
		phases := Plan(s)

		l := &lights{}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		clock := &recordingClock{cancel: cancel}
		if rapid.Bool().Draw(t, "interrupt") {
			clock.cancelAt = rapid.IntRange(1, len(phases)).Draw(t, "cancelAt")
		}

		seq := New(l.open, s, WithClock(clock), WithLogger(quietLogger()))
		err := seq.Run(ctx)

		assert.Equal(t, l.opens, l.closes)
		if clock.cancelAt == 0 {
			assert.NoError(t, err)
			assert.Equal(t, len(phases), l.opens)
			assert.Equal(t, Summarize(phases, s.Flash).Sleep, clock.total())
		} else {
			assert.ErrorIs(t, err, ErrInterrupted)
			assert.Equal(t, api.Off, l.last())
		}
	})
}

func TestRealClock(t *testing.T) {
	var c realClock
	require.NoError(t, c.Sleep(context.Background(), time.Millisecond))
	require.NoError(t, c.Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Hour), context.Canceled)
}

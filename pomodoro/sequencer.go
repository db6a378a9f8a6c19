// Package pomodoro runs a pomodoro session on an LED light: work phases
// separated by rests, sets separated by breaks, each shown as a color and
// closed by a short flash.
package pomodoro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/events"
	"github.com/realcatgirly/pomolight/logging"
)

var (
	// ErrInterrupted is returned when the run was cancelled. The light has been turned off.
	ErrInterrupted = errors.New("pomodoro interrupted")
	// ErrDevice wraps failures to open or command the light.
	ErrDevice = errors.New("device error")
)

// Publisher receives phase events. *events.Bus satisfies it.
type Publisher interface {
	Publish(ev events.Event)
}

type Option func(*Sequencer)

func WithClock(clock Clock) Option {
	return func(s *Sequencer) { s.clock = clock }
}

func WithPublisher(p Publisher) Option {
	return func(s *Sequencer) { s.publisher = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) { s.logger = logger }
}

// WithDeviceName sets the name used in the plug-in hint when the light is unreachable.
func WithDeviceName(name string) Option {
	return func(s *Sequencer) { s.deviceName = name }
}

// Sequencer drives one light through a session. It opens a fresh handle
// for every phase and turns the light off and closes it before the next
// phase starts.
type Sequencer struct {
	open       func() (api.Device, error)
	deviceName string
	clock      Clock
	publisher  Publisher
	logger     *slog.Logger
	settings   atomic.Pointer[Settings]
}

func New(open func() (api.Device, error), settings Settings, opts ...Option) *Sequencer {
	s := &Sequencer{
		open:       open,
		deviceName: "LED",
		clock:      realClock{},
		logger:     logging.GetLogger("sequencer"),
	}
	s.settings.Store(&settings)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the settings the next phase will use.
func (s *Sequencer) Settings() Settings {
	return *s.settings.Load()
}

// Update swaps durations, colors, fade and flash for phases that have not
// started yet. Sets and reps of a running session do not change.
func (s *Sequencer) Update(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings.Store(&settings)
	return nil
}

// Run plays the whole session. It returns nil when every phase completed,
// ErrInterrupted when ctx ended, or an ErrDevice error.
func (s *Sequencer) Run(ctx context.Context) error {
	start := s.Settings()
	if err := start.Validate(); err != nil {
		return err
	}

	s.logger.Info("Starting pomodoro timer.")
	for _, planned := range Plan(start) {
		current := s.Settings()
		p := current.phase(planned.Kind, planned.Set, planned.Rep)
		if err := s.runPhase(ctx, p, current); err != nil {
			s.finish(err)
			return err
		}
	}
	s.logger.Info("Pomodoro timer ended.")
	s.finish(nil)
	return nil
}

func (s *Sequencer) runPhase(ctx context.Context, p Phase, settings Settings) error {
	switch p.Kind {
	case KindWork, KindRest, KindBreak:
		s.logger.Info(fmt.Sprintf("Set: %d, Rep: %d, Status: %s", p.Set+1, p.Rep+1, p.Status()))
	default:
		s.logger.Debug("cue", "kind", p.Kind, "duration", p.Duration)
	}

	dev, err := s.open()
	if err != nil {
		return s.deviceError(err)
	}
	defer func() {
		if closeErr := dev.Close(); closeErr != nil {
			s.logger.Warn("Failed to release device", "error", closeErr)
		}
	}()

	if ctx.Err() != nil {
		return s.interrupt(dev, settings)
	}
	// Lights may keep brightness across handles.
	if err := dev.SetBrightness(settings.Brightness); err != nil {
		return s.deviceError(err)
	}
	if err := dev.FadeToColor(p.Color, settings.Fade); err != nil {
		return s.deviceError(err)
	}
	s.publish(events.PhaseStartedEvent{
		Kind:      string(p.Kind),
		Set:       p.Set,
		Rep:       p.Rep,
		Duration:  p.Duration,
		Color:     api.FormatColor(p.Color),
		Timestamp: time.Now(),
	})

	if err := s.clock.Sleep(ctx, p.Duration); err != nil {
		return s.interrupt(dev, settings)
	}
	if p.Flash {
		if err := s.flash(ctx, dev, settings.Flash); err != nil {
			if ctx.Err() != nil {
				return s.interrupt(dev, settings)
			}
			return s.deviceError(err)
		}
	}
	if err := dev.FadeToColor(api.Off, settings.Fade); err != nil {
		return s.deviceError(err)
	}

	s.publish(events.PhaseFinishedEvent{Kind: string(p.Kind), Set: p.Set, Rep: p.Rep, Timestamp: time.Now()})
	return nil
}

// flash alternates the two flash colors Count times without fading.
func (s *Sequencer) flash(ctx context.Context, dev api.Device, f Flash) error {
	for i := 0; i < f.Count; i++ {
		for _, c := range f.Colors {
			if err := dev.FadeToColor(c, 0); err != nil {
				return err
			}
			if err := s.clock.Sleep(ctx, f.Interval); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Sequencer) interrupt(dev api.Device, settings Settings) error {
	s.logger.Info("Exiting. Interrupted.")
	if err := dev.FadeToColor(api.Off, settings.Fade); err != nil {
		s.logger.Warn("Failed to turn device off", "error", err)
	}
	return ErrInterrupted
}

func (s *Sequencer) deviceError(err error) error {
	s.logger.Error(fmt.Sprintf("Make sure the %s device is plugged in.", s.deviceName), "error", err)
	s.logger.Info("Exiting.")
	return fmt.Errorf("%w: %w", ErrDevice, err)
}

func (s *Sequencer) finish(err error) {
	result := events.ResultCompleted
	switch {
	case errors.Is(err, ErrInterrupted):
		result = events.ResultInterrupted
	case err != nil:
		result = events.ResultDeviceError
	}
	s.publish(events.SessionFinishedEvent{Result: result, Timestamp: time.Now()})
}

func (s *Sequencer) publish(ev events.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}

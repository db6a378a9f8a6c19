package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/config"
	"github.com/realcatgirly/pomolight/device"
	"github.com/realcatgirly/pomolight/events"
	"github.com/realcatgirly/pomolight/logging"
	"github.com/realcatgirly/pomolight/metrics"
	"github.com/realcatgirly/pomolight/pomodoro"
	"github.com/spf13/cobra"
)

// Run plays a full pomodoro session on the configured light. Interrupts
// turn the light off and surface as pomodoro.ErrInterrupted.
func Run(c *cobra.Command, opts *config.Options) error {
	logger := logging.GetLogger("main")

	settings, err := opts.Settings()
	if err != nil {
		return err
	}
	if _, ok := device.Devices[opts.Device]; !ok {
		return fmt.Errorf("%w %q (available: %s)", api.ErrUnknownDevice, opts.Device, strings.Join(device.Names(), ", "))
	}
	if opts.Watch && opts.Config == "" {
		return errors.New("--watch needs --config")
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.New()
	seq := pomodoro.New(device.Opener(opts.Device), settings,
		pomodoro.WithPublisher(bus),
		pomodoro.WithDeviceName(opts.Device),
	)

	if opts.MetricsAddr != "" {
		collector := metrics.NewCollector()
		collector.Subscribe(bus)
		defer collector.Unsubscribe()
		go func() {
			if err := collector.Serve(ctx, opts.MetricsAddr, logging.GetLogger("metrics")); err != nil {
				logger.Warn("Metrics server failed", "error", err)
			}
		}()
	}

	if opts.Watch {
		watcher := config.NewWatcher(opts.Config, settingsLoader(c, *opts), logging.GetLogger("config"),
			config.WithErrorHandler[pomodoro.Settings](func(err error) {
				logger.Warn("Config reload failed, keeping current settings", "error", err)
			}),
		)
		watcher.OnReload(func(s pomodoro.Settings) {
			if err := seq.Update(s); err != nil {
				logger.Warn("Ignoring reloaded settings", "error", err)
			}
		})
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer watcher.Stop()
	}

	return seq.Run(ctx)
}

// settingsLoader rebuilds settings from the defaults and the config file.
// Flags given on the command line still win.
func settingsLoader(c *cobra.Command, start config.Options) func(path string) (pomodoro.Settings, error) {
	return func(path string) (pomodoro.Settings, error) {
		o, err := config.Reload(path, start, c)
		if err != nil {
			return pomodoro.Settings{}, err
		}
		return o.Settings()
	}
}

// Quiet reports whether err was already logged by the sequencer.
func Quiet(err error) bool {
	return errors.Is(err, pomodoro.ErrInterrupted) || errors.Is(err, pomodoro.ErrDevice) || errors.Is(err, context.Canceled)
}

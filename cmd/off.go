package cmd

import (
	"fmt"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/config"
	"github.com/realcatgirly/pomolight/device"
	"github.com/realcatgirly/pomolight/logging"
	"github.com/realcatgirly/pomolight/pomodoro"
	"github.com/spf13/cobra"
)

// CreateOffCmd creates the off command.
func CreateOffCmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "off",
		Short: "Turn the light off",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return turnOff(device.Opener(opts.Device), opts.Device)
		},
	}
}

func turnOff(open func() (api.Device, error), name string) error {
	logger := logging.GetLogger("device")

	d, err := open()
	if err != nil {
		logger.Error(fmt.Sprintf("Make sure the %s device is plugged in.", name), "error", err)
		return fmt.Errorf("%w: %w", pomodoro.ErrDevice, err)
	}
	defer d.Close()

	if err := d.FadeToColor(api.Off, 0); err != nil {
		logger.Error(fmt.Sprintf("Make sure the %s device is plugged in.", name), "error", err)
		return fmt.Errorf("%w: turn %s off: %w", pomodoro.ErrDevice, name, err)
	}
	logger.Info("Light turned off", "device", name)
	return nil
}

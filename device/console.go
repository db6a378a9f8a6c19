package device

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/logging"
)

// This is a console device that logs all received commands for dry runs and testing

func init() {
	Devices["console"] = newConsole
}

type Console struct {
	logger     *slog.Logger
	brightness uint8
}

func newConsole() (api.Device, error) {
	return NewConsole(logging.GetLogger("device")), nil
}

func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger, brightness: 100}
}

// GetVersion implements api.Device.
func (c *Console) GetVersion() (string, error) {
	return "1.0.0", nil
}

// SetBrightness implements api.Device.
func (c *Console) SetBrightness(brightness uint8) error {
	if brightness > 100 {
		return fmt.Errorf("%w: %d", api.ErrBrightnessRange, brightness)
	}
	c.brightness = brightness
	c.logger.Info("brightness", "value", brightness)
	return nil
}

// FadeToColor implements api.Device.
func (c *Console) FadeToColor(col color.RGBA, fade time.Duration) error {
	c.logger.Info("color", "rgb", api.FormatColor(api.Scale(col, c.brightness)), "fade", fade)
	return nil
}

// Close implements api.Device.
func (c *Console) Close() error {
	return nil
}

package device

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/google/gousb"
	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/logging"
)

// The ThingM blink(1), driven with HID feature reports sent as libusb control transfers.
// The firmware does the fading.

const (
	blink1VendorID  gousb.ID = 0x27B8
	blink1ProductID gousb.ID = 0x01ED

	blink1ReportID  = 0x01
	blink1ReportLen = 9

	hidSetReport   = 0x09
	hidGetReport   = 0x01
	hidReqTypeOut  = 0x21 // host to device, class, interface
	hidReqTypeIn   = 0xA1 // device to host, class, interface
	hidFeatureType = 0x03
)

func init() {
	Devices["blink1"] = newBlink1
}

// controller is the part of *gousb.Device the report exchange needs.
type controller interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	Close() error
}

type Blink1 struct {
	ctx        *gousb.Context
	dev        controller
	release    func()
	brightness uint8
	mu         sync.Mutex
}

func newBlink1() (api.Device, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(blink1VendorID, blink1ProductID)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open blink1: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("blink1: %w", api.ErrDeviceNotFound)
	}
	if err := dev.SetAutoDetach(true); err != nil {
		logging.GetLogger("device").Debug("blink1 auto detach unavailable", "error", err)
	}
	// Class requests go to interface 0, which usbhid holds until we claim it.
	_, release, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("claim blink1 interface: %w", err)
	}
	return &Blink1{ctx: ctx, dev: dev, release: release, brightness: 100}, nil
}

// fadeReport builds the 'c' (fade to RGB) report. Fade time is sent in 10ms steps.
func fadeReport(c color.RGBA, fade time.Duration) []byte {
	steps := fade / (10 * time.Millisecond)
	if steps < 0 {
		steps = 0
	}
	if steps > 0xFFFF {
		steps = 0xFFFF
	}
	return []byte{blink1ReportID, 'c', c.R, c.G, c.B, byte(steps >> 8), byte(steps), 0, 0}
}

func (b *Blink1) sendReport(report []byte) error {
	n, err := b.dev.Control(hidReqTypeOut, hidSetReport, hidFeatureType<<8|blink1ReportID, 0, report)
	if err != nil {
		return fmt.Errorf("blink1 set report: %w", err)
	}
	if n != len(report) {
		return fmt.Errorf("blink1 set report: short write %d/%d", n, len(report))
	}
	return nil
}

func (b *Blink1) getReport() ([]byte, error) {
	buf := make([]byte, blink1ReportLen)
	if _, err := b.dev.Control(hidReqTypeIn, hidGetReport, hidFeatureType<<8|blink1ReportID, 0, buf); err != nil {
		return nil, fmt.Errorf("blink1 get report: %w", err)
	}
	return buf, nil
}

// SetBrightness implements api.Device. Brightness is applied in software.
func (b *Blink1) SetBrightness(brightness uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if brightness > 100 {
		return fmt.Errorf("%w: %d", api.ErrBrightnessRange, brightness)
	}
	b.brightness = brightness
	return nil
}

// FadeToColor implements api.Device.
func (b *Blink1) FadeToColor(c color.RGBA, fade time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sendReport(fadeReport(api.Scale(c, b.brightness), fade))
}

// GetVersion implements api.Device.
func (b *Blink1) GetVersion() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	report := make([]byte, blink1ReportLen)
	report[0] = blink1ReportID
	report[1] = 'v'
	if err := b.sendReport(report); err != nil {
		return "", err
	}
	reply, err := b.getReport()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%c.%c", reply[3], reply[4]), nil
}

// Close implements api.Device. The light keeps its last color.
func (b *Blink1) Close() error {
	if b.release != nil {
		b.release()
	}
	err := b.dev.Close()
	if b.ctx != nil {
		if ctxErr := b.ctx.Close(); err == nil {
			err = ctxErr
		}
	}
	return err
}

package device

import (
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/logging"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// The Adafruit Neotrinkey running the trinkey_busylight_firmware to display colors

const (
	neoTrinkeyVID = "239A"
	neoTrinkeyPID = "80F0"
)

func init() {
	Devices["neotrinkey"] = newNeoTrinkey
}

// atPort is the part of serial.Port the AT exchange needs.
type atPort interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

type NeoTrinkey struct {
	conn   atPort
	settle time.Duration
	mu     sync.Mutex
}

func newNeoTrinkey() (api.Device, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	for _, port := range ports {
		if !strings.EqualFold(port.VID, neoTrinkeyVID) || !strings.EqualFold(port.PID, neoTrinkeyPID) {
			continue
		}
		logging.GetLogger("device").Debug("found neotrinkey", "vid", port.VID, "pid", port.PID, "name", port.Name)
		s, err := serial.Open(port.Name, &serial.Mode{
			BaudRate: 9600,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", port.Name, err)
		}
		if err := s.SetReadTimeout(time.Second / 2); err != nil {
			s.Close()
			return nil, err
		}
		nt, err := newNeoTrinkeyOnPort(s, time.Second/2)
		if err != nil {
			s.Close()
			return nil, err
		}
		return nt, nil
	}
	return nil, fmt.Errorf("neotrinkey: %w", api.ErrDeviceNotFound)
}

// newNeoTrinkeyOnPort wakes the firmware and checks it answers AT.
func newNeoTrinkeyOnPort(conn atPort, settle time.Duration) (*NeoTrinkey, error) {
	nt := &NeoTrinkey{conn: conn, settle: settle}
	if _, err := conn.Write([]byte("\n")); err != nil {
		return nil, err
	}
	if _, err := nt.command("AT"); err != nil {
		return nil, fmt.Errorf("unable to communicate with device: %w", err)
	}
	return nt, nil
}

// command sends one AT line and returns the reply. Replies not starting
// with OK are errors.
func (nt *NeoTrinkey) command(format string, args ...any) (string, error) {
	if err := nt.conn.ResetInputBuffer(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintf(nt.conn, format+"\n", args...); err != nil {
		return "", err
	}
	time.Sleep(nt.settle)
	buffer := make([]byte, 128)
	n, err := nt.conn.Read(buffer)
	if err != nil {
		return "", err
	}
	response := strings.TrimRight(string(buffer[:n]), "\r\n\x00")
	if strings.HasPrefix(response, "+VER: ") {
		return response, nil
	}
	if !strings.HasPrefix(response, "OK") {
		return "", fmt.Errorf("device replied %q", response)
	}
	return response, nil
}

// SetBrightness implements api.Device.
func (nt *NeoTrinkey) SetBrightness(brightness uint8) error {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	if brightness > 100 {
		return fmt.Errorf("%w: %d", api.ErrBrightnessRange, brightness)
	}
	if _, err := nt.conn.Write([]byte("\n")); err != nil {
		return err
	}
	_, err := nt.command("AT+B=%d", brightness)
	return err
}

// FadeToColor implements api.Device. The firmware has no fade, the color is set at once.
func (nt *NeoTrinkey) FadeToColor(c color.RGBA, _ time.Duration) error {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	_, err := nt.command("AT+C=%d,%d,%d", c.R, c.G, c.B)
	return err
}

// GetVersion implements api.Device.
func (nt *NeoTrinkey) GetVersion() (string, error) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	response, err := nt.command("AT+V")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(response, "+VER: "), nil
}

// Close implements api.Device.
func (nt *NeoTrinkey) Close() error {
	return nt.conn.Close()
}

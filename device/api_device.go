package device

import (
	"fmt"
	"sort"

	"github.com/realcatgirly/pomolight/api"
)

var (
	Devices map[string]func() (api.Device, error)
)

func init() {
	Devices = make(map[string]func() (api.Device, error))
}

// Open looks up name in Devices and opens it.
func Open(name string) (api.Device, error) {
	newDevice, ok := Devices[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", api.ErrUnknownDevice, name)
	}
	return newDevice()
}

// Opener returns a func that opens name on every call, for per-phase handles.
func Opener(name string) func() (api.Device, error) {
	return func() (api.Device, error) {
		return Open(name)
	}
}

func Names() []string {
	names := make([]string, 0, len(Devices))
	for name := range Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package device

import (
	"fmt"
	"strings"

	"github.com/google/gousb"
	"go.bug.st/serial/enumerator"
)

// Info describes an attached light, or a serial port that could host one.
type Info struct {
	Driver  string `json:"driver" yaml:"driver"`
	Path    string `json:"path" yaml:"path"`
	VID     string `json:"vid" yaml:"vid"`
	PID     string `json:"pid" yaml:"pid"`
	Product string `json:"product,omitempty" yaml:"product,omitempty"`
}

// List reports attached blink(1) lights and USB serial ports. A NeoTrinkey
// port is tagged with its driver; other ports are listed with an empty driver.
func List() ([]Info, error) {
	infos, err := listBlink1()
	if err != nil {
		return nil, err
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		info := Info{Path: port.Name, VID: port.VID, PID: port.PID, Product: port.Product}
		if strings.EqualFold(port.VID, neoTrinkeyVID) && strings.EqualFold(port.PID, neoTrinkeyPID) {
			info.Driver = "neotrinkey"
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func listBlink1() ([]Info, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var infos []Info
	// Matching nothing keeps OpenDevices from opening any handle.
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor == blink1VendorID && desc.Product == blink1ProductID {
			infos = append(infos, Info{
				Driver: "blink1",
				Path:   fmt.Sprintf("usb:%d/%d", desc.Bus, desc.Address),
				VID:    desc.Vendor.String(),
				PID:    desc.Product.String(),
			})
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("list usb devices: %w", err)
	}
	return infos, nil
}

package api

import (
	"errors"
	"image/color"
	"time"
)

var (
	ErrDeviceNotFound  = errors.New("unable to find device")
	ErrUnknownDevice   = errors.New("unknown device")
	ErrBrightnessRange = errors.New("brightness out of range")
)

// Device is a single opened LED light. Callers own the handle and must Close it.
type Device interface {
	SetBrightness(brightness uint8) error
	// FadeToColor moves the light to color over fade. Devices without
	// firmware fading switch immediately.
	FadeToColor(color color.RGBA, fade time.Duration) error
	GetVersion() (string, error)
	Close() error
}

// Scale applies a 0-100 brightness percentage to c.
func Scale(c color.RGBA, brightness uint8) color.RGBA {
	if brightness >= 100 {
		return c
	}
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(brightness) / 100),
		G: uint8(uint16(c.G) * uint16(brightness) / 100),
		B: uint8(uint16(c.B) * uint16(brightness) / 100),
		A: c.A,
	}
}

package api

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

var Off = color.RGBA{R: 0, G: 0, B: 0}

var namedColors = map[string]color.RGBA{
	"off":     Off,
	"black":   Off,
	"white":   {R: 255, G: 255, B: 255},
	"red":     {R: 255, G: 0, B: 0},
	"green":   {R: 0, G: 255, B: 0},
	"blue":    {R: 0, G: 0, B: 255},
	"yellow":  {R: 255, G: 255, B: 0},
	"orange":  {R: 255, G: 165, B: 0},
	"purple":  {R: 128, G: 0, B: 128},
	"cyan":    {R: 0, G: 255, B: 255},
	"magenta": {R: 255, G: 0, B: 255},
	"pink":    {R: 255, G: 192, B: 203},
}

// ParseColor accepts a color name (see ColorNames) or a #rrggbb hex triple.
func ParseColor(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q (want #rrggbb or one of %s)", s, strings.Join(ColorNames(), ", "))
}

// ColorNames lists the accepted color names in order.
func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for name := range namedColors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatColor renders c as #rrggbb.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

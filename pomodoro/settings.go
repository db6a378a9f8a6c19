package pomodoro

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/realcatgirly/pomolight/api"
)

// Defaults for a classic pomodoro day.
const (
	DefaultReps  = 4
	DefaultSets  = 2
	DefaultWork  = 25 * time.Minute
	DefaultRest  = 5 * time.Minute
	DefaultBreak = 30 * time.Minute

	DefaultCue           = 5 * time.Second
	DefaultFade          = time.Second
	DefaultFlashCount    = 3
	DefaultFlashInterval = 250 * time.Millisecond

	// MaxCount bounds sets, reps and flash count.
	MaxCount = 1000
)

var ErrInvalidSettings = errors.New("invalid settings")

// Palette holds the color shown for each phase kind.
type Palette struct {
	Work  color.RGBA
	Rest  color.RGBA
	Break color.RGBA
	Cue   color.RGBA
}

// Flash is the transition cue played after each work, rest and break phase.
type Flash struct {
	Enabled  bool
	Colors   [2]color.RGBA
	Count    int
	Interval time.Duration
}

// Duration is the time one flash takes.
func (f Flash) Duration() time.Duration {
	if !f.Enabled {
		return 0
	}
	return time.Duration(f.Count*len(f.Colors)) * f.Interval
}

type Settings struct {
	Sets  int
	Reps  int
	Work  time.Duration
	Rest  time.Duration
	Break time.Duration

	// Cue is how long the start and finish cues show. Zero disables them.
	Cue        time.Duration
	Fade       time.Duration
	Brightness uint8

	Palette Palette
	Flash   Flash
}

func DefaultSettings() Settings {
	return Settings{
		Sets:       DefaultSets,
		Reps:       DefaultReps,
		Work:       DefaultWork,
		Rest:       DefaultRest,
		Break:      DefaultBreak,
		Cue:        DefaultCue,
		Fade:       DefaultFade,
		Brightness: 100,
		Palette: Palette{
			Work:  color.RGBA{R: 255},
			Rest:  color.RGBA{R: 255, G: 255},
			Break: color.RGBA{G: 255},
			Cue:   color.RGBA{B: 255},
		},
		Flash: Flash{
			Enabled:  true,
			Colors:   [2]color.RGBA{{R: 255, G: 255, B: 255}, api.Off},
			Count:    DefaultFlashCount,
			Interval: DefaultFlashInterval,
		},
	}
}

func (s Settings) Validate() error {
	if s.Sets < 1 || s.Sets > MaxCount {
		return fmt.Errorf("%w: sets must be 1-%d, got %d", ErrInvalidSettings, MaxCount, s.Sets)
	}
	if s.Reps < 1 || s.Reps > MaxCount {
		return fmt.Errorf("%w: reps must be 1-%d, got %d", ErrInvalidSettings, MaxCount, s.Reps)
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"work", s.Work},
		{"rest", s.Rest},
		{"break", s.Break},
		{"cue", s.Cue},
		{"fade", s.Fade},
		{"flash interval", s.Flash.Interval},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("%w: %s duration is negative (%s)", ErrInvalidSettings, d.name, d.d)
		}
	}
	if s.Flash.Count < 0 || s.Flash.Count > MaxCount {
		return fmt.Errorf("%w: flash count must be 0-%d, got %d", ErrInvalidSettings, MaxCount, s.Flash.Count)
	}
	if s.Brightness > 100 {
		return fmt.Errorf("%w: brightness must be 0-100, got %d", ErrInvalidSettings, s.Brightness)
	}
	return nil
}

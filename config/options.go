package config

import (
	"fmt"
	"image/color"
	"time"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/pomodoro"
	"github.com/spf13/pflag"
)

// Options is the flat CLI surface. Each field maps to the flag named after
// it ("FlashCount" -> --flash-count), a toml key and a POMOLIGHT_ env var.
type Options struct {
	Config string

	Device     string        `toml:"device.name" env:"DEVICE"`
	Brightness int           `toml:"device.brightness" env:"DEVICE_BRIGHTNESS"`
	Fade       time.Duration `toml:"device.fade" env:"DEVICE_FADE"`

	Sets  int           `toml:"timer.sets" env:"TIMER_SETS"`
	Reps  int           `toml:"timer.reps" env:"TIMER_REPS"`
	Work  time.Duration `toml:"timer.work" env:"TIMER_WORK"`
	Rest  time.Duration `toml:"timer.rest" env:"TIMER_REST"`
	Break time.Duration `toml:"timer.break" env:"TIMER_BREAK"`
	Cue   time.Duration `toml:"timer.cue" env:"TIMER_CUE"`

	WorkColor  string `toml:"colors.work" env:"COLOR_WORK"`
	RestColor  string `toml:"colors.rest" env:"COLOR_REST"`
	BreakColor string `toml:"colors.break" env:"COLOR_BREAK"`
	CueColor   string `toml:"colors.cue" env:"COLOR_CUE"`

	Flash         bool          `toml:"flash.enabled" env:"FLASH_ENABLED"`
	FlashColors   []string      `toml:"flash.colors" env:"FLASH_COLORS"`
	FlashCount    int           `toml:"flash.count" env:"FLASH_COUNT"`
	FlashInterval time.Duration `toml:"flash.interval" env:"FLASH_INTERVAL"`

	Watch       bool
	MetricsAddr string `toml:"metrics.addr" env:"METRICS_ADDR"`

	LoggingLevel   string            `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string            `toml:"logging.format" env:"LOGGING_FORMAT"`
	// LoggingModules overrides the level per module, e.g. sequencer=debug.
	LoggingModules map[string]string `toml:"logging.modules" env:"LOGGING_MODULES"`
}

// DefaultOptions matches pomodoro.DefaultSettings on a blink(1).
func DefaultOptions() Options {
	return Options{
		Device:        "blink1",
		Brightness:    100,
		Fade:          pomodoro.DefaultFade,
		Sets:          pomodoro.DefaultSets,
		Reps:          pomodoro.DefaultReps,
		Work:          pomodoro.DefaultWork,
		Rest:          pomodoro.DefaultRest,
		Break:         pomodoro.DefaultBreak,
		Cue:           pomodoro.DefaultCue,
		WorkColor:     "red",
		RestColor:     "yellow",
		BreakColor:    "green",
		CueColor:      "blue",
		Flash:         true,
		FlashColors:   []string{"white", "off"},
		FlashCount:    pomodoro.DefaultFlashCount,
		FlashInterval: pomodoro.DefaultFlashInterval,
		LoggingLevel:  "info",
		LoggingFormat: "text",
	}
}

// BindFlags registers a flag for every option, defaulting to the current value.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Config, "config", "c", o.Config, "Path to TOML configuration file")

	fs.StringVarP(&o.Device, "device", "d", o.Device, "Light to drive (blink1, neotrinkey, console)")
	fs.IntVar(&o.Brightness, "brightness", o.Brightness, "Brightness in percent (0-100)")
	fs.DurationVar(&o.Fade, "fade", o.Fade, "Fade time for phase colors")

	fs.IntVar(&o.Sets, "sets", o.Sets, "Number of sets")
	fs.IntVar(&o.Reps, "reps", o.Reps, "Work reps per set")
	fs.DurationVar(&o.Work, "work", o.Work, "Work phase length")
	fs.DurationVar(&o.Rest, "rest", o.Rest, "Rest between reps")
	fs.DurationVar(&o.Break, "break", o.Break, "Break between sets")
	fs.DurationVar(&o.Cue, "cue", o.Cue, "Start and finish cue length, 0 disables")

	fs.StringVar(&o.WorkColor, "work-color", o.WorkColor, "Work color (name or #rrggbb)")
	fs.StringVar(&o.RestColor, "rest-color", o.RestColor, "Rest color")
	fs.StringVar(&o.BreakColor, "break-color", o.BreakColor, "Break color")
	fs.StringVar(&o.CueColor, "cue-color", o.CueColor, "Start and finish cue color")

	fs.BoolVar(&o.Flash, "flash", o.Flash, "Flash between phases")
	fs.StringSliceVar(&o.FlashColors, "flash-colors", o.FlashColors, "The two flash colors")
	fs.IntVar(&o.FlashCount, "flash-count", o.FlashCount, "Flash repetitions")
	fs.DurationVar(&o.FlashInterval, "flash-interval", o.FlashInterval, "Time each flash color shows")

	fs.BoolVar(&o.Watch, "watch", o.Watch, "Reload timings and colors when the config file changes")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", o.MetricsAddr, "Serve Prometheus metrics on this address")

	fs.StringVar(&o.LoggingLevel, "logging-level", o.LoggingLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&o.LoggingFormat, "logging-format", o.LoggingFormat, "Log format (text, json)")
	fs.StringToStringVar(&o.LoggingModules, "logging-modules", o.LoggingModules, "Per-module log levels, e.g. sequencer=debug,device=warn")
}

// Settings converts the options into validated sequencer settings.
func (o *Options) Settings() (pomodoro.Settings, error) {
	s := pomodoro.Settings{
		Sets:  o.Sets,
		Reps:  o.Reps,
		Work:  o.Work,
		Rest:  o.Rest,
		Break: o.Break,
		Cue:   o.Cue,
		Fade:  o.Fade,
	}

	if o.Brightness < 0 || o.Brightness > 100 {
		return s, fmt.Errorf("%w: brightness must be 0-100, got %d", pomodoro.ErrInvalidSettings, o.Brightness)
	}
	s.Brightness = uint8(o.Brightness)

	colors := []struct {
		name string
		in   string
		out  *color.RGBA
	}{
		{"work", o.WorkColor, &s.Palette.Work},
		{"rest", o.RestColor, &s.Palette.Rest},
		{"break", o.BreakColor, &s.Palette.Break},
		{"cue", o.CueColor, &s.Palette.Cue},
	}
	for _, c := range colors {
		parsed, err := api.ParseColor(c.in)
		if err != nil {
			return s, fmt.Errorf("%w: %s color: %w", pomodoro.ErrInvalidSettings, c.name, err)
		}
		*c.out = parsed
	}

	if len(o.FlashColors) != 2 {
		return s, fmt.Errorf("%w: flash needs exactly 2 colors, got %d", pomodoro.ErrInvalidSettings, len(o.FlashColors))
	}
	for i, name := range o.FlashColors {
		parsed, err := api.ParseColor(name)
		if err != nil {
			return s, fmt.Errorf("%w: flash color: %w", pomodoro.ErrInvalidSettings, err)
		}
		s.Flash.Colors[i] = parsed
	}
	s.Flash.Enabled = o.Flash
	s.Flash.Count = o.FlashCount
	s.Flash.Interval = o.FlashInterval

	return s, s.Validate()
}

package pomodoro

import (
	"fmt"
	"image/color"
	"time"
)

type Kind string

const (
	KindStart  Kind = "start"
	KindWork   Kind = "work"
	KindRest   Kind = "rest"
	KindBreak  Kind = "break"
	KindFinish Kind = "finish"
)

// Phase is one step of a session. Set and Rep are zero based.
type Phase struct {
	Kind     Kind
	Set      int
	Rep      int
	Duration time.Duration
	Color    color.RGBA
	// Flash plays the transition cue after the phase sleep.
	Flash bool
}

// Status is the human readable phase label, e.g. "Work (25 mins)".
func (p Phase) Status() string {
	var label string
	switch p.Kind {
	case KindWork:
		label = "Work"
	case KindRest:
		label = "Rest"
	case KindBreak:
		label = "Break"
	case KindStart:
		label = "Start"
	case KindFinish:
		label = "Finish"
	}
	return fmt.Sprintf("%s (%s)", label, formatMinutes(p.Duration))
}

func formatMinutes(d time.Duration) string {
	if d%time.Minute == 0 {
		mins := int(d / time.Minute)
		if mins == 1 {
			return "1 min"
		}
		return fmt.Sprintf("%d mins", mins)
	}
	return d.String()
}

// phase builds the phase of kind at set/rep from the current settings.
func (s Settings) phase(kind Kind, set, rep int) Phase {
	p := Phase{Kind: kind, Set: set, Rep: rep}
	switch kind {
	case KindWork:
		p.Duration, p.Color = s.Work, s.Palette.Work
	case KindRest:
		p.Duration, p.Color = s.Rest, s.Palette.Rest
	case KindBreak:
		p.Duration, p.Color = s.Break, s.Palette.Break
	case KindStart, KindFinish:
		p.Duration, p.Color = s.Cue, s.Palette.Cue
	}
	p.Flash = s.Flash.Enabled && kind != KindStart && kind != KindFinish
	return p
}

// Plan lays out every phase of a session in order: an optional start cue,
// then per set the work phases with a rest between reps and a break between
// sets, then an optional finish cue.
func Plan(s Settings) []Phase {
	var phases []Phase
	if s.Cue > 0 {
		phases = append(phases, s.phase(KindStart, 0, 0))
	}
	for set := 0; set < s.Sets; set++ {
		for rep := 0; rep < s.Reps; rep++ {
			phases = append(phases, s.phase(KindWork, set, rep))
			if rep+1 < s.Reps {
				phases = append(phases, s.phase(KindRest, set, rep))
			}
		}
		if set+1 < s.Sets {
			phases = append(phases, s.phase(KindBreak, set, s.Reps-1))
		}
	}
	if s.Cue > 0 && len(phases) > 0 {
		phases = append(phases, s.phase(KindFinish, s.Sets-1, s.Reps-1))
	}
	return phases
}

// Summary counts a plan's phases per kind and adds up the time it sleeps.
type Summary struct {
	Counts map[Kind]int  `json:"counts" yaml:"counts"`
	Sleep  time.Duration `json:"sleep" yaml:"sleep"`
}

func Summarize(phases []Phase, flash Flash) Summary {
	sum := Summary{Counts: make(map[Kind]int)}
	for _, p := range phases {
		sum.Counts[p.Kind]++
		sum.Sleep += p.Duration
		if p.Flash {
			sum.Sleep += flash.Duration()
		}
	}
	return sum
}

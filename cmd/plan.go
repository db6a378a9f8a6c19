package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/realcatgirly/pomolight/api"
	"github.com/realcatgirly/pomolight/config"
	"github.com/realcatgirly/pomolight/pomodoro"
	"github.com/spf13/cobra"
)

type planPhase struct {
	Kind     string `json:"kind" yaml:"kind"`
	Set      int    `json:"set" yaml:"set"`
	Rep      int    `json:"rep" yaml:"rep"`
	Duration string `json:"duration" yaml:"duration"`
	Color    string `json:"color" yaml:"color"`
	Flash    bool   `json:"flash" yaml:"flash"`
}

type planOutput struct {
	Phases []planPhase     `json:"phases" yaml:"phases"`
	Counts map[string]int `json:"counts" yaml:"counts"`
	Total  string         `json:"total" yaml:"total"`
}

// CreatePlanCmd creates the plan command.
func CreatePlanCmd(opts *config.Options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the session schedule without touching the light",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			settings, err := opts.Settings()
			if err != nil {
				return err
			}
			return writePlan(c.OutOrStdout(), format, settings)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml)")
	return cmd
}

func buildPlan(settings pomodoro.Settings) planOutput {
	phases := pomodoro.Plan(settings)
	summary := pomodoro.Summarize(phases, settings.Flash)

	out := planOutput{
		Phases: make([]planPhase, 0, len(phases)),
		Counts: make(map[string]int, len(summary.Counts)),
		Total:  summary.Sleep.String(),
	}
	for _, p := range phases {
		out.Phases = append(out.Phases, planPhase{
			Kind:     string(p.Kind),
			Set:      p.Set + 1,
			Rep:      p.Rep + 1,
			Duration: p.Duration.String(),
			Color:    api.FormatColor(p.Color),
			Flash:    p.Flash,
		})
	}
	for kind, n := range summary.Counts {
		out.Counts[string(kind)] = n
	}
	return out
}

func writePlan(w io.Writer, format string, settings pomodoro.Settings) error {
	out := buildPlan(settings)
	if format != "text" {
		return writeStructured(w, format, out)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSET\tREP\tKIND\tDURATION\tCOLOR\tFLASH")
	for i, p := range out.Phases {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t%t\n", i+1, p.Set, p.Rep, p.Kind, p.Duration, p.Color, p.Flash)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nwork: %d  rest: %d  break: %d  total: %s\n",
		out.Counts[string(pomodoro.KindWork)], out.Counts[string(pomodoro.KindRest)], out.Counts[string(pomodoro.KindBreak)], out.Total)
	return err
}

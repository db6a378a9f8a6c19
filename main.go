package main

import (
	"context"
	"os"

	"github.com/realcatgirly/pomolight/cmd"
	"github.com/realcatgirly/pomolight/config"
	"github.com/realcatgirly/pomolight/logging"
	"github.com/spf13/cobra"
)

func main() {
	opts := config.DefaultOptions()

	root := &cobra.Command{
		Use:   "pomolight",
		Short: "Pomodoro timer that shows work, rest and break on a USB LED light",
		Long: "Runs sets of work reps separated by rests, with a break between sets. " +
			"Each phase is shown as a color on the light and ends with a short flash. " +
			"Ctrl-C turns the light off and exits with status 1.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			if err := config.LoadConfig(&opts, c); err != nil {
				return err
			}
			logging.SetOutput(c.ErrOrStderr())
			logging.Initialize(logging.Config{
				Level:   opts.LoggingLevel,
				Format:  opts.LoggingFormat,
				Modules: opts.LoggingModules,
			})
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Run(c, &opts)
		},
	}
	opts.BindFlags(root.PersistentFlags())

	root.AddCommand(
		cmd.CreatePlanCmd(&opts),
		cmd.CreateDevicesCmd(),
		cmd.CreateOffCmd(&opts),
		cmd.CreateVersionCmd(),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		if !cmd.Quiet(err) {
			logging.GetLogger("main").Error("Exiting.", "error", err)
		}
		os.Exit(1)
	}
}

package cmd

import (
	"github.com/spf13/cobra"
)

func newDemoEventCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo-event",
		Short: "Create a one-hour sample event tomorrow at 14:00 UTC",
		Long: `Create the sample event "Test Event - AI Calendar Agent" in the configured
calendar (see --calendar) and print its link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			a, err := newApp(ctx, cmd, o)
			if err != nil {
				return err
			}
			defer a.Close()

			if res := a.runner.CreateDemoEvent(ctx); !res.OK() {
				printHint(cmd.OutOrStdout(), res, a.cfg.TokenFile)
				return res
			}
			return nil
		},
	}
}

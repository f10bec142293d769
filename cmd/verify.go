package cmd

import (
	"github.com/spf13/cobra"
)

func newVerifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the Google Calendar connection by listing your calendars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			a, err := newApp(ctx, cmd, o)
			if err != nil {
				return err
			}
			defer a.Close()

			if res := a.runner.VerifyConnection(ctx); !res.OK() {
				printHint(cmd.OutOrStdout(), res, a.cfg.TokenFile)
				return res
			}
			return nil
		},
	}
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/calsetup/internal/setup"
)

// version will be set by main
var version = "dev"

// globals holds the flags shared by every subcommand.
var globals = &options{}

// rootCmd represents the base command for the calsetup application
var rootCmd = newRootCmd(globals, func(cmd *cobra.Command, mode demoMode) error {
	return runSetupCommand(cmd, globals, mode)
})

// newRootCmd builds the command tree. Without a subcommand, flags included,
// calsetup runs setup.
func newRootCmd(o *options, run setupFunc) *cobra.Command {
	mode := demoAsk

	cmd := &cobra.Command{
		Use:   "calsetup",
		Short: "Sets up and verifies Google Calendar access for the AI Calendar Agent",
		Long: `calsetup authorizes access to your Google Calendar with OAuth2, caches the
credential in a local token file and checks that the Calendar API works by
listing your calendars and, optionally, creating a sample event.

Before the first run, create an OAuth client ID of type "Desktop application"
in the Google Cloud console and save its JSON as credentials.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, mode)
		},
	}
	cmd.SetVersionTemplate(`{{printf "calsetup version %s\n" .Version}}`)

	o.bind(cmd)
	cmd.Flags().Var(&mode, "demo-event", demoEventUsage)

	cmd.AddCommand(newSetupCmd(run))
	cmd.AddCommand(newVerifyCmd(o))
	cmd.AddCommand(newDemoEventCmd(o))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Failed checks have already been reported on stdout.
		var res setup.Result
		if !errors.As(err, &res) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

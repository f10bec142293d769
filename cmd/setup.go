package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/teemow/calsetup/internal/setup"
)

// demoMode controls whether setup creates the sample event.
type demoMode string

const (
	demoAsk    demoMode = "ask"
	demoAlways demoMode = "always"
	demoNever  demoMode = "never"
)

// String implements pflag.Value.
func (m *demoMode) String() string { return string(*m) }

// Set implements pflag.Value.
func (m *demoMode) Set(v string) error {
	switch demoMode(strings.ToLower(v)) {
	case demoAsk, demoAlways, demoNever:
		*m = demoMode(strings.ToLower(v))
		return nil
	}
	return fmt.Errorf("must be one of ask, always, never")
}

// Type implements pflag.Value.
func (m *demoMode) Type() string { return "mode" }

// checker runs the individual setup checks.
type checker interface {
	VerifyConnection(ctx context.Context) setup.Result
	CreateDemoEvent(ctx context.Context) setup.Result
}

// session is one interactive setup run.
type session struct {
	checks      checker
	out         io.Writer
	in          io.Reader
	interactive bool
	mode        demoMode
	tokenPath   string
}

// setupFunc runs the full setup for a command invocation.
type setupFunc func(cmd *cobra.Command, mode demoMode) error

const demoEventUsage = "Create the sample event: ask, always or never"

func newSetupCmd(run setupFunc) *cobra.Command {
	mode := demoAsk

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Authorize, verify the connection and optionally create a sample event",
		Long: `Run the full setup: obtain a Google Calendar credential (from the token
file, by refreshing it, or through the browser), list your calendars and offer
to create a sample event tomorrow at 14:00 UTC. This is also what calsetup
runs without a subcommand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, mode)
		},
	}

	cmd.Flags().Var(&mode, "demo-event", demoEventUsage)
	return cmd
}

// runSetupCommand wires the application from o and runs the setup session
// on the command's streams.
func runSetupCommand(cmd *cobra.Command, o *options, mode demoMode) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := newApp(ctx, cmd, o)
	if err != nil {
		return err
	}
	defer a.Close()

	in := cmd.InOrStdin()
	return runSetup(ctx, &session{
		checks:      a.runner,
		out:         cmd.OutOrStdout(),
		in:          in,
		interactive: isTerminal(in),
		mode:        mode,
		tokenPath:   a.cfg.TokenFile,
	})
}

// runSetup prints the banner, verifies the connection, handles the sample
// event and always ends with the next steps. It returns the first failed
// result.
func runSetup(ctx context.Context, s *session) error {
	styles := setup.NewStyles(s.out)
	line := func(text string) { _, _ = fmt.Fprintln(s.out, text) }

	line(styles.Title.Render("🚀 Google Calendar Setup for AI Calendar Agent"))
	line(strings.Repeat("=", 50))

	var failed error
	res := s.checks.VerifyConnection(ctx)
	if res.OK() {
		line("")
		line(styles.Success.Render("🎉 Google Calendar integration is ready!"))

		if s.wantDemoEvent() {
			if demo := s.checks.CreateDemoEvent(ctx); !demo.OK() {
				printHint(s.out, demo, s.tokenPath)
				failed = demo
			}
		}
	} else {
		line("")
		line(styles.Failure.Render("❌ Google Calendar setup failed. Please check your credentials."))
		printHint(s.out, res, s.tokenPath)
		failed = res
	}

	line("\n📝 Next steps:")
	line("1. Start the FastAPI backend: python app.py")
	line("2. Start the Streamlit frontend: streamlit run streamlit_app.py")
	line("3. Test the calendar agent in your browser!")

	return failed
}

// wantDemoEvent decides, asking if needed, whether to create the sample
// event. A piped answer counts like a typed one; a non-terminal stdin with
// nothing to read skips the event.
func (s *session) wantDemoEvent() bool {
	switch s.mode {
	case demoAlways:
		return true
	case demoNever:
		return false
	}

	_, _ = fmt.Fprint(s.out, "\nWould you like to create a sample event to test booking? (y/n): ")
	answer, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && answer == "" && !s.interactive {
		_, _ = fmt.Fprintln(s.out, "\nNo answer on stdin, skipping the sample event (use --demo-event=always to create one).")
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

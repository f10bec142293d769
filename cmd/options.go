package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/calsetup/internal/calendar"
	"github.com/teemow/calsetup/internal/config"
	"github.com/teemow/calsetup/internal/google"
	"github.com/teemow/calsetup/internal/instrumentation"
	"github.com/teemow/calsetup/internal/logging"
	"github.com/teemow/calsetup/internal/setup"
)

// options are the flags shared by all subcommands. Flags that are set
// explicitly override the configuration file.
type options struct {
	configPath  string
	credentials string
	token       string
	tokenStore  string
	port        int
	calendarID  string
	noBrowser   bool
	authTimeout time.Duration
	logLevel    string
}

func (o *options) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "Path to a TOML config file (default: search $XDG_CONFIG_HOME/calsetup/config.toml)")
	flags.StringVar(&o.credentials, "credentials", config.DefaultCredentialsFile, "Path to the OAuth client secrets JSON downloaded from the Google Cloud console")
	flags.StringVar(&o.token, "token", config.DefaultTokenFile, "Path of the cached credential file")
	flags.StringVar(&o.tokenStore, "token-store", config.TokenStoreFile, "Credential cache backend: file or sqlite (token path is then the database, default token.db)")
	flags.IntVar(&o.port, "port", config.DefaultCallbackPort, "Local port for the OAuth redirect (0 picks a free port)")
	flags.StringVar(&o.calendarID, "calendar", config.DefaultCalendarID, "Calendar that receives the sample event")
	flags.BoolVar(&o.noBrowser, "no-browser", false, "Do not open a browser, only print the authorization URL")
	flags.DurationVar(&o.authTimeout, "auth-timeout", 0, "Give up waiting for the browser authorization after this long (0 waits until interrupted)")
	flags.StringVar(&o.logLevel, "log-level", config.DefaultLogLevel, "Diagnostic log level on stderr: debug, info, warn or error")
}

// load reads the configuration file and applies explicitly set flags.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	o.apply(cmd, &cfg)
	cfg.ResolveTokenFile()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("credentials") {
		cfg.CredentialsFile = o.credentials
	}
	if flags.Changed("token") {
		cfg.TokenFile = o.token
	}
	if flags.Changed("token-store") {
		cfg.TokenStore = o.tokenStore
	}
	if flags.Changed("port") {
		cfg.CallbackPort = o.port
	}
	if flags.Changed("calendar") {
		cfg.CalendarID = o.calendarID
	}
	if flags.Changed("no-browser") {
		cfg.OpenBrowser = !o.noBrowser
	}
	if flags.Changed("auth-timeout") {
		cfg.AuthTimeout = config.Duration{Duration: o.authTimeout}
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
}

// app is the wired runtime of one command invocation.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	runner   *setup.Runner
	closers  []io.Closer
}

func newApp(ctx context.Context, cmd *cobra.Command, o *options) (*app, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logger.Debug("loaded configuration", logging.Path(cfg.Source))
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	instrConfig.Logger = logging.WithService(logger, "instrumentation")
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	if provider.Enabled() {
		logger.Debug("instrumentation enabled",
			slog.String("metrics_exporter", instrConfig.MetricsExporter),
			slog.String("tracing_exporter", instrConfig.TracingExporter))
	}
	metrics := provider.Metrics()

	authorizer := &google.LocalServerAuthorizer{
		Port:    cfg.CallbackPort,
		Out:     cmd.OutOrStdout(),
		Timeout: cfg.AuthTimeout.Duration,
		Logger:  logger,
	}
	if cfg.OpenBrowser {
		authorizer.OpenBrowser = google.OpenBrowser
	}

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}

	manager := google.NewManager(
		store,
		authorizer,
		cfg.CredentialsFile,
		cfg.Scopes,
		google.WithLogger(logging.WithService(logger, "oauth")),
		google.WithMetrics(metrics),
	)

	runner := &setup.Runner{
		Credentials: manager,
		NewService: func(ctx context.Context, ts oauth2.TokenSource) (setup.CalendarService, error) {
			client, err := calendar.NewClient(ctx, ts, metrics)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		CalendarID:  cfg.CalendarID,
		SecretsPath: cfg.CredentialsFile,
		Out:         cmd.OutOrStdout(),
		Logger:      logging.WithService(logger, instrumentation.ServiceCalendar),
		Metrics:     metrics,
	}

	a := &app{cfg: cfg, logger: logger, provider: provider, runner: runner}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return a, nil
}

// openStore returns the configured credential cache and, when it holds a
// resource, its closer.
func openStore(ctx context.Context, cfg config.Config) (google.CredentialStore, io.Closer, error) {
	if cfg.TokenStore == config.TokenStoreSQLite {
		store, err := google.OpenSQLiteStore(ctx, cfg.TokenFile, google.DefaultAccount)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
	return google.NewFileStore(cfg.TokenFile), nil, nil
}

// Close flushes telemetry. It runs on a fresh context so an interrupt still
// gets its metrics written.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("failed to close credential store", logging.Err(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.provider.Shutdown(ctx); err != nil {
		a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

// printHint prints the follow-up suggestion for a failed result.
func printHint(out io.Writer, res setup.Result, tokenPath string) {
	hint := setup.Hint(res, tokenPath)
	if hint == "" {
		return
	}
	styles := setup.NewStyles(out)
	_, _ = fmt.Fprintln(out, styles.Muted.Render("Hint: "+hint))
}

// commandContext returns a context cancelled on Ctrl-C or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

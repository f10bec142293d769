package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/teemow/calsetup/internal/calendar"
	"github.com/teemow/calsetup/internal/google"
	"github.com/teemow/calsetup/internal/instrumentation"
	"github.com/teemow/calsetup/internal/logging"
)

// Check names recorded in metrics and logs.
const (
	CheckVerify    = "verify"
	CheckDemoEvent = "demo_event"
)

// CredentialProvider obtains the credential for API calls.
type CredentialProvider interface {
	Obtain(ctx context.Context) (*google.Credential, error)
	TokenSource(ctx context.Context, cred *google.Credential) oauth2.TokenSource
}

// CalendarService is the part of the Calendar API the checks use.
type CalendarService interface {
	ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error)
	CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.EventSummary, error)
}

// ServiceFactory builds a CalendarService authenticated by ts.
type ServiceFactory func(ctx context.Context, ts oauth2.TokenSource) (CalendarService, error)

// Runner executes the setup checks and prints their progress.
type Runner struct {
	Credentials CredentialProvider
	NewService  ServiceFactory

	// CalendarID receives the demo event.
	CalendarID string

	// SecretsPath is named in the remediation text when it is missing.
	SecretsPath string

	Out     io.Writer
	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Now     func() time.Time
}

// VerifyConnection lists the user's calendars and prints them.
func (r *Runner) VerifyConnection(ctx context.Context) Result {
	ctx, span := instrumentation.StartSpan(ctx, "setup."+CheckVerify)
	defer span.End()

	logger := logging.WithOperation(r.logger(), CheckVerify)

	svc, res := r.connect(ctx, logger)
	if !res.OK() {
		return r.finish(ctx, logger, CheckVerify, res)
	}

	styles := NewStyles(r.out())
	r.println("Testing Google Calendar connection...")

	calendars, err := svc.ListCalendars(ctx)
	if err != nil {
		logger.Error("failed to list calendars", logging.Err(err))
		r.println(styles.Failure.Render(fmt.Sprintf("❌ Error connecting to Google Calendar: %v", err)))
		return r.finish(ctx, logger, CheckVerify, Failed(err))
	}

	if len(calendars) == 0 {
		r.println("No calendars found.")
		return r.finish(ctx, logger, CheckVerify, Failed(ErrNoCalendars))
	}

	r.println(styles.Success.Render("✅ Successfully connected to Google Calendar!"))
	r.printf("Found %d calendar(s):\n", len(calendars))
	for _, cal := range calendars {
		r.printf("  - %s (%s)\n", cal.Summary, cal.ID)
	}

	logger.Debug("listed calendars", slog.Int("count", len(calendars)))
	return r.finish(ctx, logger, CheckVerify, Succeeded())
}

// CreateDemoEvent inserts the demo event into the configured calendar and
// prints its link.
func (r *Runner) CreateDemoEvent(ctx context.Context) Result {
	ctx, span := instrumentation.StartSpan(ctx, "setup."+CheckDemoEvent)
	defer span.End()

	logger := logging.WithOperation(r.logger(), CheckDemoEvent).With(logging.Calendar(r.CalendarID))

	svc, res := r.connect(ctx, logger)
	if !res.OK() {
		return r.finish(ctx, logger, CheckDemoEvent, res)
	}

	styles := NewStyles(r.out())
	event, err := svc.CreateEvent(ctx, r.CalendarID, calendar.DemoEvent(r.now()))
	if err != nil {
		logger.Error("failed to create demo event", logging.Err(err))
		r.println(styles.Failure.Render(fmt.Sprintf("❌ Error creating sample event: %v", err)))
		return r.finish(ctx, logger, CheckDemoEvent, Failed(err))
	}

	r.println(styles.Success.Render(fmt.Sprintf("✅ Sample event created: %s", event.HTMLLink)))
	logger.Debug("created demo event", slog.String("event_id", event.ID))
	return r.finish(ctx, logger, CheckDemoEvent, Succeeded())
}

// connect obtains a credential and builds the service. A missing client
// secrets file prints the remediation steps.
func (r *Runner) connect(ctx context.Context, logger *slog.Logger) (CalendarService, Result) {
	styles := NewStyles(r.out())

	cred, err := r.Credentials.Obtain(ctx)
	if err != nil {
		if errors.Is(err, google.ErrClientSecretsMissing) {
			logger.Warn("client secrets file missing", logging.Path(r.SecretsPath))
			r.printf("%s", google.SetupInstructions(r.SecretsPath))
			return nil, Failed(err)
		}
		logger.Error("failed to obtain credential", logging.Err(err))
		r.println(styles.Failure.Render(fmt.Sprintf("❌ Error connecting to Google Calendar: %v", err)))
		return nil, Failed(err)
	}

	svc, err := r.NewService(ctx, r.Credentials.TokenSource(ctx, cred))
	if err != nil {
		logger.Error("failed to create calendar service", logging.Err(err))
		r.println(styles.Failure.Render(fmt.Sprintf("❌ Error connecting to Google Calendar: %v", err)))
		return nil, Failed(err)
	}

	return svc, Succeeded()
}

// finish records the check outcome on the metrics and the check's span. A
// failure is logged with the trace id so it can be found in the exporter.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, check string, res Result) Result {
	r.Metrics.RecordSetupCheck(ctx, check, string(res.Kind))

	span := trace.SpanFromContext(ctx)
	if res.OK() {
		instrumentation.SetSpanSuccess(span)
		return res
	}
	instrumentation.SetSpanError(span, res.Err)

	attrs := []any{logging.Kind(string(res.Kind))}
	if id := instrumentation.GetTraceID(ctx); id != "" {
		attrs = append(attrs, logging.TraceID(id))
	}
	logger.Warn("setup check failed", attrs...)
	return res
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) println(line string) {
	_, _ = fmt.Fprintln(r.out(), line)
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out(), format, args...)
}

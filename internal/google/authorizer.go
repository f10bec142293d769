package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/teemow/calsetup/internal/logging"
)

var (
	// ErrAuthorizationDenied is returned when the user declines consent.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrStateMismatch is returned when the redirect carries a state that
	// was not issued by this flow.
	ErrStateMismatch = errors.New("authorization state mismatch")
)

const callbackSuccessPage = "The authentication flow has completed. You may close this window."

// Authorizer produces a token for a client configuration, typically by
// asking the user for consent.
type Authorizer interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// LocalServerAuthorizer runs the installed-app flow: it listens on a local
// port, sends the user to the consent page and exchanges the code delivered
// to the redirect.
type LocalServerAuthorizer struct {
	// Port to listen on; zero picks a free port.
	Port int

	// OpenBrowser opens the consent URL. Nil only prints the URL.
	OpenBrowser func(url string) error

	// Out receives the consent URL for manual use.
	Out io.Writer

	// Timeout bounds the wait for the redirect; zero waits for ctx.
	Timeout time.Duration

	Logger *slog.Logger
}

type callbackResult struct {
	code string
	err  error
}

// Authorize implements Authorizer.
func (a *LocalServerAuthorizer) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	logger := a.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logging.WithOperation(logger, "oauth.authorize")

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("localhost", strconv.Itoa(a.Port)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for authorization redirect on port %d: %w", a.Port, err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	flowConf := *conf
	flowConf.RedirectURL = fmt.Sprintf("http://localhost:%d/", port)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := flowConf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			deliver(results, callbackResult{err: fmt.Errorf("authorization listener failed: %w", err)})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if a.Out != nil {
		_, _ = fmt.Fprintf(a.Out, "Please visit this URL to authorize this application:\n%s\n\n", authURL)
	}
	if a.OpenBrowser != nil {
		if err := a.OpenBrowser(authURL); err != nil {
			logger.Warn("could not open browser, use the printed URL", logging.Err(err))
		}
	}
	logger.Debug("waiting for authorization redirect", slog.Int("port", port))

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for authorization: %w", ctx.Err())
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := flowConf.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return tok, nil
}

// callbackHandler serves the redirect URL. Requests that carry neither a
// code nor an error (favicon probes and the like) are ignored.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code, errCode := q.Get("code"), q.Get("error")
		if r.URL.Path != "/" || (code == "" && errCode == "") {
			http.NotFound(w, r)
			return
		}

		switch {
		case q.Get("state") != state:
			http.Error(w, "Invalid OAuth state.", http.StatusBadRequest)
			deliver(results, callbackResult{err: ErrStateMismatch})
		case errCode == "access_denied":
			http.Error(w, "Authorization was denied.", http.StatusForbidden)
			deliver(results, callbackResult{err: ErrAuthorizationDenied})
		case errCode != "":
			http.Error(w, "Authorization failed: "+errCode, http.StatusBadRequest)
			deliver(results, callbackResult{err: fmt.Errorf("authorization failed: %s", errCode)})
		default:
			_, _ = io.WriteString(w, callbackSuccessPage)
			deliver(results, callbackResult{code: code})
		}
	})
}

// deliver hands a result to Authorize without blocking on repeat callbacks.
func deliver(results chan<- callbackResult, res callbackResult) {
	select {
	case results <- res:
	default:
	}
}

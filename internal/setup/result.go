package setup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/teemow/calsetup/internal/google"
)

// ErrNoCalendars is returned when the account has no calendars at all.
var ErrNoCalendars = errors.New("no calendars found")

// Kind classifies the outcome of a check.
type Kind string

const (
	KindNone        Kind = "none"
	KindSetup       Kind = "setup"
	KindNetwork     Kind = "network"
	KindAuth        Kind = "auth"
	KindRateLimited Kind = "rate_limited"
	KindUnavailable Kind = "unavailable"
	KindMalformed   Kind = "malformed"
	KindEmpty       Kind = "empty"
	KindCanceled    Kind = "canceled"
	KindUnknown     Kind = "unknown"
)

// rateLimitReasons are the Google API error reasons that mean "slow down".
var rateLimitReasons = []string{"rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded"}

// Result is the outcome of a check.
type Result struct {
	Kind Kind
	Err  error
}

// Succeeded is the result of a passing check.
func Succeeded() Result {
	return Result{Kind: KindNone}
}

// Failed classifies err into a failing result.
func Failed(err error) Result {
	kind := Classify(err)
	if kind == KindNone {
		kind = KindUnknown
	}
	return Result{Kind: kind, Err: err}
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Kind == KindNone
}

// Transient reports whether retrying later may succeed.
func (r Result) Transient() bool {
	switch r.Kind {
	case KindNetwork, KindRateLimited, KindUnavailable:
		return true
	}
	return false
}

// Error implements error so a failed result can be returned from a command.
func (r Result) Error() string {
	if r.Err == nil {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s: %v", r.Kind, r.Err)
}

// Unwrap returns the underlying error.
func (r Result) Unwrap() error {
	return r.Err
}

// Classify maps an error from the credential manager or the Calendar API to
// a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, google.ErrClientSecretsMissing):
		return KindSetup
	case errors.Is(err, ErrNoCalendars):
		return KindEmpty
	case errors.Is(err, google.ErrAuthorizationDenied), errors.Is(err, google.ErrStateMismatch):
		return KindAuth
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	// Checked before url.Error: a failed refresh inside an API call arrives
	// wrapped in one.
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil {
			if kind := classifyStatus(retrieveErr.Response.StatusCode); kind != KindUnknown {
				return kind
			}
		}
		return KindAuth
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindNetwork
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindMalformed
	}

	return KindUnknown
}

func classifyAPIError(err *googleapi.Error) Kind {
	if err.Code == http.StatusForbidden {
		for _, item := range err.Errors {
			if slices.Contains(rateLimitReasons, item.Reason) {
				return KindRateLimited
			}
		}
		return KindAuth
	}
	return classifyStatus(err.Code)
}

func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code >= 500:
		return KindUnavailable
	}
	return KindUnknown
}

// Hint returns a one-line suggestion for a failed result, or "" when there
// is nothing useful to add.
func Hint(r Result, tokenPath string) string {
	switch {
	case r.OK():
		return ""
	case r.Transient():
		return "This looks temporary. Please try again in a moment."
	case r.Kind == KindAuth:
		return fmt.Sprintf("Delete %s and run calsetup again to re-authorize.", tokenPath)
	case r.Kind == KindEmpty:
		return "Create a calendar in Google Calendar and run the check again."
	}
	return ""
}

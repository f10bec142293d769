package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/teemow/calsetup/internal/instrumentation"
	"github.com/teemow/calsetup/internal/logging"
)

// Credential lifecycle paths, recorded on the oauth.obtain span.
const (
	PathCached      = "cached"
	PathRefresh     = "refresh"
	PathInteractive = "interactive"
)

// Manager obtains a usable credential, reusing, refreshing or re-authorizing
// as needed, and keeps the cache up to date.
type Manager struct {
	store       CredentialStore
	authorizer  Authorizer
	secretsPath string
	scopes      []string

	logger  *slog.Logger
	metrics *instrumentation.Metrics
	now     func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *instrumentation.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. secretsPath is the OAuth client secrets file
// used when interactive authorization is required.
func NewManager(store CredentialStore, authorizer Authorizer, secretsPath string, scopes []string, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		authorizer:  authorizer,
		secretsPath: secretsPath,
		scopes:      slices.Clone(scopes),
		logger:      logging.Discard(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Obtain returns a credential ready for API calls.
//
// A valid cached credential is returned as is. An expired one with a refresh
// token is refreshed and persisted. Anything else goes through the
// Authorizer, which requires the client secrets file; when it is missing the
// returned error wraps ErrClientSecretsMissing.
func (m *Manager) Obtain(ctx context.Context) (*Credential, error) {
	ctx, span := instrumentation.StartSpan(ctx, "oauth.obtain")
	defer span.End()

	cred := m.loadCached(ctx)
	now := m.now()

	if cred != nil && !cred.HasScopes(m.scopes) {
		m.logger.Warn("cached credential lacks required scopes, re-authorizing",
			slog.Any("granted", cred.Scopes), slog.Any("required", m.scopes))
		cred = nil
	}

	if cred != nil && cred.Valid(now) {
		span.SetAttributes(attribute.String(instrumentation.SpanAttrAuthPath, PathCached))
		m.logger.Debug("using cached credential", logging.Status(logging.StatusSuccess))
		return cred, nil
	}

	if cred != nil && cred.Refreshable(now) {
		span.SetAttributes(attribute.String(instrumentation.SpanAttrAuthPath, PathRefresh))
		refreshed, err := m.refresh(ctx, cred)
		switch {
		case err == nil:
			if err := m.save(ctx, refreshed); err != nil {
				instrumentation.SetSpanError(span, err)
				return nil, err
			}
			return refreshed, nil
		case isRevoked(err):
			m.logger.Warn("refresh token expired or revoked, re-authorizing", logging.Err(err))
		default:
			instrumentation.SetSpanError(span, err)
			return nil, err
		}
	}

	span.SetAttributes(attribute.String(instrumentation.SpanAttrAuthPath, PathInteractive))
	cred, err := m.authorize(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	return cred, nil
}

// TokenSource returns a token source for API calls that writes refreshed
// tokens back to the store.
func (m *Manager) TokenSource(ctx context.Context, cred *Credential) oauth2.TokenSource {
	c := *cred
	return &persistingTokenSource{
		ctx:     ctx,
		manager: m,
		cred:    &c,
		base:    c.Config().TokenSource(ctx, c.Token()),
		last:    c.AccessToken,
	}
}

// loadCached returns the cached credential, or nil when there is none or it
// cannot be decoded. An unreadable cache is treated as absent.
func (m *Manager) loadCached(ctx context.Context) *Credential {
	data, err := m.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoCachedCredential) {
			m.logger.Warn("ignoring unreadable credential cache", logging.Err(err))
		}
		return nil
	}

	cred, err := UnmarshalCredential(data)
	if err != nil {
		m.logger.Warn("ignoring corrupt credential cache", logging.Err(err))
		return nil
	}
	return cred
}

func (m *Manager) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	ctx, span := instrumentation.StartSpan(ctx, "oauth.refresh")
	defer span.End()

	// An empty access token forces the oauth2 package to refresh regardless
	// of its own clock.
	tok, err := cred.Config().TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		result := instrumentation.OAuthResultFailure
		if isRevoked(err) {
			result = instrumentation.OAuthResultExpired
		}
		m.metrics.RecordOAuthTokenRefresh(ctx, result)
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to refresh credential: %w", err)
	}

	m.metrics.RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)
	m.logger.Info("refreshed credential", slog.String("access_token", logging.SanitizeToken(tok.AccessToken)))

	refreshed := *cred
	refreshed.SetToken(tok)
	return &refreshed, nil
}

func (m *Manager) authorize(ctx context.Context) (*Credential, error) {
	if !ClientSecretsExist(m.secretsPath) {
		return nil, fmt.Errorf("%w: %s", ErrClientSecretsMissing, m.secretsPath)
	}

	conf, err := LoadClientConfig(m.secretsPath, m.scopes)
	if err != nil {
		return nil, err
	}

	tok, err := m.authorizer.Authorize(ctx, conf)
	if err != nil {
		m.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return nil, err
	}
	m.metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	cred := NewCredential(conf, tok)
	if err := m.save(ctx, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

func (m *Manager) save(ctx context.Context, cred *Credential) error {
	data, err := MarshalCredential(cred)
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, data); err != nil {
		return fmt.Errorf("failed to cache credential: %w", err)
	}
	return nil
}

// isRevoked reports whether err is the token endpoint rejecting the refresh
// token itself, as opposed to a transport or server failure.
func isRevoked(err error) bool {
	var re *oauth2.RetrieveError
	return errors.As(err, &re) && re.ErrorCode == "invalid_grant"
}

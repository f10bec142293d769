package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/calsetup/internal/logging"
)

// persistingTokenSource saves the credential whenever the underlying source
// hands out a new access token.
type persistingTokenSource struct {
	ctx     context.Context
	manager *Manager
	base    oauth2.TokenSource

	mu   sync.Mutex
	cred *Credential
	last string
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.AccessToken != s.last {
		s.cred.SetToken(tok)
		s.last = tok.AccessToken
		if err := s.manager.save(s.ctx, s.cred); err != nil {
			// The token is still usable for this run.
			s.manager.logger.Warn("failed to cache refreshed credential", logging.Err(err))
		}
	}

	return tok, nil
}

package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// memStore is an in-memory CredentialStore.
type memStore struct {
	mu     sync.Mutex
	data   []byte
	getErr error
	puts   int
}

func (s *memStore) Get(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.data == nil {
		return nil, ErrNoCachedCredential
	}
	return append([]byte(nil), s.data...), nil
}

func (s *memStore) Put(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	s.puts++
	return nil
}

func (s *memStore) credential(t *testing.T) *Credential {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, err := UnmarshalCredential(s.data)
	require.NoError(t, err)
	return cred
}

// fakeAuthorizer returns a fixed token and records its calls.
type fakeAuthorizer struct {
	tok   *oauth2.Token
	err   error
	calls int
	conf  *oauth2.Config
}

func (a *fakeAuthorizer) Authorize(_ context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	a.calls++
	a.conf = conf
	if a.err != nil {
		return nil, a.err
	}
	return a.tok, nil
}

// tokenServer fakes the OAuth token endpoint.
type tokenServer struct {
	*httptest.Server
	hits    atomic.Int32
	handler func(w http.ResponseWriter, r *http.Request)
}

func newTokenServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *tokenServer {
	t.Helper()
	ts := &tokenServer{handler: handler}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		ts.handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeTokenJSON(w http.ResponseWriter, accessToken, refreshToken string) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	}
	if refreshToken != "" {
		body["refresh_token"] = refreshToken
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":%q,"error_description":"test"}`, code)
}

// writeClientSecrets writes an "installed" client secrets file pointing at tokenURL.
func writeClientSecrets(t *testing.T, dir, tokenURL string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.json")
	content := fmt.Sprintf(`{"installed":{
  "client_id":"test-client.apps.googleusercontent.com",
  "client_secret":"test-secret",
  "auth_uri":"https://accounts.google.com/o/oauth2/auth",
  "token_uri":%q,
  "redirect_uris":["http://localhost"]
}}`, tokenURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

package google

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// expiryDelta mirrors the early-expiry window of oauth2.Token so a token is
// never used in its last few seconds.
const expiryDelta = 10 * time.Second

// credentialType marks the cache file layout.
const credentialType = "authorized_user"

// Credential is an authorized token bundle together with the client identity
// needed to refresh it without the client secrets file.
type Credential struct {
	Type         string    `json:"type"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// NewCredential combines a client configuration and a token obtained for it.
func NewCredential(conf *oauth2.Config, tok *oauth2.Token) *Credential {
	c := &Credential{
		Type:         credentialType,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		TokenURI:     conf.Endpoint.TokenURL,
		Scopes:       slices.Clone(conf.Scopes),
	}
	c.SetToken(tok)
	return c
}

// Token returns the oauth2 view of the credential.
func (c *Credential) Token() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    tokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
	}
}

// SetToken replaces the token fields. An empty refresh token in tok keeps
// the existing one, since refresh responses usually omit it.
func (c *Credential) SetToken(tok *oauth2.Token) {
	c.AccessToken = tok.AccessToken
	c.TokenType = tok.TokenType
	c.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
}

// Config returns the OAuth2 configuration the credential refreshes against.
func (c *Credential) Config() *oauth2.Config {
	endpoint := google.Endpoint
	if c.TokenURI != "" {
		endpoint.TokenURL = c.TokenURI
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       slices.Clone(c.Scopes),
	}
}

// Expired reports whether the credential has an expiry that has passed at now.
func (c *Credential) Expired(now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(expiryDelta).Before(c.Expiry)
}

// Valid reports whether the access token can be used at now.
func (c *Credential) Valid(now time.Time) bool {
	return c.AccessToken != "" && !c.Expired(now)
}

// Refreshable reports whether an expired credential can be refreshed without
// user interaction.
func (c *Credential) Refreshable(now time.Time) bool {
	return c.Expired(now) && c.RefreshToken != ""
}

// HasScopes reports whether every required scope was granted. A credential
// that did not record its scopes is accepted.
func (c *Credential) HasScopes(required []string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range required {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}

// MarshalCredential encodes a credential for the cache.
func MarshalCredential(c *Credential) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}
	return data, nil
}

// UnmarshalCredential decodes a cached credential. It rejects blobs that
// decode but carry no token at all.
func UnmarshalCredential(data []byte) (*Credential, error) {
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	if c.AccessToken == "" && c.RefreshToken == "" {
		return nil, fmt.Errorf("failed to decode credential: no access or refresh token")
	}
	if c.Type != "" && c.Type != credentialType {
		return nil, fmt.Errorf("failed to decode credential: unsupported type %q", c.Type)
	}
	return &c, nil
}

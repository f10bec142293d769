package google

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrClientSecretsMissing is returned when interactive authorization is needed
// but the OAuth client secrets file does not exist.
var ErrClientSecretsMissing = errors.New("OAuth client secrets file not found")

// ClientSecretsExist reports whether the client secrets file is present.
func ClientSecretsExist(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadClientConfig reads a client secrets JSON file ("installed" or "web")
// and returns the OAuth2 configuration for the given scopes.
func LoadClientConfig(path string, scopes []string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrClientSecretsMissing, path)
		}
		return nil, fmt.Errorf("failed to read client secrets file: %w", err)
	}

	conf, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secrets file %s: %w", path, err)
	}

	return conf, nil
}

// SetupInstructions returns the remediation printed when the client secrets
// file is missing.
func SetupInstructions(path string) string {
	return fmt.Sprintf(`ERROR: %s file not found!

Please follow these steps:
1. Go to https://console.cloud.google.com/
2. Create a new project or select existing one
3. Enable Google Calendar API
4. Go to Credentials → Create Credentials → OAuth 2.0 Client ID
5. Choose 'Desktop application'
6. Download the JSON file and rename it to '%s'
7. Place it at %s (or point --credentials at it)
`, path, filepath.Base(path), path)
}

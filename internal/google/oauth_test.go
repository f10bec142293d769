package google

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeClientSecrets(t, dir, "https://oauth2.example.com/token")

	conf, err := LoadClientConfig(path, testScopes)

	require.NoError(t, err)
	assert.Equal(t, "test-client.apps.googleusercontent.com", conf.ClientID)
	assert.Equal(t, "test-secret", conf.ClientSecret)
	assert.Equal(t, "https://oauth2.example.com/token", conf.Endpoint.TokenURL)
	assert.Equal(t, testScopes, conf.Scopes)
}

func TestLoadClientConfig_Missing(t *testing.T) {
	_, err := LoadClientConfig(filepath.Join(t.TempDir(), "credentials.json"), testScopes)

	assert.ErrorIs(t, err, ErrClientSecretsMissing)
}

func TestLoadClientConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"service_account":{}}`), 0600))

	_, err := LoadClientConfig(path, testScopes)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrClientSecretsMissing)
}

func TestClientSecretsExist(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, ClientSecretsExist(filepath.Join(dir, "credentials.json")))
	assert.False(t, ClientSecretsExist(dir), "a directory is not a secrets file")

	path := writeClientSecrets(t, dir, "https://oauth2.example.com/token")
	assert.True(t, ClientSecretsExist(path))
}

func TestSetupInstructions(t *testing.T) {
	text := SetupInstructions("/home/user/secrets/client.json")

	assert.Contains(t, text, "ERROR: /home/user/secrets/client.json file not found!")
	assert.Contains(t, text, "Enable Google Calendar API")
	assert.Contains(t, text, "rename it to 'client.json'")
}

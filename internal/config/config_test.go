package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.False(t, s.Debug)
	assert.True(t, s.VerifySSL)
	assert.Equal(t, 60, s.APMMetricDurationMins)
	assert.Equal(t, 60, s.SnapshotDurationMins)
	assert.True(t, s.FirstInChain)
	assert.Equal(t, "false", s.MetricRollup)
}

func TestDefaultSettingsEnvOverrides(t *testing.T) {
	t.Setenv("APPDX_DEBUG", "true")
	t.Setenv("APPDX_VERIFY_SSL", "0")

	s := DefaultSettings()
	assert.True(t, s.Debug)
	assert.False(t, s.VerifySSL)
}

func TestNewCredentialsValidation(t *testing.T) {
	_, err := NewCredentials("", "client", "secret", "")
	var cerr *Error
	require.ErrorAs(t, err, &cerr)

	_, err = NewCredentials("acct", "client", "", "")
	require.Error(t, err)
}

func TestNewCredentialsDerivesAndTrimsURL(t *testing.T) {
	creds, err := NewCredentials("acct", "client", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "https://acct.saas.appdynamics.com", creds.BaseURL)

	creds, err = NewCredentials("acct", "client", "secret", "https://onprem.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://onprem.example.com", creds.BaseURL)
}

func TestSecretStoreMissingFile(t *testing.T) {
	store := NewSecretStore(filepath.Join(t.TempDir(), "secrets.yml"))

	secrets, err := store.Load()
	require.NoError(t, err, "a missing store is empty, not broken")
	assert.Empty(t, secrets)
}

func TestSecretStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yml")
	store := NewSecretStore(path)

	require.NoError(t, store.Save(Secret{Account: "acct1", APIClient: "c1", APIKey: "k1"}))
	require.NoError(t, store.Save(Secret{Account: "acct2", APIClient: "c2", APIKey: "k2"}))
	// Update in place, no duplicate entry.
	require.NoError(t, store.Save(Secret{Account: "acct1", APIClient: "c1", APIKey: "k1-rotated"}))

	secrets, err := store.Load()
	require.NoError(t, err)
	require.Len(t, secrets, 2)

	sec, ok, err := store.Get("acct1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "k1-rotated", sec.APIKey)

	_, ok, err = store.Get("nope")
	require.NoError(t, err)
	assert.False(t, ok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSecretStoreFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"secrets:\n  - account: acct\n    api-client-name: extractor\n    api-key: s3cret\n",
	), 0o600))

	sec, ok, err := NewSecretStore(path).Get("acct")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "extractor", sec.APIClient)
	assert.Equal(t, "s3cret", sec.APIKey)
}

func TestAllEventTypes(t *testing.T) {
	types := AllEventTypes()
	assert.True(t, sort.StringsAreSorted(types))
	assert.Contains(t, types, "APPLICATION_ERROR")
	assert.Contains(t, types, "POLICY_OPEN_CRITICAL")

	seen := make(map[string]struct{})
	for _, ty := range types {
		_, dup := seen[ty]
		assert.False(t, dup, "duplicate %s", ty)
		seen[ty] = struct{}{}
	}
}

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseConfig sets the global verbosity, so these tests do not run in parallel.

func TestParseConfig_Defaults(t *testing.T) {
	config, err := parseConfig([]byte(`client_id = "app-1"`))
	require.NoError(t, err)

	assert.Equal(t, "app-1", config.ClientID)
	assert.Equal(t, defaultTenant, config.Tenant)
	assert.Equal(t, defaultScopes, config.Scopes)
	assert.Equal(t, defaultAccount, config.Account)
	assert.Equal(t, defaultBusinessTimeZone, config.BusinessTimeZone)
	assert.Equal(t, defaultGraphBaseURL, config.GraphBaseURL)
	assert.Equal(t, defaultDatabaseName, config.Database)
	assert.Equal(t, defaultListenAddr, config.ListenAddr)
	assert.Equal(t, defaultHTTPTimeout, config.HTTPTimeout)
	assert.Equal(t, "America/Sao_Paulo", config.Location().String())
	assert.Equal(t, 0, verbosityLevel)
}

func TestParseConfig_Overrides(t *testing.T) {
	config, err := parseConfig([]byte(`
client_id = "app-1"
tenant = "contoso.onmicrosoft.com"
scopes = ["Calendars.Read"]
business_timezone = "Europe/Lisbon"
graph_base_url = "http://localhost:8080/v1.0/"
http_timeout = "5s"
verbosity_level = 2
`))
	require.NoError(t, err)

	assert.Equal(t, "contoso.onmicrosoft.com", config.Tenant)
	assert.Equal(t, []string{"Calendars.Read"}, config.Scopes)
	assert.Equal(t, "Europe/Lisbon", config.Location().String())
	assert.Equal(t, "http://localhost:8080/v1.0", config.GraphBaseURL)
	assert.Equal(t, 5*time.Second, config.HTTPTimeout)
	assert.Equal(t, 2, verbosityLevel)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "missing client id", data: `tenant = "common"`, wantErr: "client_id is required"},
		{name: "unknown zone", data: "client_id = \"app-1\"\nbusiness_timezone = \"Mars/Olympus\"", wantErr: "invalid business_timezone"},
		{name: "not toml", data: `client_id = `, wantErr: "decode config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewOAuthConfig(t *testing.T) {
	t.Run("azure endpoint", func(t *testing.T) {
		config, err := parseConfig([]byte(`client_id = "app-1"`))
		require.NoError(t, err)

		oauth := newOAuthConfig(config)
		assert.Equal(t, "app-1", oauth.ClientID)
		assert.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/token", oauth.Endpoint.TokenURL)
		assert.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/devicecode", oauth.Endpoint.DeviceAuthURL)
		assert.Equal(t, defaultScopes, oauth.Scopes)
	})

	t.Run("custom authority", func(t *testing.T) {
		config, err := parseConfig([]byte("client_id = \"app-1\"\ntenant = \"t1\"\nauthority_url = \"http://127.0.0.1:9999/\""))
		require.NoError(t, err)

		oauth := newOAuthConfig(config)
		assert.Equal(t, "http://127.0.0.1:9999/t1/oauth2/v2.0/authorize", oauth.Endpoint.AuthURL)
		assert.Equal(t, "http://127.0.0.1:9999/t1/oauth2/v2.0/token", oauth.Endpoint.TokenURL)
		assert.Equal(t, "http://127.0.0.1:9999/t1/oauth2/v2.0/devicecode", oauth.Endpoint.DeviceAuthURL)
	})
}

// configDirs points HOME and the working directory at fresh temp dirs.
func configDirs(t *testing.T) (cwd, home string) {
	t.Helper()

	cwd, home = t.TempDir(), t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(cwd)

	saved := configDir
	configDir = ""
	t.Cleanup(func() { configDir = saved })
	return cwd, home
}

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func TestLoadConfig_InvalidLocalConfigReported(t *testing.T) {
	cwd, home := configDirs(t)
	writeConfig(t, filepath.Join(cwd, defaultConfigName), "client_id = \"app-1\"\nbusiness_timezone = \"Mars/Olympus\"")
	// a valid file further down the lookup must not hide the local error
	writeConfig(t, filepath.Join(home, ".config", "graphcal", defaultConfigName), `client_id = "other"`)

	_, err := loadConfig(defaultConfigName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid business_timezone "Mars/Olympus"`)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadConfig_Lookup(t *testing.T) {
	t.Run("user config dir", func(t *testing.T) {
		_, home := configDirs(t)
		dir := filepath.Join(home, ".config", "graphcal")
		writeConfig(t, filepath.Join(dir, defaultConfigName), `client_id = "from-config-dir"`)

		config, err := loadConfig(defaultConfigName)
		require.NoError(t, err)
		assert.Equal(t, "from-config-dir", config.ClientID)
		assert.Equal(t, dir, configDir)
	})

	t.Run("home", func(t *testing.T) {
		_, home := configDirs(t)
		writeConfig(t, filepath.Join(home, defaultConfigName), `client_id = "from-home"`)

		config, err := loadConfig(defaultConfigName)
		require.NoError(t, err)
		assert.Equal(t, "from-home", config.ClientID)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		configDirs(t)

		_, err := loadConfig(defaultConfigName)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

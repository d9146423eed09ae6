package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv keeps host machine settings out of the layered lookup.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "DATABRICKS_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	// Point the profile file somewhere that does not exist.
	t.Setenv("DATABRICKS_CONFIG_FILE", filepath.Join(t.TempDir(), "nope"))
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("host", "", "")
	fs.String("warehouse-id", "", "")
	fs.StringP("profile", "p", "", "")
	fs.Int("poll-interval-seconds", DefaultPollIntervalSeconds, "")
	fs.Int("max-wait-seconds", DefaultMaxWaitSeconds, "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("", nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultAuthType, cfg.AuthType)
	assert.Equal(t, DefaultProfile, cfg.Profile)
	assert.Equal(t, DefaultPollIntervalSeconds, cfg.PollIntervalSeconds)
	assert.Equal(t, DefaultMaxWaitSeconds, cfg.MaxWaitSeconds)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Empty(t, cfg.Host)
	assert.Empty(t, cfg.WarehouseID)
}

func TestLoadFromFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "lakegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"host: https://file.example.com\nwarehouse_id: wh-file\npoll_interval_seconds: 5\n"), 0o600))

	cfg, err := Load(path, nil)

	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", cfg.Host)
	assert.Equal(t, "wh-file", cfg.WarehouseID)
	assert.Equal(t, 5, cfg.PollIntervalSeconds)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "lakegate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: https://file.example.com\n"), 0o600))

	t.Setenv("DATABRICKS_HOST", "https://env.example.com")
	t.Setenv("DATABRICKS_TOKEN", "env-token")

	cfg, err := Load(path, nil)

	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Host)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoadWarehouseEnvAlias(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATABRICKS_SQL_WAREHOUSE_ID", "wh-env")

	cfg, err := Load("", nil)

	require.NoError(t, err)
	assert.Equal(t, "wh-env", cfg.WarehouseID)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATABRICKS_HOST", "https://env.example.com")

	flags := newFlags()
	require.NoError(t, flags.Set("host", "https://flag.example.com"))
	require.NoError(t, flags.Set("warehouse-id", "wh-flag"))

	cfg, err := Load("", flags)

	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", cfg.Host)
	assert.Equal(t, "wh-flag", cfg.WarehouseID)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATABRICKS_HOST", "https://env.example.com")

	cfg, err := Load("", newFlags())

	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Host,
		"a flag at its default must not mask lower layers")
}

func TestLoadProfileFlagMapsToConfigProfile(t *testing.T) {
	isolateEnv(t)

	flags := newFlags()
	require.NoError(t, flags.Set("profile", "STAGING"))

	cfg, err := Load("", flags)

	require.NoError(t, err)
	assert.Equal(t, "STAGING", cfg.Profile)
}

func TestLoadProfileFileFillsEmptyFields(t *testing.T) {
	isolateEnv(t)

	profilePath := filepath.Join(t.TempDir(), "databrickscfg")
	require.NoError(t, os.WriteFile(profilePath, []byte(`
# shared workspace credentials
[DEFAULT]
host = https://profile.example.com
token = profile-token

[STAGING]
host = https://staging.example.com
token = staging-token
warehouse_id = wh-staging
`), 0o600))
	t.Setenv("DATABRICKS_CONFIG_FILE", profilePath)

	cfg, err := Load("", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://profile.example.com", cfg.Host)
	assert.Equal(t, "profile-token", cfg.Token)
	assert.Empty(t, cfg.WarehouseID)
}

func TestLoadProfileFileRespectsHigherLayers(t *testing.T) {
	isolateEnv(t)

	profilePath := filepath.Join(t.TempDir(), "databrickscfg")
	require.NoError(t, os.WriteFile(profilePath, []byte(
		"[DEFAULT]\nhost = https://profile.example.com\ntoken = profile-token\n"), 0o600))
	t.Setenv("DATABRICKS_CONFIG_FILE", profilePath)
	t.Setenv("DATABRICKS_HOST", "https://env.example.com")

	cfg, err := Load("", nil)

	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Host, "env wins over the profile file")
	assert.Equal(t, "profile-token", cfg.Token, "unset fields are still filled")
}

func TestLoadNamedProfile(t *testing.T) {
	isolateEnv(t)

	profilePath := filepath.Join(t.TempDir(), "databrickscfg")
	require.NoError(t, os.WriteFile(profilePath, []byte(`
[DEFAULT]
host = https://default.example.com

[STAGING]
host = https://staging.example.com
warehouse_id = wh-staging
`), 0o600))
	t.Setenv("DATABRICKS_CONFIG_FILE", profilePath)
	t.Setenv("DATABRICKS_CONFIG_PROFILE", "STAGING")

	cfg, err := Load("", nil)

	require.NoError(t, err)
	assert.Equal(t, "STAGING", cfg.Profile)
	assert.Equal(t, "https://staging.example.com", cfg.Host)
	assert.Equal(t, "wh-staging", cfg.WarehouseID)
}

func TestParseProfile(t *testing.T) {
	input := strings.NewReader(`
; leading comment
[DEFAULT]
host = https://a.example.com
token=tok

[OTHER]
host = https://b.example.com
not-a-pair
`)

	values := parseProfile(input, "DEFAULT")

	assert.Equal(t, map[string]string{
		"host":  "https://a.example.com",
		"token": "tok",
	}, values)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Config{PollIntervalSeconds: 10, MaxWaitSeconds: 600}
	assert.Equal(t, 10*time.Second, cfg.PollInterval())
	assert.Equal(t, 600*time.Second, cfg.MaxWait())
}

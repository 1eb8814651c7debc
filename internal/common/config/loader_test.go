package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COWIN_TOKEN", "")
	t.Setenv("COWIN_MOBILE", "")
	t.Setenv("COWIN_API_BASE_URL", "")
}

func TestLoadFromFile_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "app:\n  environment: test\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "cowin-slot-assistant", cfg.App.Name)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, GetDuration(cfg.API.Timeout))
	assert.Equal(t, ModeDistrict, cfg.Search.Mode)
	assert.Equal(t, 15*time.Second, GetDuration(cfg.Search.PollInterval))
	assert.Equal(t, "captcha.svg", cfg.Search.CaptchaFile)
	assert.Equal(t, 440, cfg.Alert.BaseFrequency)
	assert.Equal(t, 110, cfg.Alert.FrequencyStep)
	assert.Equal(t, 1000, cfg.Alert.Duration)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "ap-south-1", cfg.Notifications.AWS.Region)
}

func TestLoadFromFile_ValuesAndEnvExpansion(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_COWIN_TOKEN", "secret-token")
	path := writeConfig(t, `
api:
  base_url: http://localhost:8080/api
  timeout: 2500
  token: ${TEST_COWIN_TOKEN}
search:
  mode: pincode
  poll_interval: 5000
  pincodes: ["110001", "560001"]
  strict_selection: true
alert:
  enabled: true
  base_frequency: 500
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 2500, cfg.API.Timeout)
	assert.Equal(t, "secret-token", cfg.API.Token)
	assert.Equal(t, ModePincode, cfg.Search.Mode)
	assert.Equal(t, []string{"110001", "560001"}, cfg.Search.Pincodes)
	assert.True(t, cfg.Search.StrictSelection)
	assert.True(t, cfg.Alert.Enabled)
	assert.Equal(t, 500, cfg.Alert.BaseFrequency)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("COWIN_TOKEN", "env-token")
	t.Setenv("COWIN_MOBILE", "9999999999")
	t.Setenv("COWIN_API_BASE_URL", "http://127.0.0.1:9000/api")
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, "9999999999", cfg.API.Mobile)
	assert.Equal(t, "http://127.0.0.1:9000/api", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "defaults are valid"},
		{
			name:   "bad base url",
			mutate: func(c *Config) { c.API.BaseURL = "cdn-api.co-vin.in" },
			errMsg: "api.base_url",
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.API.Timeout = -1 },
			errMsg: "api.timeout must be positive",
		},
		{
			name:   "unknown mode",
			mutate: func(c *Config) { c.Search.Mode = "state" },
			errMsg: "search.mode",
		},
		{
			name: "invalid pincode",
			mutate: func(c *Config) {
				c.Search.Mode = ModePincode
				c.Search.Pincodes = []string{"12345"}
			},
			errMsg: "invalid pincode",
		},
		{
			name:   "district ids without state",
			mutate: func(c *Config) { c.Search.DistrictIDs = []int{294} },
			errMsg: "search.district_ids requires search.state_id",
		},
		{
			name: "district preset",
			mutate: func(c *Config) {
				c.Search.StateID = 16
				c.Search.DistrictIDs = []int{294, 265}
			},
		},
		{
			name:   "sms without destination",
			mutate: func(c *Config) { c.Notifications.SMS.Enabled = true },
			errMsg: "notifications.sms",
		},
		{
			name: "email without addresses",
			mutate: func(c *Config) {
				c.Notifications.Email.Enabled = true
				c.Notifications.Email.FromEmail = "alerts@example.com"
			},
			errMsg: "notifications.email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := Validate(cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_UnsetEnvAndAlertDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNSET_COWIN_TOKEN", "")
	path := writeConfig(t, "api:\n  token: ${UNSET_COWIN_TOKEN}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Empty(t, cfg.API.Token)
	assert.True(t, cfg.Alert.Enabled)
}

func TestLoadFromFile_DistrictPreset(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "search:\n  mode: district\n  state_id: 16\n  district_ids: [294, 265]\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Search.StateID)
	assert.Equal(t, []int{294, 265}, cfg.Search.DistrictIDs)
}

// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultBaseURL = "https://cdn-api.co-vin.in/api"

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Load reads configs/config.yaml (plus config.<env>.yaml) with environment
// overrides. A missing config file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	v.SetDefault("alert.enabled", true)
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.API.Token == "" {
		if val := os.Getenv("COWIN_TOKEN"); val != "" {
			cfg.API.Token = val
		}
	}
	if cfg.API.Mobile == "" {
		if val := os.Getenv("COWIN_MOBILE"); val != "" {
			cfg.API.Mobile = val
		}
	}
	if val := os.Getenv("COWIN_API_BASE_URL"); val != "" {
		cfg.API.BaseURL = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "cowin-slot-assistant"
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 10000
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0 Safari/537.36"
	}

	if cfg.Search.Mode == "" {
		cfg.Search.Mode = ModeDistrict
	}
	if cfg.Search.PollInterval == 0 {
		cfg.Search.PollInterval = 15000
	}
	if cfg.Search.CaptchaFile == "" {
		cfg.Search.CaptchaFile = "captcha.svg"
	}

	if cfg.Alert.BaseFrequency == 0 {
		cfg.Alert.BaseFrequency = 440
	}
	if cfg.Alert.FrequencyStep == 0 {
		cfg.Alert.FrequencyStep = 110
	}
	if cfg.Alert.Duration == 0 {
		cfg.Alert.Duration = 1000
	}
	if cfg.Alert.Beeps == 0 {
		cfg.Alert.Beeps = 2
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "ap-south-1"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9102"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks critical configuration fields
func Validate(cfg *Config) error {
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL")
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if cfg.Search.PollInterval <= 0 {
		return fmt.Errorf("search.poll_interval must be positive")
	}

	switch cfg.Search.Mode {
	case ModeDistrict:
		if cfg.Search.StateID < 0 {
			return fmt.Errorf("search.state_id must not be negative")
		}
		if len(cfg.Search.DistrictIDs) > 0 && cfg.Search.StateID == 0 {
			return fmt.Errorf("search.district_ids requires search.state_id")
		}
	case ModePincode:
		for _, pin := range cfg.Search.Pincodes {
			if !pincodePattern.MatchString(pin) {
				return fmt.Errorf("search.pincodes contains invalid pincode %q", pin)
			}
		}
	default:
		return fmt.Errorf("search.mode must be %q or %q", ModeDistrict, ModePincode)
	}

	if cfg.Search.MinAge < 0 {
		return fmt.Errorf("search.min_age must not be negative")
	}

	if cfg.Notifications.SMS.Enabled && cfg.Notifications.SMS.PhoneNumber == "" && cfg.Notifications.SMS.TopicARN == "" {
		return fmt.Errorf("notifications.sms requires phone_number or topic_arn")
	}
	if cfg.Notifications.Email.Enabled && (cfg.Notifications.Email.FromEmail == "" || cfg.Notifications.Email.ToEmail == "") {
		return fmt.Errorf("notifications.email requires from_email and to_email")
	}

	return nil
}

// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	API           APIConfig          `mapstructure:"api"`
	Search        SearchConfig       `mapstructure:"search"`
	Alert         AlertConfig        `mapstructure:"alert"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds settings for the vaccination booking API.
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
	UserAgent string `mapstructure:"user_agent"`
	Token     string `mapstructure:"token"`
	Mobile    string `mapstructure:"mobile"`
}

// Search modes.
const (
	ModeDistrict = "district"
	ModePincode  = "pincode"
)

// SearchConfig controls where and how often slots are polled.
type SearchConfig struct {
	Mode            string   `mapstructure:"mode"`
	PollInterval    int      `mapstructure:"poll_interval"` // milliseconds
	// StateID and DistrictIDs preset the district cascade.
	StateID         int      `mapstructure:"state_id"`
	DistrictIDs     []int    `mapstructure:"district_ids"`
	Pincodes        []string `mapstructure:"pincodes"`
	MinAge          int      `mapstructure:"min_age"`
	StrictSelection bool     `mapstructure:"strict_selection"`
	CaptchaFile     string   `mapstructure:"captcha_file"`
}

// AlertConfig controls the audible alert.
type AlertConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	BaseFrequency int  `mapstructure:"base_frequency"`
	FrequencyStep int  `mapstructure:"frequency_step"`
	Duration      int  `mapstructure:"duration"` // milliseconds
	Beeps         int  `mapstructure:"beeps"`
}

// NotificationConfig holds settings for the optional remote alert channels.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SMS struct {
		Enabled     bool   `mapstructure:"enabled"`
		PhoneNumber string `mapstructure:"phone_number"`
		TopicARN    string `mapstructure:"topic_arn"`
		SenderID    string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/example/sms-extractor/pkg/smsparser"
)

// ErrInvalidCustomRule is returned when a custom parsing rule cannot be applied.
var ErrInvalidCustomRule = errors.New("invalid custom rule")

// Config represents the application configuration
type Config struct {
	DefaultCategory string                        `mapstructure:"default_category"`
	UserCurrency    string                        `mapstructure:"user_currency"`
	Environment     string                        `mapstructure:"environment"`
	UserSettings    UserSettings                  `mapstructure:"user_settings"`
	CategoryRules   []smsparser.CategoryRule      `mapstructure:"category_rules"`
	CustomRules     []smsparser.CustomParsingRule `mapstructure:"custom_rules"`
	Categories      map[string][]string           `mapstructure:"categories"` // category -> subcategories
	Filter          FilterConfig                  `mapstructure:"filter"`
}

// UserSettings mirrors the settings block the app stores alongside the currency.
type UserSettings struct {
	Currency string `mapstructure:"currency"`
}

// FilterConfig tunes the financial-message pre-screen
type FilterConfig struct {
	Keywords []string `mapstructure:"keywords"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("SMS_EXTRACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("default_category", smsparser.DefaultCategory)
	v.SetDefault("environment", "development")
	v.SetDefault("user_currency", "")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	for i, r := range c.CustomRules {
		name := r.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if !hasKeyword(r.Keywords) {
			return fmt.Errorf("custom rule %s has no keywords: %w", name, ErrInvalidCustomRule)
		}
		if !r.Type.Valid() {
			return fmt.Errorf("custom rule %s has unknown type %q: %w", name, r.Type, ErrInvalidCustomRule)
		}
	}
	return nil
}

func hasKeyword(keywords []string) bool {
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// PreferredCurrency returns user_currency, then user_settings.currency.
// An empty result lets the parser apply its own fallback.
func (c *Config) PreferredCurrency() string {
	if cur := strings.TrimSpace(c.UserCurrency); cur != "" {
		return strings.ToUpper(cur)
	}
	return strings.ToUpper(strings.TrimSpace(c.UserSettings.Currency))
}

// Rules exposes the configured tables to the parser
func (c *Config) Rules() smsparser.StaticRules {
	return smsparser.StaticRules{
		Custom:     c.CustomRules,
		Categories: c.CategoryRules,
		Hierarchy:  c.Categories,
		Currency:   c.PreferredCurrency(),
	}
}

// ParserOptions builds parser options from the configuration
func (c *Config) ParserOptions() smsparser.Options {
	return smsparser.Options{DefaultCategory: c.DefaultCategory}
}

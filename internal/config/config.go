// Package config loads and validates run configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/bbw-directory/internal/publisher"
)

// ErrMissingCredentials is returned when a live publish run lacks Notion credentials.
var ErrMissingCredentials = errors.New("notion.api_key and notion.database_id must be set")

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Notion  NotionConfig  `mapstructure:"notion"`
	Publish PublishConfig `mapstructure:"publish"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig sets the locations of the two JSON collections.
type StorageConfig struct {
	RecordsPath   string `mapstructure:"records_path"`
	AddressesPath string `mapstructure:"addresses_path"`
}

// FetchConfig controls how detail pages are retrieved.
type FetchConfig struct {
	UserAgent           string `mapstructure:"user_agent"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
	Headless            bool   `mapstructure:"headless"`
	HeadlessMaxParallel int    `mapstructure:"headless_max_parallel"`
	HeadlessNavTimeout  int    `mapstructure:"headless_nav_timeout_seconds"`
	// HeadlessReady is the CSS selector the headless fetcher waits for.
	HeadlessReady string `mapstructure:"headless_ready_selector"`
	// Headers are sent with every detail page request.
	Headers map[string]string `mapstructure:"headers"`
}

// NotionConfig identifies the target database and its property names.
type NotionConfig struct {
	APIKey     string                  `mapstructure:"api_key"`
	DatabaseID string                  `mapstructure:"database_id"`
	Properties publisher.PropertyNames `mapstructure:"properties"`
}

// PublishConfig toggles publisher behavior.
type PublishConfig struct {
	DryRun bool `mapstructure:"dry_run"`
}

// MetricsConfig points at an optional Prometheus Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. An empty path looks for an
// optional config.yaml in the working directory.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BBW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindCredentials(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.records_path", "scrapedData.json")
	v.SetDefault("storage.addresses_path", "addressList.json")
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.timeout_seconds", 0)
	v.SetDefault("fetch.headless", false)
	v.SetDefault("fetch.headless_max_parallel", 2)
	v.SetDefault("fetch.headless_nav_timeout_seconds", 45)
	v.SetDefault("fetch.headless_ready_selector", "body")
	v.SetDefault("notion.api_key", "")
	v.SetDefault("notion.database_id", "")
	names := publisher.DefaultPropertyNames()
	v.SetDefault("notion.properties.title", names.Title)
	v.SetDefault("notion.properties.website", names.Website)
	v.SetDefault("notion.properties.address", names.Address)
	v.SetDefault("notion.properties.carrier", names.Carrier)
	v.SetDefault("notion.properties.region", names.Region)
	v.SetDefault("notion.properties.specializations", names.Specializations)
	v.SetDefault("notion.properties.contacts", names.Contacts)
	v.SetDefault("publish.dry_run", false)
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "bbw_directory")
	v.SetDefault("logging.development", true)
}

// bindCredentials accepts the bare variable names the .env file uses.
func bindCredentials(v *viper.Viper) error {
	if err := v.BindEnv("notion.api_key", "BBW_NOTION_API_KEY", "NOTION_API_KEY"); err != nil {
		return fmt.Errorf("bind notion.api_key: %w", err)
	}
	if err := v.BindEnv("notion.database_id", "BBW_NOTION_DATABASE_ID", "NOTION_DATABASE_ID"); err != nil {
		return fmt.Errorf("bind notion.database_id: %w", err)
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Storage.RecordsPath == "" {
		return fmt.Errorf("storage.records_path must be set")
	}
	if c.Storage.AddressesPath == "" {
		return fmt.Errorf("storage.addresses_path must be set")
	}
	if c.Fetch.TimeoutSeconds < 0 {
		return fmt.Errorf("fetch.timeout_seconds must be >= 0")
	}
	if c.Fetch.Headless && c.Fetch.HeadlessMaxParallel <= 0 {
		return fmt.Errorf("fetch.headless_max_parallel must be > 0 when headless is enabled")
	}
	if c.Fetch.HeadlessNavTimeout < 0 {
		return fmt.Errorf("fetch.headless_nav_timeout_seconds must be >= 0")
	}
	return nil
}

// ValidatePublish checks what a publisher run needs on top of Validate.
func (c Config) ValidatePublish() error {
	p := c.Notion.Properties
	for key, name := range map[string]string{
		"title":           p.Title,
		"website":         p.Website,
		"address":         p.Address,
		"carrier":         p.Carrier,
		"region":          p.Region,
		"specializations": p.Specializations,
		"contacts":        p.Contacts,
	} {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("notion.properties.%s must be set", key)
		}
	}
	if c.Publish.DryRun {
		return nil
	}
	if c.Notion.APIKey == "" || c.Notion.DatabaseID == "" {
		return ErrMissingCredentials
	}
	return nil
}

// FetchTimeout converts the configured request timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RequestHeaders converts fetch.headers into canonical HTTP headers.
func (c Config) RequestHeaders() http.Header {
	if len(c.Fetch.Headers) == 0 {
		return nil
	}
	h := make(http.Header, len(c.Fetch.Headers))
	for key, value := range c.Fetch.Headers {
		h.Set(key, value)
	}
	return h
}

// HeadlessNavigationTimeout converts the configured navigation timeout into a duration.
func (c Config) HeadlessNavigationTimeout() time.Duration {
	return time.Duration(c.Fetch.HeadlessNavTimeout) * time.Second
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/bbw-directory/internal/publisher"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `
storage:
  records_path: out/records.json
  addresses_path: out/addresses.json
fetch:
  user_agent: bbw-bot/1.0
  timeout_seconds: 20
  headless: true
  headless_max_parallel: 3
  headless_nav_timeout_seconds: 60
  headless_ready_selector: .bbw-detail__content-main
  headers:
    accept-language: de-DE
notion:
  api_key: secret
  database_id: db-123
  properties:
    title: Name
publish:
  dry_run: true
metrics:
  pushgateway_url: http://localhost:9091
  job: nightly
logging:
  development: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "out/records.json", cfg.Storage.RecordsPath)
	assert.Equal(t, "out/addresses.json", cfg.Storage.AddressesPath)
	assert.Equal(t, "bbw-bot/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout())
	assert.True(t, cfg.Fetch.Headless)
	assert.Equal(t, 3, cfg.Fetch.HeadlessMaxParallel)
	assert.Equal(t, time.Minute, cfg.HeadlessNavigationTimeout())
	assert.Equal(t, ".bbw-detail__content-main", cfg.Fetch.HeadlessReady)
	assert.Equal(t, "de-DE", cfg.RequestHeaders().Get("Accept-Language"))
	assert.Equal(t, "secret", cfg.Notion.APIKey)
	assert.Equal(t, "db-123", cfg.Notion.DatabaseID)
	assert.Equal(t, "Name", cfg.Notion.Properties.Title)
	assert.Equal(t, "Region", cfg.Notion.Properties.Region, "unset property names keep defaults")
	assert.True(t, cfg.Publish.DryRun)
	assert.Equal(t, "http://localhost:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "nightly", cfg.Metrics.Job)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "scrapedData.json", cfg.Storage.RecordsPath)
	assert.Equal(t, "addressList.json", cfg.Storage.AddressesPath)
	assert.Zero(t, cfg.FetchTimeout())
	assert.False(t, cfg.Fetch.Headless)
	assert.Equal(t, 2, cfg.Fetch.HeadlessMaxParallel)
	assert.Equal(t, 45*time.Second, cfg.HeadlessNavigationTimeout())
	assert.Equal(t, "body", cfg.Fetch.HeadlessReady)
	assert.Nil(t, cfg.RequestHeaders())
	assert.Equal(t, publisher.DefaultPropertyNames(), cfg.Notion.Properties)
	assert.Equal(t, "bbw_directory", cfg.Metrics.Job)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadDiscoversConfigInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "storage:\n  records_path: found.json\n")
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "found.json", cfg.Storage.RecordsPath)
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BBW_NOTION_API_KEY", "")
	t.Setenv("BBW_NOTION_DATABASE_ID", "")
	t.Setenv("NOTION_API_KEY", "env-key")
	t.Setenv("NOTION_DATABASE_ID", "env-db")
	t.Setenv("BBW_STORAGE_ADDRESSES_PATH", "env-addresses.json")
	t.Setenv("BBW_PUBLISH_DRY_RUN", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Notion.APIKey)
	assert.Equal(t, "env-db", cfg.Notion.DatabaseID)
	assert.Equal(t, "env-addresses.json", cfg.Storage.AddressesPath)
	assert.True(t, cfg.Publish.DryRun)
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Storage: StorageConfig{RecordsPath: "r.json", AddressesPath: "a.json"},
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing records path", func(c *Config) { c.Storage.RecordsPath = "" }, "storage.records_path"},
		{"missing addresses path", func(c *Config) { c.Storage.AddressesPath = "" }, "storage.addresses_path"},
		{"negative timeout", func(c *Config) { c.Fetch.TimeoutSeconds = -1 }, "fetch.timeout_seconds"},
		{"headless without parallelism", func(c *Config) { c.Fetch.Headless = true }, "fetch.headless_max_parallel"},
		{"negative nav timeout", func(c *Config) { c.Fetch.HeadlessNavTimeout = -5 }, "fetch.headless_nav_timeout_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestValidatePublish(t *testing.T) {
	t.Parallel()

	cfg := Config{Notion: NotionConfig{Properties: publisher.DefaultPropertyNames()}}
	require.ErrorIs(t, cfg.ValidatePublish(), ErrMissingCredentials)

	cfg.Publish.DryRun = true
	require.NoError(t, cfg.ValidatePublish())

	cfg.Publish.DryRun = false
	cfg.Notion.APIKey = "key"
	cfg.Notion.DatabaseID = "db"
	require.NoError(t, cfg.ValidatePublish())

	cfg.Notion.Properties.Region = " "
	err := cfg.ValidatePublish()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.properties.region")
}

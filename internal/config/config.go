package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Site     SiteConfig     `mapstructure:"site"`
	Search   SearchConfig   `mapstructure:"search"`
	Download DownloadConfig `mapstructure:"download"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SiteConfig holds remote site configuration.
type SiteConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	Sort      string `mapstructure:"sort"`
	TitleType string `mapstructure:"title_type"`
	PageLimit int    `mapstructure:"page_limit"`
}

// DownloadConfig holds download defaults.
type DownloadConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	Concurrency int    `mapstructure:"concurrency"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Debug bool `mapstructure:"debug"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:        "http://animesub.info",
			UserAgent:      "goansi",
			TimeoutSeconds: 30,
		},
		Search: SearchConfig{
			Sort:      "traf",
			TitleType: "org",
			PageLimit: 0, // unlimited
		},
		Download: DownloadConfig{
			OutputDir:   ".",
			Concurrency: 0, // unbounded
		},
		Logging: LoggingConfig{
			Debug: false,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/goansi")
	}

	// Environment variable settings
	v.SetEnvPrefix("GOANSI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("site.base_url", d.Site.BaseURL)
	v.SetDefault("site.user_agent", d.Site.UserAgent)
	v.SetDefault("site.timeout_seconds", d.Site.TimeoutSeconds)

	v.SetDefault("search.sort", d.Search.Sort)
	v.SetDefault("search.title_type", d.Search.TitleType)
	v.SetDefault("search.page_limit", d.Search.PageLimit)

	v.SetDefault("download.output_dir", d.Download.OutputDir)
	v.SetDefault("download.concurrency", d.Download.Concurrency)

	v.SetDefault("logging.debug", d.Logging.Debug)
}

// Timeout returns the per-request timeout as a duration.
func (c *SiteConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Email   EmailConfig   `yaml:"email" mapstructure:"email"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BrowserConfig configures the browser automation session.
type BrowserConfig struct {
	Headless        bool `yaml:"headless" mapstructure:"headless"`
	NavTimeoutSecs  int  `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	SettleDelayMS   int  `yaml:"settle_delay_ms" mapstructure:"settle_delay_ms"`
	DebugScreenshot bool `yaml:"debug_screenshot" mapstructure:"debug_screenshot"`
}

// ScrapeConfig configures the extraction engine.
type ScrapeConfig struct {
	MaxResults  int `yaml:"max_results" mapstructure:"max_results"`
	NavRetries  int `yaml:"nav_retries" mapstructure:"nav_retries"`
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EmailConfig configures email discovery and verification.
type EmailConfig struct {
	DiscoveryTimeoutSecs int     `yaml:"discovery_timeout_secs" mapstructure:"discovery_timeout_secs"`
	DiscoveryConcurrency int     `yaml:"discovery_concurrency" mapstructure:"discovery_concurrency"`
	SMTPProbe            bool    `yaml:"smtp_probe" mapstructure:"smtp_probe"`
	SMTPTimeoutSecs      int     `yaml:"smtp_timeout_secs" mapstructure:"smtp_timeout_secs"`
	VerifyRatePerSec     float64 `yaml:"verify_rate_per_sec" mapstructure:"verify_rate_per_sec"`
}

// ExportConfig configures file exports.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.nav_timeout_secs", 30)
	v.SetDefault("browser.settle_delay_ms", 3000)
	v.SetDefault("browser.debug_screenshot", false)
	v.SetDefault("scrape.max_results", 20)
	v.SetDefault("scrape.nav_retries", 2)
	v.SetDefault("scrape.timeout_secs", 120)
	v.SetDefault("email.discovery_timeout_secs", 10)
	v.SetDefault("email.discovery_concurrency", 3)
	v.SetDefault("email.smtp_probe", false)
	v.SetDefault("email.smtp_timeout_secs", 10)
	v.SetDefault("email.verify_rate_per_sec", 2)
	v.SetDefault("export.dir", "exports")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

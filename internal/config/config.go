package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"TickerScope/internal/model"
)

// EnvPrefix prefixes environment overrides, e.g. TICKERSCOPE_LOG_LOG_LEVEL.
// The unprefixed field name (LOG_LEVEL, TELEGRAM_BOT_TOKEN, HTTPS_PROXY) is accepted too.
const EnvPrefix = "TICKERSCOPE"

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string        `yaml:"addr" envconfig:"LISTEN_ADDR"`
		RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
		Mode           string        `yaml:"mode" envconfig:"GIN_MODE"`
	} `yaml:"server" envconfig:"SERVER"`
	DataSource struct {
		Provider string        `yaml:"provider" envconfig:"DATA_PROVIDER"`
		BaseURL  string        `yaml:"base_url" envconfig:"DATA_BASE_URL"`
		APIKey   string        `yaml:"api_key" envconfig:"DATA_API_KEY"`
		Timeout  time.Duration `yaml:"timeout" envconfig:"FETCH_TIMEOUT"`
		Retries  int           `yaml:"retries" envconfig:"FETCH_RETRIES"`
		Backoff  time.Duration `yaml:"backoff" envconfig:"FETCH_BACKOFF"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Storage struct {
		Enabled bool   `yaml:"enabled" envconfig:"STORAGE_ENABLED"`
		Dir     string `yaml:"dir" envconfig:"STORAGE_DIR"`
		Format  string `yaml:"format" envconfig:"STORAGE_FORMAT"`
	} `yaml:"storage" envconfig:"STORAGE"`
	Chart struct {
		Height     int    `yaml:"height" envconfig:"CHART_HEIGHT"`
		DateFormat string `yaml:"date_format" envconfig:"CHART_DATE_FORMAT"`
		Template   string `yaml:"template" envconfig:"CHART_TEMPLATE"`
	} `yaml:"chart" envconfig:"CHART"`
	Defaults struct {
		Period   string `yaml:"period" envconfig:"DEFAULT_PERIOD"`
		MAWindow int    `yaml:"ma_window" envconfig:"DEFAULT_MA_WINDOW"`
	} `yaml:"defaults" envconfig:"DEFAULTS"`
	Schedule struct {
		Enabled   bool     `yaml:"enabled" envconfig:"SCHEDULE_ENABLED"`
		Cron      string   `yaml:"cron" envconfig:"SCHEDULE_CRON"`
		Watchlist []string `yaml:"watchlist" envconfig:"WATCHLIST"`
		Period    string   `yaml:"period" envconfig:"SCHEDULE_PERIOD"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
		BaseURL  string `yaml:"base_url" envconfig:"TELEGRAM_BASE_URL"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Metrics struct {
		Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`
		Subsystem string `yaml:"subsystem" envconfig:"METRICS_SUBSYSTEM"`
	} `yaml:"metrics" envconfig:"METRICS"`
	Log struct {
		Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
		Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	} `yaml:"log" envconfig:"LOG"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then .env files, then environment
// overrides, then fills defaults. A missing YAML or .env file is not an error.
// Without envFiles, ".env" in the working directory is tried.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	// Environment variable overrides
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// ResolvePath picks the config file: explicit flag, then CONFIG_PATH, then DefaultPath.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 60 * time.Second
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.Retries == 0 {
		c.DataSource.Retries = 3
	}
	if c.DataSource.Backoff == 0 {
		c.DataSource.Backoff = 2 * time.Second
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "."
	}
	if c.Storage.Format == "" {
		c.Storage.Format = "csv"
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 800
	}
	if c.Chart.DateFormat == "" {
		c.Chart.DateFormat = "%Y-%m-%d"
	}
	if c.Chart.Template == "" {
		c.Chart.Template = "plotly_white"
	}
	if c.Defaults.Period == "" {
		c.Defaults.Period = model.DefaultPeriod
	}
	if c.Defaults.MAWindow == 0 {
		c.Defaults.MAWindow = 20
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if c.Schedule.Period == "" {
		c.Schedule.Period = "6mo"
	}
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://api.telegram.org"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "tickerscope"
	}
	if c.Metrics.Subsystem == "" {
		c.Metrics.Subsystem = "service"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "logfmt"
	}
}

// TelegramEnabled reports whether alerts can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DataSource.Provider) {
	case "yahoo", "finance-go", "financego", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Retries < 1 {
		return fmt.Errorf("data_source.retries must be positive")
	}
	if c.DataSource.Backoff < 0 {
		return fmt.Errorf("data_source.backoff must not be negative")
	}
	switch strings.ToLower(c.Storage.Format) {
	case "csv", "json":
	default:
		return fmt.Errorf("storage.format must be csv or json")
	}
	if c.Chart.Height <= 0 {
		return fmt.Errorf("chart.height must be positive")
	}
	if c.Defaults.MAWindow <= 0 {
		return fmt.Errorf("defaults.ma_window must be positive")
	}
	if _, err := model.ParsePeriod(c.Defaults.Period, time.Now()); err != nil {
		return fmt.Errorf("defaults.period: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not supported", c.Log.Level)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Schedule.Enabled {
		if len(c.Schedule.Watchlist) == 0 {
			return fmt.Errorf("schedule.watchlist is required when the schedule is enabled")
		}
		if _, err := model.ParsePeriod(c.Schedule.Period, time.Now()); err != nil {
			return fmt.Errorf("schedule.period: %w", err)
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"SignalScanner/internal/collector"
	"SignalScanner/internal/model"
	"SignalScanner/internal/scanner"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Alert channels.
const (
	ChannelLINE     = "line"
	ChannelTelegram = "telegram"
)

// Config holds all application configuration.
type Config struct {
	Alert struct {
		Channel   string  `yaml:"channel" validate:"omitempty,oneof=line telegram"`
		Cron      string  `yaml:"cron" validate:"required"`
		MinChange float64 `yaml:"min_change" validate:"gte=-100,lte=100"`
	} `yaml:"alert"`
	LINE struct {
		AccessToken string `yaml:"access_token"`
		UserID      string `yaml:"user_id"`
	} `yaml:"line"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL           string  `yaml:"base_url" validate:"omitempty,url"`
		APIKey            string  `yaml:"api_key"`
		Lookback          string  `yaml:"lookback" validate:"required"`
		BacktestLookback  string  `yaml:"backtest_lookback" validate:"required"`
		RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	} `yaml:"data_source"`
	Filters struct {
		Momentum scanner.FilterConfig `yaml:"momentum"`
		Dip      scanner.FilterConfig `yaml:"dip"`
	} `yaml:"filters"`
	TickersFile string `yaml:"tickers_file" validate:"required"`
	Server      struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
		Format string `yaml:"format" validate:"oneof=text json"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used when no file or override sets a field.
func Default() *Config {
	cfg := &Config{}
	cfg.Alert.Cron = "0 30 15 * * 1-5"
	cfg.Alert.MinChange = scanner.DefaultAlertRule().MinChange
	cfg.DataSource.Lookback = collector.LookbackDefault
	cfg.DataSource.BacktestLookback = collector.LookbackBacktest
	cfg.DataSource.RequestsPerSecond = 2
	cfg.Filters.Momentum = scanner.DefaultFilterConfig(scanner.ModeMomentum)
	cfg.Filters.Dip = scanner.DefaultFilterConfig(scanner.ModeDip)
	cfg.TickersFile = "tickers.txt"
	cfg.Server.Addr = ":8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// LoadEnvFile loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables already set. Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	str := map[string]*string{
		"LINE_ACCESS_TOKEN":  &cfg.LINE.AccessToken,
		"LINE_USER_ID":       &cfg.LINE.UserID,
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"ALERT_CHANNEL":      &cfg.Alert.Channel,
		"ALERT_CRON":         &cfg.Alert.Cron,
		"DATA_BASE_URL":      &cfg.DataSource.BaseURL,
		"DATA_API_KEY":       &cfg.DataSource.APIKey,
		"LOOKBACK":           &cfg.DataSource.Lookback,
		"TICKERS_PATH":       &cfg.TickersFile,
		"SERVER_ADDR":        &cfg.Server.Addr,
		"LOG_LEVEL":          &cfg.Log.Level,
		"LOG_FORMAT":         &cfg.Log.Format,
		"HTTPS_PROXY":        &cfg.Proxy,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("REQUESTS_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse REQUESTS_PER_SECOND: %w", err)
		}
		cfg.DataSource.RequestsPerSecond = rps
	}
	if v := os.Getenv("ALERT_MIN_CHANGE"); v != "" {
		mc, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ALERT_MIN_CHANGE: %w", err)
		}
		cfg.Alert.MinChange = mc
	}

	return cfg, nil
}

var (
	validate   = validator.New()
	cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

// Validate checks field ranges, windows, filters and the cron spec.
// Alert credentials are checked separately by AlertChannel.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Lookback(); err != nil {
		return fmt.Errorf("data_source.lookback: %w", err)
	}
	if _, err := c.BacktestLookback(); err != nil {
		return fmt.Errorf("data_source.backtest_lookback: %w", err)
	}
	if err := c.Filters.Momentum.Validate(); err != nil {
		return fmt.Errorf("filters.momentum: %w", err)
	}
	if err := c.Filters.Dip.Validate(); err != nil {
		return fmt.Errorf("filters.dip: %w", err)
	}
	if _, err := cronParser.Parse(c.Alert.Cron); err != nil {
		return fmt.Errorf("alert.cron: %w", err)
	}
	return nil
}

// Lookback returns the scan history window.
func (c *Config) Lookback() (time.Duration, error) {
	return collector.ParseLookback(c.DataSource.Lookback)
}

// BacktestLookback returns the backtest history window.
func (c *Config) BacktestLookback() (time.Duration, error) {
	return collector.ParseLookback(c.DataSource.BacktestLookback)
}

// AlertRule returns the configured alert rule.
func (c *Config) AlertRule() scanner.AlertRule {
	return scanner.AlertRule{MinChange: c.Alert.MinChange}
}

// AlertChannel resolves the alert sink. With no explicit channel, LINE wins
// over Telegram when both are configured. Missing credentials yield
// ErrConfigurationMissing.
func (c *Config) AlertChannel() (string, error) {
	line := c.LINE.AccessToken != "" && c.LINE.UserID != ""
	tg := c.Telegram.BotToken != "" && c.Telegram.ChatID != ""

	switch c.Alert.Channel {
	case ChannelLINE:
		if !line {
			return "", fmt.Errorf("LINE_ACCESS_TOKEN and LINE_USER_ID are required: %w", model.ErrConfigurationMissing)
		}
		return ChannelLINE, nil
	case ChannelTelegram:
		if !tg {
			return "", fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required: %w", model.ErrConfigurationMissing)
		}
		return ChannelTelegram, nil
	}
	switch {
	case line:
		return ChannelLINE, nil
	case tg:
		return ChannelTelegram, nil
	default:
		return "", fmt.Errorf("no alert credentials (LINE or Telegram): %w", model.ErrConfigurationMissing)
	}
}

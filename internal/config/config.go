package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"`
		FileEnabled   bool   `yaml:"file_enabled"`
		FilePath      string `yaml:"file_path"`
		RotationSize  int    `yaml:"rotation_size_mb"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"log"`
	DataSource struct {
		Provider       string            `yaml:"provider"` // coingecko, yahoo or auto
		BaseURL        string            `yaml:"base_url"`
		YahooURL       string            `yaml:"yahoo_url"`
		APIKey         string            `yaml:"api_key"`
		TimeoutSeconds int               `yaml:"timeout_seconds"`
		RateLimitMS    int               `yaml:"rate_limit_ms"`
		DaysBack       int               `yaml:"days_back"`
		Live           bool              `yaml:"live"`
		Seed           int64             `yaml:"seed"`
		Calendar       string            `yaml:"calendar"`
		Instrument     string            `yaml:"instrument"`
		Instruments    map[string]string `yaml:"instruments"` // extra pair -> coin id mappings
	} `yaml:"data_source"`
	Pipeline struct {
		VolatilityWindow int     `yaml:"volatility_window"`
		SMAPeriods       []int   `yaml:"sma_periods"`
		RSIPeriod        int     `yaml:"rsi_period"`
		MACDFast         int     `yaml:"macd_fast"`
		MACDSlow         int     `yaml:"macd_slow"`
		MACDSignal       int     `yaml:"macd_signal"`
		BollingerPeriod  int     `yaml:"bollinger_period"`
		BollingerK       float64 `yaml:"bollinger_k"`
	} `yaml:"pipeline"`
	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string   `yaml:"refresh_cron"`
		SummaryCron string   `yaml:"summary_cron"`
		Watchlist   []string `yaml:"watchlist"`
		RunOnStart  bool     `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies environment
// variable overrides and defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	// Environment variable overrides
	if v := os.Getenv("EXPLORER_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("PROVIDER_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("EXPLORER_INSTRUMENT"); v != "" {
		c.DataSource.Instrument = v
	}
	if v := os.Getenv("HTTP_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Schedule.Watchlist = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"HTTP_PORT", &c.Server.Port},
		{"PROVIDER_TIMEOUT_SECONDS", &c.DataSource.TimeoutSeconds},
		{"CACHE_TTL_SECONDS", &c.Cache.TTLSeconds},
		{"DAYS_BACK", &c.DataSource.DaysBack},
	}
	for _, e := range ints {
		if v := os.Getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	if v := os.Getenv("USE_REAL_DATA"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env USE_REAL_DATA: %w", err)
		}
		c.DataSource.Live = b
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env RUN_ON_START: %w", err)
		}
		c.Schedule.RunOnStart = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "pretty"
	}
	if c.Log.FilePath == "" {
		c.Log.FilePath = "logs"
	}
	if c.Log.RotationSize == 0 {
		c.Log.RotationSize = 50
	}
	if c.Log.RetentionDays == 0 {
		c.Log.RetentionDays = 14
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "auto"
	}
	if c.DataSource.TimeoutSeconds == 0 {
		c.DataSource.TimeoutSeconds = 15
	}
	if c.DataSource.RateLimitMS == 0 {
		c.DataSource.RateLimitMS = 1200
	}
	if c.DataSource.DaysBack == 0 {
		c.DataSource.DaysBack = 365
	}
	if c.DataSource.Calendar == "" {
		c.DataSource.Calendar = "xnys"
	}
	if c.DataSource.Instrument == "" {
		c.DataSource.Instrument = "BTC-USDT"
	}
	if c.Pipeline.VolatilityWindow == 0 {
		c.Pipeline.VolatilityWindow = 30
	}
	if len(c.Pipeline.SMAPeriods) == 0 {
		c.Pipeline.SMAPeriods = []int{7, 14, 30}
	}
	if c.Pipeline.RSIPeriod == 0 {
		c.Pipeline.RSIPeriod = 14
	}
	if c.Pipeline.MACDFast == 0 {
		c.Pipeline.MACDFast = 12
	}
	if c.Pipeline.MACDSlow == 0 {
		c.Pipeline.MACDSlow = 26
	}
	if c.Pipeline.MACDSignal == 0 {
		c.Pipeline.MACDSignal = 9
	}
	if c.Pipeline.BollingerPeriod == 0 {
		c.Pipeline.BollingerPeriod = 20
	}
	if c.Pipeline.BollingerK == 0 {
		c.Pipeline.BollingerK = 2
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */5 * * * *"
	}
	if c.Schedule.SummaryCron == "" {
		c.Schedule.SummaryCron = "0 0 9 1 * *"
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	switch c.DataSource.Provider {
	case "auto", "coingecko", "yahoo":
	default:
		errs = append(errs, fmt.Errorf("data_source.provider must be auto, coingecko or yahoo, got %q", c.DataSource.Provider))
	}
	switch c.Log.Format {
	case "json", "pretty":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or pretty, got %q", c.Log.Format))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.DataSource.TimeoutSeconds < 0 || c.DataSource.RateLimitMS < 0 {
		errs = append(errs, errors.New("data_source timeouts must not be negative"))
	}
	if c.DataSource.DaysBack < 0 {
		errs = append(errs, errors.New("data_source.days_back must not be negative"))
	}
	if c.Pipeline.VolatilityWindow < 2 {
		errs = append(errs, errors.New("pipeline.volatility_window must be at least 2"))
	}
	for _, p := range c.Pipeline.SMAPeriods {
		if p <= 0 {
			errs = append(errs, fmt.Errorf("pipeline.sma_periods must be positive, got %d", p))
		}
	}
	if c.Pipeline.MACDFast >= c.Pipeline.MACDSlow {
		errs = append(errs, errors.New("pipeline.macd_fast must be less than macd_slow"))
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("telegram.bot_token and telegram.chat_id must be set together"))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, errors.New("cache.ttl_seconds must not be negative"))
	}
	return errors.Join(errs...)
}

// Timeout returns the provider HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// RateLimit returns the minimum spacing between provider calls.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.DataSource.RateLimitMS) * time.Millisecond
}

// CacheTTL returns the mock-data cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// NotifyEnabled reports whether Telegram delivery is configured.
func (c *Config) NotifyEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

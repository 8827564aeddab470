package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriver_Memory   = "memory"
	StoreDriver_Postgres = "postgres"
	StoreDriver_SQLite   = "sqlite"
)

var (
	ErrUnknownStoreDriver = errors.New("config: unknown store driver")
	ErrMissingDSN         = errors.New("config: store dsn is required")
)

type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Seating SeatingConfig `yaml:"seating"`
	Clock   ClockConfig   `yaml:"clock"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type HTTPConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst int     `yaml:"rate_burst"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory | postgres | sqlite
	DSN    string `yaml:"dsn"`    // postgres dsn or sqlite file path
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SeatingConfig struct {
	MaxSeats int `yaml:"max_seats"`
}

type ClockConfig struct {
	BreakDurationMins int `yaml:"break_duration_mins"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:      ":8080",
			RateLimit: 20,
			RateBurst: 40,
		},
		Store: StoreConfig{
			Driver: StoreDriver_Memory,
		},
		Log: LogConfig{
			Level: "info",
		},
		Seating: SeatingConfig{
			MaxSeats: 9,
		},
		Clock: ClockConfig{
			BreakDurationMins: 15,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

/*
Load 讀取設定
  - 先載入 .env (不存在時略過), 不覆寫已存在的環境變數
  - 再讀取 YAML 檔, 檔案不存在時使用預設值
  - 最後以環境變數覆寫
*/
func Load(filename string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_LIMIT: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("HTTP_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTP_RATE_BURST: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SEATING_MAX_SEATS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SEATING_MAX_SEATS: %w", err)
		}
		cfg.Seating.MaxSeats = n
	}
	if v := os.Getenv("BREAK_DURATION_MINS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BREAK_DURATION_MINS: %w", err)
		}
		cfg.Clock.BreakDurationMins = n
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true"
	}

	return nil
}

func (cfg *Config) Validate() error {
	switch cfg.Store.Driver {
	case StoreDriver_Memory:
	case StoreDriver_Postgres, StoreDriver_SQLite:
		if cfg.Store.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, cfg.Store.Driver)
	}

	if cfg.Seating.MaxSeats <= 0 {
		return fmt.Errorf("config: seating.max_seats must be positive")
	}

	if cfg.Clock.BreakDurationMins <= 0 {
		return fmt.Errorf("config: clock.break_duration_mins must be positive")
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return nil
}

// NewLogger builds a logrus logger at the configured level.
func (cfg *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

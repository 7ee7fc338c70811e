package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Seeds       SeedsConfig      `toml:"seeds"`
	MarketData  MarketDataConfig `toml:"market_data"`
	Scheduler   SchedulerConfig  `toml:"scheduler"`
	Ingest      IngestConfig     `toml:"ingest"`
	WebSocket   WebSocketConfig  `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// SeedsConfig points at the TOML files holding the instrument coverage list
// and the pinned glossary, loaded into storage on startup.
type SeedsConfig struct {
	InstrumentsFile string `toml:"instruments_file"`
	GlossaryFile    string `toml:"glossary_file"`
}

// MarketDataConfig configures the quote API client used by the trigger engine.
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	CacheTTL  string `toml:"cache_ttl"`  // e.g. "5m" - quote cache lifetime
}

// SchedulerConfig configures the end-of-day trigger evaluation job.
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// WebSocketConfig filters the log stream pushed to connected UI clients.
type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level"`        // minimum level to broadcast, default "info"
	ExcludePatterns []string `toml:"exclude_patterns"` // message substrings to drop
}

// IngestConfig holds tunables for the transcript ingest pipeline.
type IngestConfig struct {
	MaxQuotesPerCard int `toml:"max_quotes_per_card"`
	MaxCatalysts     int `toml:"max_catalysts"`
	MaxRisks         int `toml:"max_risks"`
	TimeStopDays     int `toml:"time_stop_days"`
}

// LoadConfig loads configuration from the given TOML files in order,
// later files overriding earlier ones, then applies environment overrides.
func LoadConfig(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PLAYBOOK_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("PLAYBOOK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PLAYBOOK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("PLAYBOOK_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("PLAYBOOK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PLAYBOOK_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if apiKey := os.Getenv("PLAYBOOK_MARKET_DATA_API_KEY"); apiKey != "" {
		config.MarketData.APIKey = apiKey
	}
	if baseURL := os.Getenv("PLAYBOOK_MARKET_DATA_BASE_URL"); baseURL != "" {
		config.MarketData.BaseURL = baseURL
	}

	if schedule := os.Getenv("PLAYBOOK_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
}

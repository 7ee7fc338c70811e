package common

// DefaultConfig returns a Config populated with default values
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/playbook.db",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Seeds: SeedsConfig{
			InstrumentsFile: "./seeds/instruments.toml",
			GlossaryFile:    "./seeds/glossary.toml",
		},
		MarketData: MarketDataConfig{
			BaseURL:   "https://eodhd.com/api",
			RateLimit: 10,
			CacheTTL:  "5m",
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "0 22 * * *", // daily after market close
		},
		Ingest: IngestConfig{
			MaxQuotesPerCard: 3,
			MaxCatalysts:     3,
			MaxRisks:         2,
			TimeStopDays:     45,
		},
	}
}

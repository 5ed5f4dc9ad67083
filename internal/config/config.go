// Package config loads application configuration from file and environment
// and owns global logger initialization.
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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Market MarketConfig `yaml:"market" mapstructure:"market"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the dataset cache and the optional warehouse.
type StoreConfig struct {
	// Path is the local SQLite dataset cache.
	Path string `yaml:"path" mapstructure:"path"`
	// DatabaseURL, when set, points import at a Postgres listings table.
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ImportConfig configures dataset ingestion.
type ImportConfig struct {
	// Sheet selects the worksheet for XLSX sources; empty means the first.
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
	// Delimiter for CSV sources.
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	// Table is the Postgres listings table read by database imports.
	Table string `yaml:"table" mapstructure:"table"`
}

// MarketConfig configures aggregation behavior.
type MarketConfig struct {
	// MinGroupN is the smallest group reported by grouped statistics.
	MinGroupN int `yaml:"min_group_n" mapstructure:"min_group_n"`
}

// ReportConfig configures memo generation.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	Title     string `yaml:"title" mapstructure:"title"`
	Author    string `yaml:"author" mapstructure:"author"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
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
	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "market.db")
	v.SetDefault("import.delimiter", ",")
	v.SetDefault("import.table", "listings")
	v.SetDefault("market.min_group_n", 10)
	v.SetDefault("report.output_dir", "reports")
	v.SetDefault("report.title", "Residential Market Memo")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
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

// Validate checks the configuration needed for the given mode. Modes map
// to command families: "analyze" covers the dataset commands, "serve" the
// HTTP API, "report" memo generation.
func (c *Config) Validate(mode string) error {
	var missing []string

	check := func(ok bool, msg string) {
		if !ok {
			missing = append(missing, msg)
		}
	}

	check(c.Store.Path != "" || c.Store.DatabaseURL != "",
		"store.path or store.database_url is required")
	check(c.Market.MinGroupN >= 1 && c.Market.MinGroupN <= 1000,
		"market.min_group_n must be between 1 and 1000")

	switch mode {
	case "analyze":
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
		check(c.Server.RateLimit >= 0, "server.rate_limit must be >= 0")
		check(c.Server.RateLimit == 0 || c.Server.RateBurst >= 1,
			"server.rate_burst must be >= 1 when rate limiting is on")
	case "report":
		check(c.Report.OutputDir != "", "report.output_dir is required")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
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

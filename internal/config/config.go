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
	Tribly TriblyConfig `yaml:"tribly" mapstructure:"tribly"`
	App    AppConfig    `yaml:"app" mapstructure:"app"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Poller PollerConfig `yaml:"poller" mapstructure:"poller"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// TriblyConfig holds backend API settings.
type TriblyConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	Token          string  `yaml:"token" mapstructure:"token"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// AppConfig holds settings for the user-facing dashboard app that auth
// links point at.
type AppConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	NearbyRadiusM int    `yaml:"nearby_radius_m" mapstructure:"nearby_radius_m"`
}

// StoreConfig configures the client-state backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PollerConfig configures the authorization session poller.
type PollerConfig struct {
	IntervalSecs int `yaml:"interval_secs" mapstructure:"interval_secs"`
	CeilingMins  int `yaml:"ceiling_mins" mapstructure:"ceiling_mins"`
}

// ServerConfig configures the local API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that configuration required for the given mode is
// present and within bounds. Modes: "cli" for commands that talk to
// the backend, "serve" for the local API server.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Tribly.BaseURL == "" {
		problems = append(problems, "tribly.base_url is required")
	}
	if c.Poller.IntervalSecs < 1 {
		problems = append(problems, "poller.interval_secs must be >= 1")
	}
	if c.Poller.CeilingMins < 1 {
		problems = append(problems, "poller.ceiling_mins must be >= 1")
	}
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRIBLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("tribly.base_url", "https://api.tribly.ai")
	v.SetDefault("tribly.timeout_secs", 30)
	v.SetDefault("tribly.requests_per_sec", 5)
	v.SetDefault("tribly.burst", 5)
	v.SetDefault("app.base_url", "https://app.tribly.ai")
	v.SetDefault("app.nearby_radius_m", 2000)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "dashboard.db")
	v.SetDefault("poller.interval_secs", 10)
	v.SetDefault("poller.ceiling_mins", 30)
	v.SetDefault("server.port", 8080)
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

// Package config loads service configuration and sets up logging.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Attom     AttomConfig     `yaml:"attom" mapstructure:"attom"`
	Redis     RedisConfig     `yaml:"redis" mapstructure:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres" mapstructure:"postgres"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
}

type ServerConfig struct {
	Port               int `yaml:"port" mapstructure:"port"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
}

// LogConfig configures the zap logger. Format is "json" or "console".
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type GoogleConfig struct {
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// AttomConfig is optional; without a key neither price estimates nor
// demographics are available.
type AttomConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// RedisConfig enables the geocode and demographics caches when Addr is set.
type RedisConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	Password        string        `yaml:"password" mapstructure:"password"`
	DB              int           `yaml:"db" mapstructure:"db"`
	GeocodeTTL      time.Duration `yaml:"geocode_ttl" mapstructure:"geocode_ttl"`
	DemographicsTTL time.Duration `yaml:"demographics_ttl" mapstructure:"demographics_ttl"`
}

// PostgresConfig enables the run ledger when DSN is set.
type PostgresConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

type EngineConfig struct {
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
	Quorum      float64       `yaml:"quorum" mapstructure:"quorum"`
	MaxWait     time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	MaxPhotos   int           `yaml:"max_photos" mapstructure:"max_photos"`
	CommuteMode string        `yaml:"commute_mode" mapstructure:"commute_mode"`
}

type DiscoveryConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

type EnrichConfig struct {
	Demographics bool `yaml:"demographics" mapstructure:"demographics"`
}

// Load reads .env (if present), an optional config.yaml in the working
// directory, and NEIGHBORHOODS_* environment variables, in rising precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("config: no .env file", zap.Error(err))
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("NEIGHBORHOODS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// legacy variable names still set by older deployments
	_ = v.BindEnv("google.api_key", "NEIGHBORHOODS_GOOGLE_API_KEY", "GOOGLE_KEY")
	_ = v.BindEnv("attom.api_key", "NEIGHBORHOODS_ATTOM_API_KEY", "ATTOM_API_KEY")
	_ = v.BindEnv("server.port", "NEIGHBORHOODS_SERVER_PORT", "PORT")

	v.SetDefault("server.port", 4002)
	v.SetDefault("server.rate_limit_per_minute", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.rate_limit_rps", 50)
	v.SetDefault("attom.api_key", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.geocode_ttl", "24h")
	v.SetDefault("redis.demographics_ttl", "168h")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("engine.settle_delay", "500ms")
	v.SetDefault("engine.quorum", 0.8)
	v.SetDefault("engine.max_wait", "30s")
	v.SetDefault("engine.max_photos", 7)
	v.SetDefault("engine.commute_mode", "driving")
	v.SetDefault("discovery.concurrency", 0)
	v.SetDefault("enrich.demographics", false)

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

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Google.APIKey == "" {
		return eris.New("config: google.api_key is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server.port %d", c.Server.Port)
	}
	if c.Engine.Quorum <= 0 || c.Engine.Quorum > 1 {
		return eris.Errorf("config: engine.quorum must be in (0, 1], got %v", c.Engine.Quorum)
	}
	if c.Engine.MaxPhotos < 1 || c.Engine.MaxPhotos > 7 {
		return eris.Errorf("config: engine.max_photos must be in [1, 7], got %d", c.Engine.MaxPhotos)
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

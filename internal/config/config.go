package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const EnvPrefix = "TRIVIA"

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Store  StoreConfig  `mapstructure:"store"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Game   GameConfig   `mapstructure:"game"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	PublicBaseURL   string        `mapstructure:"publicbaseurl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdowntimeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
	Methods []string `mapstructure:"methods"`
	Headers []string `mapstructure:"headers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MongoConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwtsecret"`
	TokenTTL        time.Duration `mapstructure:"tokenttl"`
	CuratorUsername string        `mapstructure:"curatorusername"`
	CuratorPassword string        `mapstructure:"curatorpassword"`
}

type GameConfig struct {
	DefaultTimeLimitSeconds int `mapstructure:"defaulttimelimitseconds"`
	MinTimeLimitSeconds     int `mapstructure:"mintimelimitseconds"`
	MaxTimeLimitSeconds     int `mapstructure:"maxtimelimitseconds"`
	BaseAward               int `mapstructure:"baseaward"`
	ConflictRetries         int `mapstructure:"conflictretries"`
	MaxPlayers              int `mapstructure:"maxplayers"`
	CodeAttempts            int `mapstructure:"codeattempts"`
}

// SetDefaults registers every key so AutomaticEnv can override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "triviarooms")
	v.SetDefault("app.version", "dev")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.publicbaseurl", "http://localhost:8080")
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("server.cors.origins", []string{"*"})
	v.SetDefault("server.cors.methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors.headers", []string{"Content-Type", "Authorization"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("mongo.enabled", false)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "triviarooms")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("store.driver", StoreRedis)

	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", 24*time.Hour)
	v.SetDefault("auth.curatorusername", "curator")
	v.SetDefault("auth.curatorpassword", "")

	v.SetDefault("game.defaulttimelimitseconds", 30)
	v.SetDefault("game.mintimelimitseconds", 5)
	v.SetDefault("game.maxtimelimitseconds", 300)
	v.SetDefault("game.baseaward", 1000)
	v.SetDefault("game.conflictretries", 1)
	v.SetDefault("game.maxplayers", 50)
	v.SetDefault("game.codeattempts", 10)
}

// Load reads .env, the optional config file and TRIVIA_* environment
// variables into v and decodes the result. configFile may be empty.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		zap.L().Debug("loaded .env")
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		zap.L().Info("no config file found, using defaults and environment")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store.driver %q (want %s or %s)", c.Store.Driver, StoreRedis, StoreMemory)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required (env: TRIVIA_AUTH_JWTSECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTTL must be positive")
	}
	g := c.Game
	if g.MinTimeLimitSeconds < 1 || g.MinTimeLimitSeconds > g.MaxTimeLimitSeconds {
		return fmt.Errorf("game time limits out of order: min=%d max=%d", g.MinTimeLimitSeconds, g.MaxTimeLimitSeconds)
	}
	if g.DefaultTimeLimitSeconds < g.MinTimeLimitSeconds || g.DefaultTimeLimitSeconds > g.MaxTimeLimitSeconds {
		return fmt.Errorf("game.defaultTimeLimitSeconds %d outside [%d, %d]", g.DefaultTimeLimitSeconds, g.MinTimeLimitSeconds, g.MaxTimeLimitSeconds)
	}
	if g.BaseAward < 1 {
		return errors.New("game.baseAward must be positive")
	}
	if g.ConflictRetries < 0 {
		return errors.New("game.conflictRetries must not be negative")
	}
	if g.MaxPlayers < 1 {
		return errors.New("game.maxPlayers must be positive")
	}
	if g.CodeAttempts < 1 {
		return errors.New("game.codeAttempts must be positive")
	}
	return nil
}

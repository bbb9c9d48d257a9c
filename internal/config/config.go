package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTIssuer string        `mapstructure:"JWT_ISSUER"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	RedisEnabled  bool          `mapstructure:"REDIS_ENABLED"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	SlotLockTTL   time.Duration `mapstructure:"SLOT_LOCK_TTL"`
	SlotLockWait  time.Duration `mapstructure:"SLOT_LOCK_WAIT"`

	KafkaEnabled       bool   `mapstructure:"KAFKA_ENABLED"`
	KafkaBrokers       string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopicBookings string `mapstructure:"KAFKA_TOPIC_BOOKINGS"`

	RateLimitPerMin    int           `mapstructure:"RATE_LIMIT_PER_MIN"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// Load reads .env (if present), then environment variables over defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	defaults := map[string]any{
		"APP_ENV":              "dev",
		"PORT":                 "8080",
		"DATABASE_URL":         "photosession.db",
		"LOG_LEVEL":            "info",
		"JWT_SECRET":           defaultJWTSecret,
		"JWT_ISSUER":           "photosession",
		"JWT_TTL":              "24h",
		"REDIS_ENABLED":        false,
		"REDIS_ADDR":           "localhost:6379",
		"REDIS_PASSWORD":       "",
		"REDIS_DB":             0,
		"SLOT_LOCK_TTL":        "10s",
		"SLOT_LOCK_WAIT":       "3s",
		"KAFKA_ENABLED":        false,
		"KAFKA_BROKERS":        "localhost:9092",
		"KAFKA_TOPIC_BOOKINGS": "photosession.bookings",
		"RATE_LIMIT_PER_MIN":   120,
		"REQUEST_TIMEOUT":      "15s",
		"CORS_ALLOWED_ORIGINS": "http://localhost:3000,http://localhost:5173",
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Brokers() []string { return splitList(c.KafkaBrokers) }

func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.SlotLockTTL <= 0 || cfg.SlotLockWait <= 0 {
		return fmt.Errorf("SLOT_LOCK_TTL and SLOT_LOCK_WAIT must be > 0")
	}
	if cfg.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must be >= 0")
	}
	if cfg.KafkaEnabled && (len(cfg.Brokers()) == 0 || cfg.KafkaTopicBookings == "") {
		return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC_BOOKINGS are required when KAFKA_ENABLED")
	}

	if isProdLike(cfg.AppEnv) {
		if s := strings.TrimSpace(cfg.JWTSecret); s == "" || s == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !cfg.RedisEnabled {
			log.Warn().Msg("REDIS_ENABLED=false in production: slot locks only cover this instance")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

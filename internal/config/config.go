package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"stagepay/internal/domain/policy"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
		log.Printf("invalid %s=%q, using default %d", key, val, defaultVal)
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("invalid %s=%q, using default %s", key, val, defaultVal)
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitConfig struct {
	URL      string
	Exchange string
}

type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type AutoResolveConfig struct {
	Interval  time.Duration
	BatchSize int
	LockTTL   time.Duration
}

type Config struct {
	Port      string
	JWTSecret string
	DB        DBConfig
	Redis     RedisConfig
	Rabbit    RabbitConfig
	Log       LogConfig

	// DisputeResponseWindow is how long an artist has to answer a
	// non-delivery report before it is auto-resolved.
	DisputeResponseWindow time.Duration
	AutoResolve           AutoResolveConfig
	Cancellation          policy.Config
}

// Load reads the configuration from the environment. Policy values are
// validated; everything else falls back to development defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      GetEnv("PORT", "3000"),
		JWTSecret: GetEnv("JWT_SECRET", "stagepay"),
		DB: DBConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "stagepay"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		Rabbit: RabbitConfig{
			URL:      GetEnv("RABBIT_URL", ""),
			Exchange: GetEnv("NOTIFICATION_EXCHANGE", "stagepay.notifications"),
		},
		Log: LogConfig{
			File:       GetEnv("LOG_FILE", ""),
			MaxSizeMB:  GetIntEnv("LOG_MAX_SIZE_MB", 100),
			MaxBackups: GetIntEnv("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: GetIntEnv("LOG_MAX_AGE_DAYS", 30),
		},
		DisputeResponseWindow: GetDurationEnv("DISPUTE_RESPONSE_WINDOW", 48*time.Hour),
		AutoResolve: AutoResolveConfig{
			Interval:  GetDurationEnv("AUTO_RESOLVE_INTERVAL", time.Minute),
			BatchSize: GetIntEnv("AUTO_RESOLVE_BATCH_SIZE", 100),
			LockTTL:   GetDurationEnv("AUTO_RESOLVE_LOCK_TTL", 5*time.Minute),
		},
		Cancellation: LoadCancellationPolicy(),
	}

	if cfg.DisputeResponseWindow <= 0 {
		return nil, fmt.Errorf("DISPUTE_RESPONSE_WINDOW must be positive, got %s", cfg.DisputeResponseWindow)
	}
	if cfg.AutoResolve.Interval <= 0 {
		return nil, fmt.Errorf("AUTO_RESOLVE_INTERVAL must be positive, got %s", cfg.AutoResolve.Interval)
	}
	if err := cfg.Cancellation.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCancellationPolicy reads the refund tiers, defaulting to 100/50/0 at
// the 14 and 7 day boundaries.
func LoadCancellationPolicy() policy.Config {
	def := policy.DefaultConfig()
	return policy.Config{
		FullRefundAboveDays:   GetIntEnv("CANCEL_FULL_REFUND_ABOVE_DAYS", def.FullRefundAboveDays),
		PartialRefundFromDays: GetIntEnv("CANCEL_PARTIAL_REFUND_FROM_DAYS", def.PartialRefundFromDays),
		FullRefundPercent:     GetIntEnv("CANCEL_FULL_REFUND_PERCENT", def.FullRefundPercent),
		PartialRefundPercent:  GetIntEnv("CANCEL_PARTIAL_REFUND_PERCENT", def.PartialRefundPercent),
		LateRefundPercent:     GetIntEnv("CANCEL_LATE_REFUND_PERCENT", def.LateRefundPercent),
		ArtistMinNoticeDays:   GetIntEnv("ARTIST_CANCEL_MIN_NOTICE_DAYS", def.ArtistMinNoticeDays),
		ArtistRefundPercent:   GetIntEnv("ARTIST_CANCEL_REFUND_PERCENT", def.ArtistRefundPercent),
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	CORSAllowedOrigins []string

	SnowflakeNode int64

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit RateLimitConfig

	NotifySQSQueueURL string

	ReminderCron    string
	ReminderEnabled bool

	TaxPolicyPath string
	DefaultRates  RateDefaults
}

// RateLimitConfig controls per-member submission throttling and the
// settlement lock. Both need Redis.
type RateLimitConfig struct {
	Enabled           bool
	SubmissionRate    float64
	SubmissionBurst   int
	SettlementLockTTL time.Duration
}

// RateDefaults are the rates a new guild starts with when the tax policy file
// does not override them.
type RateDefaults struct {
	Server  decimal.Decimal
	Country decimal.Decimal
	Company decimal.Decimal
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "civitas"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		SnowflakeNode:     getenvInt64("SNOWFLAKE_NODE", 1),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "civitas"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),
		DBAutoMigrate:     getenvBool("DATABASE_AUTO_MIGRATE", true),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           int(getenvInt64("REDIS_DB", 0)),
		RateLimit: RateLimitConfig{
			Enabled:           getenvBool("RATE_LIMIT_ENABLED", false),
			SubmissionRate:    getenvFloat("RATE_LIMIT_SUBMISSION_RATE", 0.5),
			SubmissionBurst:   int(getenvInt64("RATE_LIMIT_SUBMISSION_BURST", 5)),
			SettlementLockTTL: time.Duration(getenvInt64("RATE_LIMIT_SETTLEMENT_LOCK_SECONDS", 30)) * time.Second,
		},
		NotifySQSQueueURL: strings.TrimSpace(getenv("NOTIFY_SQS_QUEUE_URL", "")),
		ReminderCron:      getenv("REMINDER_CRON", "0 0 * * * *"),
		ReminderEnabled:   getenvBool("REMINDER_ENABLED", true),
		TaxPolicyPath:     strings.TrimSpace(getenv("TAX_POLICY_PATH", "")),
		DefaultRates: RateDefaults{
			Server:  getenvDecimal("DEFAULT_TAX_SERVER", decimal.Zero),
			Country: getenvDecimal("DEFAULT_TAX_COUNTRY", decimal.RequireFromString("0.05")),
			Company: getenvDecimal("DEFAULT_TAX_COMPANY", decimal.RequireFromString("0.15")),
		},

		CORSAllowedOrigins: getenvList("CORS_ALLOWED_ORIGINS"),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, def)
		return def
	}
	return parsed
}

func getenvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, value, def)
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %g", key, value, def)
		return def
	}
	return parsed
}

func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

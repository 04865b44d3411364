package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DBconfig struct {
	URL             string
	MaxConns        int
	MaxConnLifetime time.Duration
}

type RESTconfig struct {
	PORT               string
	CORSAllowedOrigins []string
	RatePerSecond      float64
	RateBurst          int
	ShutdownTimeout    time.Duration
}

type RedisConfig struct {
	URL     string
	Enabled bool
}

type RabbitMQConfig struct {
	URL     string
	Enabled bool
}

type StdoutLogConfig struct {
	Level  string
	IsJSON bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// OxyConfig - провайдер сессий.
type OxyConfig struct {
	APIURL          string
	JWTSecret       string
	SessionCacheTTL time.Duration
	Timeout         time.Duration
}

type StripeConfig struct {
	SecretKey        string
	WebhookSecret    string
	PricePlus        string
	PriceFileCredits string
	PriceFounder     string
	SuccessURL       string
	CancelURL        string
}

type GeocoderConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

type AssistantConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	RatePerMinute int
	Timeout       time.Duration
}

type SchedulerConfig struct {
	LeaseRefreshCron  string
	ViewingExpiryCron string
	RunOnStart        bool
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Database     DBconfig
	Rest         RESTconfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Oxy          OxyConfig
	Stripe       StripeConfig
	Geocoder     GeocoderConfig
	Assistant    AssistantConfig
	Scheduler    SchedulerConfig
}

// LoadConfig читает .env (если он есть) и переменные окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using environment variables\n", envPath)
	}

	return FromEnv()
}

// FromEnv собирает конфигурацию только из окружения.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "homiio")

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	cfg.Database.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", 20)
	cfg.Database.MaxConnLifetime = getEnvAsDuration("DATABASE_MAX_CONN_LIFETIME", time.Hour)

	cfg.Rest.PORT = getEnvAsString("PORT", "4000")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})
	cfg.Rest.RatePerSecond = getEnvAsFloat("API_RATE_PER_SECOND", 20)
	cfg.Rest.RateBurst = getEnvAsInt("API_RATE_BURST", 40)
	cfg.Rest.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.Redis.Enabled = cfg.Redis.URL != ""

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", true)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling RabbitMQ.")
			cfg.RabbitMQ.Enabled = false
		}
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.IsJSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	cfg.Oxy.APIURL = strings.TrimRight(getEnvAsString("OXY_API_URL", "https://api.oxy.so"), "/")
	cfg.Oxy.JWTSecret = os.Getenv("OXY_JWT_SECRET")
	cfg.Oxy.SessionCacheTTL = getEnvAsDuration("SESSION_CACHE_TTL", 5*time.Minute)
	cfg.Oxy.Timeout = getEnvAsDuration("OXY_TIMEOUT", 5*time.Second)

	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.Stripe.PricePlus = os.Getenv("STRIPE_PRICE_PLUS")
	cfg.Stripe.PriceFileCredits = os.Getenv("STRIPE_PRICE_FILE_CREDITS")
	cfg.Stripe.PriceFounder = os.Getenv("STRIPE_PRICE_FOUNDER")
	cfg.Stripe.SuccessURL = getEnvAsString("BILLING_SUCCESS_URL", "https://homiio.com/payment/success?session_id={CHECKOUT_SESSION_ID}")
	cfg.Stripe.CancelURL = getEnvAsString("BILLING_CANCEL_URL", "https://homiio.com/payment/cancel")

	cfg.Geocoder.URL = strings.TrimRight(getEnvAsString("GEOCODER_URL", "https://nominatim.openstreetmap.org"), "/")
	cfg.Geocoder.UserAgent = getEnvAsString("GEOCODER_USER_AGENT", "homiio-backend/1.0")
	cfg.Geocoder.Timeout = getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second)

	cfg.Assistant.APIKey = os.Getenv("AI_API_KEY")
	cfg.Assistant.BaseURL = os.Getenv("AI_BASE_URL")
	cfg.Assistant.Model = getEnvAsString("AI_MODEL", "gpt-4o-mini")
	cfg.Assistant.RatePerMinute = getEnvAsInt("CHAT_RATE_PER_MINUTE", 10)
	cfg.Assistant.Timeout = getEnvAsDuration("AI_TIMEOUT", 60*time.Second)

	cfg.Scheduler.LeaseRefreshCron = getEnvAsString("LEASE_REFRESH_CRON", "*/15 * * * *")
	cfg.Scheduler.ViewingExpiryCron = getEnvAsString("VIEWING_EXPIRY_CRON", "*/5 * * * *")
	cfg.Scheduler.RunOnStart = getEnvAsBool("SCHEDULER_RUN_ON_START", true)

	return cfg, nil
}

// StripeEnabled - платежи включены, только если задан секретный ключ.
func (c *AppConfig) StripeEnabled() bool {
	return c.Stripe.SecretKey != ""
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration понимает "30s", "5m" и просто число секунд.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists || valStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration. Using default value: %s\n", key, valStr, defaultValue)
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	parts := strings.Split(valStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

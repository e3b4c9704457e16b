package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Remote REST service.
	APIBaseURL    string        `mapstructure:"API_BASE_URL"`
	APIToken      string        `mapstructure:"API_TOKEN"`
	APITimeout    time.Duration `mapstructure:"API_TIMEOUT"`
	APIRatePerSec float64       `mapstructure:"API_RATE_PER_SEC"`
	APIBurst      int           `mapstructure:"API_BURST"`

	// Session store.
	SessionBackend   string        `mapstructure:"SESSION_BACKEND"`
	SessionDBPath    string        `mapstructure:"SESSION_DB_PATH"`
	SessionNamespace string        `mapstructure:"SESSION_NAMESPACE"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB  int    `mapstructure:"REDIS_SESSION_DB"`
	RedisGeocodeDB  int    `mapstructure:"REDIS_GEOCODE_DB"`
	RedisReminderDB int    `mapstructure:"REDIS_REMINDER_DB"`

	// Google Maps API Key.
	GoogleAPIKey       string        `mapstructure:"GOOGLE_API_KEY"`
	GeocodeConcurrency int           `mapstructure:"GEOCODE_CONCURRENCY"`
	GeocodeCacheTTL    time.Duration `mapstructure:"GEOCODE_CACHE_TTL"`
	GeocodeWait        time.Duration `mapstructure:"GEOCODE_WAIT"`

	// Recommendations: "api" asks the REST service, "gemini" generates locally.
	Recommender  string `mapstructure:"RECOMMENDER"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	BatchWorkers          int    `mapstructure:"BATCH_WORKERS"`
	BatchOnPartialFailure string `mapstructure:"BATCH_ON_PARTIAL_FAILURE"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	RemindersEnabled bool `mapstructure:"REMINDERS_ENABLED"`

	OTelEnabled     bool    `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint    string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRatio float64 `mapstructure:"OTEL_SAMPLING_RATIO"`
}

var AppConfig Config

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("API_TOKEN", "")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("API_RATE_PER_SEC", 20)
	v.SetDefault("API_BURST", 10)
	v.SetDefault("SESSION_BACKEND", "sqlite")
	v.SetDefault("SESSION_DB_PATH", "vetclinic.db")
	v.SetDefault("SESSION_NAMESPACE", "default")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("REDIS_GEOCODE_DB", 1)
	v.SetDefault("REDIS_REMINDER_DB", 2)
	v.SetDefault("GOOGLE_API_KEY", "")
	v.SetDefault("GEOCODE_CONCURRENCY", 4)
	v.SetDefault("GEOCODE_CACHE_TTL", "720h")
	v.SetDefault("GEOCODE_WAIT", "5s")
	v.SetDefault("RECOMMENDER", "api")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("BATCH_WORKERS", 4)
	v.SetDefault("BATCH_ON_PARTIAL_FAILURE", "keep")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "vetclinic.workflow")
	v.SetDefault("REMINDERS_ENABLED", false)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
}

// Load reads config.yaml (if any) and the environment through v.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates AppConfig from the global viper instance.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Validate rejects values that cannot be wired.
func (c Config) Validate() error {
	switch c.SessionBackend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of sqlite, redis, memory (got %q)", c.SessionBackend)
	}
	switch c.Recommender {
	case "api", "gemini":
	default:
		return fmt.Errorf("RECOMMENDER must be api or gemini (got %q)", c.Recommender)
	}
	switch c.BatchOnPartialFailure {
	case "keep", "compensate":
	default:
		return fmt.Errorf("BATCH_ON_PARTIAL_FAILURE must be keep or compensate (got %q)", c.BatchOnPartialFailure)
	}
	if c.Recommender == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when RECOMMENDER=gemini")
	}
	return nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

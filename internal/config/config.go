package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	OpenAI   OpenAIConfig
	UltraMsg UltraMsgConfig
	BDNS     BDNSConfig
	Store    StoreConfig
	Webhook  WebhookConfig
	Notify   NotifyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values for the grant corpus.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// OpenAIConfig defines model access for answer synthesis and embeddings.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	ChatTopK       int
	NotifyTopK     int
	TimeoutSeconds int
}

// UltraMsgConfig holds the WhatsApp transport credentials.
type UltraMsgConfig struct {
	BaseURL    string
	InstanceID string
	Token      string
}

// BDNSConfig points at the public grant announcement API.
type BDNSConfig struct {
	BaseURL  string
	Keyword  string
	PageSize int
}

// StoreConfig locates the persisted user profile document.
type StoreConfig struct {
	Path string
}

// WebhookConfig secures the inbound webhook.
type WebhookConfig struct {
	Token       string
	DedupTTLSec int
}

// NotifyConfig controls the notification batch runner.
type NotifyConfig struct {
	IntervalHours int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "grant-notifier"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			BaseURL:        os.Getenv("OPENAI_BASE_URL"),
			ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			ChatTopK:       getEnvAsInt("OPENAI_CHAT_TOP_K", 50),
			NotifyTopK:     getEnvAsInt("OPENAI_NOTIFY_TOP_K", 5),
			TimeoutSeconds: getEnvAsInt("OPENAI_TIMEOUT_SECONDS", 60),
		},
		UltraMsg: UltraMsgConfig{
			BaseURL:    getEnv("ULTRAMSG_BASE_URL", "https://api.ultramsg.com"),
			InstanceID: os.Getenv("ULTRAMSG_INSTANCE_ID"),
			Token:      os.Getenv("ULTRAMSG_TOKEN"),
		},
		BDNS: BDNSConfig{
			BaseURL:  getEnv("BDNS_BASE_URL", "https://www.infosubvenciones.es/bdnstrans"),
			Keyword:  getEnv("BDNS_KEYWORD", "PYME"),
			PageSize: getEnvAsInt("BDNS_PAGE_SIZE", 50),
		},
		Store: StoreConfig{
			Path: getEnv("USER_STORE_PATH", "usuarios.json"),
		},
		Webhook: WebhookConfig{
			Token:       os.Getenv("WEBHOOK_TOKEN"),
			DedupTTLSec: getEnvAsInt("WEBHOOK_DEDUP_TTL_SECONDS", 86400),
		},
		Notify: NotifyConfig{
			IntervalHours: getEnvAsInt("NOTIFY_INTERVAL_HOURS", 0),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call model timeout.
func (o OpenAIConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// DedupTTL returns how long processed webhook message IDs are remembered.
func (w WebhookConfig) DedupTTL() time.Duration {
	if w.DedupTTLSec <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(w.DedupTTLSec) * time.Second
}

// Interval returns the notify loop cadence; zero means run once and exit.
func (n NotifyConfig) Interval() time.Duration {
	if n.IntervalHours <= 0 {
		return 0
	}
	return time.Duration(n.IntervalHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

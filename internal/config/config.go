package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	S3          S3Config
	Log         LogConfig
	Gateway     GatewayConfig
	Extract     ExtractConfig
	Consistency ConsistencyConfig
	CORS        CORSConfig
	Queue       QueueConfig
	CaseStore   CaseStoreConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GatewayProviderConfig holds settings for a single model gateway provider.
type GatewayProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	OCRModel    string `mapstructure:"ocr_model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// GatewayConfig holds model gateway settings with multi-provider support.
// The secondary provider, when configured, is tried after the primary under
// rate-limit backoff.
type GatewayConfig struct {
	Primary   GatewayProviderConfig `mapstructure:"primary"`
	Secondary GatewayProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary gateway config, or nil if not configured.
func (g *GatewayConfig) SecondaryConfig() *GatewayProviderConfig {
	if g.Secondary.Provider != "" {
		return &g.Secondary
	}
	return nil
}

// ExtractConfig holds field extraction settings.
type ExtractConfig struct {
	// Strategy is "direct" or "ocr_assisted".
	Strategy string `mapstructure:"strategy"`
}

// ConsistencyConfig holds cross-document consistency settings.
type ConsistencyConfig struct {
	// NameMatcher is "exact" or "model". The model-assisted matcher issues a
	// text-only gateway call when the exact token-set comparison fails.
	NameMatcher string `mapstructure:"name_matcher"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds verification queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CaseStoreConfig holds case persistence settings.
type CaseStoreConfig struct {
	// EncryptionKey, when set, is a base64-encoded 32-byte key used to
	// encrypt case result payloads at rest.
	EncryptionKey string `mapstructure:"encryption_key"`
}

// Load reads configuration from environment variables with the VERIDOC_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VERIDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "veridoc")
	v.SetDefault("db.password", "veridoc_secret")
	v.SetDefault("db.name", "veridoc_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "veridoc-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Gateway defaults
	v.SetDefault("gateway.primary.provider", "fireworks")
	v.SetDefault("gateway.primary.api_key", "")
	v.SetDefault("gateway.primary.model", "accounts/fireworks/models/llama4-maverick-instruct-basic")
	v.SetDefault("gateway.primary.ocr_model", "accounts/fireworks/models/firesearch-ocr-v6")
	v.SetDefault("gateway.primary.timeout_secs", 120)
	v.SetDefault("gateway.secondary.provider", "")
	v.SetDefault("gateway.secondary.api_key", "")
	v.SetDefault("gateway.secondary.model", "")
	v.SetDefault("gateway.secondary.ocr_model", "")
	v.SetDefault("gateway.secondary.timeout_secs", 120)

	// Extraction defaults
	v.SetDefault("extract.strategy", "direct")

	// Consistency defaults
	v.SetDefault("consistency.name_matcher", "exact")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8501,http://127.0.0.1:8501")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Case store defaults
	v.SetDefault("case_store.encryption_key", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "VERIDOC_SERVER_PORT",
		"server.read_timeout":            "VERIDOC_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "VERIDOC_SERVER_WRITE_TIMEOUT",
		"server.environment":             "VERIDOC_SERVER_ENVIRONMENT",
		"db.host":                        "VERIDOC_DB_HOST",
		"db.port":                        "VERIDOC_DB_PORT",
		"db.user":                        "VERIDOC_DB_USER",
		"db.password":                    "VERIDOC_DB_PASSWORD",
		"db.name":                        "VERIDOC_DB_NAME",
		"db.sslmode":                     "VERIDOC_DB_SSLMODE",
		"db.max_open":                    "VERIDOC_DB_MAX_OPEN",
		"db.max_idle":                    "VERIDOC_DB_MAX_IDLE",
		"s3.region":                      "VERIDOC_S3_REGION",
		"s3.bucket":                      "VERIDOC_S3_BUCKET",
		"s3.endpoint":                    "VERIDOC_S3_ENDPOINT",
		"s3.access_key":                  "VERIDOC_S3_ACCESS_KEY",
		"s3.secret_key":                  "VERIDOC_S3_SECRET_KEY",
		"s3.max_file_size_mb":            "VERIDOC_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":              "VERIDOC_S3_PRESIGN_EXPIRY",
		"log.level":                      "VERIDOC_LOG_LEVEL",
		"log.format":                     "VERIDOC_LOG_FORMAT",
		"gateway.primary.provider":       "VERIDOC_GATEWAY_PRIMARY_PROVIDER",
		"gateway.primary.api_key":        "VERIDOC_GATEWAY_PRIMARY_API_KEY",
		"gateway.primary.model":          "VERIDOC_GATEWAY_PRIMARY_MODEL",
		"gateway.primary.ocr_model":      "VERIDOC_GATEWAY_PRIMARY_OCR_MODEL",
		"gateway.primary.timeout_secs":   "VERIDOC_GATEWAY_PRIMARY_TIMEOUT_SECS",
		"gateway.secondary.provider":     "VERIDOC_GATEWAY_SECONDARY_PROVIDER",
		"gateway.secondary.api_key":      "VERIDOC_GATEWAY_SECONDARY_API_KEY",
		"gateway.secondary.model":        "VERIDOC_GATEWAY_SECONDARY_MODEL",
		"gateway.secondary.ocr_model":    "VERIDOC_GATEWAY_SECONDARY_OCR_MODEL",
		"gateway.secondary.timeout_secs": "VERIDOC_GATEWAY_SECONDARY_TIMEOUT_SECS",
		"extract.strategy":               "VERIDOC_EXTRACT_STRATEGY",
		"consistency.name_matcher":       "VERIDOC_CONSISTENCY_NAME_MATCHER",
		"cors.allowed_origins":           "VERIDOC_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":       "VERIDOC_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":              "VERIDOC_QUEUE_MAX_RETRIES",
		"queue.concurrency":              "VERIDOC_QUEUE_CONCURRENCY",
		"case_store.encryption_key":      "VERIDOC_CASE_STORE_ENCRYPTION_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if VERIDOC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("VERIDOC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	cfg.Gateway = GatewayConfig{
		Primary: GatewayProviderConfig{
			Provider:    v.GetString("gateway.primary.provider"),
			APIKey:      v.GetString("gateway.primary.api_key"),
			Model:       v.GetString("gateway.primary.model"),
			OCRModel:    v.GetString("gateway.primary.ocr_model"),
			TimeoutSecs: v.GetInt("gateway.primary.timeout_secs"),
		},
		Secondary: GatewayProviderConfig{
			Provider:    v.GetString("gateway.secondary.provider"),
			APIKey:      v.GetString("gateway.secondary.api_key"),
			Model:       v.GetString("gateway.secondary.model"),
			OCRModel:    v.GetString("gateway.secondary.ocr_model"),
			TimeoutSecs: v.GetInt("gateway.secondary.timeout_secs"),
		},
	}

	cfg.Extract = ExtractConfig{
		Strategy: v.GetString("extract.strategy"),
	}
	cfg.Consistency = ConsistencyConfig{
		NameMatcher: v.GetString("consistency.name_matcher"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.CaseStore = CaseStoreConfig{
		EncryptionKey: v.GetString("case_store.encryption_key"),
	}

	return cfg, nil
}

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
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Email   EmailConfig
	Session SessionConfig
	Kafka   KafkaConfig
	Auth    AuthConfig
	Notify  NotifyConfig

	Integration IntegrationConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// SessionConfig selects the store for login lockout and token revocation.
type SessionConfig struct {
	Provider      string `mapstructure:"provider"` // "memory" or "redis"
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// KafkaConfig holds invoice event publishing settings.
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

// AuthConfig holds login lockout policy.
type AuthConfig struct {
	MaxLoginAttempts int           `mapstructure:"max_login_attempts"`
	LockDuration     time.Duration `mapstructure:"lock_duration"`
}

// NotifyConfig bounds background notification work.
type NotifyConfig struct {
	Concurrency int64         `mapstructure:"concurrency"`
	Backlog     int64         `mapstructure:"backlog"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// IntegrationConfig holds service provider call and scheduling settings.
type IntegrationConfig struct {
	SchedulerEnabled bool          `mapstructure:"scheduler_enabled"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
	SendTimeout      time.Duration `mapstructure:"send_timeout"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
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

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
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

// Load reads configuration from environment variables with the REGNIFY_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REGNIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "regnify")
	v.SetDefault("db.password", "regnify_secret")
	v.SetDefault("db.name", "regnify_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "regnify")

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.bucket", "regnify-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 150)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@regnify.com")
	v.SetDefault("email.from_name", "Regnify")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Session store defaults
	v.SetDefault("session.provider", "memory")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.key_prefix", "regnify")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "invoice-events")
	v.SetDefault("kafka.client_id", "regnify")

	// Auth defaults
	v.SetDefault("auth.max_login_attempts", 5)
	v.SetDefault("auth.lock_duration", "30m")

	// Notify defaults
	v.SetDefault("notify.concurrency", 8)
	v.SetDefault("notify.backlog", 256)
	v.SetDefault("notify.timeout", "30s")

	// Integration defaults
	v.SetDefault("integration.scheduler_enabled", true)
	v.SetDefault("integration.poll_interval", "1m")
	v.SetDefault("integration.http_timeout", "30s")
	v.SetDefault("integration.send_timeout", "2m")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "REGNIFY_SERVER_PORT",
		"server.read_timeout":      "REGNIFY_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "REGNIFY_SERVER_WRITE_TIMEOUT",
		"server.environment":       "REGNIFY_SERVER_ENVIRONMENT",
		"db.host":                  "REGNIFY_DB_HOST",
		"db.port":                  "REGNIFY_DB_PORT",
		"db.user":                  "REGNIFY_DB_USER",
		"db.password":              "REGNIFY_DB_PASSWORD",
		"db.name":                  "REGNIFY_DB_NAME",
		"db.sslmode":               "REGNIFY_DB_SSLMODE",
		"db.max_open":              "REGNIFY_DB_MAX_OPEN",
		"db.max_idle":              "REGNIFY_DB_MAX_IDLE",
		"jwt.secret":               "REGNIFY_JWT_SECRET",
		"jwt.access_expiry":        "REGNIFY_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":       "REGNIFY_JWT_REFRESH_EXPIRY",
		"jwt.issuer":               "REGNIFY_JWT_ISSUER",
		"s3.region":                "REGNIFY_S3_REGION",
		"s3.bucket":                "REGNIFY_S3_BUCKET",
		"s3.endpoint":              "REGNIFY_S3_ENDPOINT",
		"s3.access_key":            "REGNIFY_S3_ACCESS_KEY",
		"s3.secret_key":            "REGNIFY_S3_SECRET_KEY",
		"s3.max_file_size_mb":      "REGNIFY_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "REGNIFY_S3_PRESIGN_EXPIRY",
		"log.level":                "REGNIFY_LOG_LEVEL",
		"log.format":               "REGNIFY_LOG_FORMAT",
		"cors.allowed_origins":     "REGNIFY_CORS_ALLOWED_ORIGINS",
		"email.provider":           "REGNIFY_EMAIL_PROVIDER",
		"email.region":             "REGNIFY_EMAIL_REGION",
		"email.from_address":       "REGNIFY_EMAIL_FROM_ADDRESS",
		"email.from_name":          "REGNIFY_EMAIL_FROM_NAME",
		"email.frontend_url":       "REGNIFY_EMAIL_FRONTEND_URL",
		"session.provider":         "REGNIFY_SESSION_PROVIDER",
		"session.redis_addr":       "REGNIFY_SESSION_REDIS_ADDR",
		"session.redis_password":   "REGNIFY_SESSION_REDIS_PASSWORD",
		"session.redis_db":         "REGNIFY_SESSION_REDIS_DB",
		"session.key_prefix":       "REGNIFY_SESSION_KEY_PREFIX",
		"kafka.enabled":            "REGNIFY_KAFKA_ENABLED",
		"kafka.brokers":            "REGNIFY_KAFKA_BROKERS",
		"kafka.topic":              "REGNIFY_KAFKA_TOPIC",
		"kafka.client_id":          "REGNIFY_KAFKA_CLIENT_ID",
		"auth.max_login_attempts":  "REGNIFY_AUTH_MAX_LOGIN_ATTEMPTS",
		"auth.lock_duration":       "REGNIFY_AUTH_LOCK_DURATION",
		"notify.concurrency":       "REGNIFY_NOTIFY_CONCURRENCY",
		"notify.backlog":           "REGNIFY_NOTIFY_BACKLOG",
		"notify.timeout":           "REGNIFY_NOTIFY_TIMEOUT",

		"integration.scheduler_enabled": "REGNIFY_INTEGRATION_SCHEDULER_ENABLED",
		"integration.poll_interval":     "REGNIFY_INTEGRATION_POLL_INTERVAL",
		"integration.http_timeout":      "REGNIFY_INTEGRATION_HTTP_TIMEOUT",
		"integration.send_timeout":      "REGNIFY_INTEGRATION_SEND_TIMEOUT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if REGNIFY_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("REGNIFY_SERVER_PORT") == "" {
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
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
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
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	cfg.Session = SessionConfig{
		Provider:      v.GetString("session.provider"),
		RedisAddr:     v.GetString("session.redis_addr"),
		RedisPassword: v.GetString("session.redis_password"),
		RedisDB:       v.GetInt("session.redis_db"),
		KeyPrefix:     v.GetString("session.key_prefix"),
	}

	cfg.Kafka = KafkaConfig{
		Enabled:  v.GetBool("kafka.enabled"),
		Brokers:  splitList(v.GetString("kafka.brokers")),
		Topic:    v.GetString("kafka.topic"),
		ClientID: v.GetString("kafka.client_id"),
	}

	cfg.Auth = AuthConfig{
		MaxLoginAttempts: v.GetInt("auth.max_login_attempts"),
		LockDuration:     v.GetDuration("auth.lock_duration"),
	}
	if cfg.Auth.MaxLoginAttempts <= 0 {
		return nil, fmt.Errorf("auth.max_login_attempts must be positive, got %d", cfg.Auth.MaxLoginAttempts)
	}

	cfg.Notify = NotifyConfig{
		Concurrency: v.GetInt64("notify.concurrency"),
		Backlog:     v.GetInt64("notify.backlog"),
		Timeout:     v.GetDuration("notify.timeout"),
	}
	if cfg.Notify.Concurrency <= 0 {
		cfg.Notify.Concurrency = 1
	}

	cfg.Integration = IntegrationConfig{
		SchedulerEnabled: v.GetBool("integration.scheduler_enabled"),
		PollInterval:     v.GetDuration("integration.poll_interval"),
		HTTPTimeout:      v.GetDuration("integration.http_timeout"),
		SendTimeout:      v.GetDuration("integration.send_timeout"),
	}
	if cfg.Integration.SchedulerEnabled && cfg.Integration.PollInterval <= 0 {
		return nil, fmt.Errorf("integration.poll_interval must be positive, got %s", cfg.Integration.PollInterval)
	}

	return cfg, nil
}

// splitList parses a comma-separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

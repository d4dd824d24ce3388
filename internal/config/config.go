package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	AppName       string
	Environment   string
	HTTPPort      string
	LogLevel      string
	CORSOrigins   []string
	MaxUploadMB   int
	MigrationsDir string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type LLMConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
	RPS        float64
}

// Enabled reports whether an API key is configured.
func (c LLMConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type StorageConfig struct {
	Dir string
}

type WorkerConfig struct {
	Workers int
	Queue   int
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:       req("APP_NAME"),
		Environment:   req("APP_ENV"),
		HTTPPort:      req("HTTP_PORT"),
		LogLevel:      withDefault(opt("LOG_LEVEL"), "info"),
		CORSOrigins:   splitList(opt("CORS_ALLOW_ORIGINS")),
		MaxUploadMB:   intOr(opt("MAX_UPLOAD_MB"), 10),
		MigrationsDir: withDefault(opt("MIGRATIONS_DIR"), "migrations"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  withDefault(opt("DB_SSL_MODE"), "disable"),

		ConnectTimeout:        durationOr(opt("DB_CONNECT_TIMEOUT"), 5*time.Second),
		PoolMaxConns:          int32(intOr(opt("DB_POOL_MAX_CONNS"), 0)),
		PoolMinConns:          int32(intOr(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   durationOr(opt("DB_POOL_MAX_CONN_LIFETIME"), 0),
		PoolMaxConnIdleTime:   durationOr(opt("DB_POOL_MAX_CONN_IDLE_TIME"), 0),
		PoolHealthCheckPeriod: durationOr(opt("DB_POOL_HEALTH_CHECK_PERIOD"), 0),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  durationOr(opt("JWT_ACCESS_TTL"), 15*time.Minute),
		RefreshExpiresIn: durationOr(opt("JWT_REFRESH_TTL"), 7*24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     withDefault(opt("REDIS_HOST"), "localhost"),
		Port:     withDefault(opt("REDIS_PORT"), "6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       intOr(opt("REDIS_DB"), 0),
		TTL:      time.Duration(intOr(opt("REDIS_TTL"), 600)) * time.Second,
	}

	cfg.LLM = LLMConfig{
		APIKey:     opt("GEMINI_API_KEY"),
		Model:      withDefault(opt("LLM_MODEL"), "gemini-1.5-flash"),
		EmbedModel: withDefault(opt("LLM_EMBED_MODEL"), "text-embedding-004"),
		RPS:        floatOr(opt("LLM_RPS"), 2),
	}

	cfg.Storage = StorageConfig{
		Dir: withDefault(opt("STORAGE_DIR"), "storage"),
	}

	cfg.Worker = WorkerConfig{
		Workers: intOr(opt("WORKER_COUNT"), 4),
		Queue:   intOr(opt("WORKER_QUEUE"), 256),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

// IsProduction is true for APP_ENV=production or prod.
func (c Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.App.Environment))
	return env == "production" || env == "prod"
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func floatOr(raw string, def float64) float64 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func durationOr(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

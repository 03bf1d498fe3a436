package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Auth      AuthConfig      `toml:"auth"`
	SMTP      SMTPConfig      `toml:"smtp"`
	CORS      CORSConfig      `toml:"cors"`
	Redis     RedisConfig     `toml:"redis"`
	Reminders RemindersConfig `toml:"reminders"`
	Documents DocumentsConfig `toml:"documents"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int    `toml:"http_port"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	IdleTimeout     int    `toml:"idle_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
	Timezone        string `toml:"timezone"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// AuthConfig настройки JWT
type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
	Issuer          string `toml:"issuer"`
}

// TokenTTL время жизни access токена
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// SMTPConfig настройки отправки email
type SMTPConfig struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

// CORSConfig разрешённые origin'ы
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// RedisConfig настройки блокировок бронирования
type RedisConfig struct {
	Enabled        bool   `toml:"enabled"`
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	LockTTLSeconds int    `toml:"lock_ttl_seconds"`
}

// LockTTL время жизни блокировки слота
func (r RedisConfig) LockTTL() time.Duration {
	return time.Duration(r.LockTTLSeconds) * time.Second
}

// RemindersConfig настройки фоновой отправки напоминаний
type RemindersConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
	BatchSize       int  `toml:"batch_size"`
}

// Interval период запуска обработчика напоминаний
func (r RemindersConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

// DocumentsConfig настройки хранения загруженных файлов
type DocumentsConfig struct {
	Dir       string `toml:"dir"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// MaxSizeBytes максимальный размер файла в байтах
func (d DocumentsConfig) MaxSizeBytes() int64 {
	return int64(d.MaxSizeMB) << 20
}

// Location часовой пояс, в котором считаются календарные дни
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Server.Timezone)
}

// Load читает TOML файл, затем применяет секреты из окружения (и .env, если он есть)
func Load(path string) (*Config, error) {
	// .env необязателен - в проде секреты приходят из окружения
	_ = godotenv.Load()

	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
			Timezone:        "UTC",
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "vet_booking_service",
		},
		Auth: AuthConfig{
			TokenTTLMinutes: 60 * 24,
			Issuer:          "smc-vet-booking",
		},
		SMTP: SMTPConfig{
			Port: 1025,
			From: "no-reply@vetbooking.local",
		},
		Redis: RedisConfig{
			Addr:           "127.0.0.1:6379",
			LockTTLSeconds: 5,
		},
		Reminders: RemindersConfig{
			Enabled:         true,
			IntervalSeconds: 60,
			BatchSize:       100,
		},
		Documents: DocumentsConfig{
			Dir:       "./uploads",
			MaxSizeMB: 10,
		},
	}
}

// applyEnv переопределяет секреты значениями из окружения
func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("config: database host and dbname are required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret (or JWT_SECRET) is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("config: auth.token_ttl_minutes must be positive")
	}
	if c.Reminders.IntervalSeconds <= 0 || c.Reminders.BatchSize <= 0 {
		return errors.New("config: reminders.interval_seconds and reminders.batch_size must be positive")
	}
	if c.Documents.MaxSizeMB <= 0 {
		return errors.New("config: documents.max_size_mb must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: invalid server.timezone: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
)

var (
	// ErrInvalidConfig возвращается, когда конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Драйверы уведомлений
const (
	NotificationDriverLog   = "log"
	NotificationDriverKafka = "kafka"
	NotificationDriverHTTP  = "http"
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Redis         RedisConfig         `toml:"redis"`
	Notifications NotificationsConfig `toml:"notifications"`
	Booking       BookingConfig       `toml:"booking"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
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
	Enabled             bool   `toml:"enabled"`
	Path                string `toml:"path"`
	ServiceName         string `toml:"service_name"`
	PoolStatsIntervalMs int    `toml:"pool_stats_interval_ms"`
}

// RedisConfig настройки Redis (блокировка по дорожке мастера)
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// NotificationsConfig настройки отправки уведомлений
type NotificationsConfig struct {
	Driver    string `toml:"driver"` // log | kafka | http
	Brokers   string `toml:"brokers"`
	Topic     string `toml:"topic"`
	URL       string `toml:"url"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// BookingConfig настройки записи
type BookingConfig struct {
	Location      string `toml:"location"`        // IANA зона для времени без смещения
	LockTTLMs     int    `toml:"lock_ttl_ms"`     // время жизни блокировки дорожки
	LockTimeoutMs int    `toml:"lock_timeout_ms"` // сколько ждём блокировку
	TxMaxRetries  int    `toml:"tx_max_retries"`
}

// NotificationTimeout таймаут отправки одного уведомления
func (n NotificationsConfig) NotificationTimeout() time.Duration {
	return time.Duration(n.TimeoutMs) * time.Millisecond
}

// LockTTL время жизни блокировки дорожки
func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLMs) * time.Millisecond
}

// LockTimeout сколько ждём освобождения блокировки
func (b BookingConfig) LockTimeout() time.Duration {
	return time.Duration(b.LockTimeoutMs) * time.Millisecond
}

// TimeLocation зона для разбора времени без смещения
func (b BookingConfig) TimeLocation() (*time.Location, error) {
	return time.LoadLocation(b.Location)
}

// Load читает конфигурацию из TOML файла, затем применяет переменные окружения
// (включая .env, если файл есть) и значения по умолчанию
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	// .env опционален, отсутствие файла - не ошибка
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv переопределяет значения из окружения
func (c *Config) applyEnv() {
	if v, ok := lookupEnv("HTTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.HTTPPort = port
		}
	}
	if v, ok := lookupEnv("DB_HOST"); ok {
		c.Database.Host = v
	}
	if v, ok := lookupEnv("DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.Logs.Level = v
	}
	if v, ok := lookupEnv("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := lookupEnv("KAFKA_BROKERS"); ok {
		c.Notifications.Brokers = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "salon_booking"
	}
	if c.Metrics.PoolStatsIntervalMs == 0 {
		c.Metrics.PoolStatsIntervalMs = 15000
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Notifications.Driver == "" {
		c.Notifications.Driver = NotificationDriverLog
	}
	if c.Notifications.Topic == "" {
		c.Notifications.Topic = "salon.appointments"
	}
	if c.Notifications.TimeoutMs == 0 {
		c.Notifications.TimeoutMs = 5000
	}

	if c.Booking.Location == "" {
		c.Booking.Location = "UTC"
	}
	if c.Booking.LockTTLMs == 0 {
		c.Booking.LockTTLMs = 10000
	}
	if c.Booking.LockTimeoutMs == 0 {
		c.Booking.LockTimeoutMs = 3000
	}
	if c.Booking.TxMaxRetries == 0 {
		c.Booking.TxMaxRetries = 3
	}
}

// Validate проверяет конфигурацию и возвращает все найденные проблемы разом
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port must be between 1 and 65535, got %d", c.Server.HTTPPort))
	}
	if c.Database.Host == "" {
		problems = append(problems, "database.host is required")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	if _, err := logger.ParseLevel(c.Logs.Level); err != nil {
		problems = append(problems, fmt.Sprintf("logs.level: %v", err))
	}

	switch c.Notifications.Driver {
	case NotificationDriverLog:
	case NotificationDriverKafka:
		if strings.TrimSpace(c.Notifications.Brokers) == "" {
			problems = append(problems, "notifications.brokers is required for kafka driver")
		}
	case NotificationDriverHTTP:
		if c.Notifications.URL == "" {
			problems = append(problems, "notifications.url is required for http driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("notifications.driver must be one of log, kafka, http, got %q", c.Notifications.Driver))
	}

	if _, err := c.Booking.TimeLocation(); err != nil {
		problems = append(problems, fmt.Sprintf("booking.location: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

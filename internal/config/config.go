// Package config загружает конфигурацию леджера из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"ledger"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"vote_ledger"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Storage ---
	// "postgres" для продакшена, "memory" для локальной разработки и демо.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"postgres"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Redis (кэш конфигурации голосования) ---
	RedisEnabled   bool          `envconfig:"REDIS_ENABLED" default:"false"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	ConfigCacheTTL time.Duration `envconfig:"CONFIG_CACHE_TTL" default:"1h"`

	// --- Kafka (события о применённых голосах) ---
	KafkaEnabled    bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokersRaw string   `envconfig:"KAFKA_BROKERS" default:"kafka:9092"`
	KafkaBrokers    []string `envconfig:"-"` // заполним вручную
	KafkaTopic      string   `envconfig:"KAFKA_TOPIC" default:"vote-ledger.votes"`

	// --- Identity ---
	// Связка "принципал:argon2id-хэш;принципал:argon2id-хэш" доверенных сервисов.
	// Пустая связка = все мутации будут отклоняться с ошибкой аутентификации.
	ServiceKeyringRaw string `envconfig:"SERVICE_KEYRING" default:""`

	// --- Audit ---
	// Cron-расписание проверки целостности тэлли (score == up - down).
	AuditSchedule string `envconfig:"AUDIT_SCHEDULE" default:"0 * * * *"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.StorageBackend != "postgres" && c.StorageBackend != "memory" {
		return fmt.Errorf("STORAGE_BACKEND должен быть postgres или memory, получено %q", c.StorageBackend)
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_ENABLED=true, но KAFKA_BROKERS пуст")
	}
	if c.ConfigCacheTTL <= 0 {
		return fmt.Errorf("CONFIG_CACHE_TTL должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	cfg.KafkaBrokers = parseCSV(cfg.KafkaBrokersRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

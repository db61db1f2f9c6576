// Package app инициализирует все компоненты леджера.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы,
// издателя событий и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vote-ledger/internal/authz"
	"serotonyl.ru/vote-ledger/internal/config"
	"serotonyl.ru/vote-ledger/internal/db/postgres"
	"serotonyl.ru/vote-ledger/internal/events"
	"serotonyl.ru/vote-ledger/internal/features/karma"
	"serotonyl.ru/vote-ledger/internal/features/votes"
	"serotonyl.ru/vote-ledger/internal/features/votingconfig"
	"serotonyl.ru/vote-ledger/internal/identity"
	"serotonyl.ru/vote-ledger/internal/jobs"
)

// App содержит все компоненты леджера.
type App struct {
	Votes     *votes.Service
	Configs   *votingconfig.Service
	Karma     *karma.Service
	Scheduler *jobs.Scheduler

	db        *pgxpool.Pool
	redis     *goredis.Client
	publisher events.Publisher
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config, authorizer authz.Service) (*App, error) {
	a := &App{}

	// === 1. Хранилище ===
	var (
		votesRepo  votes.Repository
		configRepo votingconfig.Repository
		karmaRepo  karma.Repository
	)
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		a.db = pool

		if err := runMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}

		votesRepo = votes.NewPostgresRepository(pool)
		configRepo = votingconfig.NewPostgresRepository(pool)
		karmaRepo = karma.NewPostgresRepository(pool)
	case "memory":
		log.Warn("STORAGE_BACKEND=memory: данные не переживут перезапуск")
		votesRepo = votes.NewMemoryRepository()
		configRepo = votingconfig.NewMemoryRepository()
		karmaRepo = karma.NewMemoryRepository()
	default:
		return nil, fmt.Errorf("неизвестный STORAGE_BACKEND: %q", cfg.StorageBackend)
	}

	// === 2. Кэш конфигураций ===
	if cfg.RedisEnabled {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("Redis недоступен: %w", err)
		}
		a.redis = rdb
		configRepo = votingconfig.NewCachedRepository(rdb, configRepo, cfg.ConfigCacheTTL)
		log.Info("Кэш конфигураций через Redis включён")
	}

	// === 3. Издатель событий ===
	if cfg.KafkaEnabled {
		a.publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.WithField("topic", cfg.KafkaTopic).Info("Публикация событий в Kafka включена")
	} else {
		a.publisher = events.NewNoopPublisher()
	}

	// === 4. Идентификация ===
	keyring, err := identity.ParseKeyring(cfg.ServiceKeyringRaw)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("SERVICE_KEYRING: %w", err)
	}
	if len(keyring) == 0 {
		log.Warn("SERVICE_KEYRING пуст: все мутирующие вызовы будут отклоняться")
	}
	verifier := identity.NewKeyringVerifier(keyring)

	// === 5. Сервисы ===
	configService := votingconfig.NewService(configRepo, verifier, authorizer)
	votesService := votes.NewService(votesRepo, configService, verifier, clockwork.NewRealClock(), a.publisher)
	karmaService := karma.NewService(karmaRepo, configService, verifier)

	// === 6. Планировщик задач ===
	scheduler := jobs.NewScheduler(votesService, cfg.AuditSchedule)

	a.Votes = votesService
	a.Configs = configService
	a.Karma = karmaService
	a.Scheduler = scheduler
	return a, nil
}

// Close освобождает внешние ресурсы приложения.
func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.WithError(err).Error("Ошибка закрытия издателя событий")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Error("Ошибка закрытия клиента Redis")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Votes},
		{2, migration002Tallies},
		{3, migration003Configs},
		{4, migration004Karma},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

// Треды и ответы различаются флагом is_reply: их числовые id могут
// совпадать, но пространства ключей не пересекаются.
var migration001Votes = `
CREATE TABLE IF NOT EXISTS votes (
    board_id BIGINT NOT NULL,
    thread_id BIGINT NOT NULL,
    reply_id BIGINT NOT NULL DEFAULT 0,
    is_reply BOOLEAN NOT NULL DEFAULT FALSE,
    voter VARCHAR(255) NOT NULL,
    direction INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (board_id, thread_id, reply_id, is_reply, voter)
);
CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter);
`

var migration002Tallies = `
CREATE TABLE IF NOT EXISTS vote_tallies (
    board_id BIGINT NOT NULL,
    thread_id BIGINT NOT NULL,
    reply_id BIGINT NOT NULL DEFAULT 0,
    is_reply BOOLEAN NOT NULL DEFAULT FALSE,
    upvotes INTEGER NOT NULL DEFAULT 0,
    downvotes INTEGER NOT NULL DEFAULT 0,
    score INTEGER NOT NULL DEFAULT 0,
    first_vote_at BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (board_id, thread_id, reply_id, is_reply)
);
`

var migration003Configs = `
CREATE TABLE IF NOT EXISTS voting_configs (
    board_id BIGINT PRIMARY KEY,
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    allow_downvotes BOOLEAN NOT NULL DEFAULT TRUE,
    karma_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    karma_multiplier INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
`

var migration004Karma = `
CREATE TABLE IF NOT EXISTS board_karma (
    board_id BIGINT NOT NULL,
    user_principal VARCHAR(255) NOT NULL,
    points BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (board_id, user_principal)
);
CREATE TABLE IF NOT EXISTS total_karma (
    user_principal VARCHAR(255) PRIMARY KEY,
    points BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMP DEFAULT NOW()
);
`

// Package votingconfig — repository.go определяет контракт хранилища
// конфигураций и две его реализации: PostgreSQL и in-memory.
package votingconfig

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository — хранилище «борда → конфигурация».
// Get возвращает nil без ошибки, если для борды ничего не сохранено:
// дефолт подставляет сервис, а не хранилище.
type Repository interface {
	Get(ctx context.Context, boardID uint64) (*Config, error)
	Set(ctx context.Context, boardID uint64, cfg Config) error
}

// --- PostgreSQL ---

// PostgresRepository работает с таблицей voting_configs.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository создаёт репозиторий конфигураций.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get возвращает сохранённую конфигурацию борды или nil.
func (r *PostgresRepository) Get(ctx context.Context, boardID uint64) (*Config, error) {
	query := `
		SELECT enabled, allow_downvotes, karma_enabled, karma_multiplier
		FROM voting_configs WHERE board_id = $1
	`
	var c Config
	err := r.db.QueryRow(ctx, query, int64(boardID)).Scan(
		&c.Enabled, &c.AllowDownvotes, &c.KarmaEnabled, &c.KarmaMultiplier,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Set сохраняет конфигурацию борды (перезаписывает существующую).
func (r *PostgresRepository) Set(ctx context.Context, boardID uint64, cfg Config) error {
	query := `
		INSERT INTO voting_configs (board_id, enabled, allow_downvotes, karma_enabled, karma_multiplier)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (board_id) DO UPDATE
		SET enabled = $2, allow_downvotes = $3, karma_enabled = $4,
		    karma_multiplier = $5, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		int64(boardID), cfg.Enabled, cfg.AllowDownvotes, cfg.KarmaEnabled, cfg.KarmaMultiplier,
	)
	return err
}

// --- In-memory ---

// MemoryRepository — потокобезопасное in-memory хранилище конфигураций.
// Используется в тестах и при STORAGE_BACKEND=memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	configs map[uint64]Config
}

// NewMemoryRepository создаёт пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{configs: make(map[uint64]Config)}
}

func (r *MemoryRepository) Get(_ context.Context, boardID uint64) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.configs[boardID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *MemoryRepository) Set(_ context.Context, boardID uint64, cfg Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[boardID] = cfg
	return nil
}

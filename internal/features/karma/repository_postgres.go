// Package karma — repository_postgres.go выполняет операции
// с таблицами board_karma и total_karma.
package karma

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/vote-ledger/internal/common"
	"serotonyl.ru/vote-ledger/internal/identity"
)

// Код PostgreSQL «numeric_value_out_of_range» — выход за пределы BIGINT.
const pgNumericOutOfRange = "22003"

// PostgresRepository работает с таблицами board_karma и total_karma.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository создаёт репозиторий кармы.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add прибавляет дельту к бордовому и глобальному накопителям
// в одной транзакции.
func (r *PostgresRepository) Add(ctx context.Context, boardID uint64, user identity.Principal, delta int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback(ctx)

	boardQuery := `
		INSERT INTO board_karma (board_id, user_principal, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (board_id, user_principal) DO UPDATE
		SET points = board_karma.points + $3, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, boardQuery, int64(boardID), string(user), delta); err != nil {
		return wrapOverflow(err)
	}

	totalQuery := `
		INSERT INTO total_karma (user_principal, points)
		VALUES ($1, $2)
		ON CONFLICT (user_principal) DO UPDATE
		SET points = total_karma.points + $2, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, totalQuery, string(user), delta); err != nil {
		return wrapOverflow(err)
	}

	return tx.Commit(ctx)
}

// GetBoard возвращает карму пользователя на борде (0, если записи нет).
func (r *PostgresRepository) GetBoard(ctx context.Context, boardID uint64, user identity.Principal) (int64, error) {
	query := `SELECT points FROM board_karma WHERE board_id = $1 AND user_principal = $2`
	var points int64
	err := r.db.QueryRow(ctx, query, int64(boardID), string(user)).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return points, err
}

// GetTotal возвращает суммарную карму пользователя по всем бордам.
func (r *PostgresRepository) GetTotal(ctx context.Context, user identity.Principal) (int64, error) {
	query := `SELECT points FROM total_karma WHERE user_principal = $1`
	var points int64
	err := r.db.QueryRow(ctx, query, string(user)).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return points, err
}

// wrapOverflow превращает выход за пределы BIGINT в типизированную ошибку.
func wrapOverflow(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgNumericOutOfRange {
		return fmt.Errorf("%w: %v", common.ErrKarmaOverflow, err)
	}
	return err
}

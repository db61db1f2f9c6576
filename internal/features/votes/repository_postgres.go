// Package votes — repository_postgres.go выполняет операции
// с таблицами votes и vote_tallies.
package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/vote-ledger/internal/identity"
)

// PostgresRepository работает с таблицами votes и vote_tallies.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository создаёт репозиторий голосов.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetVote возвращает активный голос пользователя по таргету.
func (r *PostgresRepository) GetVote(ctx context.Context, target Target, voter identity.Principal) (Direction, error) {
	query := `
		SELECT direction FROM votes
		WHERE board_id = $1 AND thread_id = $2 AND reply_id = $3 AND is_reply = $4 AND voter = $5
	`
	var direction uint32
	err := r.db.QueryRow(ctx, query,
		int64(target.BoardID), int64(target.ThreadID), int64(target.ReplyID), target.IsReply, string(voter),
	).Scan(&direction)
	if errors.Is(err, pgx.ErrNoRows) {
		return DirectionNone, nil
	}
	if err != nil {
		return DirectionNone, err
	}
	return Direction(direction), nil
}

// ApplyCast записывает голос и новый агрегат в одной транзакции:
// при сбое любой из двух записей обе откатываются.
func (r *PostgresRepository) ApplyCast(ctx context.Context, target Target, voter identity.Principal, direction Direction, tally Tally) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback(ctx)

	if direction == DirectionNone {
		query := `
			DELETE FROM votes
			WHERE board_id = $1 AND thread_id = $2 AND reply_id = $3 AND is_reply = $4 AND voter = $5
		`
		_, err = tx.Exec(ctx, query,
			int64(target.BoardID), int64(target.ThreadID), int64(target.ReplyID), target.IsReply, string(voter),
		)
	} else {
		query := `
			INSERT INTO votes (board_id, thread_id, reply_id, is_reply, voter, direction)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (board_id, thread_id, reply_id, is_reply, voter) DO UPDATE
			SET direction = $6, updated_at = NOW()
		`
		_, err = tx.Exec(ctx, query,
			int64(target.BoardID), int64(target.ThreadID), int64(target.ReplyID), target.IsReply,
			string(voter), uint32(direction),
		)
	}
	if err != nil {
		return err
	}

	tallyQuery := `
		INSERT INTO vote_tallies (board_id, thread_id, reply_id, is_reply, upvotes, downvotes, score, first_vote_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (board_id, thread_id, reply_id, is_reply) DO UPDATE
		SET upvotes = $5, downvotes = $6, score = $7, first_vote_at = $8, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, tallyQuery,
		int64(target.BoardID), int64(target.ThreadID), int64(target.ReplyID), target.IsReply,
		tally.Upvotes, tally.Downvotes, tally.Score, int64(tally.FirstVoteAt),
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetTally возвращает агрегат таргета или нулевое значение.
func (r *PostgresRepository) GetTally(ctx context.Context, target Target) (Tally, error) {
	query := `
		SELECT upvotes, downvotes, score, first_vote_at FROM vote_tallies
		WHERE board_id = $1 AND thread_id = $2 AND reply_id = $3 AND is_reply = $4
	`
	var t Tally
	var firstVoteAt int64
	err := r.db.QueryRow(ctx, query,
		int64(target.BoardID), int64(target.ThreadID), int64(target.ReplyID), target.IsReply,
	).Scan(&t.Upvotes, &t.Downvotes, &t.Score, &firstVoteAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tally{}, nil
	}
	if err != nil {
		return Tally{}, err
	}
	t.FirstVoteAt = uint64(firstVoteAt)
	return t, nil
}

// SaveTally сохраняет агрегат таргета.
func (r *PostgresRepository) SaveTally(ctx context.Context, target Target, tally Tally) error {
	query := `
		INSERT INTO vote_tallies (board_id, thread_id, reply_id, is_reply, upvotes, downvotes, score, first_vote_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (board_id, thread_id, reply_id, is_reply) DO UPDATE
		SET upvotes = $5, downvotes = $6, score = $7, first_vote_at = $8, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		int64(target.BoardID), int64(target.ThreadID), int64(target.ReplyID), target.IsReply,
		tally.Upvotes, tally.Downvotes, tally.Score, int64(tally.FirstVoteAt),
	)
	return err
}

// CountInconsistentTallies считает агрегаты, нарушающие инвариант счёта.
func (r *PostgresRepository) CountInconsistentTallies(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM vote_tallies WHERE score <> upvotes::int - downvotes::int`
	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	return count, err
}

// Package karma — repository_memory.go хранит накопители кармы в памяти.
package karma

import (
	"context"
	"fmt"
	"math"
	"sync"

	"serotonyl.ru/vote-ledger/internal/common"
	"serotonyl.ru/vote-ledger/internal/identity"
)

type boardKey struct {
	boardID uint64
	user    identity.Principal
}

// MemoryRepository — потокобезопасное in-memory хранилище кармы.
// Оба накопителя меняются под одним замком — атомарность как у транзакции.
type MemoryRepository struct {
	mu    sync.RWMutex
	board map[boardKey]int64
	total map[identity.Principal]int64
}

// NewMemoryRepository создаёт пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		board: make(map[boardKey]int64),
		total: make(map[identity.Principal]int64),
	}
}

func (r *MemoryRepository) Add(_ context.Context, boardID uint64, user identity.Principal, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := boardKey{boardID, user}
	newBoard, err := checkedAdd(r.board[key], delta)
	if err != nil {
		return err
	}
	newTotal, err := checkedAdd(r.total[user], delta)
	if err != nil {
		return err
	}

	// Оба накопителя либо меняются вместе, либо не меняются вовсе
	r.board[key] = newBoard
	r.total[user] = newTotal
	return nil
}

func (r *MemoryRepository) GetBoard(_ context.Context, boardID uint64, user identity.Principal) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.board[boardKey{boardID, user}], nil
}

func (r *MemoryRepository) GetTotal(_ context.Context, user identity.Principal) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total[user], nil
}

// checkedAdd складывает с контролем переполнения int64.
func checkedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, fmt.Errorf("%w: %d + %d", common.ErrKarmaOverflow, a, b)
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, fmt.Errorf("%w: %d + %d", common.ErrKarmaOverflow, a, b)
	}
	return a + b, nil
}

// Package votes — repository_memory.go хранит голоса и тэлли в памяти.
// Используется в тестах и при STORAGE_BACKEND=memory.
package votes

import (
	"context"
	"sync"

	"serotonyl.ru/vote-ledger/internal/identity"
)

type voteKey struct {
	target Target
	voter  identity.Principal
}

// MemoryRepository — потокобезопасное in-memory хранилище голосов и тэлли.
type MemoryRepository struct {
	mu      sync.RWMutex
	votes   map[voteKey]Direction
	tallies map[Target]Tally
}

// NewMemoryRepository создаёт пустое хранилище.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		votes:   make(map[voteKey]Direction),
		tallies: make(map[Target]Tally),
	}
}

func (r *MemoryRepository) GetVote(_ context.Context, target Target, voter identity.Principal) (Direction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.votes[voteKey{target, voter}]; ok {
		return d, nil
	}
	return DirectionNone, nil
}

// ApplyCast мутирует обе карты под одним захватом замка:
// частичное состояние снаружи не наблюдаемо.
func (r *MemoryRepository) ApplyCast(_ context.Context, target Target, voter identity.Principal, direction Direction, tally Tally) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := voteKey{target, voter}
	if direction == DirectionNone {
		delete(r.votes, key)
	} else {
		r.votes[key] = direction
	}
	r.tallies[target] = tally
	return nil
}

func (r *MemoryRepository) GetTally(_ context.Context, target Target) (Tally, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tallies[target], nil
}

func (r *MemoryRepository) SaveTally(_ context.Context, target Target, tally Tally) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tallies[target] = tally
	return nil
}

func (r *MemoryRepository) CountInconsistentTallies(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, t := range r.tallies {
		if t.Score != int32(t.Upvotes)-int32(t.Downvotes) {
			count++
		}
	}
	return count, nil
}

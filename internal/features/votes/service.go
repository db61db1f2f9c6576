// Package votes — service.go содержит движок голосования: аутентификация,
// проверка политики борды и атомарный переход состояния голоса.
package votes

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vote-ledger/internal/common"
	"serotonyl.ru/vote-ledger/internal/events"
	"serotonyl.ru/vote-ledger/internal/features/ranking"
	"serotonyl.ru/vote-ledger/internal/features/votingconfig"
	"serotonyl.ru/vote-ledger/internal/identity"
)

// Число страйпов замков. Конкурентные голоса сериализуются только
// внутри одного страйпа, разные таргеты почти всегда идут параллельно.
const lockStripes = 64

// Service — движок голосования. Единственный писатель в хранилище
// голосов и тэлли: каждый переход выполняется в критической секции
// своего таргета, поэтому два голосующих по одному таргету никогда
// не теряют обновление друг друга.
type Service struct {
	repo      Repository
	configs   *votingconfig.Service
	verifier  identity.Verifier
	clock     clockwork.Clock
	publisher events.Publisher
	locks     [lockStripes]sync.Mutex
}

// NewService создаёт движок голосования.
func NewService(
	repo Repository,
	configs *votingconfig.Service,
	verifier identity.Verifier,
	clock clockwork.Clock,
	publisher events.Publisher,
) *Service {
	return &Service{
		repo:      repo,
		configs:   configs,
		verifier:  verifier,
		clock:     clock,
		publisher: publisher,
	}
}

// lockFor возвращает замок страйпа, которому принадлежит таргет.
func (s *Service) lockFor(target Target) *sync.Mutex {
	h := fnv.New32a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], target.BoardID)
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], target.ThreadID)
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], target.ReplyID)
	h.Write(buf[:])
	if target.IsReply {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return &s.locks[h.Sum32()%lockStripes]
}

// Cast применяет голос вызывающего к таргету и возвращает обновлённый тэлли.
//
// Операция идемпотентна: повторный голос в том же направлении снимает
// свой прежний эффект и накладывает его заново — чистое изменение ноль.
// DirectionNone снимает голос; снятие несуществующего голоса — no-op.
func (s *Service) Cast(ctx context.Context, caller identity.Caller, target Target, direction Direction) (Tally, error) {
	if !direction.Valid() {
		return Tally{}, fmt.Errorf("неизвестное направление голоса: %d", direction)
	}

	// 1. Аутентификация голосующего
	if err := s.verifier.VerifyCaller(ctx, caller); err != nil {
		return Tally{}, err
	}

	// 2-3. Политика борды
	cfg, err := s.configs.Get(ctx, target.BoardID)
	if err != nil {
		return Tally{}, err
	}
	if !cfg.Enabled {
		return Tally{}, common.ErrVotingDisabled
	}
	if direction == DirectionDown && !cfg.AllowDownvotes {
		return Tally{}, common.ErrDownvotesNotAllowed
	}

	// 4-6. Переход состояния — критическая секция таргета
	tally, err := s.transition(ctx, caller.Principal, target, direction)
	if err != nil {
		return Tally{}, err
	}

	// 7. Событие для соседних сервисов — best-effort, голос уже применён.
	// Публикуем уже после выхода из критической секции: медленный брокер
	// не должен задерживать голосование по всему страйпу.
	event := events.VoteApplied{
		BoardID:   target.BoardID,
		ThreadID:  target.ThreadID,
		ReplyID:   target.ReplyID,
		IsReply:   target.IsReply,
		Voter:     string(caller.Principal),
		Direction: uint32(direction),
		Upvotes:   tally.Upvotes,
		Downvotes: tally.Downvotes,
		Score:     tally.Score,
		AppliedAt: uint64(s.clock.Now().Unix()),
	}
	if err := s.publisher.PublishVoteApplied(ctx, event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"board_id":  target.BoardID,
			"thread_id": target.ThreadID,
		}).Error("Не удалось опубликовать событие о голосе")
	}

	return tally, nil
}

// transition выполняет переход состояния голоса под замком страйпа.
// Голос и тэлли пишутся одной атомарной операцией хранилища: при
// сбое записи оба хранилища остаются в прежнем состоянии.
func (s *Service) transition(ctx context.Context, voter identity.Principal, target Target, direction Direction) (Tally, error) {
	mu := s.lockFor(target)
	mu.Lock()
	defer mu.Unlock()

	previous, err := s.repo.GetVote(ctx, target, voter)
	if err != nil {
		return Tally{}, fmt.Errorf("чтение прежнего голоса: %w", err)
	}

	tally, err := s.repo.GetTally(ctx, target)
	if err != nil {
		return Tally{}, fmt.Errorf("чтение тэлли: %w", err)
	}

	// Первый голос по таргету фиксирует время начала активности
	if tally.FirstVoteAt == 0 {
		tally.FirstVoteAt = uint64(s.clock.Now().Unix())
	}

	tally.undo(previous)
	tally.apply(direction)

	if err := s.repo.ApplyCast(ctx, target, voter, direction, tally); err != nil {
		return Tally{}, fmt.Errorf("запись голоса и тэлли: %w", err)
	}
	return tally, nil
}

// GetTally возвращает агрегат таргета; нулевое значение — по таргету не голосовали.
func (s *Service) GetTally(ctx context.Context, target Target) (Tally, error) {
	return s.repo.GetTally(ctx, target)
}

// GetUserVote возвращает активный голос пользователя по таргету.
func (s *Service) GetUserVote(ctx context.Context, target Target, user identity.Principal) (Direction, error) {
	return s.repo.GetVote(ctx, target, user)
}

// HotThreads считает hot-счёт для списка тредов борды.
// Возвращает несортированные пары (id, счёт); now == 0 заменяется
// текущим временем леджера.
func (s *Service) HotThreads(ctx context.Context, boardID uint64, threadIDs []uint64, now uint64) ([]ThreadScore, error) {
	if now == 0 {
		now = uint64(s.clock.Now().Unix())
	}

	scored := make([]ThreadScore, 0, len(threadIDs))
	for _, threadID := range threadIDs {
		tally, err := s.repo.GetTally(ctx, ThreadTarget(boardID, threadID))
		if err != nil {
			return nil, fmt.Errorf("чтение тэлли треда %d: %w", threadID, err)
		}
		scored = append(scored, ThreadScore{
			ThreadID: threadID,
			Score:    ranking.Hot(tally.Score, tally.FirstVoteAt, now),
		})
	}
	return scored, nil
}

// AuditTallies возвращает число тэлли, нарушающих инвариант
// score == upvotes - downvotes. Вызывается фоновым аудитом.
func (s *Service) AuditTallies(ctx context.Context) (int64, error) {
	return s.repo.CountInconsistentTallies(ctx)
}

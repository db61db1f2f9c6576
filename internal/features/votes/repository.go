// Package votes — repository.go определяет контракт хранилища голосов и тэлли.
// Это чистый key-value примитив без валидации: дисциплину переходов
// обеспечивает сервис.
package votes

import (
	"context"

	"serotonyl.ru/vote-ledger/internal/identity"
)

// Repository — хранилище записей голосов и агрегатов.
type Repository interface {
	// GetVote возвращает активный голос пользователя по таргету
	// или DirectionNone, если записи нет.
	GetVote(ctx context.Context, target Target, voter identity.Principal) (Direction, error)

	// ApplyCast записывает голос и новый агрегат одной атомарной
	// операцией: либо обе записи применяются, либо ни одна.
	// DirectionNone удаляет запись голоса.
	ApplyCast(ctx context.Context, target Target, voter identity.Principal, direction Direction, tally Tally) error

	// GetTally возвращает агрегат таргета или нулевое значение,
	// если по таргету ещё не голосовали.
	GetTally(ctx context.Context, target Target) (Tally, error)

	// SaveTally перезаписывает агрегат напрямую, в обход перехода
	// голоса. Инструмент восстановления после расхождений, найденных
	// аудитом; движок голосования пишет только через ApplyCast.
	SaveTally(ctx context.Context, target Target, tally Tally) error

	// CountInconsistentTallies возвращает число агрегатов, нарушающих
	// инвариант score == upvotes - downvotes. Используется аудитом.
	CountInconsistentTallies(ctx context.Context) (int64, error)
}

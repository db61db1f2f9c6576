// Package karma реализует леджер репутации: знаковые накопители
// на пару (борда, пользователь) и глобально на пользователя.
// repository.go определяет контракт хранилища кармы.
package karma

import (
	"context"

	"serotonyl.ru/vote-ledger/internal/identity"
)

// Repository — хранилище накопителей кармы.
//
// Add обязан изменить бордовый и глобальный накопители вместе, атомарно:
// состояния «бордовая карма обновлена, глобальная нет» не существует
// ни при падении процесса, ни для конкурентных читателей.
type Repository interface {
	Add(ctx context.Context, boardID uint64, user identity.Principal, delta int64) error
	GetBoard(ctx context.Context, boardID uint64, user identity.Principal) (int64, error)
	GetTotal(ctx context.Context, user identity.Principal) (int64, error)
}

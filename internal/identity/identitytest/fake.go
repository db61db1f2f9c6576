// Package identitytest содержит фейковые верификаторы для тестов.
package identitytest

import (
	"context"

	"serotonyl.ru/vote-ledger/internal/common"
	"serotonyl.ru/vote-ledger/internal/identity"
)

// AllowAll пропускает любого вызывающего.
type AllowAll struct{}

func (AllowAll) VerifyCaller(context.Context, identity.Caller) error { return nil }

// DenyAll отклоняет любого вызывающего.
type DenyAll struct{}

func (DenyAll) VerifyCaller(context.Context, identity.Caller) error {
	return common.ErrAuthenticationFailed
}

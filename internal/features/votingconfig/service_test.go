package votingconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vote-ledger/internal/authz"
	"serotonyl.ru/vote-ledger/internal/common"
	"serotonyl.ru/vote-ledger/internal/identity"
	"serotonyl.ru/vote-ledger/internal/identity/identitytest"
)

func adminCaller() identity.Caller {
	return identity.Caller{Principal: "admin"}
}

func newTestService(t *testing.T) (*Service, *authz.StaticAuthorizer) {
	t.Helper()
	authorizer := authz.NewStaticAuthorizer()
	svc := NewService(NewMemoryRepository(), identitytest.AllowAll{}, authorizer)
	return svc, authorizer
}

func TestGetDefaultConfig(t *testing.T) {
	svc, _ := newTestService(t)

	// Для борды без сохранённой конфигурации — дефолт
	cfg, err := svc.Get(context.Background(), 999)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.AllowDownvotes)
	assert.True(t, cfg.KarmaEnabled)
	assert.Equal(t, uint32(1), cfg.KarmaMultiplier)
}

func TestSetRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Enabled = false

	// Без роли админа — отказ, конфигурация не записана
	err := svc.Set(ctx, identity.Caller{Principal: "mere-member"}, 7, cfg)
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	stored, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, stored.Enabled)
}

func TestSetAsAdmin(t *testing.T) {
	svc, authorizer := newTestService(t)
	ctx := context.Background()
	authorizer.GrantAdmin(7, "admin")

	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.AllowDownvotes = false
	cfg.KarmaMultiplier = 5

	require.NoError(t, svc.Set(ctx, adminCaller(), 7, cfg))

	stored, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, cfg, stored)

	// Права даны на конкретную борду, не на всю платформу
	err = svc.Set(ctx, adminCaller(), 8, cfg)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSetRejectsZeroMultiplier(t *testing.T) {
	svc, authorizer := newTestService(t)
	authorizer.GrantAdmin(7, "admin")

	cfg := DefaultConfig()
	cfg.KarmaMultiplier = 0

	err := svc.Set(context.Background(), adminCaller(), 7, cfg)
	assert.ErrorIs(t, err, common.ErrInvalidMultiplier)
}

func TestSetUnauthenticatedRejected(t *testing.T) {
	authorizer := authz.NewStaticAuthorizer()
	authorizer.GrantAdmin(7, "admin")
	svc := NewService(NewMemoryRepository(), identitytest.DenyAll{}, authorizer)

	err := svc.Set(context.Background(), adminCaller(), 7, DefaultConfig())
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
}

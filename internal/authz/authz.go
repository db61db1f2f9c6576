// Package authz описывает границу с внешним сервисом авторизации платформы.
// Леджер не знает иерархию ролей — он только спрашивает, есть ли у принципала
// право администрировать конкретную борду.
package authz

import (
	"context"
	"sync"

	"serotonyl.ru/vote-ledger/internal/identity"
)

// Role — уровень роли на борде (зеркало модели сервиса прав).
type Role uint32

const (
	RoleGuest Role = iota
	RoleMember
	RoleModerator
	RoleAdmin
	RoleOwner
)

// PermissionSet — набор прав принципала на борде.
type PermissionSet struct {
	Role        Role
	CanView     bool
	CanPost     bool
	CanModerate bool
	CanAdmin    bool
	IsBanned    bool
}

// Service отвечает на вопрос о правах принципала на борде.
type Service interface {
	GetPermissions(ctx context.Context, boardID uint64, principal identity.Principal) (PermissionSet, error)
}

// StaticAuthorizer — авторизатор с заранее заданными правами.
// Используется в тестах и в одноузловых развёртываниях,
// где настоящий сервис прав ещё не подключён.
type StaticAuthorizer struct {
	mu     sync.RWMutex
	grants map[grantKey]PermissionSet
}

type grantKey struct {
	boardID   uint64
	principal identity.Principal
}

// NewStaticAuthorizer создаёт пустой авторизатор: у всех роль Guest.
func NewStaticAuthorizer() *StaticAuthorizer {
	return &StaticAuthorizer{grants: make(map[grantKey]PermissionSet)}
}

// Grant назначает принципалу набор прав на борде.
func (a *StaticAuthorizer) Grant(boardID uint64, principal identity.Principal, perms PermissionSet) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grants[grantKey{boardID, principal}] = perms
}

// GrantAdmin — сокращение для назначения полной админской роли.
func (a *StaticAuthorizer) GrantAdmin(boardID uint64, principal identity.Principal) {
	a.Grant(boardID, principal, PermissionSet{
		Role:        RoleAdmin,
		CanView:     true,
		CanPost:     true,
		CanModerate: true,
		CanAdmin:    true,
	})
}

// GetPermissions возвращает права принципала; незнакомый принципал — гость.
func (a *StaticAuthorizer) GetPermissions(_ context.Context, boardID uint64, principal identity.Principal) (PermissionSet, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if perms, ok := a.grants[grantKey{boardID, principal}]; ok {
		return perms, nil
	}
	return PermissionSet{Role: RoleGuest, CanView: true}, nil
}

// Package votingconfig — service.go содержит бизнес-логику настроек голосования:
// чтение с дефолтом и изменение под контролем сервиса прав.
package votingconfig

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vote-ledger/internal/authz"
	"serotonyl.ru/vote-ledger/internal/common"
	"serotonyl.ru/vote-ledger/internal/identity"
)

// Service управляет конфигурациями голосования.
type Service struct {
	repo       Repository
	verifier   identity.Verifier
	authorizer authz.Service
}

// NewService создаёт сервис конфигураций.
func NewService(repo Repository, verifier identity.Verifier, authorizer authz.Service) *Service {
	return &Service{repo: repo, verifier: verifier, authorizer: authorizer}
}

// Get возвращает конфигурацию борды; если ничего не сохранено — дефолт.
func (s *Service) Get(ctx context.Context, boardID uint64) (Config, error) {
	stored, err := s.repo.Get(ctx, boardID)
	if err != nil {
		return Config{}, fmt.Errorf("чтение конфигурации борды %d: %w", boardID, err)
	}
	if stored == nil {
		return DefaultConfig(), nil
	}
	return *stored, nil
}

// Set сохраняет конфигурацию борды. Требует роль админа или владельца.
func (s *Service) Set(ctx context.Context, caller identity.Caller, boardID uint64, cfg Config) error {
	if err := s.verifier.VerifyCaller(ctx, caller); err != nil {
		return err
	}

	perms, err := s.authorizer.GetPermissions(ctx, boardID, caller.Principal)
	if err != nil {
		return fmt.Errorf("запрос прав принципала %q: %w", caller.Principal, err)
	}
	if !perms.CanAdmin {
		return common.ErrUnauthorized
	}

	// Нулевой множитель обнулял бы всю карму борды молча
	if cfg.KarmaMultiplier == 0 {
		return common.ErrInvalidMultiplier
	}

	if err := s.repo.Set(ctx, boardID, cfg); err != nil {
		return fmt.Errorf("сохранение конфигурации борды %d: %w", boardID, err)
	}

	log.WithFields(log.Fields{
		"board_id":   boardID,
		"caller":     caller.Principal,
		"enabled":    cfg.Enabled,
		"downvotes":  cfg.AllowDownvotes,
		"karma":      cfg.KarmaEnabled,
		"multiplier": cfg.KarmaMultiplier,
	}).Info("Конфигурация голосования обновлена")

	return nil
}

// Package karma — service.go содержит бизнес-логику леджера репутации.
package karma

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vote-ledger/internal/common"
	"serotonyl.ru/vote-ledger/internal/features/votingconfig"
	"serotonyl.ru/vote-ledger/internal/identity"
)

// Service управляет кармой.
//
// Update принимает любого аутентифицированного вызывающего: леджер не знает,
// кто автор проголосованного контента, это знает сервис контента. Ограничение
// круга вызывающих достигается связкой ключей верификатора — в ней только
// доверенные сервисные принципалы.
type Service struct {
	repo     Repository
	configs  *votingconfig.Service
	verifier identity.Verifier
}

// NewService создаёт сервис кармы.
func NewService(repo Repository, configs *votingconfig.Service, verifier identity.Verifier) *Service {
	return &Service{repo: repo, configs: configs, verifier: verifier}
}

// Update применяет подписанную дельту к карме пользователя.
// Дельта масштабируется множителем борды; при отключённой карме — no-op.
// Бордовый и глобальный накопители меняются атомарно.
func (s *Service) Update(ctx context.Context, caller identity.Caller, boardID uint64, user identity.Principal, delta int64) error {
	if err := s.verifier.VerifyCaller(ctx, caller); err != nil {
		return err
	}

	cfg, err := s.configs.Get(ctx, boardID)
	if err != nil {
		return err
	}
	if !cfg.KarmaEnabled {
		return nil
	}

	scaled, err := scaleDelta(delta, cfg.KarmaMultiplier)
	if err != nil {
		return err
	}
	if scaled == 0 {
		return nil
	}

	if err := s.repo.Add(ctx, boardID, user, scaled); err != nil {
		return fmt.Errorf("применение дельты кармы: %w", err)
	}

	log.WithFields(log.Fields{
		"board_id": boardID,
		"user":     user,
		"delta":    scaled,
		"caller":   caller.Principal,
	}).Debug("Карма обновлена")

	return nil
}

// GetBoard возвращает карму пользователя на борде (0 по умолчанию).
func (s *Service) GetBoard(ctx context.Context, boardID uint64, user identity.Principal) (int64, error) {
	return s.repo.GetBoard(ctx, boardID, user)
}

// GetTotal возвращает суммарную карму пользователя по всем бордам.
func (s *Service) GetTotal(ctx context.Context, user identity.Principal) (int64, error) {
	return s.repo.GetTotal(ctx, user)
}

// scaleDelta умножает дельту на множитель борды с контролем переполнения.
func scaleDelta(delta int64, multiplier uint32) (int64, error) {
	m := int64(multiplier)
	if m == 0 {
		m = 1
	}
	scaled := delta * m
	if delta != 0 && scaled/m != delta {
		return 0, fmt.Errorf("%w: %d * %d", common.ErrKarmaOverflow, delta, m)
	}
	return scaled, nil
}

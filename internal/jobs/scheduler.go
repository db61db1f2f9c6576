// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: периодический аудит целостности тэлли.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/vote-ledger/internal/features/votes"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron         *cron.Cron
	votesService *votes.Service
	schedule     string
}

// NewScheduler создаёт планировщик задач.
func NewScheduler(votesService *votes.Service, schedule string) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		votesService: votesService,
		schedule:     schedule,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Аудит инварианта score == upvotes - downvotes.
	// Движок никогда не должен его нарушать; ненулевой результат означает
	// повреждение данных вне леджера (ручные правки в базе, сбой диска).
	_, err := s.cron.AddFunc(s.schedule, func() {
		log.Debug("[CRON] Аудит целостности тэлли")
		broken, auditErr := s.votesService.AuditTallies(ctx)
		if auditErr != nil {
			log.WithError(auditErr).Error("[CRON] Ошибка аудита тэлли")
			return
		}
		if broken > 0 {
			log.WithField("broken_tallies", broken).
				Error("[CRON] Найдены тэлли с нарушенным инвариантом счёта")
		}
	})
	if err != nil {
		log.WithError(err).WithField("schedule", s.schedule).
			Error("Не удалось зарегистрировать задачу аудита")
		return
	}

	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

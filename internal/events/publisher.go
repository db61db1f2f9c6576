// Package events публикует уведомления о применённых голосах для соседних
// сервисов платформы (индексация, рендеринг лент). Леджер не ждёт подписчиков:
// публикация best-effort и никогда не откатывает уже записанный голос.
package events

import "context"

// VoteApplied — событие «голос применён, тэлли обновлён».
type VoteApplied struct {
	BoardID   uint64 `json:"board_id"`
	ThreadID  uint64 `json:"thread_id"`
	ReplyID   uint64 `json:"reply_id,omitempty"`
	IsReply   bool   `json:"is_reply"`
	Voter     string `json:"voter"`
	Direction uint32 `json:"direction"`
	Upvotes   uint32 `json:"upvotes"`
	Downvotes uint32 `json:"downvotes"`
	Score     int32  `json:"score"`
	AppliedAt uint64 `json:"applied_at"`
}

// Publisher отправляет события о голосах.
type Publisher interface {
	PublishVoteApplied(ctx context.Context, event VoteApplied) error
	Close() error
}

// NoopPublisher — заглушка для развёртываний без брокера.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) PublishVoteApplied(context.Context, VoteApplied) error { return nil }

func (*NoopPublisher) Close() error { return nil }

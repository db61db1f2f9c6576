// Package events — kafka.go отправляет события о голосах в Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher пишет события в топик Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher создаёт издателя событий.
//
// Hash-балансировщик с ключом по таргету гарантирует, что все события
// одного треда/ответа попадают в одну партицию — подписчики видят
// обновления тэлли в порядке применения. RequireAll — ждём подтверждения
// всех реплик, чтобы событие не потерялось при падении лидера.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}
	return &KafkaPublisher{writer: w}
}

// PublishVoteApplied сериализует событие и отправляет его в топик.
func (p *KafkaPublisher) PublishVoteApplied(ctx context.Context, event VoteApplied) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("сериализация события: %w", err)
	}

	// Ключ партиционирования: борда + тред + ответ
	key := fmt.Sprintf("%d:%d:%d:%t", event.BoardID, event.ThreadID, event.ReplyID, event.IsReply)

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("отправка события в Kafka: %w", err)
	}
	return nil
}

// Close закрывает writer и досылает буферизованные сообщения.
func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("закрытие Kafka writer: %w", err)
	}
	return nil
}

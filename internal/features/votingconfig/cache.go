// Package votingconfig — cache.go добавляет сквозной Redis-кэш перед
// репозиторием конфигураций. Конфигурация читается на каждый голос,
// меняется редко — идеальный кандидат на кэширование.
package votingconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "voting_config:"

// отсутствие конфигурации тоже кэшируем, чтобы не ходить в базу
// за каждой бордой с дефолтными настройками
var cacheMissMarker = []byte("__absent__")

// CachedRepository оборачивает Repository сквозным Redis-кэшом.
// Кэш best-effort: любая ошибка Redis приводит к чтению из базы, не к отказу.
type CachedRepository struct {
	rdb  goredis.Cmdable
	next Repository
	ttl  time.Duration
}

// NewCachedRepository создаёт кэширующую обёртку над репозиторием.
func NewCachedRepository(rdb goredis.Cmdable, next Repository, ttl time.Duration) *CachedRepository {
	return &CachedRepository{rdb: rdb, next: next, ttl: ttl}
}

// Get читает конфигурацию: Redis → база → заполнение кэша.
func (r *CachedRepository) Get(ctx context.Context, boardID uint64) (*Config, error) {
	key := fmt.Sprintf("%s%d", cacheKeyPrefix, boardID)

	// Пробуем кэш
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err == nil {
		if string(data) == string(cacheMissMarker) {
			return nil, nil
		}
		var c Config
		if jsonErr := json.Unmarshal(data, &c); jsonErr != nil {
			log.WithError(jsonErr).WithField("board_id", boardID).
				Warn("Битая запись в кэше конфигурации, читаем из базы")
		} else {
			return &c, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		log.WithError(err).WithField("board_id", boardID).
			Warn("Redis недоступен, читаем конфигурацию из базы")
	}

	// Промах или ошибка кэша — идём в базу
	cfg, err := r.next.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}

	// Заполняем кэш (best-effort)
	payload := cacheMissMarker
	if cfg != nil {
		if encoded, jsonErr := json.Marshal(cfg); jsonErr == nil {
			payload = encoded
		}
	}
	if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		log.WithError(err).WithField("board_id", boardID).
			Warn("Не удалось заполнить кэш конфигурации")
	}

	return cfg, nil
}

// Set записывает конфигурацию в базу и сбрасывает кэш борды.
func (r *CachedRepository) Set(ctx context.Context, boardID uint64, cfg Config) error {
	if err := r.next.Set(ctx, boardID, cfg); err != nil {
		return err
	}
	key := fmt.Sprintf("%s%d", cacheKeyPrefix, boardID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		// Запись в базе уже есть; устаревший кэш доживёт до конца TTL
		log.WithError(err).WithField("board_id", boardID).
			Warn("Не удалось сбросить кэш конфигурации")
	}
	return nil
}

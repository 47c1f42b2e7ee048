package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"ticket-system/internal/repositories"
	"ticket-system/pkg/constants"
)

// listCache кеширует страницы представлений для дашбордов, которые опрашивают список.
// Инвалидация через счетчик версии: запись в заявку увеличивает версию, и старые
// ключи больше не читаются. Ошибки Redis не ломают запрос, только пишутся в лог.
type listCache struct {
	repo   repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func newListCache(repo repositories.CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) *listCache {
	return &listCache{repo: repo, ttl: ttl, logger: logger}
}

func (c *listCache) enabled() bool {
	return c != nil && c.repo != nil && c.ttl > 0
}

// key возвращает ключ страницы для текущей версии кеша.
func (c *listCache) key(ctx context.Context, view string, params interface{}) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	var version int64
	raw, err := c.repo.Get(ctx, constants.CacheKeyTicketListVersion)
	switch {
	case err == nil:
		version, _ = strconv.ParseInt(raw, 10, 64)
	case errors.Is(err, repositories.ErrCacheMiss):
	default:
		c.logger.Warn("Кеш недоступен, версия списка не получена", zap.Error(err))
		return "", false
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return "", false
	}
	sum := sha1.Sum(payload)
	return fmt.Sprintf(constants.CacheKeyTicketList, version, view, hex.EncodeToString(sum[:8])), true
}

func (c *listCache) get(ctx context.Context, key string, dest interface{}) bool {
	cached, err := c.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrCacheMiss) {
			c.logger.Warn("Ошибка чтения кеша", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		c.logger.Warn("Поврежденная запись кеша", zap.String("key", key), zap.Error(err))
		return false
	}
	c.logger.Debug("Данные получены из кеша", zap.String("key", key))
	return true
}

func (c *listCache) set(ctx context.Context, key string, data interface{}) {
	serialized, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.repo.Set(ctx, key, serialized, c.ttl); err != nil {
		c.logger.Warn("Ошибка записи в кеш", zap.String("key", key), zap.Error(err))
	}
}

func (c *listCache) invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if _, err := c.repo.Incr(ctx, constants.CacheKeyTicketListVersion); err != nil {
		c.logger.Warn("Не удалось сбросить кеш списков заявок", zap.Error(err))
	}
}

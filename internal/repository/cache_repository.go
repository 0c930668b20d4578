package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quote-web-server/config"
	"quote-web-server/internal/model"
	"quote-web-server/internal/util"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetQuote(ctx context.Context, quote *model.Quote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return util.LogError("ошибка сериализации сметы", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(quote.UUID), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *CacheRepository) GetQuote(ctx context.Context, uuid string) (*model.Quote, error) {
	val, err := r.client.Client.Get(ctx, r.key(uuid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // нет в кэше
	} else if err != nil {
		return nil, util.LogError("ошибка получения сметы из Redis", err)
	}

	var quote model.Quote
	if err := json.Unmarshal([]byte(val), &quote); err != nil {
		return nil, util.LogError("ошибка десериализации сметы из кэша", err)
	}
	return &quote, nil
}

func (r *CacheRepository) DeleteQuote(ctx context.Context, uuid string) error {
	if err := r.client.Client.Del(ctx, r.key(uuid)).Err(); err != nil {
		return util.LogError("ошибка удаления сметы из Redis", err)
	}
	return nil
}

func (r *CacheRepository) key(uuid string) string {
	return fmt.Sprintf("quote:%s", uuid)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "finnovel"
)

// RedisStore は Redis にJSONで記録を保存し、作成順をソート済みセットで管理します。
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore は RedisStore を生成します。ttl が 0 なら期限なしなのだ。
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, prefix: defaultRedisPrefix, ttl: ttl}
}

// Ping は接続を確認します。
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis への接続確認に失敗しました: %w", err)
	}
	return nil
}

func (s *RedisStore) recordKey(id string) string { return s.prefix + ":story:" + id }
func (s *RedisStore) indexKey() string           { return s.prefix + ":stories" }

func (s *RedisStore) Put(ctx context.Context, r Record) error {
	if r.ID == "" {
		return errEmptyID
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	val, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("記録のシリアライズに失敗しました: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(r.ID), val, s.ttl)
		// NX なので上書き時も最初の作成順を保つのだ
		pipe.ZAddNX(ctx, s.indexKey(), redis.Z{Score: float64(r.CreatedAt.UnixNano()), Member: r.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("Redis への保存に失敗しました: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Record, error) {
	raw, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("Redis からの取得に失敗しました: %w", err)
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("記録のデシリアライズに失敗しました: %w", err)
	}
	return r, nil
}

func (s *RedisStore) Latest(ctx context.Context) (Record, error) {
	records, err := s.ordered(ctx)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	return records[0], nil
}

func (s *RedisStore) List(ctx context.Context) ([]Meta, error) {
	records, err := s.ordered(ctx)
	if err != nil {
		return nil, err
	}
	metas := make([]Meta, 0, len(records))
	for _, r := range records {
		metas = append(metas, MetaOf(r))
	}
	return metas, nil
}

// ordered は索引を新しい順に辿り、期限切れで消えた記録は索引からも取り除きます。
func (s *RedisStore) ordered(ctx context.Context) ([]Record, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("索引の取得に失敗しました: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("記録の一括取得に失敗しました: %w", err)
	}

	records := make([]Record, 0, len(vals))
	var stale []any
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			slog.WarnContext(ctx, "壊れた記録をスキップします", "story_id", ids[i], "error", err)
			continue
		}
		records = append(records, r)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			slog.WarnContext(ctx, "索引の掃除に失敗しました", "error", err)
		}
	}
	return records, nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
)

const (
	redisKeyPrefix = "marcel:session:"
	redisIndexKey  = "marcel:sessions:created"
)

// RedisStore shares sessions between instances. Each session is a metadata
// key plus a capped turn list; a sorted set indexed by creation time drives
// EvictStale.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	opts   Options
}

var _ Store = (*RedisStore)(nil)

type redisMeta struct {
	ID          string          `json:"id"`
	CallerPhone string          `json:"caller_phone,omitempty"`
	Known       extract.Context `json:"known"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewRedisStore(client *redis.Client, opts Options) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("marcel.internal.session"),
		opts:   opts.withDefaults(),
	}
}

func (s *RedisStore) GetOrCreate(ctx context.Context, id, callerPhone string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.get_or_create", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	meta := redisMeta{
		ID:          id,
		CallerPhone: callerPhone,
		Known:       extract.Context{Intent: extract.IntentGeneral},
		CreatedAt:   s.opts.Now(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: marshal meta: %w", err)
	}
	created, err := s.redis.SetNX(ctx, metaKey(id), data, s.opts.MaxAge).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: create %s: %w", id, err)
	}
	if created {
		member := redis.Z{Score: float64(meta.CreatedAt.UnixMilli()), Member: id}
		if err := s.redis.ZAdd(ctx, redisIndexKey, member).Err(); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("session: index %s: %w", id, err)
		}
		return &Session{ID: id, CallerPhone: callerPhone, Known: meta.Known, CreatedAt: meta.CreatedAt}, nil
	}
	return s.load(ctx, id)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.get", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	sess, err := s.load(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
	}
	return sess, err
}

func (s *RedisStore) load(ctx context.Context, id string) (*Session, error) {
	meta, err := s.meta(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := s.redis.LRange(ctx, turnsKey(id), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("session: load turns %s: %w", id, err)
	}
	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return &Session{
		ID:          meta.ID,
		CallerPhone: meta.CallerPhone,
		Turns:       turns,
		Known:       meta.Known,
		CreatedAt:   meta.CreatedAt,
	}, nil
}

func (s *RedisStore) meta(ctx context.Context, id string) (redisMeta, error) {
	data, err := s.redis.Get(ctx, metaKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return redisMeta{}, ErrNotFound
		}
		return redisMeta{}, fmt.Errorf("session: load %s: %w", id, err)
	}
	var meta redisMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return redisMeta{}, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return meta, nil
}

func (s *RedisStore) AppendTurns(ctx context.Context, id string, turns ...Turn) error {
	ctx, span := s.tracer.Start(ctx, "session.append_turns", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("session.turns", len(turns)),
	))
	defer span.End()

	meta, err := s.meta(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
		}
		return err
	}

	stamped := stampTurns(turns, s.opts.Now())
	values := make([]any, 0, len(stamped))
	for _, t := range stamped {
		data, err := json.Marshal(t)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("session: marshal turn: %w", err)
		}
		values = append(values, data)
	}

	key := turnsKey(id)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -int64(s.opts.MaxTurns), -1)
	pipe.ExpireAt(ctx, key, meta.CreatedAt.Add(s.opts.MaxAge))
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: append turns %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) UpdateKnown(ctx context.Context, id string, known extract.Context) error {
	ctx, span := s.tracer.Start(ctx, "session.update_known", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	meta, err := s.meta(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
		}
		return err
	}
	meta.Known = known
	data, err := json.Marshal(meta)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: marshal meta: %w", err)
	}
	if err := s.redis.Set(ctx, metaKey(id), data, redis.KeepTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: update %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "session.delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, metaKey(id), turnsKey(id))
	pipe.ZRem(ctx, redisIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) EvictStale(ctx context.Context, now time.Time) (int, error) {
	ctx, span := s.tracer.Start(ctx, "session.evict_stale")
	defer span.End()

	ids, err := s.redis.ZRangeByScore(ctx, redisIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + cutoffScore(now, s.opts.MaxAge),
	}).Result()
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("session: list stale sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			span.RecordError(err)
			return 0, err
		}
	}
	span.SetAttributes(attribute.Int("session.evicted", len(ids)))
	return len(ids), nil
}

// Len counts indexed sessions that are not yet stale.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.redis.ZCount(ctx, redisIndexKey, cutoffScore(s.opts.Now(), s.opts.MaxAge), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("session: count sessions: %w", err)
	}
	return int(n), nil
}

func cutoffScore(now time.Time, maxAge time.Duration) string {
	return strconv.FormatInt(now.Add(-maxAge).UnixMilli(), 10)
}

func metaKey(id string) string {
	return redisKeyPrefix + id
}

func turnsKey(id string) string {
	return redisKeyPrefix + id + ":turns"
}

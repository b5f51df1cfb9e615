package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	errx "github.com/yogeshdhome/Invoice-Assistant/internal/core/error"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// RedisStateRepository persists the per-session dialogue state as one JSON
// document per session, sharing the TTL policy of the conversation history.
// History is stored separately and stripped before serialization here.
type RedisStateRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStateRepository(rdb redis.Cmdable, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisStateRepository) stateKey(sessionID string) string {
	return fmt.Sprintf("conversation:%s:state", sessionID)
}

// LoadState returns (nil, nil) when the session has no stored state.
func (r *RedisStateRepository) LoadState(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	key := r.stateKey(sessionID)
	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session state from redis")
		return nil, errx.WrapRedis(err)
	}

	var state model.ConversationState
	if err := sonic.UnmarshalString(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	state.SessionID = sessionID
	return &state, nil
}

func (r *RedisStateRepository) SaveState(ctx context.Context, state *model.ConversationState) error {
	// History lives in its own list key; storing it again here would double
	// every message.
	clone := *state
	clone.History = nil

	b, err := sonic.Marshal(&clone)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	key := r.stateKey(state.SessionID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisStateRepository) ClearState(ctx context.Context, sessionID string) error {
	key := r.stateKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.StateRepository = (*RedisStateRepository)(nil)

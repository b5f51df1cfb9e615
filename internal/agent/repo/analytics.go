package repo

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	errx "github.com/yogeshdhome/Invoice-Assistant/internal/core/error"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

// RedisAnalyticsRepository is the long-term memory: every completed turn is
// appended to a per-session list that never expires, so conversations remain
// queryable after the short-term keys age out.
type RedisAnalyticsRepository struct {
	rdb redis.Cmdable
}

func NewRedisAnalyticsRepository(rdb redis.Cmdable) *RedisAnalyticsRepository {
	return &RedisAnalyticsRepository{rdb: rdb}
}

func (r *RedisAnalyticsRepository) recordKey(sessionID string) string {
	return fmt.Sprintf("analytics:%s:records", sessionID)
}

const analyticsIndexKey = "analytics:sessions"

func (r *RedisAnalyticsRepository) SaveRecord(ctx context.Context, record *model.ConversationRecord) error {
	b, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal analytics record: %w", err)
	}

	key := r.recordKey(record.SessionID)
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push analytics record to redis")
		return errx.WrapRedis(err)
	}
	if err := r.rdb.SAdd(ctx, analyticsIndexKey, record.SessionID).Err(); err != nil {
		logx.Error().Err(err).Str("session_id", record.SessionID).Msg("failed to index analytics session")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisAnalyticsRepository) FetchRecords(ctx context.Context, sessionID string) ([]*model.ConversationRecord, error) {
	if sessionID == "" {
		return r.fetchAll(ctx)
	}
	key := r.recordKey(sessionID)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []*model.ConversationRecord{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load analytics records from redis")
		return nil, errx.WrapRedis(err)
	}

	records := make([]*model.ConversationRecord, 0, len(rows))
	for i, s := range rows {
		var rec model.ConversationRecord
		if err := sonic.UnmarshalString(s, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal analytics record at index %d: %w", i, err)
		}
		records = append(records, &rec)
	}
	return records, nil
}

func (r *RedisAnalyticsRepository) fetchAll(ctx context.Context) ([]*model.ConversationRecord, error) {
	sessions, err := r.rdb.SMembers(ctx, analyticsIndexKey).Result()
	if err != nil {
		if err == redis.Nil {
			return []*model.ConversationRecord{}, nil
		}
		logx.Error().Err(err).Msg("failed to load analytics session index from redis")
		return nil, errx.WrapRedis(err)
	}

	all := make([]*model.ConversationRecord, 0)
	for _, sessionID := range sessions {
		records, err := r.FetchRecords(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

var _ model.AnalyticsRepository = (*RedisAnalyticsRepository)(nil)

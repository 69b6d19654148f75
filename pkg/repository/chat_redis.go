package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dskvich/amethyst-telegram-bot/pkg/domain"
)

const chatKeyPrefix = "chat:"

// appendTurn pushes a turn, trims the list once it exceeds the limit and
// returns the stored history, all in one round trip.
var appendTurn = redis.NewScript(`
redis.call('RPUSH', KEYS[1], ARGV[1])
if redis.call('LLEN', KEYS[1]) > tonumber(ARGV[2]) then
	redis.call('LTRIM', KEYS[1], -tonumber(ARGV[3]), -1)
end
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return redis.call('LRANGE', KEYS[1], 0, -1)
`)

type redisChatRepository struct {
	client *redis.Client
	limits HistoryLimits
	ttl    time.Duration
}

// NewRedisChatRepository stores chat history in Redis lists that expire after ttl.
func NewRedisChatRepository(client *redis.Client, limits HistoryLimits, ttl time.Duration) *redisChatRepository {
	return &redisChatRepository{
		client: client,
		limits: limits.normalize(),
		ttl:    ttl,
	}
}

func (r *redisChatRepository) key(chatID int64) string {
	return chatKeyPrefix + strconv.FormatInt(chatID, 10)
}

func (r *redisChatRepository) Append(ctx context.Context, chatID int64, turn domain.Turn) ([]domain.Turn, error) {
	raw, err := json.Marshal(turn)
	if err != nil {
		return nil, fmt.Errorf("marshaling turn: %w", err)
	}

	stored, err := appendTurn.Run(ctx, r.client, []string{r.key(chatID)},
		string(raw), r.limits.Max, r.limits.Retain, r.ttl.Milliseconds()).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("appending turn: %w", err)
	}

	return decodeTurns(stored)
}

func (r *redisChatRepository) History(ctx context.Context, chatID int64) ([]domain.Turn, error) {
	stored, err := r.client.LRange(ctx, r.key(chatID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: reading history: %w", domain.ErrStoreRead, err)
	}
	return decodeTurns(stored)
}

func (r *redisChatRepository) Clear(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, r.key(chatID)).Err(); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

func decodeTurns(stored []string) ([]domain.Turn, error) {
	turns := make([]domain.Turn, 0, len(stored))
	for _, s := range stored {
		var t domain.Turn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			return nil, fmt.Errorf("%w: decoding turn: %w", domain.ErrStoreRead, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const quotaKeyTTL = 48 * time.Hour

// consumeLikeScript increments KEYS[1] unless ARGV[1] > 0 and the counter
// already reached it. A non-numeric counter is reset to zero. Returns
// {used, allowed}.
var consumeLikeScript = goredis.NewScript(`
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])
local raw = redis.call('GET', KEYS[1])
local used = tonumber(raw) or 0
if raw and not tonumber(raw) then
	redis.call('DEL', KEYS[1])
end
if limit > 0 and used >= limit then
	return {used, 0}
end
used = redis.call('INCR', KEYS[1])
if used == 1 then
	redis.call('EXPIRE', KEYS[1], ttl)
end
return {used, 1}
`)

type QuotaRepo struct {
	client *goredis.Client
}

func NewQuotaRepo(client *goredis.Client) *QuotaRepo {
	return &QuotaRepo{client: client}
}

func (r *QuotaRepo) GetLikesUsed(ctx context.Context, userID, dayKey string) (int, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(dayKey) == "" {
		return 0, fmt.Errorf("invalid quota lookup payload")
	}

	raw, err := r.client.Get(ctx, quotaKey(userID, dayKey)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get quota key: %w", err)
	}
	used, err := strconv.Atoi(raw)
	if err != nil || used < 0 {
		return 0, nil
	}
	return used, nil
}

func (r *QuotaRepo) ConsumeLike(ctx context.Context, userID, dayKey, _ string, limit int) (int, bool, error) {
	if r.client == nil {
		return 0, false, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(dayKey) == "" {
		return 0, false, fmt.Errorf("invalid like quota consume payload")
	}
	if limit < 0 {
		limit = 0
	}

	res, err := consumeLikeScript.Run(ctx, r.client,
		[]string{quotaKey(userID, dayKey)},
		limit, int64(quotaKeyTTL/time.Second),
	).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("run consume like script: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("unexpected consume like reply: %v", res)
	}
	return int(res[0]), res[1] == 1, nil
}

func quotaKey(userID, dayKey string) string {
	return "quota:likes:" + userID + ":" + dayKey
}

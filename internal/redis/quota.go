package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Quota keys are logically dead once their day passes; the TTL just
// keeps them from accumulating.
const keyTTL = 48 * time.Hour

// chargeScript admits the longest prefix of unmarked ids that fits
// under the limit, as one atomic unit on the server. SADD's return
// value keys the counter, so an id marked by a concurrent request is
// never double-counted; such ids come back in the marked list instead.
var chargeScript = goredis.NewScript(`
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local charged = {}
local marked = {}
for i = 3, #ARGV do
  if count < limit then
    if redis.call('SADD', KEYS[2], ARGV[i]) == 1 then
      count = count + 1
      charged[#charged + 1] = ARGV[i]
    else
      marked[#marked + 1] = ARGV[i]
    end
  elseif redis.call('SISMEMBER', KEYS[2], ARGV[i]) == 1 then
    marked[#marked + 1] = ARGV[i]
  end
end
redis.call('SET', KEYS[1], count, 'EX', ttl)
if redis.call('EXISTS', KEYS[2]) == 1 then
  redis.call('EXPIRE', KEYS[2], ttl)
end
return {charged, marked, count}
`)

// QuotaStore implements quota.Store on Redis: a string counter and a
// set of marked contact ids per (user, day).
type QuotaStore struct {
	client *goredis.Client
}

// NewQuotaStore creates a new QuotaStore
func NewQuotaStore(client *goredis.Client) *QuotaStore {
	return &QuotaStore{client: client}
}

// Count returns the user's view counter for the day, 0 when absent
func (s *QuotaStore) Count(ctx context.Context, userID, day string) (int, error) {
	val, err := s.client.Get(ctx, countKey(userID, day)).Int()
	if err == goredis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get view count: %w", err)
	}
	return val, nil
}

// Marks returns the contact ids already counted for the user on the day
func (s *QuotaStore) Marks(ctx context.Context, userID, day string) (map[string]struct{}, error) {
	members, err := s.client.SMembers(ctx, seenKey(userID, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get view marks: %w", err)
	}
	marks := make(map[string]struct{}, len(members))
	for _, id := range members {
		marks[id] = struct{}{}
	}
	return marks, nil
}

// AddMarks inserts marks idempotently and returns how many were new
func (s *QuotaStore) AddMarks(ctx context.Context, userID, day string, contactIDs []string) (int, error) {
	if len(contactIDs) == 0 {
		return 0, nil
	}
	key := seenKey(userID, day)
	members := make([]interface{}, len(contactIDs))
	for i, id := range contactIDs {
		members[i] = id
	}
	added, err := s.client.SAdd(ctx, key, members...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add view marks: %w", err)
	}
	if added > 0 {
		_ = s.client.Expire(ctx, key, keyTTL).Err()
	}
	return int(added), nil
}

// IncrementCount atomically adds delta via INCRBY and returns the new
// value
func (s *QuotaStore) IncrementCount(ctx context.Context, userID, day string, delta int) (int, error) {
	key := countKey(userID, day)
	val, err := s.client.IncrBy(ctx, key, int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment view count: %w", err)
	}
	if val == int64(delta) {
		_ = s.client.Expire(ctx, key, keyTTL).Err()
	}
	return int(val), nil
}

// Charge runs the charge script; Redis executes scripts atomically, so
// concurrent charges for the same user serialize on the server.
func (s *QuotaStore) Charge(ctx context.Context, userID, day string, contactIDs []string, limit int) ([]string, []string, int, error) {
	args := make([]interface{}, 0, len(contactIDs)+2)
	args = append(args, limit, int(keyTTL.Seconds()))
	for _, id := range contactIDs {
		args = append(args, id)
	}

	res, err := chargeScript.Run(ctx, s.client,
		[]string{countKey(userID, day), seenKey(userID, day)}, args...).Result()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to charge views: %w", err)
	}

	reply, ok := res.([]interface{})
	if !ok || len(reply) != 3 {
		return nil, nil, 0, fmt.Errorf("unexpected charge reply: %v", res)
	}

	charged := stringsOf(reply[0])
	marked := stringsOf(reply[1])
	count, ok := reply[2].(int64)
	if !ok {
		return nil, nil, 0, fmt.Errorf("unexpected charge count: %v", reply[2])
	}

	return charged, marked, int(count), nil
}

func stringsOf(v interface{}) []string {
	ids, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, id := range ids {
		if str, ok := id.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// Reset deletes the counter and all marks for (user, day)
func (s *QuotaStore) Reset(ctx context.Context, userID, day string) error {
	if err := s.client.Del(ctx, countKey(userID, day), seenKey(userID, day)).Err(); err != nil {
		return fmt.Errorf("failed to reset quota: %w", err)
	}
	return nil
}

func countKey(userID, day string) string {
	return "quota:count:" + userID + ":" + day
}

func seenKey(userID, day string) string {
	return "quota:seen:" + userID + ":" + day
}

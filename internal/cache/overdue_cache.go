package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	model "client-tasks.com/client-tasks/internal/models"
)

// setIfVersion writes the snapshot only while the version key still holds
// the value the caller read before computing it.
const setIfVersion = `
local current = redis.call('GET', KEYS[1])
if (current or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'EX', ARGV[3])
return 1
`

// RedisOverdueCache keeps the last overdue aggregation next to a version
// counter. Both keys share a hash tag so the script also runs on a cluster.
type RedisOverdueCache struct {
	client     rueidis.Client
	dataKey    string
	versionKey string
	ttl        time.Duration
}

func NewRedisOverdueCache(client rueidis.Client, key string, ttl time.Duration) *RedisOverdueCache {
	return &RedisOverdueCache{
		client:     client,
		dataKey:    "{" + key + "}:counts",
		versionKey: "{" + key + "}:version",
		ttl:        ttl,
	}
}

// Get returns nil on a cache miss.
func (c *RedisOverdueCache) Get(ctx context.Context) (*model.OverdueSnapshot, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(c.dataKey).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot model.OverdueSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisOverdueCache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Do(ctx, c.client.B().Get().Key(c.versionKey).Build()).AsInt64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

func (c *RedisOverdueCache) SetIfVersion(ctx context.Context, version int64, snapshot model.OverdueSnapshot) (bool, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return false, err
	}

	cmd := c.client.B().Eval().Script(setIfVersion).Numkeys(2).
		Key(c.versionKey, c.dataKey).
		Arg(strconv.FormatInt(version, 10), string(raw), strconv.FormatInt(int64(c.ttl/time.Second), 10)).
		Build()

	stored, err := c.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate bumps the version before dropping the data, so a refresh that
// read the old version can no longer store its result.
func (c *RedisOverdueCache) Invalidate(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Incr().Key(c.versionKey).Build()).Error(); err != nil {
		return err
	}
	return c.client.Do(ctx, c.client.B().Del().Key(c.dataKey).Build()).Error()
}

package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"grouporder/apperr"
)

// DefaultLockTTL bounds a session lock whose holder died without releasing it.
const DefaultLockTTL = 30 * time.Second

// unlockScript deletes the lock only if it still carries our token, so a
// lock that expired and was taken by someone else is left alone.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	rdb    goredis.UniversalClient
	prefix  string
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore keeps sessions for ttl after their last save. lockTTL must
// outlast the longest request that holds a session lock; zero means
// DefaultLockTTL.
func NewRedisStore(rdb goredis.UniversalClient, ttl, lockTTL time.Duration) *RedisStore {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &RedisStore{rdb: rdb, prefix: "grouporder:session:", ttl: ttl, lockTTL: lockTTL}
}

// DialRedis connects and pings, closing the client if the ping fails.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *RedisStore) key(id string) string     { return r.prefix + id }
func (r *RedisStore) lockKey(id string) string { return r.prefix + id + ":lock" }

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(s.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, apperr.NotFound("session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (r *RedisStore) Acquire(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, r.lockKey(id), token, r.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", id, err)
	}
	if !ok {
		return nil, apperr.ErrBusy
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, r.rdb, []string{r.lockKey(id)}, token).Err()
	}, nil
}

// Package redis keeps live interview sessions in Redis and provides a
// distributed per-session lock.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/interview"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/store"
	"github.com/spigell/hire-engine/internal/utils"
)

const (
	keyPrefix      = "hire-engine:"
	defaultLockTTL = 30 * time.Second
	lockPoll       = 50 * time.Millisecond
)

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Options struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
	LockTTL    time.Duration
}

type Client struct {
	rdb        *goredis.Client
	sessionTTL time.Duration
	lockTTL    time.Duration
	logger     *zap.Logger
}

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}

	return &Client{rdb: rdb, sessionTTL: opts.SessionTTL, lockTTL: lockTTL, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func sessionKey(id model.SessionID) string {
	return keyPrefix + "session:" + id.String()
}

func lockKey(key string) string {
	return keyPrefix + "lock:" + key
}

var _ store.SessionStore = (*Client)(nil)

func (c *Client) GetSession(ctx context.Context, id model.SessionID) (*model.InterviewSession, error) {
	raw, err := c.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	var s model.InterviewSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &s, nil
}

func (c *Client) SaveSession(ctx context.Context, session *model.InterviewSession) error {
	if session == nil || session.ID.IsEmpty() {
		return errors.New("session id is required")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.rdb.Set(ctx, sessionKey(session.ID), raw, c.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

var _ interview.Locker = (*Client)(nil)

// Lock takes a SET NX PX lock, polling until it is free or ctx ends. The lock
// expires after the lock TTL so a crashed holder cannot wedge a session.
func (c *Client) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	k := lockKey(key)

	for {
		ok, err := c.rdb.SetNX(ctx, k, token, c.lockTTL).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// The caller's context may already be gone; release must still run.
				releaseCtx, cancel := context.WithTimeout(context.Background(), c.lockTTL)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, c.rdb, []string{k}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
					c.logger.Warn("failed to release session lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		if err := utils.WaitFor(ctx, lockPoll); err != nil {
			return nil, fmt.Errorf("%w: %v", interview.ErrSessionBusy, err)
		}
	}
}

package reportrun

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const runLockKey = "finvue:reportrun:lock"

const runLockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RunLock serializes runs across instances. With no redis client configured
// it degrades to a no-op lock that always grants acquisition, which is the
// single-instance deployment mode.
type RunLock struct {
	client *redis.Client
	script *redis.Script
}

func NewRunLock(client *redis.Client) *RunLock {
	if client == nil {
		return &RunLock{}
	}
	return &RunLock{
		client: client,
		script: redis.NewScript(runLockReleaseScript),
	}
}

// TryAcquire attempts to take the run lock. It returns the release token and
// whether the lock was granted.
func (l *RunLock) TryAcquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", true, nil
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, runLockKey, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release gives the lock back if we still own it.
func (l *RunLock) Release(ctx context.Context, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{runLockKey}, token).Err()
}

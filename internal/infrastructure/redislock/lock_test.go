package redislock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements SET NX and the compare-and-delete script over a map.
type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	setErr  error
	setNXes int
}

func newFakeRedis() *fakeRedis { return &fakeRedis{values: map[string]string{}} }

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setNXes++
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (f *fakeRedis) held() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.values)
}

func TestLock_AcquiresAndReleasesAllKeys(t *testing.T) {
	r := newFakeRedis()
	l := New(r, time.Second)

	unlock, err := l.Lock(context.Background(), "offer:1", "commissioner:u1", "offer:1")
	require.NoError(t, err)
	assert.Equal(t, 2, r.held())
	assert.Contains(t, r.values, "lock:offer:1")

	unlock()
	unlock()
	assert.Zero(t, r.held())
}

func TestLock_WaitsForHolder(t *testing.T) {
	r := newFakeRedis()
	l := New(r, time.Second)

	unlock, err := l.Lock(context.Background(), "author:a")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		unlock2, err := l.Lock(context.Background(), "author:a")
		assert.NoError(t, err)
		unlock2()
	}()

	time.Sleep(3 * retryBackoff)
	select {
	case <-done:
		t.Fatal("second lock acquired while first was held")
	default:
	}
	unlock()
	<-done
	assert.Zero(t, r.held())
}

func TestLock_ContextDoneReleasesPartialKeys(t *testing.T) {
	r := newFakeRedis()
	l := New(r, time.Second)

	unlock, err := l.Lock(context.Background(), "b")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*retryBackoff)
	defer cancel()
	_, err = l.Lock(ctx, "a", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, r.values, "lock:a")
}

func TestLock_RedisError(t *testing.T) {
	r := newFakeRedis()
	r.setErr = errors.New("connection refused")
	l := New(r, time.Second)

	_, err := l.Lock(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, r.setNXes)
}

func TestLock_ReleaseLeavesForeignToken(t *testing.T) {
	r := newFakeRedis()
	l := New(r, time.Second)

	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	// simulate expiry and takeover by another instance
	r.values["lock:a"] = "someone-else"
	unlock()
	assert.Equal(t, "someone-else", r.values["lock:a"])
}

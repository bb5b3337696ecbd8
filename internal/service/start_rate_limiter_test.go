package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type mockRedisCounter struct {
	counts     map[string]int64
	getErr     error
	evalErr    error
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
}

func (m *mockRedisCounter) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	count, ok := m.counts[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(strconv.FormatInt(count, 10))
	return cmd
}

func (m *mockRedisCounter) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.evalErr != nil {
		cmd.SetErr(m.evalErr)
		return cmd
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[keys[0]]++
	cmd.SetVal(m.counts[keys[0]])
	return cmd
}

func TestMemoryStartRateLimiter(t *testing.T) {
	l := NewStartRateLimiter(time.Minute, 2).(*memoryStartRateLimiter)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"), "checking does not consume quota")
	l.Record("a")
	assert.True(t, l.Allow("a"))
	l.Record("a")
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "limits are per player")
	assert.False(t, l.Allow("  "))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("a"), "window slides")
}

func TestMemoryStartRateLimiter_EvictsIdlePlayers(t *testing.T) {
	l := NewStartRateLimiter(time.Minute, 3).(*memoryStartRateLimiter)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		l.Record("player-" + strconv.Itoa(i))
	}
	assert.Equal(t, 100, l.tracked())

	now = now.Add(2 * time.Minute)
	assert.True(t, l.Allow("someone-else"))
	assert.Zero(t, l.tracked(), "players idle for a full window are forgotten")
}

func TestRedisStartRateLimiter(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisStartRateLimiter
		assert.True(t, l.Allow("a"))
		l.Record("a")
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisStartRateLimiter{client: &mockRedisCounter{}, window: time.Minute, max: 3, prefix: "distrust:start:"}
		assert.False(t, l.Allow("   "))
	})

	t.Run("unknown key is allowed", func(t *testing.T) {
		l := &redisStartRateLimiter{client: &mockRedisCounter{}, window: time.Minute, max: 3, prefix: "distrust:start:"}
		assert.True(t, l.Allow("1234"))
	})

	t.Run("record increments with window ttl", func(t *testing.T) {
		mock := &mockRedisCounter{}
		l := &redisStartRateLimiter{client: mock, window: 2 * time.Minute, max: 2, prefix: "distrust:start:"}
		l.Record(" 1234 ")
		assert.Equal(t, []string{"distrust:start:1234"}, mock.lastKeys)
		assert.Equal(t, []interface{}{120}, mock.lastArgs)
		assert.Equal(t, redisStartRecordScript, mock.lastScript)
		assert.True(t, l.Allow("1234"))

		l.Record("1234")
		assert.False(t, l.Allow("1234"))
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		mock := &mockRedisCounter{getErr: errors.New("redis down"), evalErr: errors.New("redis down")}
		l := &redisStartRateLimiter{client: mock, window: time.Minute, max: 3, prefix: "distrust:start:"}
		l.Record("1234")
		assert.True(t, l.Allow("1234"))
	})
}

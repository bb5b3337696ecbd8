package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartRateLimiter limita cuántas partidas puede iniciar un jugador por ventana.
// Allow solo consulta; Record cobra un inicio y se llama cuando la partida ya arrancó.
type StartRateLimiter interface {
	Allow(playerID string) bool
	Record(playerID string)
}

type memoryStartRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewStartRateLimiter crea un rate limiter en memoria (ventana deslizante).
func NewStartRateLimiter(window time.Duration, max int) StartRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryStartRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryStartRateLimiter) Allow(playerID string) bool {
	key := strings.TrimSpace(playerID)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweep(now)
	return len(l.recent(key, now)) < l.max
}

func (l *memoryStartRateLimiter) Record(playerID string) {
	key := strings.TrimSpace(playerID)
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.hits[key] = append(l.recent(key, now), now)
}

// recent descarta los inicios fuera de la ventana y borra la clave si queda vacía.
func (l *memoryStartRateLimiter) recent(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = kept
	return kept
}

// sweep recorre todas las claves como mucho una vez por ventana.
func (l *memoryStartRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key := range l.hits {
		l.recent(key, now)
	}
}

func (l *memoryStartRateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

const redisStartRecordScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisCounter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisStartRateLimiter comparte el contador entre réplicas con ventana fija.
// Las claves expiran solas con la ventana.
type redisStartRateLimiter struct {
	client redisCounter
	window time.Duration
	max    int
	prefix string
}

func NewRedisStartRateLimiter(client *redis.Client, window time.Duration, max int) StartRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisStartRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "distrust:start:",
	}
}

// Allow deja pasar si redis falla: el límite es anti-spam, no una garantía.
func (l *redisStartRateLimiter) Allow(playerID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := strings.TrimSpace(playerID)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// redis.Nil significa que no hubo inicios en la ventana.
	count, err := l.client.Get(ctx, l.prefix+key).Int()
	if err != nil {
		return true
	}
	return count < l.max
}

func (l *redisStartRateLimiter) Record(playerID string) {
	if l == nil || l.client == nil {
		return
	}
	key := strings.TrimSpace(playerID)
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	_ = l.client.Eval(ctx, redisStartRecordScript, []string{l.prefix + key}, seconds).Err()
}

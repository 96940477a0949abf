// Package lock serialisiert Gewichts-Upserts desselben Scholar-Paars über
// Prozessgrenzen hinweg.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrTimeout: ein Lock konnte nicht rechtzeitig erworben werden.
var ErrTimeout = errors.New("lock: timeout acquiring pair lock")

// Unlock gibt erworbene Locks frei.
type Unlock func(ctx context.Context) error

// PairLocker sperrt ungeordnete Scholar-Paare.
type PairLocker interface {
	LockPairs(ctx context.Context, pairs [][2]string) (Unlock, error)
}

// PairKey ist der Schlüssel eines ungeordneten Paars.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "scholar-graph:pair:" + a + ":" + b
}

// pairKeys liefert die Schlüssel sortiert und ohne Duplikate. Die feste
// Reihenfolge verhindert Deadlocks zwischen Importen.
func pairKeys(pairs [][2]string) []string {
	seen := make(map[string]struct{}, len(pairs))
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[0] == "" || p[1] == "" || p[0] == p[1] {
			continue
		}
		k := PairKey(p[0], p[1])
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Noop sperrt nichts. Ohne Redis bleibt die Race zwischen gleichzeitigen
// Importen desselben Paars bestehen.
type Noop struct{}

func (Noop) LockPairs(context.Context, [][2]string) (Unlock, error) {
	return func(context.Context) error { return nil }, nil
}

// Nur löschen, wenn der Lock noch uns gehört.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis ist ein PairLocker auf Basis von SET NX PX.
type Redis struct {
	rdb   *goredis.Client
	ttl   time.Duration
	retry time.Duration
	wait  time.Duration
	log   *zap.Logger
}

// NewRedis erstellt einen Locker. ttl begrenzt die Lebensdauer eines Locks,
// falls der Halter abstürzt; solange wird auch höchstens gewartet.
func NewRedis(rdb *goredis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{
		rdb:   rdb,
		ttl:   ttl,
		retry: 25 * time.Millisecond,
		wait:  ttl,
		log:   log.With(zap.String("component", "pair_lock")),
	}
}

// Dial verbindet sich mit Redis und prüft die Verbindung.
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
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

func (l *Redis) LockPairs(ctx context.Context, pairs [][2]string) (Unlock, error) {
	keys := pairKeys(pairs)
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	held := make([]string, 0, len(keys))
	release := func(ctx context.Context) error {
		var errs []error
		for i := len(held) - 1; i >= 0; i-- {
			if err := releaseScript.Run(ctx, l.rdb, []string{held[i]}, token).Err(); err != nil {
				errs = append(errs, fmt.Errorf("release %s: %w", held[i], err))
			}
		}
		return errors.Join(errs...)
	}

	deadline := time.Now().Add(l.wait)
	for _, key := range keys {
		if err := l.acquire(ctx, key, token, deadline); err != nil {
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				l.log.Error("Failed to release pair locks", zap.Error(rerr))
			}
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

func (l *Redis) acquire(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			l.log.Warn("Timed out waiting for pair lock", zap.String("key", key))
			return fmt.Errorf("%w: %s", ErrTimeout, key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

package rate

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter guarda los contadores en go-cache; las ventanas viejas
// expiran solas y el janitor las limpia.
type MemoryLimiter struct {
	c   *gocache.Cache
	cfg Config
}

func NewMemoryLimiter(cfg Config, cleanup time.Duration) *MemoryLimiter {
	cfg.normalize()
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &MemoryLimiter{c: gocache.New(cfg.Window, cleanup), cfg: cfg}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := l.cfg.Now()
	winStart := now.Truncate(l.cfg.Window)
	k := fmt.Sprintf("%s%s:%d", l.cfg.Prefix, key, winStart.Unix())

	// Add falla si la key ya existe; en ambos casos el Increment es atómico.
	_ = l.c.Add(k, int64(0), l.cfg.Window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, fmt.Errorf("rate: memory incr: %w", err)
	}
	ttl := winStart.Add(l.cfg.Window).Sub(now)
	return result(int64(l.cfg.Max), hits, ttl, l.cfg.Window), nil
}

func (l *MemoryLimiter) Ping(context.Context) error { return nil }
func (l *MemoryLimiter) Close() error               { return nil }
